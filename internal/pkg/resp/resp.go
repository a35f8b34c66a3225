/*
Package resp writes the standardized JSON response envelope used by the HTTP API:
a business code (0 on success), a client-safe message, and an optional data payload.
*/
package resp

import (
	"encoding/json"
	"net/http"

	"paperboard/internal/pkg/errs"
	"paperboard/internal/pkg/logx"
)

// JSONResponse is the envelope every API endpoint answers with.
type JSONResponse struct {
	// Code is 0 on success, otherwise one of the errs package codes.
	Code int `json:"code"`

	// Message is the client-facing status description.
	Message string `json:"message"`

	// Data holds the endpoint-specific payload, omitted when empty.
	Data any `json:"data,omitempty"`
}

// RespondJSON marshals payload and writes it with the given HTTP status.
func RespondJSON(w http.ResponseWriter, r *http.Request, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")

	body, err := json.Marshal(payload)
	if err != nil {
		logx.Error(err, "failed to encode JSON response", "http_status", status)
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(status)
	w.Write(body)
}

// RespondSuccess writes a 200 envelope with code 0 and the given data.
func RespondSuccess(w http.ResponseWriter, r *http.Request, data any) {
	RespondJSON(w, r, http.StatusOK, JSONResponse{Code: 0, Message: "success", Data: data})
}

// RespondError writes the envelope matching a *CustomError. A nil error is
// treated as ErrUnknown.
func RespondError(w http.ResponseWriter, r *http.Request, customErr *errs.CustomError) {
	if customErr == nil {
		customErr = errs.NewError(errs.ErrUnknown)
	}
	RespondJSON(w, r, customErr.Status, JSONResponse{Code: customErr.Code, Message: customErr.Message})
}
