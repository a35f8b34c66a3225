/*
Package errs defines the application error type and the table of business error
codes shared by the HTTP API and the websocket layer.
*/
package errs

import (
	"fmt"
	"net/http"

	"paperboard/internal/pkg/logx"
)

// CustomError carries a business error code, a client-safe message, and the HTTP
// status the API should answer with.
type CustomError struct {
	Code    int
	Message string
	Status  int
}

// Error implements the error interface.
func (e CustomError) Error() string {
	return fmt.Sprintf("error code %d (http %d): %s", e.Code, e.Status, e.Message)
}

// NewError builds a *CustomError from a predefined code. Optional args are applied
// printf-style when the message template has placeholders. Unknown codes fall back
// to ErrUnknown so a bad call site can never surface a zero-value error.
func NewError(code int, args ...any) *CustomError {
	template, ok := errorMap[code]
	if !ok {
		logx.Error(
			fmt.Errorf("unknown error code %d requested", code),
			"error code missing from errorMap",
		)
		template = errorMap[ErrUnknown]
	}

	err := template
	if err.Status == 0 {
		err.Status = http.StatusOK
	}

	if len(args) > 0 && code != ErrUnknown {
		err.Message = fmt.Sprintf(err.Message, args...)
	}

	return &err
}
