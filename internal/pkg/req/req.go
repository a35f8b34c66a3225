/*
Package req binds HTTP request bodies to Go structs with strict JSON decoding.
*/
package req

import (
	"encoding/json"
	"net/http"
	"strings"

	"paperboard/internal/pkg/errs"
)

// MaxBodySize caps API request bodies at 1 MB; folder and question payloads are
// small and anything larger is a client bug.
const MaxBodySize int64 = 1 << 20

// BindJSON decodes the request body into dst. Unknown fields and trailing content
// are rejected so silently ignored typos never reach the handlers.
func BindJSON(w http.ResponseWriter, r *http.Request, dst any) *errs.CustomError {
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		return errs.NewError(errs.ErrUnsupportedMediaType)
	}

	r.Body = http.MaxBytesReader(w, r.Body, MaxBodySize)

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		return errs.NewError(errs.ErrInvalidJSONFormat)
	}
	if decoder.More() {
		return errs.NewError(errs.ErrExtraContentInBody)
	}

	return nil
}
