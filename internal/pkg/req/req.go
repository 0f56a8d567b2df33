/*
Package req provides helpers for parsing HTTP request bodies.
*/
package req

import (
	"encoding/json"
	"net/http"
	"strings"

	"carelink/internal/pkg/errs"
)

// MaxBodyBytes caps REST request bodies. File content never travels through
// this server (uploads go straight to object storage via presigned URLs),
// so a small limit suffices.
const MaxBodyBytes int64 = 1 << 20 // 1 MB

// BindJSON decodes the JSON request body into dst, rejecting unknown
// fields, trailing content, and non-JSON content types.
func BindJSON(w http.ResponseWriter, r *http.Request, dst any) *errs.CustomError {
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		return errs.NewError(errs.ErrUnsupportedMediaType)
	}

	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		return errs.NewError(errs.ErrInvalidJSONFormat)
	}

	if decoder.More() {
		return errs.NewError(errs.ErrInvalidJSONFormat)
	}

	return nil
}
