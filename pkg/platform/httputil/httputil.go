// Package httputil holds response helpers shared by the HTTP handlers.
package httputil

import (
	"net/http"

	dErrors "regdesk/pkg/domain-errors"
)

// ErrorCodeHeader carries the machine-readable error code next to the
// human-readable plain-text body.
const ErrorCodeHeader = "X-Error-Code"

// WriteError writes the public message of err as plain text with the status
// mapped from its code. Causes are never written to the client.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	w.Header().Set(ErrorCodeHeader, string(code))
	WriteText(w, dErrors.HTTPStatus(code), dErrors.PublicMessage(err))
}

// WriteText writes a plain-text body.
func WriteText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

// WriteFile writes a document body as an attachment.
func WriteFile(w http.ResponseWriter, contentType, filename string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
