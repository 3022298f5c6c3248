package httputil

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	dErrors "regdesk/pkg/domain-errors"
)

func TestWriteError(t *testing.T) {
	t.Run("internal error hides the cause", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, errors.New("pq: connection refused"))

		if w.Code != http.StatusInternalServerError {
			t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, w.Code)
		}
		if got := w.Header().Get(ErrorCodeHeader); got != "internal" {
			t.Fatalf("expected error code internal, got %q", got)
		}
		if w.Body.String() != dErrors.MsgInternal {
			t.Fatalf("expected generic message, got %q", w.Body.String())
		}
	})

	t.Run("coded error writes its message", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.Wrap(errors.New("code 1254004"), dErrors.CodeRemoteReadFailed, dErrors.MsgRemoteReadFailed))

		if w.Code != http.StatusBadGateway {
			t.Fatalf("expected status %d, got %d", http.StatusBadGateway, w.Code)
		}
		if got := w.Header().Get(ErrorCodeHeader); got != "remote_read_failed" {
			t.Fatalf("expected error code remote_read_failed, got %q", got)
		}
		if w.Body.String() != dErrors.MsgRemoteReadFailed {
			t.Fatalf("expected public message, got %q", w.Body.String())
		}
		if ct := w.Header().Get("Content-Type"); ct != "text/plain; charset=utf-8" {
			t.Fatalf("expected plain text, got %q", ct)
		}
	})
}

func TestWriteFile(t *testing.T) {
	w := httptest.NewRecorder()
	WriteFile(w, "application/pdf", "label.pdf", []byte("%PDF-1.7"))

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if got := w.Header().Get("Content-Disposition"); got != `attachment; filename="label.pdf"` {
		t.Fatalf("unexpected content disposition %q", got)
	}
	if w.Body.String() != "%PDF-1.7" {
		t.Fatalf("unexpected body %q", w.Body.String())
	}
}
