package typst

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"regdesk/internal/platform/config"
)

// fakeTypst writes a shell script standing in for the typst binary.
func fakeTypst(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script stand-in requires a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "typst")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755))
	return path
}

func TestArgs(t *testing.T) {
	r := New(config.Render{TypstBin: "typst", TemplateDir: "templates", FontDir: "fonts"})

	args := r.Args("label", "out/participant-recP1.pdf", []byte(`{"name":"张三"}`))
	assert.Equal(t, []string{
		"compile",
		filepath.Join("templates", "label.typ"),
		"out/participant-recP1.pdf",
		"--font-path", "fonts",
		"--input", `data={"name":"张三"}`,
	}, args)

	noFonts := New(config.Render{TemplateDir: "templates"})
	assert.NotContains(t, noFonts.Args("asset", "a.pdf", []byte("{}")), "--font-path")
}

func TestRender(t *testing.T) {
	ctx := context.Background()
	out := filepath.Join(t.TempDir(), "participant-recP1.pdf")

	t.Run("writes the document", func(t *testing.T) {
		// $3 is the output path, $7 is "data=<json>".
		bin := fakeTypst(t, `printf '%%PDF-1.7 %s' "$7" > "$3"`)
		r := New(config.Render{TypstBin: bin, TemplateDir: "templates", FontDir: "fonts"})

		require.NoError(t, r.Render(ctx, "label", out, []byte(`{"id":"recP1"}`)))
		body, err := os.ReadFile(out)
		require.NoError(t, err)
		assert.Contains(t, string(body), `data={"id":"recP1"}`)
	})

	t.Run("non-zero exit", func(t *testing.T) {
		bin := fakeTypst(t, `echo "error: unknown font family" >&2; exit 1`)
		r := New(config.Render{TypstBin: bin})

		err := r.Render(ctx, "label", out, []byte(`{}`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown font family")
	})

	t.Run("exit zero without output", func(t *testing.T) {
		require.NoError(t, os.WriteFile(out, []byte("stale"), 0o644))
		bin := fakeTypst(t, `exit 0`)
		r := New(config.Render{TypstBin: bin})

		err := r.Render(ctx, "label", out, []byte(`{}`))
		assert.ErrorContains(t, err, "no output")
	})

	t.Run("empty output", func(t *testing.T) {
		bin := fakeTypst(t, `: > "$3"`)
		r := New(config.Render{TypstBin: bin})

		assert.ErrorContains(t, r.Render(ctx, "label", out, []byte(`{}`)), "empty output")
	})

	t.Run("timeout", func(t *testing.T) {
		bin := fakeTypst(t, `exec sleep 5`)
		r := New(config.Render{TypstBin: bin}, WithTimeout(50*time.Millisecond))

		assert.ErrorContains(t, r.Render(ctx, "label", out, []byte(`{}`)), "timeout")
	})

	t.Run("missing binary", func(t *testing.T) {
		r := New(config.Render{TypstBin: filepath.Join(t.TempDir(), "nope")})
		assert.Error(t, r.Render(ctx, "label", out, []byte(`{}`)))
	})
}
