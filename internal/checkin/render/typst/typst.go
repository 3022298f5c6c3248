// Package typst renders label documents with the typst CLI.
package typst

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"regdesk/internal/platform/config"
)

const defaultTimeout = 30 * time.Second

// Renderer shells out to `typst compile`. Templates read their data with
// json.decode(sys.inputs.data).
type Renderer struct {
	bin         string
	templateDir string
	fontDir     string
	timeout     time.Duration
}

type Option func(*Renderer)

// WithTimeout bounds a single compile.
func WithTimeout(d time.Duration) Option {
	return func(r *Renderer) {
		r.timeout = d
	}
}

func New(cfg config.Render, opts ...Option) *Renderer {
	r := &Renderer{
		bin:         cfg.TypstBin,
		templateDir: cfg.TemplateDir,
		fontDir:     cfg.FontDir,
		timeout:     defaultTimeout,
	}
	if r.bin == "" {
		r.bin = "typst"
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Args returns the compile command line for one document.
func (r *Renderer) Args(template, outputPath string, payload []byte) []string {
	args := []string{
		"compile",
		filepath.Join(r.templateDir, template+".typ"),
		outputPath,
	}
	if r.fontDir != "" {
		args = append(args, "--font-path", r.fontDir)
	}
	return append(args, "--input", "data="+string(payload))
}

// Render compiles template into outputPath. It fails when typst exits non-zero
// or leaves no document behind.
func (r *Renderer) Render(ctx context.Context, template, outputPath string, payload []byte) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	// A stale file from an earlier run must not pass the output check below.
	if err := os.Remove(outputPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove stale %s: %w", outputPath, err)
	}

	cmd := exec.CommandContext(ctx, r.bin, r.Args(template, outputPath, payload)...)
	cmd.WaitDelay = time.Second
	output, err := cmd.CombinedOutput()
	if ctx.Err() == context.DeadlineExceeded {
		return fmt.Errorf("typst compile %s: timeout after %s", template, r.timeout)
	}
	if err != nil {
		return fmt.Errorf("typst compile %s: %w: %s", template, err, strings.TrimSpace(string(output)))
	}

	info, err := os.Stat(outputPath)
	if err != nil {
		return fmt.Errorf("typst compile %s: no output: %w", template, err)
	}
	if info.Size() == 0 {
		return fmt.Errorf("typst compile %s: empty output %s", template, outputPath)
	}
	return nil
}
