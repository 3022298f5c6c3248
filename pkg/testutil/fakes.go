package testutil

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// FakeRenderer writes its payload to the output path instead of typesetting.
// Files whose base name is in FailFiles are not written and return an error.
type FakeRenderer struct {
	mu        sync.Mutex
	Delay     time.Duration
	FailFiles map[string]bool
	rendered  []string
}

// NewFakeRenderer creates a renderer failing for the given file names.
func NewFakeRenderer(failFiles ...string) *FakeRenderer {
	r := &FakeRenderer{FailFiles: make(map[string]bool)}
	for _, f := range failFiles {
		r.FailFiles[f] = true
	}
	return r
}

func (r *FakeRenderer) Render(ctx context.Context, template, outputPath string, payload []byte) error {
	if r.Delay > 0 {
		select {
		case <-time.After(r.Delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if r.FailFiles[filepath.Base(outputPath)] {
		return errors.New("typst exited with status 1")
	}
	if err := os.WriteFile(outputPath, append([]byte("%PDF-"+template+"\n"), payload...), 0o644); err != nil {
		return err
	}
	r.mu.Lock()
	r.rendered = append(r.rendered, filepath.Base(outputPath))
	r.mu.Unlock()
	return nil
}

// Rendered returns the base names of the files written so far.
func (r *FakeRenderer) Rendered() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string{}, r.rendered...)
}

// FakePrinter records printed paths; Err makes every dispatch fail.
type FakePrinter struct {
	mu      sync.Mutex
	Err     error
	printed []string
}

func (p *FakePrinter) Print(_ context.Context, path string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return p.Err
	}
	p.printed = append(p.printed, filepath.Base(path))
	return nil
}

// Printed returns the base names of the files printed so far.
func (p *FakePrinter) Printed() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string{}, p.printed...)
}
