// Package printer dispatches rendered labels to a local printer through the
// platform print command.
package printer

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"regdesk/internal/platform/config"
)

const defaultTimeout = 30 * time.Second

// Command prints by running the platform print command for each document.
type Command struct {
	bin      string
	name     string
	settings string
	timeout  time.Duration
}

// New returns nil when no printer is configured, which disables printing.
func New(cfg config.Printer) *Command {
	if cfg.Name == "" {
		return nil
	}
	bin := cfg.Bin
	if bin == "" {
		bin = defaultBin
	}
	return &Command{
		bin:      bin,
		name:     cfg.Name,
		settings: cfg.Settings,
		timeout:  defaultTimeout,
	}
}

// Args returns the print command line for path.
func (c *Command) Args(path string) []string {
	return printArgs(c.name, c.settings, path)
}

func (c *Command) Print(ctx context.Context, path string) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, c.bin, c.Args(path)...)
	cmd.WaitDelay = time.Second
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("print %s on %s: %w: %s", path, c.name, err, strings.TrimSpace(string(output)))
	}
	return nil
}
