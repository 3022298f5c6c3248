package printer

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"regdesk/internal/platform/config"
)

func TestNew_DisabledWithoutName(t *testing.T) {
	assert.Nil(t, New(config.Printer{Settings: "noscale"}))
}

func TestArgs(t *testing.T) {
	p := New(config.Printer{Name: "Zebra_ZD421", Settings: "noscale"})
	require.NotNil(t, p)

	if runtime.GOOS == "windows" {
		assert.Equal(t, "SumatraPDF", p.bin)
		assert.Equal(t, []string{"-print-to", "Zebra_ZD421", "-print-settings", "noscale", "-silent", `out\label.pdf`}, p.Args(`out\label.pdf`))
		return
	}
	assert.Equal(t, "lp", p.bin)
	assert.Equal(t, []string{"-d", "Zebra_ZD421", "-o", "noscale", "out/label.pdf"}, p.Args("out/label.pdf"))
}

func TestPrint(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script stand-in requires a POSIX shell")
	}
	dir := t.TempDir()
	log := filepath.Join(dir, "jobs")

	script := func(body string) string {
		path := filepath.Join(t.TempDir(), "lp")
		require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755))
		return path
	}

	t.Run("dispatches the file", func(t *testing.T) {
		p := New(config.Printer{Name: "desk-1", Settings: "noscale", Bin: script(`echo "$@" >> "` + log + `"`)})
		require.NoError(t, p.Print(context.Background(), "out/participant-recP1.pdf"))

		got, err := os.ReadFile(log)
		require.NoError(t, err)
		assert.Equal(t, "-d desk-1 -o noscale out/participant-recP1.pdf\n", string(got))
	})

	t.Run("reports spooler errors", func(t *testing.T) {
		p := New(config.Printer{Name: "desk-1", Bin: script(`echo "lp: The printer or class does not exist." >&2; exit 1`)})
		err := p.Print(context.Background(), "out/participant-recP1.pdf")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "does not exist")
	})
}
