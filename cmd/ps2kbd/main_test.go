package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ps2kbd/internal/config"
	"ps2kbd/internal/health"
	"ps2kbd/internal/metrics"
	"ps2kbd/internal/port"
)

func TestStreamDisplay(t *testing.T) {
	var buf bytes.Buffer
	d := newStreamDisplay(&buf)

	d.WriteChar('a')
	d.SwitchConsole(0)
	d.SwitchConsole(2)
	d.WriteChar('b')
	require.NoError(t, d.Flush())

	assert.Equal(t, "a\n[tty3]\nb", buf.String())
}

func TestReadScript(t *testing.T) {
	path := filepath.Join(t.TempDir(), "typing.txt")
	require.NoError(t, os.WriteFile(path, []byte("1e 9e # a\n"), 0600))

	script, err := readScript(path)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x1e, 0x9e}, script)

	_, err = readScript(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}

func TestSessionDrivesStream(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Keyboard.ScancodeSet = 2

	s, err := newSession(cfg)
	require.NoError(t, err)
	defer s.Close()

	reload, err := s.watchKeymap()
	require.NoError(t, err)
	assert.Nil(t, reload, "builtin layouts are not watched")

	p := port.NewSimulated()
	var buf bytes.Buffer
	out := newStreamDisplay(&buf)
	drv, err := s.newDriver(p, out)
	require.NoError(t, err)

	p.Feed(0x33, 0xf0, 0x33, 0x43, 0xf0, 0x43) // h, i in set 2
	for drv.Poll() {
	}
	drv.Interpret()
	require.NoError(t, out.Flush())

	assert.Equal(t, "hi", buf.String())
	assert.Equal(t, uint64(4), s.metrics.CodesCaptured.Value())
}

func TestHealthCheckerRegistersKeymapFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "layout.toml")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0600))

	cfg := config.DefaultConfig()
	cfg.Keyboard.Keymap = path
	s := &session{cfg: cfg, metrics: metrics.NewKeyboardMetrics(metrics.NewRegistry("test", "cmd"))}

	results := s.healthChecker().Check(context.Background())
	require.Contains(t, results, "keymap")
	assert.Equal(t, health.StatusHealthy, results["keymap"].Status)
	assert.Equal(t, health.StatusHealthy, results["queue"].Status)
	assert.Contains(t, results, "port")
}

func TestSuggest(t *testing.T) {
	assert.Equal(t, "replay", suggest("rply"))
	assert.Equal(t, "config", suggest("cnf"))
	assert.Equal(t, "", suggest("xyz"))
}
