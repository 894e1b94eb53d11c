package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, 6, cfg.Rows)
	require.Equal(t, 9, cfg.Cols)
	require.Len(t, cfg.Players, 2)
	require.Equal(t, ":8080", cfg.Server.Addr)
	require.Equal(t, "info", cfg.LogLevel)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
rows: 8
cols: 8
players:
  - name: Alice
    color: red
  - name: Bob
    color: blue
  - name: Carol
    color: green
server:
  addr: ":9999"
log_level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 8, cfg.Rows)
	require.Equal(t, 8, cfg.Cols)
	require.Len(t, cfg.Players, 3)
	require.Equal(t, "Carol", cfg.Players[2].Name)
	require.Equal(t, ":9999", cfg.Server.Addr)
	require.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadRejectsBadConfig(t *testing.T) {
	t.Run("one player", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("players:\n  - name: Solo\n"), 0o644))
		_, err := Load(path)
		require.Error(t, err)
	})

	t.Run("degenerate grid", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("rows: 1\n"), 0o644))
		_, err := Load(path)
		require.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, err)
	})
}
