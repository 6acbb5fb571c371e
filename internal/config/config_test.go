package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
env: dev
storage:
  path: data/persons.json
grpc_server:
  address: localhost:5079
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, DriverFile, cfg.Storage.Driver)
	assert.Equal(t, "data/persons.json", cfg.Storage.Path)
	assert.Equal(t, "localhost:5079", cfg.GRPCServer.Addr)
	assert.Empty(t, cfg.OpsServer.Addr)
	assert.Equal(t, 5*time.Second, cfg.ShutdownTimeout)
}

func TestLoadEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
env: dev
storage:
  driver: file
  path: data/persons.json
grpc_server:
  address: localhost:5079
`)
	t.Setenv("STORAGE_DRIVER", "sqlite")
	t.Setenv("STORAGE_PATH", "/tmp/persons.db")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DriverSQLite, cfg.Storage.Driver)
	assert.Equal(t, "/tmp/persons.db", cfg.Storage.Path)
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing grpc address", "env: dev\nstorage:\n  path: p.json\n"},
		{"unknown env", "env: qa\nstorage:\n  path: p.json\ngrpc_server:\n  address: :1\n"},
		{"unknown driver", "env: dev\nstorage:\n  driver: mongo\n  path: p.json\ngrpc_server:\n  address: :1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
