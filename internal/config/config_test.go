package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestLoadEmptyPath(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "termdict.yaml")
	doc := `
server:
  port: 6000
log:
  level: debug
  pretty: true
dictionary:
  seedFile: terms.tsv
  verifyInvariants: true
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 6000, cfg.Server.Port)
	assert.Equal(t, 9090, cfg.Server.MetricsPort, "omitted field keeps its default")
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Log.Pretty)
	assert.Equal(t, "terms.tsv", cfg.Dictionary.SeedFile)
	assert.True(t, cfg.Dictionary.VerifyInvariants)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestParseRejectsUnknownField(t *testing.T) {
	cfg := Default()
	require.Error(t, Parse([]byte("server:\n  prot: 1\n"), &cfg))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"zero port", func(c *Config) { c.Server.Port = 0 }, ErrInvalidPort},
		{"port too large", func(c *Config) { c.Server.MetricsPort = 70000 }, ErrInvalidPort},
		{"same ports", func(c *Config) { c.Server.MetricsPort = c.Server.Port }, ErrInvalidPort},
		{"zero message size", func(c *Config) { c.Server.MaxMsgBytes = 0 }, ErrInvalidMsgSize},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, ErrInvalidLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), tt.want)
		})
	}
}
