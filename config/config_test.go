package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default("src/my-lib.rs")

	assert.Equal(t, "my-lib", cfg.Name)
	assert.Equal(t, "cheddar_generated_mylib_h", cfg.Guard())
	assert.Equal(t, "MYLIB", cfg.MacroPrefix())
	assert.False(t, cfg.Strict)
	assert.NoError(t, cfg.Validate())

	v, err := cfg.ParsedVersion()
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cheddar.yaml")
	data := `
name: engine
output: include/engine.h
version: 2.1.3
version_prefix: ENG
strict: true
log_level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	cfg, err := Load(path, "lib.rs")
	require.NoError(t, err)

	assert.Equal(t, "engine", cfg.Name)
	assert.Equal(t, "include/engine.h", cfg.Output)
	assert.True(t, cfg.Strict)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat, "unset keys keep their defaults")
	assert.Equal(t, "ENG", cfg.MacroPrefix())
	require.NoError(t, cfg.Validate())

	v, err := cfg.ParsedVersion()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), v.Major())
	assert.Equal(t, uint64(1), v.Minor())
	assert.Equal(t, uint64(3), v.Patch())
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), "lib.rs")
	assert.ErrorIs(t, err, os.ErrNotExist)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("strict: [not, a, bool]\n"), 0644))

	_, err = Load(path, "lib.rs")
	assert.ErrorContains(t, err, "decoding config")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		errMsg string
	}{
		{"empty name", func(c *Config) { c.Name = "..." }, "include guard"},
		{"bad guard", func(c *Config) { c.IncludeGuard = "MY-GUARD" }, "not a C identifier"},
		{"loose version", func(c *Config) { c.Version = "v1.2" }, "version"},
		{"bad prefix", func(c *Config) { c.VersionPrefix = "A B" }, "version prefix"},
		{"digit guard", func(c *Config) { c.IncludeGuard = "1LIB_H" }, "not a C identifier"},
		{"digit prefix", func(c *Config) { c.VersionPrefix = "3D"; c.Version = "1.0.0" }, "version prefix"},
		{"digit name with version", func(c *Config) { c.Name = "3d-engine"; c.Version = "1.0.0" }, "version macro prefix"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default("lib.rs")
			tt.modify(cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.errMsg)
		})
	}

	cfg := Default("...")
	cfg.IncludeGuard = "LIB_H"
	assert.NoError(t, cfg.Validate(), "an explicit guard does not need a usable name")

	cfg = Default("3d-engine.rs")
	assert.NoError(t, cfg.Validate(), "the default guard is prefixed")
	assert.Equal(t, "cheddar_generated_3dengine_h", cfg.Guard())

	cfg.Version = "1.0.0"
	cfg.VersionPrefix = "ENGINE3D"
	assert.NoError(t, cfg.Validate())
}
