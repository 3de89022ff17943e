package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"ADDR", "TLS_CERT", "TLS_KEY", "TOKEN_KEY", "DATABASE_URL", "RATE_LIMIT", "RATE_BURST", "LOG_LEVEL", "ENV"} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("TOKEN_KEY", "secret")

	c, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, ":8443", c.Addr)
	assert.Equal(t, []byte("secret"), c.TokenKey)
	assert.Equal(t, 1.0, c.RateLimit)
	assert.Equal(t, 3, c.RateBurst)
	assert.Equal(t, "info", c.LogLevel)
	assert.False(t, c.TLS())
}

func TestLoad_DotEnvFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("ADDR", ":9000")

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("ADDR=:7000\nTOKEN_KEY=from-file\nRATE_BURST=10\nTLS_CERT=a.crt\nTLS_KEY=a.key\n"), 0o600))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9000", c.Addr, "environment wins over file")
	assert.Equal(t, []byte("from-file"), c.TokenKey)
	assert.Equal(t, 10, c.RateBurst)
	assert.True(t, c.TLS())
}

func TestLoad_Errors(t *testing.T) {
	clearEnv(t)
	missing := filepath.Join(t.TempDir(), "none.env")

	_, err := Load(missing)
	assert.EqualError(t, err, "TOKEN_KEY environment variable is not set")

	t.Setenv("TOKEN_KEY", "k")
	t.Setenv("RATE_LIMIT", "fast")
	_, err = Load(missing)
	assert.ErrorContains(t, err, "RATE_LIMIT")

	t.Setenv("RATE_LIMIT", "0")
	_, err = Load(missing)
	assert.Error(t, err)
}
