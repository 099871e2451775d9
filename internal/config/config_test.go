package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestParseServer_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	opts, err := ParseServer(nil)
	require.NoError(t, err)
	assert.Equal(t, "localhost:8080", opts.Address)
	assert.Empty(t, opts.DatabaseDSN)
	assert.Equal(t, 24*time.Hour, opts.TokenTTL)
	assert.Equal(t, "info", opts.LogLevel)
}

func TestParseServer_Precedence(t *testing.T) {
	path := writeConfig(t, `{"address": "file:1", "database_dsn": "file-dsn", "token_ttl": "1h", "jwt_secret": "file-secret"}`)

	t.Setenv("SERVER_ADDRESS", "env:2")
	t.Setenv("JWT_SECRET", "env-secret")

	opts, err := ParseServer([]string{"-c", path, "-a", "flag:3"})
	require.NoError(t, err)
	assert.Equal(t, "flag:3", opts.Address, "explicit flag wins")
	assert.Equal(t, "env-secret", opts.JWTSecret, "environment beats file")
	assert.Equal(t, "file-dsn", opts.DatabaseDSN, "file beats default")
	assert.Equal(t, time.Hour, opts.TokenTTL)
}

func TestParseServer_ConfigFromEnv(t *testing.T) {
	path := writeConfig(t, `{"address": "file:1"}`)
	t.Setenv("CONFIG", path)

	opts, err := ParseServer(nil)
	require.NoError(t, err)
	assert.Equal(t, "file:1", opts.Address)
	assert.Equal(t, path, opts.Config)
}

func TestParseServer_Errors(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := ParseServer([]string{"-c", filepath.Join(t.TempDir(), "missing.json")})
	assert.Error(t, err, "explicit config must exist")

	_, err = ParseServer([]string{"-c", writeConfig(t, `{not json`)})
	assert.ErrorContains(t, err, "error while parsing config file")

	_, err = ParseServer([]string{"--tls-cert", "a.crt"})
	assert.Error(t, err)

	_, err = ParseServer([]string{"--token-ttl", "0s"})
	assert.Error(t, err)

	_, err = ParseServer([]string{"--unknown"})
	assert.Error(t, err)
}

func clientFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("client", pflag.ContinueOnError)
	RegisterClientFlags(fs)
	require.NoError(t, fs.Parse(args))
	return fs
}

func TestLoadClient_Defaults(t *testing.T) {
	opts, err := LoadClient(clientFlags(t))
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080", opts.BaseURL)
	assert.Equal(t, 10*time.Second, opts.Timeout)
	assert.Equal(t, 300*time.Millisecond, opts.SearchDebounce)
	assert.Equal(t, "warn", opts.LogLevel)
	assert.Empty(t, opts.TokenFile)
}

func TestLoadClient_EnvAndFlags(t *testing.T) {
	t.Setenv("GOPHTASKS_URL", "https://tasks.example.com/")
	t.Setenv("GOPHTASKS_TIMEOUT", "3s")

	opts, err := LoadClient(clientFlags(t, "--timeout", "5s", "--token-file", "/tmp/tok.json"))
	require.NoError(t, err)
	assert.Equal(t, "https://tasks.example.com", opts.BaseURL)
	assert.Equal(t, 5*time.Second, opts.Timeout)
	assert.Equal(t, "/tmp/tok.json", opts.TokenFile)
}

func TestLoadClient_ConfigFile(t *testing.T) {
	path := writeConfig(t, `{"base_url": "http://file:9000", "search_debounce": "1s"}`)

	opts, err := LoadClient(clientFlags(t, "-c", path))
	require.NoError(t, err)
	assert.Equal(t, "http://file:9000", opts.BaseURL)
	assert.Equal(t, time.Second, opts.SearchDebounce)
}

func TestLoadClient_UnregisteredFlags(t *testing.T) {
	_, err := LoadClient(pflag.NewFlagSet("empty", pflag.ContinueOnError))
	assert.Error(t, err)
}
