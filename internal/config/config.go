// Package config provides functionality for managing configuration options
// for the server and the client using command-line flags, environment
// variables and an optional JSON config file.
//
// Precedence, lowest first: defaults, config file, environment, flags that
// were set explicitly.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Server option keys. They double as the JSON config file keys.
const (
	KeyAddress     = "address"
	KeyDatabaseDSN = "database_dsn"
	KeyJWTSecret   = "jwt_secret"
	KeyTokenTTL    = "token_ttl"
	KeyTLSCert     = "tls_cert"
	KeyTLSKey      = "tls_key"
	KeyLogLevel    = "log_level"
	KeyConfig      = "config"
)

// Client option keys.
const (
	KeyBaseURL        = "base_url"
	KeyTokenFile      = "token_file"
	KeyCAFile         = "ca_file"
	KeyTimeout        = "timeout"
	KeySearchDebounce = "search_debounce"
)

// ServerOptions holds the configuration values for the task service.
type ServerOptions struct {
	// Address defines the server's listening address (ip:port).
	Address string

	// DatabaseDSN holds the PostgreSQL connection string. Empty selects the
	// in-memory repositories.
	DatabaseDSN string

	// JWTSecret signs access tokens.
	JWTSecret string

	// TokenTTL is the lifetime of issued access tokens.
	TokenTTL time.Duration

	// TLSCert and TLSKey enable HTTPS when both are set.
	TLSCert string
	TLSKey  string

	// LogLevel is the zap level name.
	LogLevel string

	// Config is the path to the JSON config file.
	Config string
}

// ClientOptions holds the configuration values for the task client.
type ClientOptions struct {
	// BaseURL is the task service root.
	BaseURL string

	// TokenFile is where the bearer token is persisted. Empty means the
	// default location in the user's home directory.
	TokenFile string

	// CAFile is an optional PEM bundle trusted in addition to the system roots.
	CAFile string

	// Timeout bounds every HTTP request.
	Timeout time.Duration

	// SearchDebounce is how long search input must be stable before the
	// task list is refiltered.
	SearchDebounce time.Duration

	// LogLevel is the zap level name.
	LogLevel string

	// Config is the path to the JSON config file.
	Config string
}

// RegisterServerFlags adds the server flags to fs.
func RegisterServerFlags(fs *pflag.FlagSet) {
	fs.StringP(KeyAddress, "a", "localhost:8080", "run on ip:port server")
	fs.StringP("database-dsn", "d", "", "db address (empty keeps data in memory)")
	fs.String("jwt-secret", "", "secret used to sign access tokens")
	fs.Duration("token-ttl", 24*time.Hour, "access token lifetime")
	fs.String("tls-cert", "", "TLS certificate file")
	fs.String("tls-key", "", "TLS key file")
	fs.String("log-level", "info", "log level")
	fs.StringP(KeyConfig, "c", "config.json", "path to config file")
}

// ParseServer parses args and the environment into ServerOptions.
func ParseServer(args []string) (*ServerOptions, error) {
	fs := pflag.NewFlagSet("server", pflag.ContinueOnError)
	RegisterServerFlags(fs)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return LoadServer(fs)
}

// LoadServer resolves ServerOptions from the already parsed fs.
func LoadServer(fs *pflag.FlagSet) (*ServerOptions, error) {
	v := viper.New()
	flags := map[string]string{
		KeyAddress:     KeyAddress,
		KeyDatabaseDSN: "database-dsn",
		KeyJWTSecret:   "jwt-secret",
		KeyTokenTTL:    "token-ttl",
		KeyTLSCert:     "tls-cert",
		KeyTLSKey:      "tls-key",
		KeyLogLevel:    "log-level",
		KeyConfig:      KeyConfig,
	}
	env := map[string]string{
		KeyAddress:     "SERVER_ADDRESS",
		KeyDatabaseDSN: "DATABASE_DSN",
		KeyJWTSecret:   "JWT_SECRET",
		KeyTokenTTL:    "TOKEN_TTL",
		KeyTLSCert:     "TLS_CERT",
		KeyTLSKey:      "TLS_KEY",
		KeyLogLevel:    "LOG_LEVEL",
		KeyConfig:      "CONFIG",
	}
	if err := bind(v, fs, flags, env); err != nil {
		return nil, err
	}
	if err := readConfigFile(v, fs); err != nil {
		return nil, err
	}

	opts := &ServerOptions{
		Address:     v.GetString(KeyAddress),
		DatabaseDSN: v.GetString(KeyDatabaseDSN),
		JWTSecret:   v.GetString(KeyJWTSecret),
		TokenTTL:    v.GetDuration(KeyTokenTTL),
		TLSCert:     v.GetString(KeyTLSCert),
		TLSKey:      v.GetString(KeyTLSKey),
		LogLevel:    v.GetString(KeyLogLevel),
		Config:      v.GetString(KeyConfig),
	}
	if opts.TokenTTL <= 0 {
		return nil, fmt.Errorf("%s must be positive", KeyTokenTTL)
	}
	if (opts.TLSCert == "") != (opts.TLSKey == "") {
		return nil, errors.New("tls_cert and tls_key must be set together")
	}
	return opts, nil
}

// RegisterClientFlags adds the client flags to fs.
func RegisterClientFlags(fs *pflag.FlagSet) {
	fs.String("url", "http://localhost:8080", "task service base URL")
	fs.String("token-file", "", "where the access token is kept (default ~/.gophtasks/credentials.json)")
	fs.String("ca-file", "", "extra CA certificate for HTTPS")
	fs.Duration(KeyTimeout, 10*time.Second, "HTTP request timeout")
	fs.Duration("search-debounce", 300*time.Millisecond, "search input debounce in the browser")
	fs.String("log-level", "warn", "log level")
	fs.StringP(KeyConfig, "c", "", "path to config file")
}

// LoadClient resolves ClientOptions from the already parsed fs. Every
// option can also be set through a GOPHTASKS_-prefixed environment
// variable, e.g. GOPHTASKS_URL.
func LoadClient(fs *pflag.FlagSet) (*ClientOptions, error) {
	v := viper.New()

	flags := map[string]string{
		KeyBaseURL:        "url",
		KeyTokenFile:      "token-file",
		KeyCAFile:         "ca-file",
		KeyTimeout:        KeyTimeout,
		KeySearchDebounce: "search-debounce",
		KeyLogLevel:       "log-level",
		KeyConfig:         KeyConfig,
	}
	env := map[string]string{
		KeyBaseURL:        "GOPHTASKS_URL",
		KeyTokenFile:      "GOPHTASKS_TOKEN_FILE",
		KeyCAFile:         "GOPHTASKS_CA_FILE",
		KeyTimeout:        "GOPHTASKS_TIMEOUT",
		KeySearchDebounce: "GOPHTASKS_SEARCH_DEBOUNCE",
		KeyLogLevel:       "GOPHTASKS_LOG_LEVEL",
		KeyConfig:         "GOPHTASKS_CONFIG",
	}
	if err := bind(v, fs, flags, env); err != nil {
		return nil, err
	}
	if err := readConfigFile(v, fs); err != nil {
		return nil, err
	}

	opts := &ClientOptions{
		BaseURL:        strings.TrimRight(v.GetString(KeyBaseURL), "/"),
		TokenFile:      v.GetString(KeyTokenFile),
		CAFile:         v.GetString(KeyCAFile),
		Timeout:        v.GetDuration(KeyTimeout),
		SearchDebounce: v.GetDuration(KeySearchDebounce),
		LogLevel:       v.GetString(KeyLogLevel),
		Config:         v.GetString(KeyConfig),
	}
	if opts.BaseURL == "" {
		return nil, errors.New("base_url is required")
	}
	if opts.Timeout <= 0 {
		return nil, fmt.Errorf("%s must be positive", KeyTimeout)
	}
	return opts, nil
}

// bind attaches each option key to its flag and its environment variable.
func bind(v *viper.Viper, fs *pflag.FlagSet, flags, env map[string]string) error {
	for key, name := range flags {
		f := fs.Lookup(name)
		if f == nil {
			return fmt.Errorf("flag %q is not registered", name)
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("bind flag %s: %w", name, err)
		}
		if err := v.BindEnv(key, env[key]); err != nil {
			return fmt.Errorf("bind env %s: %w", env[key], err)
		}
	}
	return nil
}

// readConfigFile merges the JSON file named by the config option, if it
// exists. A missing file is only an error when it was asked for explicitly.
func readConfigFile(v *viper.Viper, fs *pflag.FlagSet) error {
	path := v.GetString(KeyConfig)
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) && !fs.Changed(KeyConfig) {
			return nil
		}
		return fmt.Errorf("error while reading config file: %w", err)
	}
	v.SetConfigFile(path)
	v.SetConfigType("json")
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("error while parsing config file: %w", err)
	}
	return nil
}
