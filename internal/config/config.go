package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config is the server configuration, read from the environment after an
// optional .env file.
type Config struct {
	Addr        string
	TLSCert     string // TLS is off when cert or key is empty
	TLSKey      string
	TokenKey    []byte
	DatabaseURL string
	RateLimit   float64 // requests per second per IP on /api
	RateBurst   int
	LogLevel    string
	Env         string
}

// Load reads files (".env" when none given) and then the environment.
// Missing files are not an error; variables already set win over the files.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}

	c := Config{
		Addr:        getenv("ADDR", ":8443"),
		TLSCert:     os.Getenv("TLS_CERT"),
		TLSKey:      os.Getenv("TLS_KEY"),
		TokenKey:    []byte(os.Getenv("TOKEN_KEY")),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		LogLevel:    getenv("LOG_LEVEL", "info"),
		Env:         getenv("ENV", "development"),
	}
	if len(c.TokenKey) == 0 {
		return Config{}, errors.New("TOKEN_KEY environment variable is not set")
	}

	var err error
	if c.RateLimit, err = strconv.ParseFloat(getenv("RATE_LIMIT", "1"), 64); err != nil {
		return Config{}, fmt.Errorf("RATE_LIMIT: %w", err)
	}
	if c.RateBurst, err = strconv.Atoi(getenv("RATE_BURST", "3")); err != nil {
		return Config{}, fmt.Errorf("RATE_BURST: %w", err)
	}
	if c.RateLimit <= 0 || c.RateBurst <= 0 {
		return Config{}, errors.New("RATE_LIMIT and RATE_BURST must be positive")
	}
	return c, nil
}

func (c Config) TLS() bool { return c.TLSCert != "" && c.TLSKey != "" }

func getenv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}
