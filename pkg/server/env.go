package server

import (
	stderrors "errors"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

// Environment variables read by the server.
const (
	EnvAddr     = "STRATUM_ADDR"
	EnvRedisURL = "STRATUM_REDIS_URL"
)

// LoadEnv loads .env style files into the process environment. Variables
// that are already set win, and missing files are skipped. With no
// arguments ".env" in the working directory is loaded.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !stderrors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}

// ApplyEnv overrides c with values from the environment.
func (c Config) ApplyEnv() Config {
	if addr := os.Getenv(EnvAddr); addr != "" {
		c.Addr = addr
	}
	return c
}

// RedisURL returns the Redis URL from the environment, or "" when unset.
func RedisURL() string { return os.Getenv(EnvRedisURL) }
