package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// DotEnvFile is read from the working directory when present.
const DotEnvFile = ".env"

// Defaults seed the form, the CLI flags, and the server. Flags win over
// environment values.
type Defaults struct {
	Required float64 `env:"BUNK_REQUIRED" envDefault:"75"`
	Present  int     `env:"BUNK_PRESENT" envDefault:"30"`
	Total    int     `env:"BUNK_TOTAL" envDefault:"40"`
	Addr     string  `env:"BUNK_ADDR" envDefault:":8080"`
	Project  string  `env:"BUNK_PROJECT"`
	OutDir   string  `env:"BUNK_OUT_DIR"`
	Timezone string  `env:"BUNK_TIMEZONE" envDefault:"UTC"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// LoadDefaults reads the process environment layered over any dotenv files
// given. Missing files are skipped. Process variables win.
func LoadDefaults(dotenv ...string) (Defaults, error) {
	merged, err := readDotEnv(dotenv)
	if err != nil {
		return Defaults{}, err
	}
	var d Defaults
	if len(merged) == 0 {
		if err := ParseEnv(&d); err != nil {
			return Defaults{}, err
		}
		return d, nil
	}
	for _, kv := range os.Environ() {
		key, value, ok := strings.Cut(kv, "=")
		if ok {
			merged[key] = value
		}
	}
	if err := env.ParseWithOptions(&d, env.Options{Environment: merged}); err != nil {
		return Defaults{}, fmt.Errorf("parse env: %w", err)
	}
	return d, nil
}

func readDotEnv(paths []string) (map[string]string, error) {
	merged := map[string]string{}
	for _, path := range paths {
		values, err := godotenv.Read(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		for k, v := range values {
			merged[k] = v
		}
	}
	return merged, nil
}
