package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// EnvPrefix is prepended to every environment override.
const EnvPrefix = "THYROCHECK_"

// LookupFunc reads one environment variable.
type LookupFunc func(key string) (string, bool)

// EnvLookup returns a lookup that prefers the process environment and falls
// back to root/.env. A missing .env file is not an error.
func EnvLookup(root string) (LookupFunc, error) {
	path := filepath.Join(root, EnvFileName)
	values := map[string]string{}
	if _, err := os.Stat(path); err == nil {
		read, err := godotenv.Read(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		values = read
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	return func(key string) (string, bool) {
		if value, ok := os.LookupEnv(key); ok {
			return value, true
		}
		value, ok := values[key]
		return value, ok
	}, nil
}

type envBinding struct {
	key   string
	apply func(cfg *Config, value string) error
}

var envBindings = []envBinding{
	{"FLOW", func(cfg *Config, v string) error { cfg.Flow.Path = v; return nil }},
	{"THINKING_DELAY", func(cfg *Config, v string) error {
		d, err := time.ParseDuration(v)
		if err != nil {
			return err
		}
		cfg.Chat.ThinkingDelay = d
		return nil
	}},
	{"UI_MODE", func(cfg *Config, v string) error { cfg.UI.Mode = v; return nil }},
	{"NO_COLOR", func(cfg *Config, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return err
		}
		cfg.UI.NoColor = b
		return nil
	}},
	{"SERVER_ADDR", func(cfg *Config, v string) error { cfg.Server.Addr = v; return nil }},
	{"REPORT_DIR", func(cfg *Config, v string) error { cfg.Report.OutputDir = v; return nil }},
	{"REPORT_FORMAT", func(cfg *Config, v string) error { cfg.Report.Format = v; return nil }},
	{"LOG_LEVEL", func(cfg *Config, v string) error { cfg.Log.Level = v; return nil }},
	{"LOG_FORMAT", func(cfg *Config, v string) error { cfg.Log.Format = v; return nil }},
	{"LOG_FILE", func(cfg *Config, v string) error { cfg.Log.File = v; return nil }},
}

// ApplyEnv overrides cfg from THYROCHECK_* variables. Values that fail to
// parse are reported together.
func ApplyEnv(cfg *Config, lookup LookupFunc) error {
	if lookup == nil {
		return nil
	}
	collector := &issueCollector{}
	for _, binding := range envBindings {
		key := EnvPrefix + binding.key
		value, ok := lookup(key)
		if !ok {
			continue
		}
		if err := binding.apply(cfg, strings.TrimSpace(value)); err != nil {
			collector.add(key, err.Error())
		}
	}
	return collector.result()
}
