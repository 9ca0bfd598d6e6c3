package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const defaultConfig = `version: 1

flow:
  # Path to a YAML or JSON flow file. Leave empty for the built-in questionnaire.
  path: ""

chat:
  thinking_delay: 500ms

ui:
  # auto picks live on a terminal and plain otherwise.
  mode: auto
  no_color: false

server:
  addr: "127.0.0.1:8080"

report:
  output_dir: "./thyroid-reports"
  # text, json, or html
  format: html

log:
  level: info
  format: text
  # The live UI owns the terminal; set a file to keep its logs.
  file: ""
`

const defaultEnv = `# Environment overrides, loaded before THYROCHECK_* variables from the shell.
# THYROCHECK_THINKING_DELAY=500ms
# THYROCHECK_UI_MODE=plain
# THYROCHECK_SERVER_ADDR=127.0.0.1:8080
`

// Scaffold writes a commented config file at configPath and an example .env
// next to the config directory. Existing files are never overwritten.
func Scaffold(configPath string) error {
	if configPath == "" {
		return fmt.Errorf("config path is required")
	}
	if err := ensureAbsent(configPath); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := os.WriteFile(configPath, []byte(defaultConfig), 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	envPath := filepath.Join(RootFromConfigPath(configPath), EnvFileName+".example")
	if _, err := os.Stat(envPath); os.IsNotExist(err) {
		if err := os.WriteFile(envPath, []byte(defaultEnv), 0o644); err != nil {
			return fmt.Errorf("write env example: %w", err)
		}
	}
	return nil
}

func ensureAbsent(path string) error {
	info, err := os.Stat(path)
	if err == nil {
		if info.IsDir() {
			return fmt.Errorf("config path %q is a directory", path)
		}
		return fmt.Errorf("config file already exists at %q", path)
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}
	return nil
}
