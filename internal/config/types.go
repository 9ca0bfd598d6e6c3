package config

import "time"

// Config is the application configuration file.
type Config struct {
	Version int          `yaml:"version"`
	Flow    FlowConfig   `yaml:"flow"`
	Chat    ChatConfig   `yaml:"chat"`
	UI      UIConfig     `yaml:"ui"`
	Server  ServerConfig `yaml:"server"`
	Report  ReportConfig `yaml:"report"`
	Log     LogConfig    `yaml:"log"`
}

// FlowConfig selects the questionnaire. An empty path means the built-in flow.
type FlowConfig struct {
	Path string `yaml:"path"`
}

type ChatConfig struct {
	ThinkingDelay time.Duration `yaml:"thinking_delay"`
}

type UIConfig struct {
	Mode    string `yaml:"mode"`
	NoColor bool   `yaml:"no_color"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type ReportConfig struct {
	OutputDir string `yaml:"output_dir"`
	Format    string `yaml:"format"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

// Defaults used when the file or a field is absent.
const (
	DefaultThinkingDelay = 500 * time.Millisecond
	DefaultUIMode        = "auto"
	DefaultServerAddr    = "127.0.0.1:8080"
	DefaultReportDir     = "."
	DefaultReportFormat  = "html"
	DefaultLogLevel      = "info"
	DefaultLogFormat     = "text"
)

// Default returns the configuration used without a config file.
func Default() Config {
	return Config{
		Version: 1,
		Chat:    ChatConfig{ThinkingDelay: DefaultThinkingDelay},
		UI:      UIConfig{Mode: DefaultUIMode},
		Server:  ServerConfig{Addr: DefaultServerAddr},
		Report:  ReportConfig{OutputDir: DefaultReportDir, Format: DefaultReportFormat},
		Log:     LogConfig{Level: DefaultLogLevel, Format: DefaultLogFormat},
	}
}
