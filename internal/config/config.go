package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Generator providers.
const (
	ProviderCommand   = "command"
	ProviderOllama    = "ollama"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderBedrock   = "bedrock"
)

// DefaultFile is the config file looked up in the working directory.
const DefaultFile = "postcraft.yaml"

// Config holds all configuration values.
type Config struct {
	Paths     Paths     `yaml:"paths"`
	Defaults  Defaults  `yaml:"defaults"`
	Generator Generator `yaml:"generator"`
	Analysis  Analysis  `yaml:"analysis"`
	Convert   Convert   `yaml:"convert"`
	Logging   Logging   `yaml:"logging"`

	// LogLevel is parsed from Logging.Level.
	LogLevel slog.Level `yaml:"-"`
}

// Paths are the directories and files postcraft reads and writes.
type Paths struct {
	Examples    string `yaml:"examples"`
	Inspiration string `yaml:"inspiration"`
	Contexts    string `yaml:"contexts"`
	Output      string `yaml:"output"`
	StyleGuide  string `yaml:"style_guide"`
	Cache       string `yaml:"cache"`
}

// Defaults apply to manual-mode prompts and conversion.
type Defaults struct {
	TargetAudience string `yaml:"target_audience"`
	ToneGuidance   string `yaml:"tone_guidance"`
	MaxLength      int    `yaml:"max_length"`
	// Timezone is the label stamped on converted records.
	Timezone string `yaml:"timezone"`
	// ScheduleTimezone is the IANA zone cron schedules run in.
	ScheduleTimezone string `yaml:"schedule_timezone"`
}

// ScheduleLocation returns the zone name for the scheduler: ScheduleTimezone when set,
// else Timezone when it is a loadable zone, else "" for local time.
func (d Defaults) ScheduleLocation() string {
	if d.ScheduleTimezone != "" {
		return d.ScheduleTimezone
	}
	if d.Timezone == "" {
		return ""
	}
	if _, err := time.LoadLocation(d.Timezone); err != nil {
		slog.Debug("record timezone is not a zone name, scheduling in local time", "timezone", d.Timezone)
		return ""
	}
	return d.Timezone
}

// Generator selects and configures the text generation backend.
type Generator struct {
	Provider        string        `yaml:"provider"`
	Command         string        `yaml:"command"`
	Args            []string      `yaml:"args"`
	Model           string        `yaml:"model"`
	Host            string        `yaml:"host"`
	OpenAIAPIKey    string        `yaml:"openai_api_key"`
	AnthropicAPIKey string        `yaml:"anthropic_api_key"`
	Region          string        `yaml:"region"`
	Timeout         time.Duration `yaml:"timeout"`
	LogExchanges    bool          `yaml:"log_exchanges"`
}

// Analysis holds the sample thresholds for the analyzers.
type Analysis struct {
	MinSamples        int `yaml:"min_samples"`
	InsightMinSamples int `yaml:"insight_min_samples"`
	TopN              int `yaml:"top_n"`
}

// Convert configures spreadsheet conversion.
type Convert struct {
	ExtractImages bool `yaml:"extract_images"`
}

// Logging configures the log file and level.
type Logging struct {
	File  string `yaml:"file"`
	Level string `yaml:"level"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Paths: Paths{
			Examples:    "examples",
			Inspiration: "inspiration",
			Contexts:    "contexts",
			Output:      "drafts",
			StyleGuide:  "style_guide.md",
			Cache:       ".postcraft",
		},
		Defaults: Defaults{
			TargetAudience: "professional audience",
			ToneGuidance:   "professional",
			MaxLength:      1300,
			Timezone:       "EET",
		},
		Generator: Generator{
			Provider: ProviderCommand,
			Command:  "claude",
			Args:     []string{"-p"},
			Host:     "http://localhost:11434",
			Region:   "us-east-1",
			Timeout:  5 * time.Minute,
		},
		Analysis: Analysis{
			MinSamples:        5,
			InsightMinSamples: 3,
			TopN:              5,
		},
		Convert: Convert{ExtractImages: true},
		Logging: Logging{
			File:  "/tmp/postcraft.log",
			Level: "INFO",
		},
		LogLevel: slog.LevelInfo,
	}
}

// Path resolves the config file: the explicit path, then POSTCRAFT_CONFIG, then DefaultFile.
func Path(explicit string) string {
	if explicit != "" {
		return explicit
	}
	return getEnv("POSTCRAFT_CONFIG", DefaultFile)
}

// Load reads the YAML config at path over the defaults, then applies environment overrides.
// A missing file is not an error unless strict is set.
func Load(path string, strict bool) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !strict:
		slog.Debug("no config file, using defaults", "path", path)
	default:
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	applyEnv(&cfg)
	cfg.LogLevel = parseLogLevel(cfg.Logging.Level)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	g := &cfg.Generator
	g.Provider = getEnv("POSTCRAFT_PROVIDER", g.Provider)
	g.Command = getEnv("POSTCRAFT_COMMAND", g.Command)
	g.Model = getEnv("POSTCRAFT_MODEL", g.Model)
	g.Host = getEnv("OLLAMA_HOST", g.Host)
	g.OpenAIAPIKey = getEnv("OPENAI_API_KEY", g.OpenAIAPIKey)
	g.AnthropicAPIKey = getEnv("ANTHROPIC_API_KEY", g.AnthropicAPIKey)
	g.Region = getEnv("AWS_REGION", g.Region)
	if d, err := time.ParseDuration(getEnv("POSTCRAFT_TIMEOUT", "")); err == nil {
		g.Timeout = d
	}
	if b, err := strconv.ParseBool(getEnv("POSTCRAFT_LOG_EXCHANGES", "")); err == nil {
		g.LogExchanges = b
	}

	cfg.Paths.Examples = getEnv("POSTCRAFT_EXAMPLES_DIR", cfg.Paths.Examples)
	cfg.Paths.Output = getEnv("POSTCRAFT_OUTPUT_DIR", cfg.Paths.Output)
	cfg.Defaults.Timezone = getEnv("POSTCRAFT_TIMEZONE", cfg.Defaults.Timezone)
	cfg.Defaults.ScheduleTimezone = getEnv("POSTCRAFT_SCHEDULE_TIMEZONE", cfg.Defaults.ScheduleTimezone)

	cfg.Logging.File = getEnv("POSTCRAFT_LOG_FILE", cfg.Logging.File)
	cfg.Logging.Level = getEnv("POSTCRAFT_LOG_LEVEL", cfg.Logging.Level)
}

// Validate checks values that would otherwise fail deep inside a command.
func (c Config) Validate() error {
	switch c.Generator.Provider {
	case ProviderCommand:
		if c.Generator.Command == "" {
			return fmt.Errorf("generator.command is required for the command provider")
		}
	case ProviderOllama, ProviderOpenAI, ProviderAnthropic, ProviderBedrock:
	default:
		return fmt.Errorf("unsupported generator provider: %s", c.Generator.Provider)
	}
	if c.Generator.Timeout < 0 {
		return fmt.Errorf("generator.timeout must not be negative")
	}
	if c.Defaults.MaxLength <= 0 {
		return fmt.Errorf("defaults.max_length must be positive")
	}
	if c.Analysis.MinSamples < 1 || c.Analysis.InsightMinSamples < 1 {
		return fmt.Errorf("analysis sample thresholds must be at least 1")
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
