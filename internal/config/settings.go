package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Default settings.
const (
	DefaultInputPath    = "data/a2-data.csv"
	DefaultOutputPath   = "output.csv"
	DefaultOutputFormat = "csv"
	DefaultLogLevel     = "info"
	DefaultLogFormat    = "human"
	DefaultEnvFile      = ".env"
)

// Environment variables read by ApplyEnv.
const (
	EnvInput     = "SPF_INPUT"
	EnvOutput    = "SPF_OUTPUT"
	EnvFormat    = "SPF_FORMAT"
	EnvWhere     = "SPF_WHERE"
	EnvLogLevel  = "SPF_LOG_LEVEL"
	EnvLogFormat = "SPF_LOG_FORMAT"
	EnvLogFile   = "SPF_LOG_FILE"
)

// Settings holds the resolved configuration for one run.
type Settings struct {
	InputPath    string
	OutputPath   string
	OutputFormat string
	// Where is an optional record pre-filter expression
	Where     string
	LogLevel  string
	LogFormat string
	// LogFile, when set, receives JSON logs in addition to the console
	LogFile string
}

// Defaults returns the built-in settings.
func Defaults() Settings {
	return Settings{
		InputPath:    DefaultInputPath,
		OutputPath:   DefaultOutputPath,
		OutputFormat: DefaultOutputFormat,
		LogLevel:     DefaultLogLevel,
		LogFormat:    DefaultLogFormat,
	}
}

// ApplyData overlays values from a parsed and validated configuration file.
func (s *Settings) ApplyData(data map[string]interface{}) {
	setString(&s.InputPath, data, "input", "path")
	setString(&s.OutputPath, data, "output", "path")
	setString(&s.OutputFormat, data, "output", "format")
	setString(&s.Where, data, "filter", "where")
	setString(&s.LogLevel, data, "logging", "level")
	setString(&s.LogFormat, data, "logging", "format")
	setString(&s.LogFile, data, "logging", "file")
}

func setString(dst *string, data map[string]interface{}, section, key string) {
	sec, ok := data[section].(map[string]interface{})
	if !ok {
		return
	}
	if v, ok := sec[key].(string); ok {
		*dst = v
	}
}

// ApplyEnv overlays non-empty values from the environment.
func (s *Settings) ApplyEnv(lookup func(string) (string, bool)) {
	for env, dst := range map[string]*string{
		EnvInput:     &s.InputPath,
		EnvOutput:    &s.OutputPath,
		EnvFormat:    &s.OutputFormat,
		EnvWhere:     &s.Where,
		EnvLogLevel:  &s.LogLevel,
		EnvLogFormat: &s.LogFormat,
		EnvLogFile:   &s.LogFile,
	} {
		if v, ok := lookup(env); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
}

// LoadEnvFile loads variables from a .env file into the process
// environment without overriding variables that are already set.
// A missing file is not an error.
func LoadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// Load resolves settings from defaults, the optional configuration file
// and the environment (after loading envFile). The returned Result is nil
// when no configuration file was given; callers must check IsValid
// otherwise.
func Load(configPath, envFile string) (Settings, *Result, error) {
	settings := Defaults()

	var result *Result
	if configPath != "" {
		result = ParseFile(configPath)
		if !result.IsValid() {
			return settings, result, nil
		}
		settings.ApplyData(result.Data)
	}

	if envFile != "" {
		if err := LoadEnvFile(envFile); err != nil {
			return settings, result, err
		}
	}
	settings.ApplyEnv(os.LookupEnv)

	return settings, result, nil
}
