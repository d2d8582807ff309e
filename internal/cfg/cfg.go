package cfg

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"impact-eval/internal/common"
	"impact-eval/internal/impact"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

type Settings struct {
	DataPath         string
	Format           string
	StorePath        string
	Dataset          string
	RiseLabel        string
	FallLabel        string
	ShowFallAccuracy bool
	OutputFormat     string
	LogLevel         string
	MetricsFile      string
	HTTPTimeout      time.Duration
}

type ConfigFile struct {
	Data struct {
		Path      string `yaml:"path"`
		Format    string `yaml:"format"`
		StorePath string `yaml:"storePath"`
		Dataset   string `yaml:"dataset"`
		Timeout   string `yaml:"timeout"`
	} `yaml:"data"`

	Labels struct {
		Rise string `yaml:"rise"`
		Fall string `yaml:"fall"`
	} `yaml:"labels"`

	Report struct {
		Format           string `yaml:"format"`
		ShowFallAccuracy bool   `yaml:"showFallAccuracy"`
	} `yaml:"report"`

	System struct {
		LogLevel    string `yaml:"logLevel"`
		MetricsFile string `yaml:"metricsFile"`
	} `yaml:"system"`
}

// Labels returns the configured directional labels.
func (s Settings) Labels() impact.Labels {
	return impact.Labels{Rise: s.RiseLabel, Fall: s.FallLabel}
}

// Load reads settings from the YAML file named by CONFIG_FILE, or from the
// environment when it is unset. A .env file in the working directory is
// loaded first if present; real environment variables win over it.
func Load() (Settings, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warn().Err(err).Msg("Failed to parse .env file")
	}

	if configPath := os.Getenv(common.EnvConfigFile); configPath != "" {
		return loadFromYAML(configPath)
	}

	return loadFromEnv()
}

func loadFromYAML(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var config ConfigFile
	if err := yaml.Unmarshal(data, &config); err != nil {
		return Settings{}, fmt.Errorf("failed to parse config file: %w", err)
	}

	timeout, err := time.ParseDuration(config.Data.Timeout)
	if err != nil {
		timeout = 10 * time.Second
	}

	settings := Settings{
		DataPath:         getEnvOrDefault(common.EnvDataPath, orDefault(config.Data.Path, common.DefaultDataPath)),
		Format:           getEnvOrDefault(common.EnvDataFormat, orDefault(config.Data.Format, common.DefaultDataFormat)),
		StorePath:        getEnvOrDefault(common.EnvStorePath, orDefault(config.Data.StorePath, common.DefaultStorePath)),
		Dataset:          getEnvOrDefault(common.EnvDataset, orDefault(config.Data.Dataset, common.DefaultDataset)),
		RiseLabel:        getEnvOrDefault(common.EnvRiseLabel, orDefault(config.Labels.Rise, common.LabelRise)),
		FallLabel:        getEnvOrDefault(common.EnvFallLabel, orDefault(config.Labels.Fall, common.LabelFall)),
		ShowFallAccuracy: getBoolOrDefault(common.EnvShowFallAccuracy, config.Report.ShowFallAccuracy),
		OutputFormat:     getEnvOrDefault(common.EnvOutputFormat, orDefault(config.Report.Format, common.DefaultOutputFormat)),
		LogLevel:         getEnvOrDefault(common.EnvLogLevel, orDefault(config.System.LogLevel, common.DefaultLogLevel)),
		MetricsFile:      getEnvOrDefault(common.EnvMetricsFile, config.System.MetricsFile),
		HTTPTimeout:      getDurationOrDefault(common.EnvHTTPTimeout, timeout),
	}

	if err := validateSettings(&settings); err != nil {
		return Settings{}, fmt.Errorf("configuration validation failed: %w", err)
	}

	return settings, nil
}

func loadFromEnv() (Settings, error) {
	settings := Settings{
		DataPath:         getEnvOrDefault(common.EnvDataPath, common.DefaultDataPath),
		Format:           getEnvOrDefault(common.EnvDataFormat, common.DefaultDataFormat),
		StorePath:        getEnvOrDefault(common.EnvStorePath, common.DefaultStorePath),
		Dataset:          getEnvOrDefault(common.EnvDataset, common.DefaultDataset),
		RiseLabel:        getEnvOrDefault(common.EnvRiseLabel, common.LabelRise),
		FallLabel:        getEnvOrDefault(common.EnvFallLabel, common.LabelFall),
		ShowFallAccuracy: getBoolOrDefault(common.EnvShowFallAccuracy, false),
		OutputFormat:     getEnvOrDefault(common.EnvOutputFormat, common.DefaultOutputFormat),
		LogLevel:         getEnvOrDefault(common.EnvLogLevel, common.DefaultLogLevel),
		MetricsFile:      os.Getenv(common.EnvMetricsFile), // optional
		HTTPTimeout:      getDurationOrDefault(common.EnvHTTPTimeout, 10*time.Second),
	}

	if err := validateSettings(&settings); err != nil {
		return Settings{}, fmt.Errorf("configuration validation failed: %w", err)
	}

	return settings, nil
}

// Validate checks settings after command line overrides have been applied.
func (s *Settings) Validate() error {
	return validateSettings(s)
}

func getEnvOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultValue
}

func getBoolOrDefault(key string, defaultValue bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return defaultValue
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// validateSettings performs validation of configuration values
func validateSettings(settings *Settings) error {
	if settings.DataPath == "" {
		return fmt.Errorf("data path cannot be empty")
	}

	switch settings.Format {
	case common.FormatAuto, common.FormatJSON, common.FormatURL, common.FormatBoltDB:
	default:
		return fmt.Errorf("data format must be one of auto, json, url, boltdb, got %q", settings.Format)
	}

	if settings.Format == common.FormatBoltDB && settings.Dataset == "" {
		return fmt.Errorf("dataset name is required for boltdb format")
	}

	if settings.RiseLabel == "" || settings.FallLabel == "" {
		return errors.New(common.ErrMsgLabelsRequired)
	}
	if settings.RiseLabel == settings.FallLabel {
		return errors.New(common.ErrMsgLabelsDistinct)
	}

	switch settings.OutputFormat {
	case common.OutputText, common.OutputJSON:
	default:
		return fmt.Errorf("output format must be text or json, got %q", settings.OutputFormat)
	}

	if settings.HTTPTimeout < time.Second || settings.HTTPTimeout > 5*time.Minute {
		return fmt.Errorf("HTTP timeout must be between 1s and 5m, got %v", settings.HTTPTimeout)
	}

	return nil
}
