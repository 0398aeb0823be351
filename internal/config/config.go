package config

import (
	"fmt"
	"os"
	"strconv"

	"abalone/domain/core"
	"abalone/domain/dataset"
	"abalone/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Data     DataConfig
	Analysis AnalysisConfig
	Output   OutputConfig
}

// DataConfig holds input settings
type DataConfig struct {
	Path string `validate:"required"`
}

// AnalysisConfig holds resampling sizes and procedure parameters
type AnalysisConfig struct {
	Seed                 uint64           `json:"seed"`
	BootstrapSamples     int              `json:"bootstrap_samples"`
	InnerSamples         int              `json:"inner_samples"`
	TestSamples          int              `json:"test_samples"`
	InterceptSamples     int              `json:"intercept_samples"`
	ConfidenceLevel      float64          `json:"confidence_level"`
	CVFolds              int              `json:"cv_folds"`
	SelectionTolerance   float64          `json:"selection_tolerance"`
	OutlierField         core.VariableKey `json:"outlier_field"`
	OutlierIQRMultiplier float64          `json:"outlier_iqr_multiplier"`
	Workers              int              `json:"-"` // excluded from run fingerprints
}

// OutputConfig holds report and log destinations
type OutputConfig struct {
	ReportDir string
	LogFile   string
}

// DefaultAnalysisConfig returns the standard analysis parameters
func DefaultAnalysisConfig() AnalysisConfig {
	return AnalysisConfig{
		Seed:                 1,
		BootstrapSamples:     10000,
		InnerSamples:         100,
		TestSamples:          1000,
		InterceptSamples:     1000,
		ConfidenceLevel:      0.95,
		CVFolds:              10,
		SelectionTolerance:   0,
		OutlierField:         dataset.Height,
		OutlierIQRMultiplier: 1.5,
		Workers:              4,
	}
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{}

	dataConfig, err := loadDataConfig()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load data configuration")
	}
	config.Data = *dataConfig

	analysisConfig, err := loadAnalysisConfig()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load analysis configuration")
	}
	config.Analysis = *analysisConfig

	config.Output = *loadOutputConfig()

	if err := config.Analysis.Validate(); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadDataConfig() (*DataConfig, error) {
	path := os.Getenv("ABALONE_DATA")
	if path == "" {
		return nil, errors.ConfigInvalid("ABALONE_DATA is required")
	}
	return &DataConfig{Path: path}, nil
}

func loadAnalysisConfig() (*AnalysisConfig, error) {
	def := DefaultAnalysisConfig()
	cfg := &AnalysisConfig{}
	var err error

	if cfg.Seed, err = getEnvUintOrDefault("ANALYSIS_SEED", def.Seed); err != nil {
		return nil, err
	}
	if cfg.BootstrapSamples, err = getEnvIntOrDefault("BOOTSTRAP_SAMPLES", def.BootstrapSamples); err != nil {
		return nil, err
	}
	if cfg.InnerSamples, err = getEnvIntOrDefault("BOOTSTRAP_INNER_SAMPLES", def.InnerSamples); err != nil {
		return nil, err
	}
	if cfg.TestSamples, err = getEnvIntOrDefault("TEST_SAMPLES", def.TestSamples); err != nil {
		return nil, err
	}
	if cfg.InterceptSamples, err = getEnvIntOrDefault("INTERCEPT_SAMPLES", def.InterceptSamples); err != nil {
		return nil, err
	}
	if cfg.ConfidenceLevel, err = getEnvFloatOrDefault("CONFIDENCE_LEVEL", def.ConfidenceLevel); err != nil {
		return nil, err
	}
	if cfg.CVFolds, err = getEnvIntOrDefault("CV_FOLDS", def.CVFolds); err != nil {
		return nil, err
	}
	if cfg.SelectionTolerance, err = getEnvFloatOrDefault("SELECTION_TOLERANCE", def.SelectionTolerance); err != nil {
		return nil, err
	}
	if cfg.OutlierIQRMultiplier, err = getEnvFloatOrDefault("OUTLIER_IQR_MULTIPLIER", def.OutlierIQRMultiplier); err != nil {
		return nil, err
	}
	if cfg.Workers, err = getEnvIntOrDefault("ANALYSIS_WORKERS", def.Workers); err != nil {
		return nil, err
	}

	field, err := core.ParseVariableKey(getEnvOrDefault("OUTLIER_FIELD", string(def.OutlierField)))
	if err != nil {
		return nil, errors.WithCode(errors.CodeConfigInvalid, err)
	}
	cfg.OutlierField = field

	return cfg, nil
}

func loadOutputConfig() *OutputConfig {
	return &OutputConfig{
		ReportDir: getEnvOrDefault("REPORT_DIR", ""),
		LogFile:   getEnvOrDefault("LOG_FILE", ""),
	}
}

// Validate checks that every parameter is usable
func (c AnalysisConfig) Validate() error {
	counts := []struct {
		name  string
		value int
		min   int
	}{
		{"BOOTSTRAP_SAMPLES", c.BootstrapSamples, 2},
		{"BOOTSTRAP_INNER_SAMPLES", c.InnerSamples, 2},
		{"TEST_SAMPLES", c.TestSamples, 1},
		{"INTERCEPT_SAMPLES", c.InterceptSamples, 2},
		{"CV_FOLDS", c.CVFolds, 2},
		{"ANALYSIS_WORKERS", c.Workers, 1},
	}
	for _, cnt := range counts {
		if cnt.value < cnt.min {
			return errors.ConfigInvalid(fmt.Sprintf("%s must be at least %d, got %d", cnt.name, cnt.min, cnt.value))
		}
	}

	if c.ConfidenceLevel <= 0 || c.ConfidenceLevel >= 1 {
		return errors.ConfigInvalid(fmt.Sprintf("CONFIDENCE_LEVEL must be in (0, 1), got %v", c.ConfidenceLevel))
	}
	if c.SelectionTolerance < 0 {
		return errors.ConfigInvalid(fmt.Sprintf("SELECTION_TOLERANCE must be non-negative, got %v", c.SelectionTolerance))
	}
	if c.OutlierIQRMultiplier <= 0 {
		return errors.ConfigInvalid(fmt.Sprintf("OUTLIER_IQR_MULTIPLIER must be positive, got %v", c.OutlierIQRMultiplier))
	}

	known := false
	for _, key := range dataset.Measurements() {
		if key == c.OutlierField {
			known = true
		}
	}
	if !known {
		return errors.ConfigInvalid(fmt.Sprintf("OUTLIER_FIELD %q is not a shell measurement", c.OutlierField))
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		return 0, errors.ConfigInvalid(fmt.Sprintf("%s must be an integer, got %q", key, value))
	}
	return intValue, nil
}

func getEnvUintOrDefault(key string, defaultValue uint64) (uint64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	uintValue, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, errors.ConfigInvalid(fmt.Sprintf("%s must be a non-negative integer, got %q", key, value))
	}
	return uintValue, nil
}

func getEnvFloatOrDefault(key string, defaultValue float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	floatValue, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, errors.ConfigInvalid(fmt.Sprintf("%s must be a number, got %q", key, value))
	}
	return floatValue, nil
}
