// Package config loads signature-redactor settings from YAML and the
// environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/ironsheep/signature-redactor/internal/detection"
	"github.com/ironsheep/signature-redactor/internal/imaging"
	"github.com/ironsheep/signature-redactor/internal/vision"
)

// Config holds all settings for one run.
type Config struct {
	Detection detection.Params      `yaml:"detection"`
	Redact    imaging.RedactOptions `yaml:"redact"`
	Vision    vision.Config         `yaml:"vision"`
	OCR       OCRConfig             `yaml:"ocr"`
	Output    OutputConfig          `yaml:"output"`
	Logging   LoggingConfig         `yaml:"logging"`
}

// OCRConfig enables the Tesseract date check on top of the geometric rules.
type OCRConfig struct {
	Enabled  bool    `yaml:"enabled"`
	Language string  `yaml:"language"`
	Penalty  float64 `yaml:"penalty"`
}

// OutputConfig controls where result images are written.
type OutputConfig struct {
	// Dir holds masked.png, detected.png and quick.png. Empty means the
	// working directory.
	Dir string `yaml:"dir"`
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	// Level is debug, info, warn or error.
	Level string `yaml:"level"`
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	return &Config{
		Detection: detection.DefaultParams(),
		Redact:    imaging.DefaultRedactOptions(),
		Vision:    vision.DefaultConfig(),
		OCR: OCRConfig{
			Enabled:  false,
			Language: "eng",
			Penalty:  40,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from a YAML file and applies environment
// overrides. An empty path or a missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		case errors.Is(err, os.ErrNotExist):
			// defaults
		default:
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save writes the configuration to a YAML file.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	// Vision API key, provider-specific names first
	if key := os.Getenv("GLM_API_KEY"); key != "" {
		c.Vision.APIKey = key
		c.Vision.Provider = vision.ProviderGLM
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.Vision.APIKey = key
		c.Vision.Provider = vision.ProviderGemini
	}
	if key := os.Getenv("SIGNATURE_VISION_API_KEY"); key != "" {
		c.Vision.APIKey = key
	}
	if p := os.Getenv("SIGNATURE_VISION_PROVIDER"); p != "" {
		c.Vision.Provider = strings.ToLower(p)
	}

	if level := os.Getenv("SIGNATURE_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	d := c.Detection

	if err := validateThreshold("detection.threshold", d.Threshold); err != nil {
		return err
	}
	if err := validateThreshold("detection.refine.threshold", d.Refine.Threshold); err != nil {
		return err
	}

	p := d.Proposer
	if p.KernelWidth < 1 || p.KernelHeight < 1 {
		return fmt.Errorf("detection.proposer: kernel must be positive, got %dx%d", p.KernelWidth, p.KernelHeight)
	}
	if p.Iterations < 0 {
		return fmt.Errorf("detection.proposer.iterations must not be negative")
	}
	if p.MinWidth < 0 || p.MinHeight < 0 || p.MinArea < 0 {
		return fmt.Errorf("detection.proposer: minimum sizes must not be negative")
	}
	if p.MaxAreaFraction <= 0 || p.MaxAreaFraction > 1 {
		return fmt.Errorf("detection.proposer.max_area_fraction must be in (0, 1], got %g", p.MaxAreaFraction)
	}

	r := d.Refine
	if r.CloseWidth < 1 || r.CloseHeight < 1 {
		return fmt.Errorf("detection.refine: close kernel must be positive, got %dx%d", r.CloseWidth, r.CloseHeight)
	}
	if r.Padding < 0 {
		return fmt.Errorf("detection.refine.padding must not be negative")
	}

	if _, err := detection.ParseTieBreak(string(d.TieBreak)); err != nil {
		return fmt.Errorf("detection.tie_break: %w", err)
	}

	mode, err := imaging.ParseRedactMode(string(c.Redact.Mode))
	if err != nil {
		return fmt.Errorf("redact.mode: %w", err)
	}
	if c.Redact.Factor < 1 {
		return fmt.Errorf("redact.factor must be at least 1, got %d", c.Redact.Factor)
	}
	if mode == imaging.RedactBlack {
		if _, err := imaging.ParseHexColor(c.Redact.FillColor); err != nil {
			return fmt.Errorf("redact.fill_color: %w", err)
		}
	}

	switch strings.ToLower(c.Vision.Provider) {
	case "", vision.ProviderNone, vision.ProviderGLM, vision.ProviderGemini:
	default:
		return fmt.Errorf("vision.provider: unknown provider %q", c.Vision.Provider)
	}
	if c.Vision.Timeout < 0 {
		return fmt.Errorf("vision.timeout must not be negative")
	}

	if c.OCR.Enabled && c.OCR.Penalty < 0 {
		return fmt.Errorf("ocr.penalty must not be negative")
	}

	if _, err := zapcore.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	return nil
}

func validateThreshold(field string, t imaging.ThresholdParams) error {
	switch t.Method {
	case imaging.ThresholdMean, imaging.ThresholdGaussian:
	default:
		return fmt.Errorf("%s.method: unknown method %q", field, t.Method)
	}
	if t.BlockSize < 3 || t.BlockSize%2 == 0 {
		return fmt.Errorf("%s.block_size must be odd and at least 3, got %d", field, t.BlockSize)
	}
	return nil
}
