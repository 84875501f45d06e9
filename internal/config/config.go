// Package config loads pdfregion settings.
// Priority: defaults -> config files (in order) -> environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/pyhub-apps/pdfregion/pkg/pdf"
	"github.com/pyhub-apps/pdfregion/pkg/sheet"
	"github.com/pyhub-apps/pdfregion/pkg/table"
)

// Config represents the application configuration
type Config struct {
	Server  ServerConfig  `toml:"server"`
	Logging LoggingConfig `toml:"logging"`
	Extract ExtractConfig `toml:"extract"`
	Export  ExportConfig  `toml:"export"`
	Upload  UploadConfig  `toml:"upload"`
}

type ServerConfig struct {
	Host         string `toml:"host"`
	Port         int    `toml:"port" validate:"gte=1,lte=65535"`
	MoveThrottle string `toml:"move_throttle"` // min interval between selection echoes, e.g. "50ms"
}

type LoggingConfig struct {
	Level string `toml:"level" validate:"oneof=trace debug info warn error"` // "debug", "info", "warn", "error"
}

// ExtractConfig holds the clustering thresholds and glyph merge tolerances
type ExtractConfig struct {
	RowTokenLimit   int     `toml:"row_token_limit" validate:"gte=1"`   // tokens that fill a row
	HeaderMinLength int     `toml:"header_min_length" validate:"gte=0"` // a header must be longer than this
	XTolerance      float64 `toml:"x_tolerance" validate:"gte=0"`       // max gap between glyphs of one run
	YTolerance      float64 `toml:"y_tolerance" validate:"gte=0"`       // max baseline drift within a run
}

type ExportConfig struct {
	SheetName string `toml:"sheet_name" validate:"required,max=31"`
	FileName  string `toml:"file_name" validate:"required"`
}

type UploadConfig struct {
	MaxBytes int64 `toml:"max_bytes" validate:"gte=1"`
}

// NewDefaultConfig returns the built-in defaults
func NewDefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "localhost",
			Port:         8085,
			MoveThrottle: "50ms",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Extract: ExtractConfig{
			RowTokenLimit:   table.DefaultRowTokenLimit,
			HeaderMinLength: table.DefaultHeaderMinLength,
			XTolerance:      3,
			YTolerance:      1,
		},
		Export: ExportConfig{
			SheetName: sheet.DefaultSheetName,
			FileName:  sheet.DefaultFileName,
		},
		Upload: UploadConfig{
			MaxBytes: 32 << 20,
		},
	}
}

// Load builds the configuration from defaults, the given TOML files and
// PDFREGION_* environment variables. A .env file in the working directory
// is read first when present.
func Load(paths ...string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}

	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks field constraints
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if c.Server.MoveThrottle != "" {
		if _, err := time.ParseDuration(c.Server.MoveThrottle); err != nil {
			return fmt.Errorf("invalid configuration: server.move_throttle: %w", err)
		}
	}
	return nil
}

// MoveThrottle returns the pointer move echo interval; zero disables it
func (c *Config) MoveThrottle() time.Duration {
	d, err := time.ParseDuration(c.Server.MoveThrottle)
	if err != nil {
		return 0
	}
	return d
}

// Address returns host:port for the HTTP server
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// TableOptions converts the extract section into clustering options
func (c *Config) TableOptions() []table.Option {
	return []table.Option{
		table.WithRowTokenLimit(c.Extract.RowTokenLimit),
		table.WithHeaderMinLength(c.Extract.HeaderMinLength),
	}
}

// TextRunOptions converts the extract section into glyph merge options
func (c *Config) TextRunOptions() []pdf.TextRunOption {
	return []pdf.TextRunOption{
		pdf.WithXTolerance(c.Extract.XTolerance),
		pdf.WithYTolerance(c.Extract.YTolerance),
	}
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if host := os.Getenv("PDFREGION_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}
	if port := os.Getenv("PDFREGION_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if level := os.Getenv("PDFREGION_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if limit := os.Getenv("PDFREGION_ROW_TOKEN_LIMIT"); limit != "" {
		if v, err := strconv.Atoi(limit); err == nil {
			config.Extract.RowTokenLimit = v
		}
	}
	if length := os.Getenv("PDFREGION_HEADER_MIN_LENGTH"); length != "" {
		if v, err := strconv.Atoi(length); err == nil {
			config.Extract.HeaderMinLength = v
		}
	}

	if name := os.Getenv("PDFREGION_SHEET_NAME"); name != "" {
		config.Export.SheetName = name
	}
	if name := os.Getenv("PDFREGION_FILE_NAME"); name != "" {
		config.Export.FileName = name
	}

	if maxBytes := os.Getenv("PDFREGION_UPLOAD_MAX_BYTES"); maxBytes != "" {
		if v, err := strconv.ParseInt(maxBytes, 10, 64); err == nil {
			config.Upload.MaxBytes = v
		}
	}
}
