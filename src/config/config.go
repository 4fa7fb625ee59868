package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog"

	"screen-region-select/src/render"
)

const (
	// EnvFileEnvVar names an alternative .env file.
	EnvFileEnvVar = "REGION_SELECT_ENV"

	DefaultFormat    = "%x,%y %wx%h"
	DefaultNamespace = "region-select"
)

// LoadOptions carries command-line overrides. Empty values keep what the
// environment says.
type LoadOptions struct {
	OverlayColor      string
	BorderColor       string
	SelectionColor    string
	BorderWidth       *int
	Format            string
	LogLevel          string
	EnableFileLogging bool
}

type Config struct {
	OverlayColor      Color  `envconfig:"REGION_SELECT_OVERLAY_COLOR" default:"#00000080"`
	BorderColor       Color  `envconfig:"REGION_SELECT_BORDER_COLOR" default:"#ffffff"`
	SelectionColor    Color  `envconfig:"REGION_SELECT_SELECTION_COLOR" default:"#00000000"`
	BorderWidth       int    `envconfig:"REGION_SELECT_BORDER_WIDTH" default:"2"`
	Format            string `envconfig:"REGION_SELECT_FORMAT" default:"%x,%y %wx%h"`
	Namespace         string `envconfig:"REGION_SELECT_NAMESPACE" default:"region-select"`
	CursorSize        int    `envconfig:"REGION_SELECT_CURSOR_SIZE" default:"24"`
	LogLevel          string `envconfig:"REGION_SELECT_LOG_LEVEL" default:"warn"`
	EnableFileLogging bool   `envconfig:"REGION_SELECT_LOG_FILE" default:"false"`
}

// Color is a render.Color read from "#rrggbb" or "#rrggbbaa".
type Color render.Color

// Decode implements envconfig.Decoder.
func (c *Color) Decode(value string) error {
	col, err := render.ParseColor(value)
	if err != nil {
		return err
	}
	*c = Color(col)
	return nil
}

// Style returns the render style described by the configuration.
func (c *Config) Style() render.Style {
	return render.Style{
		Overlay:     render.Color(c.OverlayColor),
		Selection:   render.Color(c.SelectionColor),
		Border:      render.Color(c.BorderColor),
		BorderWidth: c.BorderWidth,
	}
}

func Load() (*Config, error) {
	return LoadWithOptions(LoadOptions{})
}

func LoadWithOptions(opts LoadOptions) (*Config, error) {
	// Load configuration from sources in priority order:
	// 1) .env in the application (executable) directory
	// 2) If not found, use REGION_SELECT_ENV as a path to a config file
	// Variables already set in the environment are not overwritten.
	if envPath := resolveEnvPath(); envPath != "" {
		if err := godotenv.Load(envPath); err != nil {
			return nil, fmt.Errorf("read %s: %w", envPath, err)
		}
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}

	if err := applyOverrides(&cfg, opts); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func resolveEnvPath() string {
	execPath, err := os.Executable()
	if err == nil {
		exeEnv := filepath.Join(filepath.Dir(execPath), ".env")
		if _, err := os.Stat(exeEnv); err == nil {
			return exeEnv
		}
	}

	if alt := os.Getenv(EnvFileEnvVar); alt != "" {
		if _, err := os.Stat(alt); err == nil {
			return alt
		}
	}

	return ""
}

func applyOverrides(cfg *Config, opts LoadOptions) error {
	colors := []struct {
		flag  string
		value string
		dst   *Color
	}{
		{"overlay-color", opts.OverlayColor, &cfg.OverlayColor},
		{"border-color", opts.BorderColor, &cfg.BorderColor},
		{"selection-color", opts.SelectionColor, &cfg.SelectionColor},
	}
	for _, c := range colors {
		if v := strings.TrimSpace(c.value); v != "" {
			if err := c.dst.Decode(v); err != nil {
				return fmt.Errorf("--%s: %w", c.flag, err)
			}
		}
	}

	if opts.BorderWidth != nil {
		cfg.BorderWidth = *opts.BorderWidth
	}
	if opts.Format != "" {
		cfg.Format = opts.Format
	}
	if v := strings.TrimSpace(opts.LogLevel); v != "" {
		cfg.LogLevel = v
	}
	if opts.EnableFileLogging {
		cfg.EnableFileLogging = true
	}
	return nil
}

func (c *Config) validate() error {
	if c.BorderWidth < 0 {
		return fmt.Errorf("border width must not be negative, got %d", c.BorderWidth)
	}
	if c.Format == "" {
		return fmt.Errorf("output format must not be empty")
	}
	if c.CursorSize < 7 {
		return fmt.Errorf("cursor size must be at least 7, got %d", c.CursorSize)
	}
	if c.Namespace == "" {
		c.Namespace = DefaultNamespace
	}
	if _, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel)); err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	return nil
}

// Level returns the configured zerolog level.
func (c *Config) Level() zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel))
	if err != nil {
		return zerolog.WarnLevel
	}
	return lvl
}
