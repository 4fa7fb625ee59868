package runtimeinit

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"screen-region-select/src/clipboard"
	"screen-region-select/src/config"
	"screen-region-select/src/logutil"
)

type Options struct {
	LoadOptions config.LoadOptions
	// Verbose raises the log level to at least debug.
	Verbose bool
	// NeedClipboard initializes the system clipboard up front so a missing
	// clipboard fails before the overlay is shown.
	NeedClipboard bool
	SetupLogging  func(logutil.Options)
}

func Bootstrap(opts Options) (*config.Config, error) {
	cfg, err := config.LoadWithOptions(opts.LoadOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	level := cfg.Level()
	if opts.Verbose && level > zerolog.DebugLevel {
		level = zerolog.DebugLevel
	}
	setup := opts.SetupLogging
	if setup == nil {
		setup = logutil.Setup
	}
	setup(logutil.Options{Level: level, FileLogging: cfg.EnableFileLogging})

	log.Debug().
		Str("format", cfg.Format).
		Int("border_width", cfg.BorderWidth).
		Str("namespace", cfg.Namespace).
		Msg("configuration loaded")

	if opts.NeedClipboard {
		if err := clipboard.Init(); err != nil {
			return nil, fmt.Errorf("failed to initialize clipboard: %w", err)
		}
	}

	return cfg, nil
}
