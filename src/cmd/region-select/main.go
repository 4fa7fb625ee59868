package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"screen-region-select/src/config"
	"screen-region-select/src/logutil"
	"screen-region-select/src/overlay"
	"screen-region-select/src/runtimeinit"
	"screen-region-select/src/session"
	"screen-region-select/src/singleinstance"
)

type cliOptions struct {
	format         string
	jsonOutput     bool
	clipboard      bool
	capture        string
	borderWidth    int
	overlayColor   string
	borderColor    string
	selectionColor string
	logLevel       string
	logFile        bool
	verbose        bool
}

// newSelector is replaced in tests.
var newSelector = overlay.NewSelector

func main() {
	if err := run(); err != nil {
		if errors.Is(err, session.ErrSelectionCancelled) {
			fmt.Fprintln(os.Stderr, "Selection cancelled.")
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return runWithArgs(ctx, normalizeLegacyArgs(os.Args), os.Stdout)
}

func runWithArgs(ctx context.Context, args []string, stdout io.Writer) error {
	if len(args) == 0 {
		args = []string{"region-select"}
	}

	opts := &cliOptions{}
	cmd := newRootCmd(opts)
	cmd.SetArgs(args[1:])
	cmd.SetOut(stdout)
	return cmd.ExecuteContext(ctx)
}

func newRootCmd(opts *cliOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "region-select",
		Short: "Select a screen region on Wayland",
		Long: "Shows a translucent overlay over the screen. Click and drag to select a region, " +
			"press Escape to cancel. The region is printed to stdout.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithOptions(cmd, *opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.format, "format", "f", "", "Output format: %x %y %w %h, %% for a literal % (default \""+config.DefaultFormat+"\")")
	f.BoolVar(&opts.jsonOutput, "json", false, "Print the region as JSON")
	f.BoolVar(&opts.clipboard, "clipboard", false, "Also copy the formatted region to the clipboard")
	f.StringVar(&opts.capture, "capture", "", "Also save a PNG of the region to this file")
	f.IntVarP(&opts.borderWidth, "border-width", "w", 2, "Selection border width in pixels")
	f.StringVarP(&opts.overlayColor, "overlay-color", "b", "", "Overlay colour #rrggbb[aa]")
	f.StringVarP(&opts.borderColor, "border-color", "c", "", "Border colour #rrggbb[aa]")
	f.StringVarP(&opts.selectionColor, "selection-color", "s", "", "Selection fill colour #rrggbb[aa]")
	f.StringVar(&opts.logLevel, "log-level", "", "Log level: trace, debug, info, warn, error")
	f.BoolVar(&opts.logFile, "log-file", false, "Write a debug log file in the working directory")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "Verbose output to stderr")

	return cmd
}

func runWithOptions(cmd *cobra.Command, opts cliOptions) error {
	loadOptions := config.LoadOptions{
		OverlayColor:      opts.overlayColor,
		BorderColor:       opts.borderColor,
		SelectionColor:    opts.selectionColor,
		Format:            opts.format,
		LogLevel:          opts.logLevel,
		EnableFileLogging: opts.logFile,
	}
	if cmd.Flags().Changed("border-width") {
		loadOptions.BorderWidth = &opts.borderWidth
	}

	cfg, err := runtimeinit.Bootstrap(runtimeinit.Options{
		LoadOptions:   loadOptions,
		Verbose:       opts.verbose,
		NeedClipboard: opts.clipboard,
	})
	if err != nil {
		return err
	}
	defer func() { _ = logutil.Close() }()

	lock, err := singleinstance.Acquire("")
	if err != nil {
		return err
	}
	defer func() {
		if err := lock.Release(); err != nil {
			log.Warn().Err(err).Str("file", lock.Path()).Msg("release instance lock")
		}
	}()

	targets := []session.ResultTarget{
		session.StdoutTarget{Writer: cmd.OutOrStdout(), Format: cfg.Format, JSON: opts.jsonOutput},
	}
	if opts.clipboard {
		targets = append(targets, session.ClipboardTarget{Format: cfg.Format})
	}
	if opts.capture != "" {
		targets = append(targets, &session.CaptureTarget{Path: opts.capture})
	}

	selector := newSelector(overlay.Options{
		Style:      cfg.Style(),
		Namespace:  cfg.Namespace,
		CursorSize: cfg.CursorSize,
	})
	log.Debug().Int("targets", len(targets)).Msg("starting selection")

	_, err = session.Execute(cmd.Context(), session.Options{
		SelectRegion: selector.Select,
		Targets:      targets,
	})
	return err
}

// normalizeLegacyArgs accepts single-dash long flags (-json, -format=...)
// by rewriting them to the double-dash form cobra expects.
func normalizeLegacyArgs(args []string) []string {
	if len(args) == 0 {
		return args
	}

	longFlags := []string{
		"format", "json", "clipboard", "capture", "border-width", "overlay-color",
		"border-color", "selection-color", "log-level", "log-file", "verbose",
	}

	normalized := make([]string, len(args))
	copy(normalized, args)

	for i := 1; i < len(normalized); i++ {
		arg := normalized[i]
		if arg == "--" {
			break
		}
		for _, name := range longFlags {
			switch {
			case arg == "-"+name:
				normalized[i] = "--" + name
			case strings.HasPrefix(arg, "-"+name+"="):
				normalized[i] = "-" + arg
			}
		}
	}

	return normalized
}
