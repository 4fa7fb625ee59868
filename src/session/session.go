package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"

	"screen-region-select/src/clipboard"
	"screen-region-select/src/geom"
	"screen-region-select/src/output"
	"screen-region-select/src/screenshot"
)

var ErrSelectionCancelled = errors.New("selection cancelled")

type RegionSelectorFunc func(ctx context.Context) (geom.Rect, bool, error)

type ResultTarget interface {
	OnSuccess(region geom.Rect) error
	OnFailure(err error) error
}

type Options struct {
	SelectRegion RegionSelectorFunc
	Targets      []ResultTarget
}

type Result struct {
	Region geom.Rect
}

// Execute runs one selection and hands the region to every target in
// order. Delivery stops at the first failing target.
func Execute(ctx context.Context, opts Options) (Result, error) {
	if opts.SelectRegion == nil {
		return Result{}, errors.New("SelectRegion is required")
	}
	if len(opts.Targets) == 0 {
		return Result{}, errors.New("at least one Target is required")
	}

	region, cancelled, err := opts.SelectRegion(ctx)
	if err != nil {
		notifyFailure(opts.Targets, err)
		return Result{}, err
	}
	if cancelled {
		notifyFailure(opts.Targets, ErrSelectionCancelled)
		return Result{}, ErrSelectionCancelled
	}

	log.Info().Stringer("region", region).Msg("region selected")
	for _, t := range opts.Targets {
		if err := t.OnSuccess(region); err != nil {
			notifyFailure(opts.Targets, err)
			return Result{}, err
		}
	}
	return Result{Region: region}, nil
}

func notifyFailure(targets []ResultTarget, err error) {
	for _, t := range targets {
		if ferr := t.OnFailure(err); ferr != nil {
			log.Debug().Err(ferr).Msg("target failure hook")
		}
	}
}

// StdoutTarget prints the region with Format, or as JSON.
type StdoutTarget struct {
	Writer io.Writer
	Format string
	JSON   bool
}

func (t StdoutTarget) OnSuccess(region geom.Rect) error {
	w := t.Writer
	if w == nil {
		w = os.Stdout
	}
	if t.JSON {
		b, err := output.JSON(region)
		if err != nil {
			return fmt.Errorf("failed to encode JSON output: %w", err)
		}
		_, err = fmt.Fprintf(w, "%s\n", b)
		return err
	}
	_, err := fmt.Fprintln(w, output.Format(t.Format, region))
	return err
}

func (t StdoutTarget) OnFailure(err error) error {
	return nil
}

// ClipboardTarget copies the formatted region to the clipboard.
type ClipboardTarget struct {
	Format string
	// Write defaults to clipboard.Write.
	Write func(text string) error
}

func (t ClipboardTarget) OnSuccess(region geom.Rect) error {
	write := t.Write
	if write == nil {
		write = clipboard.Write
	}
	if err := write(output.Format(t.Format, region)); err != nil {
		return fmt.Errorf("clipboard error: %w", err)
	}
	return nil
}

func (t ClipboardTarget) OnFailure(err error) error {
	return nil
}

// CaptureTarget saves a PNG of the selected region. Use it by pointer; it
// remembers whether it created the file.
type CaptureTarget struct {
	Path string
	// Capture defaults to screenshot.WritePNG.
	Capture func(path string, region geom.Rect) error

	created bool
}

func (t *CaptureTarget) OnSuccess(region geom.Rect) error {
	capture := t.Capture
	if capture == nil {
		capture = screenshot.WritePNG
	}
	_, statErr := os.Stat(t.Path)
	existed := statErr == nil
	err := capture(t.Path, region)
	t.created = !existed
	if err != nil {
		return fmt.Errorf("capture error: %w", err)
	}
	log.Info().Str("file", t.Path).Msg("region captured")
	return nil
}

// OnFailure removes a capture this target created. Files it never wrote
// are left alone.
func (t *CaptureTarget) OnFailure(err error) error {
	if !t.created || errors.Is(err, ErrSelectionCancelled) {
		return nil
	}
	t.created = false
	if rmErr := os.Remove(t.Path); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
		return rmErr
	}
	return nil
}
