//go:build linux

package overlay

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"screen-region-select/src/eventloop"
	"screen-region-select/src/geom"
	"screen-region-select/src/selection"
	"screen-region-select/src/wayland"
)

// waylandSelector runs one selection session on a layer-shell overlay.
type waylandSelector struct {
	opts Options
}

func newPlatformSelector(opts Options) Selector { return &waylandSelector{opts: opts} }

func (w *waylandSelector) Select(ctx context.Context) (geom.Rect, bool, error) {
	conn, err := wayland.Open(wayland.Options{
		Namespace:  w.opts.Namespace,
		CursorSize: w.opts.CursorSize,
	})
	if err != nil {
		return geom.Rect{}, false, err
	}
	defer conn.Close()

	return run(ctx, eventloop.New(conn, conn, w.opts.Style))
}

// run maps the outcome of a loop to the Selector contract.
func run(ctx context.Context, loop *eventloop.Loop) (geom.Rect, bool, error) {
	st, err := loop.Run(ctx)
	if errors.Is(err, eventloop.ErrSurfaceClosed) {
		log.Info().Msg("overlay closed by compositor")
		return geom.Rect{}, true, nil
	}
	if err != nil {
		return geom.Rect{}, false, err
	}
	if st.Kind == selection.Cancelled {
		return geom.Rect{}, true, nil
	}
	r, _ := eventloop.Rect(st)
	log.Debug().Stringer("region", r).Int("frames", loop.Session().Draws()).Msg("selection finished")
	return r, false, nil
}
