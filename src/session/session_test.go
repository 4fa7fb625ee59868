package session

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"screen-region-select/src/geom"
)

var region = geom.Rect{X: 100, Y: 100, Width: 200, Height: 300}

type recordingTarget struct {
	successes []geom.Rect
	failures  []error
	err       error
}

func (r *recordingTarget) OnSuccess(region geom.Rect) error {
	r.successes = append(r.successes, region)
	return r.err
}

func (r *recordingTarget) OnFailure(err error) error {
	r.failures = append(r.failures, err)
	return nil
}

func selected(r geom.Rect) RegionSelectorFunc {
	return func(context.Context) (geom.Rect, bool, error) { return r, false, nil }
}

func TestExecuteDeliversToAllTargets(t *testing.T) {
	a, b := &recordingTarget{}, &recordingTarget{}
	res, err := Execute(context.Background(), Options{SelectRegion: selected(region), Targets: []ResultTarget{a, b}})
	require.NoError(t, err)
	assert.Equal(t, region, res.Region)
	assert.Equal(t, []geom.Rect{region}, a.successes)
	assert.Equal(t, []geom.Rect{region}, b.successes)
}

func TestExecuteCancelled(t *testing.T) {
	target := &recordingTarget{}
	_, err := Execute(context.Background(), Options{
		SelectRegion: func(context.Context) (geom.Rect, bool, error) { return geom.Rect{}, true, nil },
		Targets:      []ResultTarget{target},
	})
	assert.ErrorIs(t, err, ErrSelectionCancelled)
	assert.Empty(t, target.successes)
	assert.Equal(t, []error{ErrSelectionCancelled}, target.failures)
}

func TestExecuteSelectError(t *testing.T) {
	boom := errors.New("no compositor")
	target := &recordingTarget{}
	_, err := Execute(context.Background(), Options{
		SelectRegion: func(context.Context) (geom.Rect, bool, error) { return geom.Rect{}, false, boom },
		Targets:      []ResultTarget{target},
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []error{boom}, target.failures)
}

func TestExecuteStopsAtFailingTarget(t *testing.T) {
	boom := errors.New("disk full")
	first := &recordingTarget{err: boom}
	second := &recordingTarget{}
	_, err := Execute(context.Background(), Options{SelectRegion: selected(region), Targets: []ResultTarget{first, second}})
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, second.successes)
	assert.Equal(t, []error{boom}, second.failures)
}

func TestExecuteValidatesOptions(t *testing.T) {
	_, err := Execute(context.Background(), Options{Targets: []ResultTarget{&recordingTarget{}}})
	assert.Error(t, err)
	_, err = Execute(context.Background(), Options{SelectRegion: selected(region)})
	assert.Error(t, err)
}

func TestStdoutTarget(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, StdoutTarget{Writer: &buf, Format: "%x,%y %wx%h"}.OnSuccess(region))
	assert.Equal(t, "100,100 200x300\n", buf.String())

	buf.Reset()
	require.NoError(t, StdoutTarget{Writer: &buf, JSON: true}.OnSuccess(region))
	assert.JSONEq(t, `{"x":100,"y":100,"width":200,"height":300}`, buf.String())
}

func TestClipboardTarget(t *testing.T) {
	var got string
	target := ClipboardTarget{Format: "%wx%h", Write: func(s string) error { got = s; return nil }}
	require.NoError(t, target.OnSuccess(region))
	assert.Equal(t, "200x300", got)

	target.Write = func(string) error { return errors.New("no display") }
	assert.ErrorContains(t, target.OnSuccess(region), "clipboard error")
}

func TestCaptureTarget(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shot.png")
	var gotPath string
	var gotRegion geom.Rect
	target := &CaptureTarget{Path: path, Capture: func(p string, r geom.Rect) error {
		gotPath, gotRegion = p, r
		return os.WriteFile(p, []byte("png"), 0o644)
	}}
	require.NoError(t, target.OnSuccess(region))
	assert.Equal(t, path, gotPath)
	assert.Equal(t, region, gotRegion)

	require.NoError(t, target.OnFailure(ErrSelectionCancelled))
	assert.FileExists(t, path)
	require.NoError(t, target.OnFailure(errors.New("later target failed")))
	assert.NoFileExists(t, path)
	assert.NoError(t, target.OnFailure(errors.New("again")))
}

func TestCaptureTargetKeepsFilesItDidNotCreate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keep.png")
	require.NoError(t, os.WriteFile(path, []byte("user data"), 0o644))

	captured := false
	target := &CaptureTarget{Path: path, Capture: func(string, geom.Rect) error {
		captured = true
		return nil
	}}
	_, err := Execute(context.Background(), Options{
		SelectRegion: func(context.Context) (geom.Rect, bool, error) {
			return geom.Rect{}, false, errors.New("no wayland display")
		},
		Targets: []ResultTarget{target},
	})
	require.Error(t, err)
	assert.False(t, captured)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "user data", string(data))
}

func TestCaptureTargetKeepsOverwrittenFileOnLaterFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "existing.png")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0o644))

	target := &CaptureTarget{Path: path, Capture: func(p string, _ geom.Rect) error {
		return os.WriteFile(p, []byte("png"), 0o644)
	}}
	_, err := Execute(context.Background(), Options{
		SelectRegion: func(context.Context) (geom.Rect, bool, error) { return region, false, nil },
		Targets: []ResultTarget{target, ClipboardTarget{Write: func(string) error {
			return errors.New("clipboard unavailable")
		}}},
	})
	require.Error(t, err)
	assert.FileExists(t, path)
}

func TestCaptureTargetRemovesPartialCapture(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.png")
	target := &CaptureTarget{Path: path, Capture: func(p string, _ geom.Rect) error {
		_ = os.WriteFile(p, []byte("pn"), 0o644)
		return errors.New("disk full")
	}}
	_, err := Execute(context.Background(), Options{
		SelectRegion: func(context.Context) (geom.Rect, bool, error) { return region, false, nil },
		Targets:      []ResultTarget{target},
	})
	require.ErrorContains(t, err, "disk full")
	assert.NoFileExists(t, path)
}
