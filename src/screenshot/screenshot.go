package screenshot

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"os"

	"github.com/kbinani/screenshot"

	"screen-region-select/src/geom"
)

// CaptureRegion captures a specific region of the screen as PNG bytes.
func CaptureRegion(region geom.Rect) ([]byte, error) {
	if region.Empty() {
		return nil, fmt.Errorf("invalid region dimensions: width=%d, height=%d", region.Width, region.Height)
	}
	if screenshot.NumActiveDisplays() == 0 {
		return nil, fmt.Errorf("no active displays found")
	}

	bounds := image.Rect(region.X, region.Y, region.Right(), region.Bottom())
	img, err := screenshot.CaptureRect(bounds)
	if err != nil {
		return nil, fmt.Errorf("failed to capture region: %w", err)
	}
	return encodePNG(img)
}

// WritePNG captures region into the file at path.
func WritePNG(path string, region geom.Rect) error {
	data, err := CaptureRegion(region)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image as PNG: %w", err)
	}
	return buf.Bytes(), nil
}
