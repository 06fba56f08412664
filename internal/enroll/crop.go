package enroll

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"

	"github.com/hpratama/ingatan/internal/constants"
)

// CropFace cuts a padded face crop out of a frame. The bbox is
// [x1, y1, x2, y2] in pixel coordinates; the crop rectangle is expanded by
// CropPadding and clamped to the frame. Returns JPEG bytes.
func CropFace(frame []byte, bbox []float64) ([]byte, error) {
	if len(bbox) != 4 {
		return nil, fmt.Errorf("bbox must have 4 elements, got %d", len(bbox))
	}

	img, _, err := image.Decode(bytes.NewReader(frame))
	if err != nil {
		return nil, fmt.Errorf("decoding frame: %w", err)
	}

	bounds := img.Bounds()
	rect := image.Rect(
		int(bbox[0])-constants.CropPadding,
		int(bbox[1])-constants.CropPadding,
		int(bbox[2])+constants.CropPadding,
		int(bbox[3])+constants.CropPadding,
	).Intersect(bounds)
	if rect.Empty() {
		return nil, fmt.Errorf("bbox %v outside frame %v", bbox, bounds)
	}

	crop := image.NewRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	draw.Copy(crop, image.Point{}, img, rect, draw.Src, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, crop, &jpeg.Options{Quality: 80}); err != nil {
		return nil, fmt.Errorf("encoding crop: %w", err)
	}
	return buf.Bytes(), nil
}
