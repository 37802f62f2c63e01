package ai

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"

	"golang.org/x/image/draw"

	"github.com/kozaktomas/celebrity-detector/internal/imageutil"
)

const uploadJPEGQuality = 85

// ResizeImage fits an image within maxSize on its longest side, keeping the aspect ratio,
// and re-encodes it as JPEG. Smaller images are only re-encoded. EXIF orientation is
// applied, so the output is upright.
func ResizeImage(data []byte, maxSize int) ([]byte, error) {
	if maxSize <= 0 {
		return nil, errors.New("max size must be positive")
	}

	img, err := imageutil.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	out := img
	if width > maxSize || height > maxSize {
		newWidth, newHeight := maxSize, maxSize
		if width > height {
			newHeight = max(1, height*maxSize/width)
		} else {
			newWidth = max(1, width*maxSize/height)
		}
		resized := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
		draw.CatmullRom.Scale(resized, resized.Bounds(), img, bounds, draw.Over, nil)
		out = resized
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, out, &jpeg.Options{Quality: uploadJPEGQuality}); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}
