package facedetect

import (
	_ "embed"
	"fmt"
	"image"
	"os"

	pigo "github.com/esimov/pigo/core"

	"github.com/kozaktomas/celebrity-detector/internal/constants"
)

// defaultCascade is the frontal face cascade shipped with pigo.
//
//go:embed cascade/facefinder
var defaultCascade []byte

// PigoDetector detects frontal faces using a pigo cascade classifier.
// The unpacked classifier is read-only and safe for concurrent use.
type PigoDetector struct {
	classifier *pigo.Pigo
	minSize    int
	quality    float32
}

// NewPigoDetector loads the cascade file at path. An empty path selects the
// built-in facefinder cascade.
func NewPigoDetector(path string) (*PigoDetector, error) {
	if path == "" {
		return NewPigoDetectorFromBytes(defaultCascade)
	}
	data, err := os.ReadFile(path) //nolint:gosec // path comes from trusted configuration
	if err != nil {
		return nil, fmt.Errorf("reading cascade file: %w", err)
	}
	return NewPigoDetectorFromBytes(data)
}

// NewPigoDetectorFromBytes unpacks a cascade already held in memory.
func NewPigoDetectorFromBytes(cascade []byte) (*PigoDetector, error) {
	classifier, err := pigo.NewPigo().Unpack(cascade)
	if err != nil {
		return nil, fmt.Errorf("unpacking cascade: %w", err)
	}
	return &PigoDetector{
		classifier: classifier,
		minSize:    constants.DetectMinFaceSize,
		quality:    constants.DetectQualityThreshold,
	}, nil
}

// Detect returns all faces scoring above the quality threshold.
func (d *PigoDetector) Detect(img image.Image) []Box {
	src := toNRGBA(img)
	cols, rows := src.Bounds().Dx(), src.Bounds().Dy()
	if cols == 0 || rows == 0 {
		return nil
	}

	maxSize := min(cols, rows)
	if maxSize < d.minSize {
		return nil
	}

	params := pigo.CascadeParams{
		MinSize:     d.minSize,
		MaxSize:     maxSize,
		ShiftFactor: constants.DetectShiftFactor,
		ScaleFactor: constants.DetectScaleFactor,
		ImageParams: pigo.ImageParams{
			Pixels: pigo.RgbToGrayscale(src),
			Rows:   rows,
			Cols:   cols,
			Dim:    cols,
		},
	}

	dets := d.classifier.RunCascade(params, 0.0)
	dets = d.classifier.ClusterDetections(dets, constants.DetectIoUThreshold)

	var boxes []Box
	for _, det := range dets {
		if det.Q < d.quality {
			continue
		}
		// pigo reports the face center and the side length of a square window
		boxes = append(boxes, Box{
			X:      det.Col - det.Scale/2,
			Y:      det.Row - det.Scale/2,
			Width:  det.Scale,
			Height: det.Scale,
		})
	}
	return boxes
}
