package facedetect

import (
	"bytes"
	"fmt"
	"image/jpeg"

	"github.com/kozaktomas/celebrity-detector/internal/constants"
	"github.com/kozaktomas/celebrity-detector/internal/imageutil"
)

// Process finds the largest face in data and draws a box around it.
//
// Undecodable or oversized input and photos without faces are not errors: the original
// bytes are returned with a nil Face. Only a failure to encode the annotated JPEG is reported.
// The annotated image is upright, with the EXIF orientation already applied.
func Process(detector Detector, data []byte) (*Result, error) {
	img, err := imageutil.Decode(data)
	if err != nil {
		return &Result{Image: data}, nil
	}

	canvas := toNRGBA(img)
	face := Largest(detector.Detect(canvas))
	if face == nil {
		return &Result{Image: data}, nil
	}

	DrawBox(canvas, *face, BoxColor, constants.BoxThickness)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, canvas, &jpeg.Options{Quality: constants.AnnotatedJPEGQuality}); err != nil {
		return nil, fmt.Errorf("encoding annotated image: %w", err)
	}

	return &Result{Image: buf.Bytes(), Face: face}, nil
}
