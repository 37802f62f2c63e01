// Package facedetect locates faces in photos and annotates the largest one.
package facedetect

import "image"

// Box is a face bounding box in image pixel coordinates.
type Box struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Area returns the box area in pixels.
func (b Box) Area() int {
	return b.Width * b.Height
}

// Rect converts the box to an image.Rectangle.
func (b Box) Rect() image.Rectangle {
	return image.Rect(b.X, b.Y, b.X+b.Width, b.Y+b.Height)
}

// Detector finds faces in an image.
type Detector interface {
	Detect(img image.Image) []Box
}

// Result is the outcome of processing an uploaded photo.
type Result struct {
	// Image holds the annotated JPEG when a face was found, otherwise the original bytes.
	Image []byte
	// Face is the largest detected face, nil when none was found.
	Face *Box
}

// FaceDetected reports whether a face was found.
func (r *Result) FaceDetected() bool {
	return r != nil && r.Face != nil
}
