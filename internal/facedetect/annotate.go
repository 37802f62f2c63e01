package facedetect

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// BoxColor is the outline color of the annotated face (pure green).
var BoxColor = color.RGBA{R: 0, G: 255, B: 0, A: 255}

// Largest returns the box with the largest area. The first box wins on ties.
// Returns nil when boxes is empty.
func Largest(boxes []Box) *Box {
	if len(boxes) == 0 {
		return nil
	}
	best := boxes[0]
	for _, b := range boxes[1:] {
		if b.Area() > best.Area() {
			best = b
		}
	}
	return &best
}

// DrawBox draws the outline of box onto img with the given color and thickness.
// The outline grows inward from the box edges and is clipped to the image bounds.
func DrawBox(img draw.Image, box Box, c color.Color, thickness int) {
	if thickness <= 0 || box.Width <= 0 || box.Height <= 0 {
		return
	}
	r := box.Rect()
	t := min(thickness, box.Width, box.Height)
	src := image.NewUniform(c)

	edges := []image.Rectangle{
		image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+t), // top
		image.Rect(r.Min.X, r.Max.Y-t, r.Max.X, r.Max.Y), // bottom
		image.Rect(r.Min.X, r.Min.Y, r.Min.X+t, r.Max.Y), // left
		image.Rect(r.Max.X-t, r.Min.Y, r.Max.X, r.Max.Y), // right
	}
	bounds := img.Bounds()
	for _, e := range edges {
		e = e.Intersect(bounds)
		if e.Empty() {
			continue
		}
		draw.Draw(img, e, src, image.Point{}, draw.Src)
	}
}

// toNRGBA copies img into a zero-origin NRGBA image.
func toNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok && n.Bounds().Min == (image.Point{}) {
		return n
	}
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}
