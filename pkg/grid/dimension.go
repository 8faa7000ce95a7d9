package grid

import (
	"fmt"
	"image"
)

// Dimension is the pixel size shared by every tile of a sheet.
type Dimension struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// DimensionOf returns the size of r.
func DimensionOf(r image.Rectangle) Dimension {
	return Dimension{Width: r.Dx(), Height: r.Dy()}
}

// Valid reports whether both sides are strictly positive.
func (d Dimension) Valid() bool {
	return d.Width > 0 && d.Height > 0
}

// Point returns d as an image.Point.
func (d Dimension) Point() image.Point {
	return image.Pt(d.Width, d.Height)
}

func (d Dimension) String() string {
	return fmt.Sprintf("%dx%d", d.Width, d.Height)
}

// axis reads one side of a Dimension.
type axis func(Dimension) int

func width(d Dimension) int  { return d.Width }
func height(d Dimension) int { return d.Height }
