package grid

import (
	"image"
	"math"

	"github.com/matzehuels/imagestitch/pkg/errors"
)

// bytesPerPixel is the footprint of the NRGBA canvas the layout is sized for.
const bytesPerPixel = 4

// Layout is the computed geometry of a sheet.
type Layout struct {
	Tile      Dimension `json:"tile"`
	Direction Direction `json:"direction"`
	Width     int       `json:"width"`  // canvas width in pixels
	Height    int       `json:"height"` // canvas height in pixels
	Major     int       `json:"major"`  // tiles along the bounded axis
	Minor     int       `json:"minor"`  // tiles along the derived axis
	Count     int       `json:"count"`  // tiles actually placed
}

// ComputeLayout derives canvas size and tile counts for count tiles of size
// tile whose major axis must stay within maxExtent pixels.
//
// A maxExtent smaller than a single tile still yields one tile along the
// major axis, so the canvas may exceed maxExtent in that case.
func ComputeLayout(count int, tile Dimension, maxExtent int, dir Direction) (Layout, error) {
	if count <= 0 {
		return Layout{}, errors.New(errors.ErrCodeEmptyInput, "layout needs at least one image")
	}
	if !tile.Valid() {
		return Layout{}, errors.New(errors.ErrCodeInvalidInput, "invalid tile size %s", tile)
	}
	if maxExtent <= 0 {
		return Layout{}, errors.New(errors.ErrCodeInvalidInput, "max extent must be positive, got %d", maxExtent)
	}
	if dir != RowMajor && dir != ColumnMajor {
		return Layout{}, errors.New(errors.ErrCodeInvalidDirection, "unknown direction %d", int(dir))
	}

	majorOf, minorOf := dir.axes()

	major := max(1, maxExtent/majorOf(tile))
	minor := (count + major - 1) / major

	if minor > math.MaxInt/minorOf(tile) {
		return Layout{}, errors.New(errors.ErrCodeInvalidInput, "canvas too large: %d tiles of %s", count, tile)
	}
	canvas := dir.dimension(major*majorOf(tile), minor*minorOf(tile))
	if canvas.Width > math.MaxInt/bytesPerPixel/canvas.Height {
		return Layout{}, errors.New(errors.ErrCodeInvalidInput, "canvas too large: %s", canvas)
	}

	return Layout{
		Tile:      tile,
		Direction: dir,
		Width:     canvas.Width,
		Height:    canvas.Height,
		Major:     major,
		Minor:     minor,
		Count:     count,
	}, nil
}

// Capacity is the number of cells in the grid.
func (l Layout) Capacity() int {
	return l.Major * l.Minor
}

// Bounds is the canvas rectangle, anchored at the origin.
func (l Layout) Bounds() image.Rectangle {
	return image.Rect(0, 0, l.Width, l.Height)
}

// Size is the canvas size.
func (l Layout) Size() Dimension {
	return Dimension{Width: l.Width, Height: l.Height}
}

// Rows is the number of tile rows on the canvas.
func (l Layout) Rows() int {
	return l.Height / l.Tile.Height
}

// Cols is the number of tile columns on the canvas.
func (l Layout) Cols() int {
	return l.Width / l.Tile.Width
}

// Cell returns the grid row and column of the k-th tile (0-indexed).
func (l Layout) Cell(k int) (row, col int) {
	return l.Direction.cell(k/l.Major, k%l.Major)
}

// Origin returns the top-left canvas pixel of the k-th tile.
func (l Layout) Origin(k int) image.Point {
	row, col := l.Cell(k)
	return image.Pt(col*l.Tile.Width, row*l.Tile.Height)
}

// Rect returns the canvas rectangle owned by the k-th tile.
// Rectangles of distinct k never overlap.
func (l Layout) Rect(k int) image.Rectangle {
	o := l.Origin(k)
	return image.Rectangle{Min: o, Max: o.Add(l.Tile.Point())}
}
