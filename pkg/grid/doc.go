// Package grid computes contact-sheet layouts.
//
// # Overview
//
// A contact sheet places N equally sized tiles on a grid. One axis, the
// major axis, is bounded by a maximum pixel extent; the other grows until
// every tile has a cell:
//
//	Direction X (row major)        Direction Y (column major)
//	major axis = width             major axis = height
//
//	┌───┬───┬───┐                  ┌───┬───┬───┐
//	│ 0 │ 1 │ 2 │                  │ 0 │ 3 │ 6 │
//	├───┼───┼───┤                  ├───┼───┼───┤
//	│ 3 │ 4 │ 5 │                  │ 1 │ 4 │   │
//	├───┼───┼───┤                  ├───┼───┼───┤
//	│ 6 │   │   │                  │ 2 │ 5 │   │
//	└───┴───┴───┘                  └───┴───┴───┘
//
// [ComputeLayout] derives the tile count along the major axis as
// floor(max / tileExtent), clamped to at least one, and the minor count as
// ceil(n / major). Both directions run through one parameterized algorithm
// that reads the tile through "major" and "minor" axis accessors, so the
// width/height and row/column mirror images cannot drift apart.
//
// # Usage
//
//	l, err := grid.ComputeLayout(len(paths), grid.Dimension{Width: 100, Height: 100}, 250, grid.RowMajor)
//	// l.Width == 200, l.Height == 200
//	for k := range paths {
//	    r := l.Rect(k) // destination rectangle of tile k
//	}
//
// Trailing cells of a partially filled last row (or column) are never
// assigned and stay at the canvas background.
package grid
