package grid

import (
	"image"
	"testing"

	"github.com/matzehuels/imagestitch/pkg/errors"
)

func TestComputeLayout(t *testing.T) {
	tests := []struct {
		name       string
		count      int
		tile       Dimension
		max        int
		dir        Direction
		wantW      int
		wantH      int
		wantMajor  int
		wantMinor  int
		wantOrigin []image.Point
	}{
		{
			name:  "four squares row major",
			count: 4, tile: Dimension{100, 100}, max: 250, dir: RowMajor,
			wantW: 200, wantH: 200, wantMajor: 2, wantMinor: 2,
			wantOrigin: []image.Point{{0, 0}, {100, 0}, {0, 100}, {100, 100}},
		},
		{
			name:  "column major with one tile per column",
			count: 5, tile: Dimension{50, 50}, max: 50, dir: ColumnMajor,
			wantW: 250, wantH: 50, wantMajor: 1, wantMinor: 5,
			wantOrigin: []image.Point{{0, 0}, {50, 0}, {100, 0}, {150, 0}, {200, 0}},
		},
		{
			name:  "max below tile clamps to one",
			count: 3, tile: Dimension{100, 40}, max: 50, dir: RowMajor,
			wantW: 100, wantH: 120, wantMajor: 1, wantMinor: 3,
			wantOrigin: []image.Point{{0, 0}, {0, 40}, {0, 80}},
		},
		{
			name:  "partial last row",
			count: 7, tile: Dimension{10, 20}, max: 35, dir: RowMajor,
			wantW: 30, wantH: 60, wantMajor: 3, wantMinor: 3,
			wantOrigin: []image.Point{{0, 0}, {10, 0}, {20, 0}, {0, 20}, {10, 20}, {20, 20}, {0, 40}},
		},
		{
			name:  "partial last column",
			count: 5, tile: Dimension{10, 20}, max: 40, dir: ColumnMajor,
			wantW: 30, wantH: 40, wantMajor: 2, wantMinor: 3,
			wantOrigin: []image.Point{{0, 0}, {0, 20}, {10, 0}, {10, 20}, {20, 0}},
		},
		{
			name:  "non square tiles column major uses height",
			count: 4, tile: Dimension{30, 10}, max: 25, dir: ColumnMajor,
			wantW: 60, wantH: 20, wantMajor: 2, wantMinor: 2,
			wantOrigin: []image.Point{{0, 0}, {0, 10}, {30, 0}, {30, 10}},
		},
		{
			name:  "max of one degenerates to a column",
			count: 2, tile: Dimension{8, 8}, max: 1, dir: RowMajor,
			wantW: 8, wantH: 16, wantMajor: 1, wantMinor: 2,
			wantOrigin: []image.Point{{0, 0}, {0, 8}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := ComputeLayout(tt.count, tt.tile, tt.max, tt.dir)
			if err != nil {
				t.Fatalf("ComputeLayout() error: %v", err)
			}
			if l.Width != tt.wantW || l.Height != tt.wantH {
				t.Errorf("canvas = %dx%d, want %dx%d", l.Width, l.Height, tt.wantW, tt.wantH)
			}
			if l.Major != tt.wantMajor || l.Minor != tt.wantMinor {
				t.Errorf("major/minor = %d/%d, want %d/%d", l.Major, l.Minor, tt.wantMajor, tt.wantMinor)
			}
			for k, want := range tt.wantOrigin {
				if got := l.Origin(k); got != want {
					t.Errorf("Origin(%d) = %v, want %v", k, got, want)
				}
			}
		})
	}
}

func TestComputeLayoutErrors(t *testing.T) {
	tests := []struct {
		name  string
		count int
		tile  Dimension
		max   int
		dir   Direction
		code  errors.Code
	}{
		{"zero images", 0, Dimension{10, 10}, 100, RowMajor, errors.ErrCodeEmptyInput},
		{"negative images", -1, Dimension{10, 10}, 100, RowMajor, errors.ErrCodeEmptyInput},
		{"zero width tile", 1, Dimension{0, 10}, 100, RowMajor, errors.ErrCodeInvalidInput},
		{"zero height tile", 1, Dimension{10, 0}, 100, ColumnMajor, errors.ErrCodeInvalidInput},
		{"zero max", 1, Dimension{10, 10}, 0, RowMajor, errors.ErrCodeInvalidInput},
		{"unknown direction", 1, Dimension{10, 10}, 10, Direction(7), errors.ErrCodeInvalidDirection},
		{"overflowing canvas", 1 << 40, Dimension{1 << 20, 1 << 20}, 1 << 20, RowMajor, errors.ErrCodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ComputeLayout(tt.count, tt.tile, tt.max, tt.dir)
			if !errors.Is(err, tt.code) {
				t.Errorf("ComputeLayout() error = %v, want code %s", err, tt.code)
			}
		})
	}
}

// Every image gets a cell, the grid is never empty along either axis, and
// the canvas dimensions match the tile counts.
func TestComputeLayoutProperties(t *testing.T) {
	tiles := []Dimension{{1, 1}, {3, 7}, {16, 9}, {100, 100}}
	for _, dir := range []Direction{RowMajor, ColumnMajor} {
		for _, tile := range tiles {
			for count := 1; count <= 40; count++ {
				for _, maxExtent := range []int{1, 5, 17, 64, 250, 1000} {
					l, err := ComputeLayout(count, tile, maxExtent, dir)
					if err != nil {
						t.Fatalf("ComputeLayout(%d, %s, %d, %s): %v", count, tile, maxExtent, dir, err)
					}
					if l.Major < 1 || l.Minor < 1 {
						t.Fatalf("empty axis: %+v", l)
					}
					if l.Capacity() < count {
						t.Fatalf("capacity %d < count %d: %+v", l.Capacity(), count, l)
					}
					// The minor axis never carries a completely empty run.
					if l.Capacity()-count >= l.Major {
						t.Fatalf("superfluous minor run: %+v", l)
					}
					if l.Cols()*tile.Width != l.Width || l.Rows()*tile.Height != l.Height {
						t.Fatalf("canvas not a whole number of tiles: %+v", l)
					}
					if dir == RowMajor && l.Cols() != l.Major {
						t.Fatalf("row major: cols %d != major %d", l.Cols(), l.Major)
					}
					if dir == ColumnMajor && l.Rows() != l.Major {
						t.Fatalf("column major: rows %d != major %d", l.Rows(), l.Major)
					}
				}
			}
		}
	}
}

func TestLayoutRectsDisjoint(t *testing.T) {
	for _, dir := range []Direction{RowMajor, ColumnMajor} {
		l, err := ComputeLayout(11, Dimension{7, 5}, 30, dir)
		if err != nil {
			t.Fatal(err)
		}
		owner := make(map[image.Point]int)
		for k := 0; k < l.Count; k++ {
			r := l.Rect(k)
			if !r.In(l.Bounds()) {
				t.Fatalf("%s: rect %v of tile %d outside canvas %v", dir, r, k, l.Bounds())
			}
			for y := r.Min.Y; y < r.Max.Y; y++ {
				for x := r.Min.X; x < r.Max.X; x++ {
					p := image.Pt(x, y)
					if prev, ok := owner[p]; ok {
						t.Fatalf("%s: pixel %v owned by tiles %d and %d", dir, p, prev, k)
					}
					owner[p] = k
				}
			}
		}
	}
}

func TestLayoutCell(t *testing.T) {
	l := Layout{Tile: Dimension{1, 1}, Direction: RowMajor, Major: 3, Minor: 2}
	if row, col := l.Cell(4); row != 1 || col != 1 {
		t.Errorf("row major Cell(4) = (%d,%d), want (1,1)", row, col)
	}
	if row, col := l.Cell(2); row != 0 || col != 2 {
		t.Errorf("row major Cell(2) = (%d,%d), want (0,2)", row, col)
	}

	l.Direction = ColumnMajor
	if row, col := l.Cell(4); row != 1 || col != 1 {
		t.Errorf("column major Cell(4) = (%d,%d), want (1,1)", row, col)
	}
	if row, col := l.Cell(2); row != 2 || col != 0 {
		t.Errorf("column major Cell(2) = (%d,%d), want (2,0)", row, col)
	}
}
