package compose

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"sync/atomic"
	"testing"

	"github.com/matzehuels/imagestitch/pkg/errors"
	"github.com/matzehuels/imagestitch/pkg/grid"
)

// tileColor gives every tile ordinal a distinct opaque color.
func tileColor(k int) color.NRGBA {
	return color.NRGBA{R: uint8(10 + k*20), G: uint8(200 - k*15), B: uint8(k * 7), A: 255}
}

func solid(w, h int, c color.Color) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// memDecoder serves images from memory keyed by path.
func memDecoder(images map[string]image.Image) DecodeFunc {
	return func(path string) (image.Image, error) {
		img, ok := images[path]
		if !ok {
			return nil, fmt.Errorf("no such image %q", path)
		}
		return img, nil
	}
}

func fixture(n int, tile grid.Dimension) ([]string, map[string]image.Image) {
	paths := make([]string, n)
	images := make(map[string]image.Image, n)
	for k := 0; k < n; k++ {
		paths[k] = fmt.Sprintf("img%d.png", k)
		images[paths[k]] = solid(tile.Width, tile.Height, tileColor(k))
	}
	return paths, images
}

func TestComposeScenarios(t *testing.T) {
	tests := []struct {
		name    string
		n       int
		tile    grid.Dimension
		max     int
		dir     grid.Direction
		size    image.Point
		origins []image.Point
	}{
		{
			name: "four tiles row major",
			n:    4, tile: grid.Dimension{Width: 100, Height: 100}, max: 250, dir: grid.RowMajor,
			size:    image.Pt(200, 200),
			origins: []image.Point{{0, 0}, {100, 0}, {0, 100}, {100, 100}},
		},
		{
			name: "five tiles column major",
			n:    5, tile: grid.Dimension{Width: 50, Height: 50}, max: 50, dir: grid.ColumnMajor,
			size:    image.Pt(250, 50),
			origins: []image.Point{{0, 0}, {50, 0}, {100, 0}, {150, 0}, {200, 0}},
		},
		{
			name: "column major fills downward first",
			n:    3, tile: grid.Dimension{Width: 4, Height: 6}, max: 12, dir: grid.ColumnMajor,
			size:    image.Pt(8, 12),
			origins: []image.Point{{0, 0}, {0, 6}, {4, 0}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := grid.ComputeLayout(tt.n, tt.tile, tt.max, tt.dir)
			if err != nil {
				t.Fatal(err)
			}
			paths, images := fixture(tt.n, tt.tile)
			canvas := NewCanvas(l, nil)

			c := &Compositor{Decode: memDecoder(images)}
			if err := c.Compose(context.Background(), paths, l, canvas); err != nil {
				t.Fatalf("Compose() error: %v", err)
			}

			if got := canvas.Bounds().Size(); got != tt.size {
				t.Fatalf("canvas size = %v, want %v", got, tt.size)
			}
			for k, o := range tt.origins {
				want := tileColor(k)
				corners := []image.Point{o, o.Add(image.Pt(tt.tile.Width-1, tt.tile.Height-1))}
				for _, p := range corners {
					if got := canvas.NRGBAAt(p.X, p.Y); got != want {
						t.Errorf("pixel %v = %v, want tile %d color %v", p, got, k, want)
					}
				}
			}
		})
	}
}

func TestNewCanvasFill(t *testing.T) {
	l, err := grid.ComputeLayout(3, grid.Dimension{Width: 2, Height: 2}, 4, grid.RowMajor)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		bg   color.Color
		want color.NRGBA
	}{
		{"transparent", nil, color.NRGBA{}},
		{"opaque", color.NRGBA{R: 255, A: 255}, color.NRGBA{R: 255, A: 255}},
		{"half alpha", color.NRGBA{R: 200, G: 100, B: 50, A: 128}, color.NRGBA{R: 200, G: 100, B: 50, A: 128}},
		{"low alpha", color.NRGBA{R: 1, G: 2, B: 3, A: 4}, color.NRGBA{R: 1, G: 2, B: 3, A: 4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			canvas := NewCanvas(l, tt.bg)
			b := canvas.Bounds()
			for y := b.Min.Y; y < b.Max.Y; y++ {
				for x := b.Min.X; x < b.Max.X; x++ {
					if got := canvas.NRGBAAt(x, y); got != tt.want {
						t.Fatalf("pixel (%d,%d) = %v, want %v", x, y, got, tt.want)
					}
				}
			}
		})
	}
}

func TestComposeLeavesUnusedCellsAtBackground(t *testing.T) {
	tile := grid.Dimension{Width: 3, Height: 3}
	l, err := grid.ComputeLayout(5, tile, 9, grid.RowMajor)
	if err != nil {
		t.Fatal(err)
	}
	paths, images := fixture(5, tile)
	bg := color.NRGBA{R: 1, G: 2, B: 3, A: 4}
	canvas := NewCanvas(l, bg)

	c := &Compositor{Decode: memDecoder(images)}
	if err := c.Compose(context.Background(), paths, l, canvas); err != nil {
		t.Fatal(err)
	}

	// Cell 5 (row 1, col 2) is unused.
	for y := 3; y < 6; y++ {
		for x := 6; x < 9; x++ {
			if got := canvas.NRGBAAt(x, y); got != bg {
				t.Fatalf("unused pixel (%d,%d) = %v, want background %v", x, y, got, bg)
			}
		}
	}
}

func TestComposeOverwritesWithoutBlending(t *testing.T) {
	tile := grid.Dimension{Width: 2, Height: 2}
	l, err := grid.ComputeLayout(1, tile, 2, grid.RowMajor)
	if err != nil {
		t.Fatal(err)
	}
	translucent := color.NRGBA{R: 255, G: 0, B: 0, A: 64}
	// RGBA source exercises the generic draw path rather than the row copy.
	src := image.NewRGBA(image.Rect(0, 0, 2, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			src.Set(x, y, translucent)
		}
	}
	canvas := NewCanvas(l, color.NRGBA{G: 255, A: 255})

	c := &Compositor{Decode: memDecoder(map[string]image.Image{"a": src})}
	if err := c.Compose(context.Background(), []string{"a"}, l, canvas); err != nil {
		t.Fatal(err)
	}

	got := canvas.NRGBAAt(1, 1)
	if got.G != 0 || got.A != 64 {
		t.Errorf("pixel = %v, want straight copy of %v", got, translucent)
	}
}

func TestComposeParallelMatchesSequential(t *testing.T) {
	tile := grid.Dimension{Width: 9, Height: 5}
	paths, images := fixture(23, tile)
	for _, dir := range []grid.Direction{grid.RowMajor, grid.ColumnMajor} {
		l, err := grid.ComputeLayout(len(paths), tile, 40, dir)
		if err != nil {
			t.Fatal(err)
		}

		seq := NewCanvas(l, nil)
		if err := (&Compositor{Decode: memDecoder(images), Workers: 1}).Compose(context.Background(), paths, l, seq); err != nil {
			t.Fatal(err)
		}
		par := NewCanvas(l, nil)
		if err := (&Compositor{Decode: memDecoder(images), Workers: 8}).Compose(context.Background(), paths, l, par); err != nil {
			t.Fatal(err)
		}
		again := NewCanvas(l, nil)
		if err := (&Compositor{Decode: memDecoder(images), Workers: 8}).Compose(context.Background(), paths, l, again); err != nil {
			t.Fatal(err)
		}

		if !bytes.Equal(seq.Pix, par.Pix) {
			t.Errorf("%s: parallel canvas differs from sequential", dir)
		}
		if !bytes.Equal(par.Pix, again.Pix) {
			t.Errorf("%s: repeated composition is not identical", dir)
		}
	}
}

func TestComposeProgress(t *testing.T) {
	tile := grid.Dimension{Width: 1, Height: 1}
	paths, images := fixture(6, tile)
	l, err := grid.ComputeLayout(len(paths), tile, 3, grid.RowMajor)
	if err != nil {
		t.Fatal(err)
	}

	var calls, last int32
	c := &Compositor{
		Decode:  memDecoder(images),
		Workers: 3,
		Progress: func(done, total int) {
			atomic.AddInt32(&calls, 1)
			atomic.StoreInt32(&last, int32(done))
			if total != 6 {
				t.Errorf("total = %d, want 6", total)
			}
		},
	}
	if err := c.Compose(context.Background(), paths, l, NewCanvas(l, nil)); err != nil {
		t.Fatal(err)
	}
	if calls != 6 || last != 6 {
		t.Errorf("progress calls = %d, last = %d; want 6, 6", calls, last)
	}
}

func TestComposeDimensionMismatch(t *testing.T) {
	tile := grid.Dimension{Width: 4, Height: 4}
	l, err := grid.ComputeLayout(2, tile, 8, grid.RowMajor)
	if err != nil {
		t.Fatal(err)
	}
	images := map[string]image.Image{
		"a": solid(4, 4, tileColor(0)),
		"b": solid(2, 6, tileColor(1)),
	}

	c := &Compositor{Decode: memDecoder(images)}
	err = c.Compose(context.Background(), []string{"a", "b"}, l, NewCanvas(l, nil))
	if !errors.Is(err, errors.ErrCodeDimensionMismatch) {
		t.Fatalf("Compose() error = %v, want DIMENSION_MISMATCH", err)
	}
}

func TestComposeMismatchPolicies(t *testing.T) {
	tile := grid.Dimension{Width: 4, Height: 4}
	l, err := grid.ComputeLayout(2, tile, 8, grid.RowMajor)
	if err != nil {
		t.Fatal(err)
	}
	small := solid(2, 2, tileColor(1))
	tall := solid(2, 8, tileColor(1))
	bg := color.NRGBA{}

	tests := []struct {
		name    string
		policy  MismatchPolicy
		img     image.Image
		painted []image.Point
		blank   []image.Point
	}{
		{
			name: "center small", policy: MismatchCenter, img: small,
			painted: []image.Point{{5, 1}, {6, 2}},
			blank:   []image.Point{{4, 0}, {7, 3}},
		},
		{
			name: "anchor small", policy: MismatchAnchor, img: small,
			painted: []image.Point{{4, 0}, {5, 1}},
			blank:   []image.Point{{6, 2}, {7, 3}},
		},
		{
			name: "center clips overflow", policy: MismatchCenter, img: tall,
			painted: []image.Point{{5, 0}, {6, 3}},
			blank:   []image.Point{{4, 0}, {7, 3}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			images := map[string]image.Image{"a": solid(4, 4, tileColor(0)), "b": tt.img}
			canvas := NewCanvas(l, nil)
			c := &Compositor{Decode: memDecoder(images), Mismatch: tt.policy}
			if err := c.Compose(context.Background(), []string{"a", "b"}, l, canvas); err != nil {
				t.Fatalf("Compose() error: %v", err)
			}
			for _, p := range tt.painted {
				if got := canvas.NRGBAAt(p.X, p.Y); got != tileColor(1) {
					t.Errorf("pixel %v = %v, want tile color", p, got)
				}
			}
			for _, p := range tt.blank {
				if got := canvas.NRGBAAt(p.X, p.Y); got != bg {
					t.Errorf("pixel %v = %v, want background", p, got)
				}
			}
			// The neighbouring cell must be untouched by clipping.
			if got := canvas.NRGBAAt(3, 3); got != tileColor(0) {
				t.Errorf("neighbour pixel = %v, want tile 0 color", got)
			}
		})
	}
}

func TestComposeDecodeError(t *testing.T) {
	tile := grid.Dimension{Width: 2, Height: 2}
	paths, images := fixture(4, tile)
	delete(images, paths[2])
	l, err := grid.ComputeLayout(len(paths), tile, 4, grid.RowMajor)
	if err != nil {
		t.Fatal(err)
	}

	for _, workers := range []int{1, 4} {
		c := &Compositor{Decode: memDecoder(images), Workers: workers}
		err := c.Compose(context.Background(), paths, l, NewCanvas(l, nil))
		if !errors.Is(err, errors.ErrCodeDecode) {
			t.Errorf("workers=%d: Compose() error = %v, want DECODE_FAILED", workers, err)
		}
	}
}

func TestComposeValidation(t *testing.T) {
	tile := grid.Dimension{Width: 2, Height: 2}
	l, err := grid.ComputeLayout(2, tile, 4, grid.RowMajor)
	if err != nil {
		t.Fatal(err)
	}
	paths, images := fixture(3, tile)
	c := &Compositor{Decode: memDecoder(images)}

	if err := c.Compose(context.Background(), paths, l, NewCanvas(l, nil)); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("too many images: error = %v, want INVALID_INPUT", err)
	}

	small := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	if err := c.Compose(context.Background(), paths[:2], l, small); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("small canvas: error = %v, want INVALID_INPUT", err)
	}
}

func TestComposeCancelled(t *testing.T) {
	tile := grid.Dimension{Width: 2, Height: 2}
	paths, images := fixture(4, tile)
	l, err := grid.ComputeLayout(len(paths), tile, 4, grid.RowMajor)
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := &Compositor{Decode: memDecoder(images)}
	if err := c.Compose(ctx, paths, l, NewCanvas(l, nil)); err != context.Canceled {
		t.Errorf("Compose() error = %v, want context.Canceled", err)
	}
}

func TestParseMismatchPolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    MismatchPolicy
		wantErr bool
	}{
		{"", MismatchFail, false},
		{"fail", MismatchFail, false},
		{"Center", MismatchCenter, false},
		{"anchor", MismatchAnchor, false},
		{"stretch", "", true},
	}
	for _, tt := range tests {
		got, err := ParseMismatchPolicy(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseMismatchPolicy(%q) = %q, %v", tt.in, got, err)
		}
	}
}
