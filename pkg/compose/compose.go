// Package compose places decoded tiles onto a contact-sheet canvas.
//
// A [Compositor] walks an ordered list of image paths, decodes each one and
// overwrites the canvas rectangle that [grid.Layout.Rect] assigns to its
// ordinal. Pixels are copied, never blended: the destination cell is fully
// replaced by the tile.
//
// Decoding may run on several workers. Every tile owns a disjoint canvas
// rectangle, so workers write to the shared canvas without locking; the
// canvas must be allocated (see [NewCanvas]) before Compose is called and is
// never resized.
package compose

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"strings"
	"sync"

	"golang.org/x/image/draw"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/imagestitch/pkg/errors"
	"github.com/matzehuels/imagestitch/pkg/grid"
	"github.com/matzehuels/imagestitch/pkg/imageio"
)

// DecodeFunc loads the image stored at path.
type DecodeFunc func(path string) (image.Image, error)

// MismatchPolicy decides what happens to a tile whose size differs from the
// layout's tile size.
type MismatchPolicy string

const (
	// MismatchFail aborts composition with DIMENSION_MISMATCH.
	MismatchFail MismatchPolicy = "fail"
	// MismatchCenter centers the tile in its cell, clipping what overflows.
	MismatchCenter MismatchPolicy = "center"
	// MismatchAnchor pins the tile to the cell's top-left corner, clipping what overflows.
	MismatchAnchor MismatchPolicy = "anchor"
)

// ParseMismatchPolicy parses a policy name (case-insensitive).
func ParseMismatchPolicy(s string) (MismatchPolicy, error) {
	switch p := MismatchPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case MismatchFail, MismatchCenter, MismatchAnchor:
		return p, nil
	case "":
		return MismatchFail, nil
	}
	return "", errors.New(errors.ErrCodeInvalidInput, "invalid mismatch policy: %q (must be one of: fail, center, anchor)", s)
}

// Compositor copies decoded tiles into their grid cells.
// The zero value decodes with [imageio.Decode] on a single worker and fails
// on size mismatches.
type Compositor struct {
	Decode   DecodeFunc
	Workers  int
	Mismatch MismatchPolicy

	// Progress, if set, is called after each tile is placed. Calls are
	// serialized; done counts placed tiles.
	Progress func(done, total int)
}

// NewCanvas allocates a canvas for l filled with bg.
// A nil bg leaves the canvas fully transparent.
func NewCanvas(l grid.Layout, bg color.Color) *image.NRGBA {
	canvas := image.NewNRGBA(l.Bounds())
	if bg == nil {
		return canvas
	}
	// Store the straight-alpha value directly; a premultiplied round trip
	// through draw loses low-alpha colors.
	c := color.NRGBAModel.Convert(bg).(color.NRGBA)
	px := []uint8{c.R, c.G, c.B, c.A}
	row := canvas.Pix[:canvas.Rect.Dx()*4]
	for i := 0; i < len(row); i += 4 {
		copy(row[i:i+4], px)
	}
	for y := 1; y < canvas.Rect.Dy(); y++ {
		copy(canvas.Pix[y*canvas.Stride:], row)
	}
	return canvas
}

// Compose places paths[k] into cell k of l on canvas.
// The first failure cancels outstanding work and is returned; cells after a
// failure may or may not have been written.
func (c *Compositor) Compose(ctx context.Context, paths []string, l grid.Layout, canvas draw.Image) error {
	if len(paths) > l.Capacity() {
		return errors.New(errors.ErrCodeInvalidInput, "%d images do not fit a %dx%d grid", len(paths), l.Major, l.Minor)
	}
	if !l.Bounds().In(canvas.Bounds()) {
		return errors.New(errors.ErrCodeInvalidInput, "canvas %v smaller than layout %v", canvas.Bounds(), l.Bounds())
	}

	decode := c.Decode
	if decode == nil {
		decode = imageio.Decode
	}
	policy := c.Mismatch
	if policy == "" {
		policy = MismatchFail
	}

	var (
		mu   sync.Mutex
		done int
	)
	report := func() {
		if c.Progress == nil {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		done++
		c.Progress(done, len(paths))
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, c.Workers))
	for k, path := range paths {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			img, err := decode(path)
			if err != nil {
				if errors.GetCode(err) == "" {
					err = errors.Wrap(errors.ErrCodeDecode, err, "decode %s", path)
				}
				return err
			}
			if err := place(canvas, l, k, img, policy); err != nil {
				return errors.Wrap(errors.ErrCodeDimensionMismatch, err, "%s", path)
			}
			report()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// place copies img into cell k. It only ever writes inside l.Rect(k).
func place(canvas draw.Image, l grid.Layout, k int, img image.Image, policy MismatchPolicy) error {
	cell := l.Rect(k)
	src := img.Bounds()
	size := grid.DimensionOf(src)

	var offset image.Point
	if size != l.Tile {
		switch policy {
		case MismatchCenter:
			offset = image.Pt((l.Tile.Width-size.Width)/2, (l.Tile.Height-size.Height)/2)
		case MismatchAnchor:
		default:
			return fmt.Errorf("image is %s, sheet tiles are %s", size, l.Tile)
		}
	}

	// Where the whole source would land, then clipped to the cell.
	at := cell.Min.Add(offset)
	r := image.Rectangle{Min: at, Max: at.Add(size.Point())}.Intersect(cell)
	if r.Empty() {
		return nil
	}
	sp := src.Min.Add(r.Min.Sub(at))

	dst, dok := canvas.(*image.NRGBA)
	s, sok := img.(*image.NRGBA)
	if dok && sok {
		copyRows(dst, r, s, sp)
		return nil
	}
	draw.Draw(canvas, r, img, sp, draw.Src)
	return nil
}

// copyRows overwrites r of dst with the same-sized region of src at sp.
func copyRows(dst *image.NRGBA, r image.Rectangle, src *image.NRGBA, sp image.Point) {
	n := r.Dx() * 4
	for y := 0; y < r.Dy(); y++ {
		di := dst.PixOffset(r.Min.X, r.Min.Y+y)
		si := src.PixOffset(sp.X, sp.Y+y)
		copy(dst.Pix[di:di+n], src.Pix[si:si+n])
	}
}
