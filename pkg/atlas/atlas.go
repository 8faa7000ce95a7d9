package atlas

import (
	"bytes"
	"encoding/json"
	"io"
	"os"

	"github.com/matzehuels/imagestitch/pkg/errors"
	"github.com/matzehuels/imagestitch/pkg/grid"
	"github.com/matzehuels/imagestitch/pkg/imageio"
	"github.com/matzehuels/imagestitch/pkg/index"
)

// Atlas is the frame index of one sheet.
type Atlas struct {
	Image     string         `json:"image"`
	Width     int            `json:"width"`
	Height    int            `json:"height"`
	Tile      grid.Dimension `json:"tile"`
	Direction grid.Direction `json:"direction"`
	Frames    []Frame        `json:"frames"`
}

// Frame is one placed tile.
type Frame struct {
	Name   string          `json:"name"`
	X      int             `json:"x"`
	Y      int             `json:"y"`
	W      int             `json:"w"`
	H      int             `json:"h"`
	Row    int             `json:"row"`
	Col    int             `json:"col"`
	Source *grid.Dimension `json:"source,omitempty"`
}

// New builds the atlas for entries placed by layout on the sheet named image.
func New(image string, entries []index.Entry, layout grid.Layout) *Atlas {
	a := &Atlas{
		Image:     image,
		Width:     layout.Width,
		Height:    layout.Height,
		Tile:      layout.Tile,
		Direction: layout.Direction,
		Frames:    make([]Frame, len(entries)),
	}
	for k, e := range entries {
		r := layout.Rect(k)
		row, col := layout.Cell(k)
		f := Frame{
			Name: e.Name,
			X:    r.Min.X,
			Y:    r.Min.Y,
			W:    r.Dx(),
			H:    r.Dy(),
			Row:  row,
			Col:  col,
		}
		if e.Size != layout.Tile {
			size := e.Size
			f.Source = &size
		}
		a.Frames[k] = f
	}
	return a
}

// Lookup returns the frame named name.
func (a *Atlas) Lookup(name string) (Frame, bool) {
	for _, f := range a.Frames {
		if f.Name == name {
			return f, true
		}
	}
	return Frame{}, false
}

// Write encodes a as indented JSON.
func Write(a *Atlas, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(a); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode atlas")
	}
	return nil
}

// Export writes a to path, replacing any previous file atomically.
func Export(a *Atlas, path string) error {
	var buf bytes.Buffer
	if err := Write(a, &buf); err != nil {
		return err
	}
	return imageio.WriteBytes(path, buf.Bytes())
}

// Read decodes an atlas and checks that every frame lies on the sheet and
// that no name repeats.
func Read(r io.Reader) (*Atlas, error) {
	var a Atlas
	if err := json.NewDecoder(r).Decode(&a); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode atlas")
	}

	seen := make(map[string]bool, len(a.Frames))
	for _, f := range a.Frames {
		if seen[f.Name] {
			return nil, errors.New(errors.ErrCodeInvalidInput, "duplicate frame %q", f.Name)
		}
		seen[f.Name] = true
		if f.X < 0 || f.Y < 0 || f.W <= 0 || f.H <= 0 || f.X+f.W > a.Width || f.Y+f.H > a.Height {
			return nil, errors.New(errors.ErrCodeInvalidInput, "frame %q (%d,%d %dx%d) is outside the %dx%d sheet",
				f.Name, f.X, f.Y, f.W, f.H, a.Width, a.Height)
		}
	}
	return &a, nil
}

// Import reads the atlas at path.
func Import(path string) (*Atlas, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeInputNotFound, err, "open atlas %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodePath, err, "open atlas %s", path)
	}
	defer f.Close()
	return Read(f)
}
