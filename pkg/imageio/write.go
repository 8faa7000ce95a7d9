package imageio

import (
	"bufio"
	"bytes"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/matzehuels/imagestitch/pkg/errors"
)

// Format names accepted by ResolveFormat.
const (
	FormatAuto = "auto"
	FormatPNG  = "png"
	FormatJPEG = "jpeg"
	FormatGIF  = "gif"
	FormatTIFF = "tiff"
	FormatBMP  = "bmp"
)

// DefaultQuality is the JPEG quality used when none is configured.
const DefaultQuality = 95

// ValidFormats is the set of supported output format names.
var ValidFormats = map[string]bool{
	FormatAuto: true,
	FormatPNG:  true,
	FormatJPEG: true,
	"jpg":      true,
	FormatGIF:  true,
	FormatTIFF: true,
	"tif":      true,
	FormatBMP:  true,
}

// ValidateFormat checks that name is a supported output format.
func ValidateFormat(name string) error {
	if !ValidFormats[strings.ToLower(name)] {
		return errors.New(errors.ErrCodeInvalidFormat,
			"invalid format: %q (must be one of: png, jpeg, gif, tiff, bmp, auto)", name)
	}
	return nil
}

// ResolveFormat maps a format name to an encoder format.
// An empty name means PNG regardless of the extension of path; "auto" infers
// the format from the extension of path.
func ResolveFormat(name, path string) (imaging.Format, error) {
	name = strings.ToLower(name)
	switch name {
	case "":
		return imaging.PNG, nil
	case FormatAuto:
		f, err := imaging.FormatFromFilename(path)
		if err != nil {
			return 0, errors.Wrap(errors.ErrCodeInvalidFormat, err, "cannot infer format from %q", filepath.Base(path))
		}
		return f, nil
	}
	if err := ValidateFormat(name); err != nil {
		return 0, err
	}
	f, err := imaging.FormatFromExtension(name)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeInvalidFormat, err, "unsupported format %q", name)
	}
	return f, nil
}

// WriteOptions configures sheet encoding.
type WriteOptions struct {
	Format  imaging.Format
	Quality int // JPEG quality (1-100); zero means DefaultQuality
}

// Encode writes img to w in the configured format.
func Encode(w io.Writer, img image.Image, opts WriteOptions) error {
	q := opts.Quality
	if q <= 0 {
		q = DefaultQuality
	}
	if err := imaging.Encode(w, img, opts.Format, imaging.JPEGQuality(q)); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "encode %s", opts.Format)
	}
	return nil
}

// EncodeBytes encodes img into memory.
func EncodeBytes(img image.Image, opts WriteOptions) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, img, opts); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write encodes img and stores it at path, creating parent directories.
func Write(path string, img image.Image, opts WriteOptions) error {
	return writeAtomic(path, func(w io.Writer) error {
		return Encode(w, img, opts)
	})
}

// WriteBytes stores already encoded data at path, creating parent directories.
func WriteBytes(path string, data []byte) error {
	return writeAtomic(path, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
}

// writeAtomic streams fill into a temporary sibling of path and renames it
// into place once everything has been flushed.
func writeAtomic(path string, fill func(io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrap(errors.ErrCodePath, err, "create directory %s", dir)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return errors.Wrap(errors.ErrCodePath, err, "create %s", path)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	bw := bufio.NewWriter(tmp)
	if err := fill(bw); err != nil {
		if errors.GetCode(err) != "" {
			return err
		}
		return errors.Wrap(errors.ErrCodeIO, err, "write %s", path)
	}
	if err := bw.Flush(); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "write %s", path)
	}
	if err := tmp.Chmod(0644); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "chmod %s", tmp.Name())
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "close %s", tmp.Name())
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return errors.Wrap(errors.ErrCodePath, err, "rename into %s", path)
	}
	committed = true
	return nil
}
