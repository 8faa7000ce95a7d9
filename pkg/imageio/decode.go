package imageio

import (
	"bufio"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"os"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"  // register BMP decoder
	_ "golang.org/x/image/tiff" // register TIFF decoder
	_ "golang.org/x/image/webp" // register WebP decoder

	"github.com/matzehuels/imagestitch/pkg/errors"
	"github.com/matzehuels/imagestitch/pkg/grid"
)

// Header is what Sniff learns about a file without decoding its pixels.
type Header struct {
	Format string         // registered format name, e.g. "png"
	Size   grid.Dimension // pixel size from the file header
}

// Sniff reads just enough of path to identify its image format and size.
// Files that no registered decoder recognizes yield an error.
func Sniff(path string) (Header, error) {
	f, err := os.Open(path)
	if err != nil {
		return Header{}, err
	}
	defer f.Close()

	cfg, format, err := image.DecodeConfig(bufio.NewReader(f))
	if err != nil {
		return Header{}, err
	}
	return Header{
		Format: format,
		Size:   grid.Dimension{Width: cfg.Width, Height: cfg.Height},
	}, nil
}

// Decode reads and decodes the image at path.
// EXIF orientation is not applied so tiles keep their stored dimensions.
func Decode(path string) (image.Image, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(false))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDecode, err, "decode %s", path)
	}
	return img, nil
}
