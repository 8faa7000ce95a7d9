// Package pipeline provides the stitch pipeline for imagestitch.
//
// The pipeline turns a directory of same-size images into one contact sheet.
// Centralizing it here keeps the CLI thin and gives tests a single entry
// point with the same defaults the command line uses.
//
// # Architecture
//
// The pipeline runs in two phases:
//
//  1. Plan: index the input directory, drop the output file, sort naturally,
//     measure the tile and compute the grid layout
//  2. Render: allocate the canvas, composite every tile, encode and write
//     the result atomically, followed by the optional JSON atlas
//
// Render consults the artifact cache (when one is configured) before
// allocating anything, so a repeated run with unchanged inputs only copies
// bytes.
//
// # Usage
//
//	runner := pipeline.NewRunner(nil, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Input:     "frames",
//	    Output:    "out/sheet.png",
//	    Max:       1024,
//	    Direction: grid.RowMajor,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Layout.Size())
//
// Run the phases separately:
//
//	plan, err := runner.Plan(ctx, opts)
//	// ... inspect plan.Layout ...
//	result, err := runner.Render(ctx, plan, opts)
package pipeline

import (
	"io"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/imagestitch/pkg/atlas"
	"github.com/matzehuels/imagestitch/pkg/cache"
	"github.com/matzehuels/imagestitch/pkg/compose"
	"github.com/matzehuels/imagestitch/pkg/errors"
	"github.com/matzehuels/imagestitch/pkg/grid"
	"github.com/matzehuels/imagestitch/pkg/imageio"
	"github.com/matzehuels/imagestitch/pkg/index"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and config file
// =============================================================================

const (
	// DefaultInput is the directory scanned when none is given.
	DefaultInput = "."

	// DefaultOutput is where the sheet is written when no path is given.
	DefaultOutput = "output/output.png"

	// DefaultMax is the default maximum row (or column) length in pixels.
	// One pixel always clamps to a single tile per row.
	DefaultMax = 1

	// DefaultFormat is the output encoding. PNG is used regardless of the
	// output file extension unless "auto" is requested.
	DefaultFormat = imageio.FormatPNG

	// DefaultQuality is the JPEG quality.
	DefaultQuality = imageio.DefaultQuality

	// DefaultMismatch is the policy for tiles whose size differs from the first.
	DefaultMismatch = compose.MismatchFail
)

// DefaultDirection fills rows first.
const DefaultDirection = grid.RowMajor

// DefaultWorkers returns the default number of decode workers.
func DefaultWorkers() int {
	return runtime.NumCPU()
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for a stitch run.
// The toml tags match the CLI flag names so a config file can set any of them.
type Options struct {
	Input     string         `toml:"input"`
	Output    string         `toml:"output"`
	Max       int            `toml:"max"`
	Direction grid.Direction `toml:"direction"`

	// Encoding
	Format  string `toml:"format"`
	Quality int    `toml:"quality"`

	// Composition
	Workers    int                    `toml:"workers"`
	Mismatch   compose.MismatchPolicy `toml:"mismatch"`
	Background string                 `toml:"background"`

	// Atlas, when set, is where the JSON frame index is written.
	Atlas string `toml:"atlas"`

	// Runtime options (not read from config)
	Logger *log.Logger `toml:"-"`

	// Progress is called after each placed tile.
	Progress func(done, total int) `toml:"-"`

	// OnPlan is called once the layout is known, before any tile is decoded.
	OnPlan func(*Plan) `toml:"-"`

	// Decode overrides the tile decoder. Nil uses imageio.Decode.
	Decode compose.DecodeFunc `toml:"-"`

	// resolved by ValidateAndSetDefaults
	format     imaging.Format
	background *colorful.Color
	validated  bool
}

// Plan is the outcome of the planning phase.
type Plan struct {
	// Entries are the source images in placement order.
	Entries []index.Entry

	// Skipped lists directory entries that were not images.
	Skipped []index.Skipped

	// Tile is the size of the first entry.
	Tile grid.Dimension

	// Layout is the computed grid.
	Layout grid.Layout

	// IndexTime covers scanning and sorting.
	IndexTime time.Duration
}

// Atlas returns the frame index of the planned sheet. The image field is
// the sheet path relative to the atlas location when both are known.
func (p *Plan) Atlas(output, atlasPath string) *atlas.Atlas {
	image := filepath.Base(output)
	if atlasPath != "" {
		if rel, err := filepath.Rel(filepath.Dir(atlasPath), output); err == nil {
			image = filepath.ToSlash(rel)
		}
	}
	return atlas.New(image, p.Entries, p.Layout)
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// RunID uniquely identifies this run in logs.
	RunID string

	// Output is the path that was written.
	Output string

	// Entries are the source images in placement order.
	Entries []index.Entry

	// Layout is the grid the sheet was built on.
	Layout grid.Layout

	// Bytes is the size of the encoded sheet.
	Bytes int

	// Stats contains timing information.
	Stats Stats

	// CacheHit is true when the encoded sheet came from the cache.
	CacheHit bool
}

// Stats contains pipeline execution statistics.
type Stats struct {
	IndexTime   time.Duration
	ComposeTime time.Duration
	EncodeTime  time.Duration
	WriteTime   time.Duration
	Total       time.Duration
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks option values and applies defaults.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}

	if o.Input == "" {
		o.Input = DefaultInput
	}
	if o.Output == "" {
		o.Output = DefaultOutput
	}
	if o.Max == 0 {
		o.Max = DefaultMax
	}
	if o.Max < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "max must be positive, got %d", o.Max)
	}
	switch o.Direction {
	case grid.RowMajor, grid.ColumnMajor:
	default:
		return errors.New(errors.ErrCodeInvalidDirection, "invalid direction %d", int(o.Direction))
	}

	if o.Format == "" {
		o.Format = DefaultFormat
	}
	format, err := imageio.ResolveFormat(o.Format, o.Output)
	if err != nil {
		return err
	}
	o.format = format

	if o.Quality == 0 {
		o.Quality = DefaultQuality
	}
	if o.Quality < 1 || o.Quality > 100 {
		return errors.New(errors.ErrCodeInvalidInput, "quality must be between 1 and 100, got %d", o.Quality)
	}

	if o.Workers == 0 {
		o.Workers = DefaultWorkers()
	}
	if o.Workers < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "workers must be positive, got %d", o.Workers)
	}

	if o.Atlas != "" && filepath.Clean(o.Atlas) == filepath.Clean(o.Output) {
		return errors.New(errors.ErrCodeInvalidInput, "atlas and output are the same file: %s", o.Atlas)
	}

	mismatch, err := compose.ParseMismatchPolicy(string(o.Mismatch))
	if err != nil {
		return err
	}
	o.Mismatch = mismatch

	bg, err := ParseBackground(o.Background)
	if err != nil {
		return err
	}
	o.background = bg

	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	o.validated = true
	return nil
}

// SheetKeyOpts returns cache key options for the encoded sheet.
func (o *Options) SheetKeyOpts() cache.SheetKeyOpts {
	opts := cache.SheetKeyOpts{
		Max:       o.Max,
		Direction: o.Direction.String(),
		Format:    o.format.String(),
		Mismatch:  string(o.Mismatch),
	}
	if o.format == imaging.JPEG {
		opts.Quality = o.Quality
	}
	if o.background != nil {
		opts.Background = o.background.Hex()
	}
	return opts
}

// WriteOptions returns the encoder settings for the sheet.
func (o *Options) WriteOptions() imageio.WriteOptions {
	return imageio.WriteOptions{Format: o.format, Quality: o.Quality}
}

// ParseBackground parses a canvas fill color.
// The empty string and "transparent" mean no fill. Otherwise s is a CSS hex
// color ("#rgb" or "#rrggbb"); the leading '#' is optional.
func ParseBackground(s string) (*colorful.Color, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "transparent") {
		return nil, nil
	}
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	if len(s) != 4 && len(s) != 7 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "invalid background color %q (want #rgb or #rrggbb)", s)
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid background color %q", s)
	}
	return &c, nil
}
