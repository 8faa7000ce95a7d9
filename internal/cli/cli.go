package cli

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/matzehuels/imagestitch/pkg/buildinfo"
	"github.com/matzehuels/imagestitch/pkg/cache"
	"github.com/matzehuels/imagestitch/pkg/errors"
	"github.com/matzehuels/imagestitch/pkg/observability"
	"github.com/matzehuels/imagestitch/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "imagestitch"

	// configFileName is picked up from the working directory when --config is not given.
	configFileName = appName + ".toml"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
// The root command itself stitches a directory into a sheet.
func (c *CLI) RootCommand() *cobra.Command {
	var verbose bool
	opts := newStitchOpts()

	root := &cobra.Command{
		Use:   appName,
		Short: "Stitch a directory of same-size images into one sheet",
		Long: `imagestitch reads every image in a directory, orders them by natural file
name and copies them into a grid on a single canvas. The grid grows along
rows (X) or columns (Y) until --max pixels, then wraps.`,
		Example: `  imagestitch -i frames -m 1024 -o out/sheet.png
  imagestitch -i frames -m 512 -d Y --background "#202020"
  imagestitch -i icons -m 512 -o sprites.png --atlas sprites.json
  imagestitch plan -i frames -m 1024`,
		Args:          cobra.NoArgs,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if verbose {
				c.SetLogLevel(LogDebug)
				hooks := &logHooks{logger: c.Logger}
				observability.SetPipelineHooks(hooks)
				observability.SetCacheHooks(hooks)
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := applyConfig(cmd.Flags(), opts); err != nil {
				return err
			}
			if err := opts.validate(); err != nil {
				return err
			}
			return c.runStitch(cmd, opts)
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "%s", cmd.CommandPath())
	})
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	bindStitchFlags(root.Flags(), opts)

	// Register all subcommands
	root.AddCommand(c.planCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Flags
// =============================================================================

// stitchOpts is the union of pipeline options and CLI-only switches.
// The toml tags double as the config file schema.
type stitchOpts struct {
	pipeline.Options

	Cache      bool   `toml:"cache"`
	CacheURL   string `toml:"cache-url"`
	NoProgress bool   `toml:"no-progress"`

	config string
}

func newStitchOpts() *stitchOpts {
	return &stitchOpts{Options: pipeline.Options{
		Input:     pipeline.DefaultInput,
		Output:    pipeline.DefaultOutput,
		Max:       pipeline.DefaultMax,
		Direction: pipeline.DefaultDirection,
		Format:    pipeline.DefaultFormat,
		Quality:   pipeline.DefaultQuality,
		Workers:   pipeline.DefaultWorkers(),
		Mismatch:  pipeline.DefaultMismatch,
	}}
}

// validate rejects values the pipeline would otherwise replace with a
// default. Flags and config start from the defaults, so a zero here was
// given explicitly.
func (o *stitchOpts) validate() error {
	if o.Max < 1 {
		return errors.New(errors.ErrCodeInvalidInput, "--max must be a positive number of pixels, got %d", o.Max)
	}
	return nil
}

// bindStitchFlags registers the flags shared by the root and plan commands.
// Flag names match the config file keys.
func bindStitchFlags(fs *pflag.FlagSet, o *stitchOpts) {
	fs.StringVarP(&o.Output, "output", "o", o.Output, "output file")
	fs.StringVarP(&o.Input, "input", "i", o.Input, "directory of images to stitch")
	fs.IntVarP(&o.Max, "max", "m", o.Max, "maximum row (or column) length in pixels")
	fs.VarP(&o.Direction, "direction", "d", "fill rows first (X) or columns first (Y)")
	fs.StringVarP(&o.Format, "format", "f", o.Format, "output format: png, jpeg, gif, tiff, bmp, auto (from extension)")
	fs.IntVar(&o.Quality, "quality", o.Quality, "JPEG quality (1-100)")
	fs.IntVarP(&o.Workers, "workers", "w", o.Workers, "parallel decoders (1 = sequential)")
	fs.StringVar((*string)(&o.Mismatch), "mismatch", string(o.Mismatch), "tiles of a different size: fail, center, anchor")
	fs.StringVar(&o.Background, "background", "", "canvas fill color as hex (default transparent)")
	fs.StringVar(&o.Atlas, "atlas", "", "also write a JSON index of frame positions to this file")
	fs.StringVar(&o.config, "config", "", "config file (default ./"+configFileName+" if present)")
	fs.BoolVar(&o.Cache, "cache", false, "reuse sheets from the local cache when inputs are unchanged")
	fs.StringVar(&o.CacheURL, "cache-url", "", "shared cache, e.g. redis://localhost:6379/0 (implies --cache)")
	fs.BoolVar(&o.NoProgress, "no-progress", false, "disable the progress display")
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(o *stitchOpts) (*pipeline.Runner, error) {
	store, err := newCache(o)
	if err != nil {
		return nil, err
	}
	keyer := cache.NewScopedKeyer(nil, buildinfo.CacheScope())
	return pipeline.NewRunner(store, keyer, c.Logger), nil
}

func newCache(o *stitchOpts) (cache.Cache, error) {
	if o.CacheURL != "" {
		rc, err := cache.NewRedisCache(o.CacheURL)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid --cache-url")
		}
		return rc, nil
	}
	if !o.Cache {
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodePath, err, "open cache")
	}
	return fc, nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/imagestitch/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
