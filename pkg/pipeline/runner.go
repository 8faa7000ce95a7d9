package pipeline

import (
	"context"
	"image/color"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/imagestitch/pkg/atlas"
	"github.com/matzehuels/imagestitch/pkg/cache"
	"github.com/matzehuels/imagestitch/pkg/compose"
	"github.com/matzehuels/imagestitch/pkg/errors"
	"github.com/matzehuels/imagestitch/pkg/grid"
	"github.com/matzehuels/imagestitch/pkg/imageio"
	"github.com/matzehuels/imagestitch/pkg/index"
	"github.com/matzehuels/imagestitch/pkg/observability"
)

// Runner encapsulates pipeline execution with caching.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs plan and render back to back.
// opts.OnPlan, when set, sees the plan before any tile is decoded.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	start := time.Now()
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	plan, err := r.Plan(ctx, opts)
	if err != nil {
		return nil, err
	}
	if opts.OnPlan != nil {
		opts.OnPlan(plan)
	}

	result, err := r.Render(ctx, plan, opts)
	if err != nil {
		return nil, err
	}
	result.Stats.IndexTime = plan.IndexTime
	result.Stats.Total = time.Since(start)
	return result, nil
}

// Plan indexes opts.Input and computes the grid without decoding any pixels.
func (r *Runner) Plan(ctx context.Context, opts Options) (*Plan, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	plan := &Plan{}
	err := runStage(ctx, observability.StageIndex, &plan.IndexTime, func() error {
		entries, skipped, err := index.Scan(opts.Input)
		if err != nil {
			return err
		}
		for _, s := range skipped {
			opts.Logger.Debug("skipped", "path", s.Path, "reason", s.Reason)
		}
		entries = index.Exclude(entries, opts.Output)
		index.Sort(entries)
		plan.Entries, plan.Skipped = entries, skipped
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(plan.Entries) == 0 {
		return nil, errors.New(errors.ErrCodeEmptyInput, "no images found in %s", opts.Input)
	}
	plan.Tile = plan.Entries[0].Size

	if opts.Mismatch == compose.MismatchFail {
		if err := checkSizes(plan.Entries, plan.Tile); err != nil {
			return nil, err
		}
	}

	layout, err := grid.ComputeLayout(len(plan.Entries), plan.Tile, opts.Max, opts.Direction)
	if err != nil {
		return nil, err
	}
	plan.Layout = layout

	opts.Logger.Debug("planned layout",
		"images", len(plan.Entries),
		"tile", plan.Tile,
		"grid", grid.Dimension{Width: layout.Cols(), Height: layout.Rows()},
		"canvas", layout.Size(),
		"duration", plan.IndexTime)

	return plan, nil
}

// Render builds the sheet described by plan and writes it to opts.Output.
func (r *Runner) Render(ctx context.Context, plan *Plan, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	result := &Result{
		RunID:   uuid.NewString(),
		Output:  opts.Output,
		Entries: plan.Entries,
		Layout:  plan.Layout,
	}
	logger := opts.Logger.With("run", result.RunID)

	key := r.sheetKey(plan.Entries, opts)
	if key != "" {
		data, hit, err := r.Cache.Get(ctx, key)
		if err != nil {
			logger.Warn("cache lookup failed", "error", err)
		}
		if hit {
			observability.Cache().OnCacheHit(ctx, key)
			logger.Debug("cache hit", "key", key)
			err := runStage(ctx, observability.StageWrite, &result.Stats.WriteTime, func() error {
				return imageio.WriteBytes(opts.Output, data)
			})
			if err != nil {
				return nil, err
			}
			result.Bytes = len(data)
			result.CacheHit = true
			return result, r.writeAtlas(ctx, plan, opts, result)
		}
		observability.Cache().OnCacheMiss(ctx, key)
	}

	var bg color.Color
	if opts.background != nil {
		bg = *opts.background
	}
	canvas := compose.NewCanvas(plan.Layout, bg)

	comp := compose.Compositor{
		Decode:   opts.Decode,
		Workers:  opts.Workers,
		Mismatch: opts.Mismatch,
		Progress: func(done, total int) {
			observability.Pipeline().OnTilePlaced(ctx, done, total)
			if opts.Progress != nil {
				opts.Progress(done, total)
			}
		},
	}
	err := runStage(ctx, observability.StageCompose, &result.Stats.ComposeTime, func() error {
		return comp.Compose(ctx, index.Paths(plan.Entries), plan.Layout, canvas)
	})
	if err != nil {
		return nil, err
	}
	logger.Debug("composed tiles", "count", len(plan.Entries), "workers", opts.Workers, "duration", result.Stats.ComposeTime)

	var data []byte
	err = runStage(ctx, observability.StageEncode, &result.Stats.EncodeTime, func() error {
		var err error
		data, err = imageio.EncodeBytes(canvas, opts.WriteOptions())
		return err
	})
	if err != nil {
		return nil, err
	}

	if key != "" {
		if err := r.Cache.Set(ctx, key, data, cache.DefaultTTL); err != nil {
			logger.Warn("cache store failed", "error", err)
		} else {
			observability.Cache().OnCacheSet(ctx, key, len(data))
		}
	}

	err = runStage(ctx, observability.StageWrite, &result.Stats.WriteTime, func() error {
		return imageio.WriteBytes(opts.Output, data)
	})
	if err != nil {
		return nil, err
	}
	result.Bytes = len(data)
	logger.Debug("wrote sheet", "path", opts.Output, "bytes", result.Bytes, "duration", result.Stats.WriteTime)

	if err := r.writeAtlas(ctx, plan, opts, result); err != nil {
		return nil, err
	}
	return result, nil
}

// writeAtlas exports the frame index when opts.Atlas is set. Its time is
// added to the write stage.
func (r *Runner) writeAtlas(ctx context.Context, plan *Plan, opts Options, result *Result) error {
	if opts.Atlas == "" {
		return nil
	}
	var elapsed time.Duration
	err := runStage(ctx, observability.StageWrite, &elapsed, func() error {
		return atlas.Export(plan.Atlas(opts.Output, opts.Atlas), opts.Atlas)
	})
	result.Stats.WriteTime += elapsed
	if err != nil {
		return err
	}
	opts.Logger.Debug("wrote atlas", "path", opts.Atlas, "frames", len(plan.Entries))
	return nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// sheetKey returns the cache key for the sheet, or "" when caching is off
// or an input cannot be fingerprinted.
func (r *Runner) sheetKey(entries []index.Entry, opts Options) string {
	if _, ok := r.Cache.(cache.NullCache); ok {
		return ""
	}
	inputs := make([]cache.InputFingerprint, len(entries))
	for i, e := range entries {
		fp, err := fingerprint(e.Path)
		if err != nil {
			opts.Logger.Debug("cache bypassed", "path", e.Path, "error", err)
			return ""
		}
		inputs[i] = fp
	}
	return r.Keyer.SheetKey(inputs, opts.SheetKeyOpts())
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

func fingerprint(path string) (cache.InputFingerprint, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return cache.InputFingerprint{}, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return cache.InputFingerprint{}, err
	}
	return cache.InputFingerprint{
		Name:    abs,
		Size:    info.Size(),
		ModTime: info.ModTime().UnixNano(),
	}, nil
}

// checkSizes fails on the first entry whose header size differs from tile.
func checkSizes(entries []index.Entry, tile grid.Dimension) error {
	for _, e := range entries {
		if e.Size != tile {
			return errors.New(errors.ErrCodeDimensionMismatch,
				"%s is %s, expected %s", e.Path, e.Size, tile)
		}
	}
	return nil
}

// runStage times fn and reports it to the registered pipeline hooks.
func runStage(ctx context.Context, stage string, elapsed *time.Duration, fn func() error) error {
	hooks := observability.Pipeline()
	hooks.OnStageStart(ctx, stage)
	start := time.Now()
	err := fn()
	*elapsed = time.Since(start)
	hooks.OnStageComplete(ctx, stage, *elapsed, err)
	return err
}
