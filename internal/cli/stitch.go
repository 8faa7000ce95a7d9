package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/imagestitch/pkg/pipeline"
)

// runStitch builds the sheet and prints the run summary to the command's
// output. The four summary lines are stable and meant to be scraped:
//
//	Images: 12
//	Row Length: 1024
//	Buffer Dimensions: 1000x300
//	finished process in 48.2ms
func (c *CLI) runStitch(cmd *cobra.Command, o *stitchOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)
	out := cmd.OutOrStdout()

	runner, err := c.newRunner(o)
	if err != nil {
		return err
	}
	defer runner.Close()

	showProgress := !o.NoProgress && interactive(os.Stderr)

	var (
		spin *Spinner
		ui   *progressUI
	)
	stopSpinner := func() {
		if spin != nil {
			spin.Stop()
			spin = nil
		}
	}
	defer stopSpinner()
	defer func() {
		if ui != nil {
			ui.finish()
		}
	}()

	if showProgress {
		spin = newSpinnerWithContext(ctx, os.Stderr, "Indexing "+o.Input+"...")
		spin.Start()
	}

	opts := o.Options
	opts.Logger = logger
	opts.OnPlan = func(p *pipeline.Plan) {
		stopSpinner()
		fmt.Fprintf(out, "Images: %d\n", len(p.Entries))
		fmt.Fprintf(out, "Row Length: %d\n", o.Max)
		fmt.Fprintf(out, "Buffer Dimensions: %s\n", p.Layout.Size())
		if showProgress {
			ui = startProgressUI(os.Stderr, "Stitching", len(p.Entries))
		}
	}
	opts.Progress = func(done, total int) {
		if ui == nil {
			return
		}
		ui.update(done, total)
		if done == total {
			ui.finish()
			spin = newSpinnerWithContext(ctx, os.Stderr, "Encoding "+o.Output+"...")
			spin.Start()
		}
	}

	res, err := runner.Execute(ctx, opts)
	if ui != nil {
		ui.finish()
	}
	if err != nil {
		// main exits quietly on interrupt, so say it here.
		if spin != nil && spin.Cancelled() {
			spin.StopWithError("Interrupted")
			spin = nil
		}
		return err
	}
	if spin != nil {
		spin.StopWithSuccess(fmt.Sprintf("Wrote %s sheet", res.Layout.Size()))
		spin = nil
	} else if showProgress && res.CacheHit {
		printSuccess(os.Stderr, "Reused cached %s sheet", res.Layout.Size())
	}

	if res.CacheHit {
		logger.Info("sheet reused from cache", "run", res.RunID)
	}
	logger.Debug("stitch complete",
		"run", res.RunID,
		"index", res.Stats.IndexTime,
		"compose", res.Stats.ComposeTime,
		"encode", res.Stats.EncodeTime,
		"write", res.Stats.WriteTime,
		"bytes", res.Bytes)
	if showProgress {
		printFile(os.Stderr, res.Output)
		if o.Atlas != "" {
			printFile(os.Stderr, o.Atlas)
		}
	}

	fmt.Fprintf(out, "finished process in %s\n", res.Stats.Total.Round(time.Microsecond))
	return nil
}
