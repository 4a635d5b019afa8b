package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/zsj-atlas/zsj-cli/internal/boundary"
	"github.com/zsj-atlas/zsj-cli/internal/centroid"
	"github.com/zsj-atlas/zsj-cli/internal/config"
	"github.com/zsj-atlas/zsj-cli/internal/emit"
	"github.com/zsj-atlas/zsj-cli/internal/export"
	"github.com/zsj-atlas/zsj-cli/internal/fetcher"
	"github.com/zsj-atlas/zsj-cli/internal/model"
	"github.com/zsj-atlas/zsj-cli/internal/offset"
	"github.com/zsj-atlas/zsj-cli/internal/ratelimit"
	"github.com/zsj-atlas/zsj-cli/internal/resilience"
	"github.com/zsj-atlas/zsj-cli/internal/resolve"
	"github.com/zsj-atlas/zsj-cli/internal/source"
	"github.com/zsj-atlas/zsj-cli/internal/store"
	"github.com/zsj-atlas/zsj-cli/pkg/geocode"
)

// errNoAction is returned when neither --points nor --merge is given.
var errNoAction = eris.New("nothing to do: pass --points and/or --merge")

// batchOptions are the per-invocation choices of a batch run.
type batchOptions struct {
	Points    bool
	Geocode   bool
	MergePath string
	Input     string
	Output    string
	Districts []string
	Sheet     string
}

var batchFlags batchOptions

func addBatchFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.BoolVar(&batchFlags.Points, "points", false, "emit the five point layers")
	f.BoolVar(&batchFlags.Geocode, "geocode", false, "geocode micro-areas instead of placing them around district centroids")
	f.StringVar(&batchFlags.MergePath, "merge", "", "boundary file (.geojson, .csv with WKT, .shp) to merge with the point layers")
	f.StringVar(&batchFlags.Input, "input", "", "population table path or http(s) URL (default from config)")
	f.StringVarP(&batchFlags.Output, "output", "o", "", "output directory (default from config)")
	f.StringSliceVar(&batchFlags.Districts, "district", nil, "only keep records of this district (repeatable)")
	f.StringVar(&batchFlags.Sheet, "sheet", "", "XLSX sheet name (default first sheet)")
}

func runBatch(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opts := resolveBatchOptions(cfg, batchFlags)
	if !opts.Points && opts.MergePath == "" {
		_ = cmd.Usage()
		return errNoAction
	}
	if opts.Geocode {
		cfg.Geocode.Enabled = true
	}
	if err := cfg.Validate("batch"); err != nil {
		return err
	}

	st, err := store.Open(ctx, cfg.Store.Driver, cfg.Store.DatabaseURL)
	if err != nil {
		// Ledger failures are logged, not fatal.
		zap.L().Warn("batch: run ledger unavailable", zap.Error(err))
		st = nil
	}
	if st != nil {
		defer st.Close() //nolint:errcheck
	}

	_, err = executeBatch(ctx, cfg, opts, st)
	return err
}

// resolveBatchOptions fills unset flags from configuration.
func resolveBatchOptions(c *config.Config, flags batchOptions) batchOptions {
	opts := flags
	if opts.Input == "" {
		opts.Input = c.Input
	}
	if opts.Output == "" {
		opts.Output = c.Output
	}
	if len(opts.Districts) == 0 {
		opts.Districts = c.Districts
	}
	opts.Geocode = opts.Geocode || c.Geocode.Enabled
	return opts
}

// executeBatch runs the point and merge stages and records the run in st
// when it is non-nil.
func executeBatch(ctx context.Context, c *config.Config, opts batchOptions, st store.Store) (model.RunSummary, error) {
	var run *model.Run
	if st != nil {
		r, err := st.CreateRun(ctx, model.RunInput{
			Input:     opts.Input,
			OutputDir: opts.Output,
			Points:    opts.Points,
			Geocode:   opts.Geocode,
			MergePath: opts.MergePath,
		})
		if err != nil {
			zap.L().Warn("batch: create run failed", zap.Error(err))
		} else {
			run = r
		}
	}

	start := time.Now()
	summary, err := batchStages(ctx, c, opts)

	if run != nil {
		// A cancelled ctx must not stop the ledger from closing the run.
		finishCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		if ferr := st.FinishRun(finishCtx, run.ID, summary, err); ferr != nil {
			zap.L().Warn("batch: finish run failed", zap.String("run_id", run.ID), zap.Error(ferr))
		}
		cancel()
	}
	if err != nil {
		return summary, err
	}

	zap.L().Info("batch: complete",
		zap.Int("records", summary.Records),
		zap.Int("malformed", summary.Malformed),
		zap.Int("geocoded", summary.Geocoded),
		zap.Int("approximate", summary.Approximate),
		zap.Int("merged", summary.Merged),
		zap.Duration("elapsed", time.Since(start)),
	)
	return summary, nil
}

func batchStages(ctx context.Context, c *config.Config, opts batchOptions) (model.RunSummary, error) {
	var summary model.RunSummary
	var parts map[model.Subset][]model.EnrichedFeature

	if opts.Points {
		p, s, err := pointStage(ctx, c, opts)
		summary = s
		if err != nil {
			return summary, err
		}
		parts = p
	}

	if opts.MergePath != "" {
		merged, err := mergeStage(ctx, c, opts, parts)
		summary.Merged = merged
		if err != nil {
			return summary, err
		}
	}
	return summary, nil
}

func pointStage(ctx context.Context, c *config.Config, opts batchOptions) (map[model.Subset][]model.EnrichedFeature, model.RunSummary, error) {
	var summary model.RunSummary
	if opts.Input == "" {
		return nil, summary, eris.New("batch: --input (or config input) is required with --points")
	}

	resolver, err := buildResolver(c)
	if err != nil {
		return nil, summary, err
	}

	records, srcStats, err := source.Load(ctx, opts.Input, source.Options{
		Fetcher:   buildFetcher(c),
		Sheet:     opts.Sheet,
		Districts: opts.Districts,
	})
	if err != nil {
		return nil, summary, eris.Wrap(err, "batch: read input")
	}
	zap.L().Info("batch: read input",
		zap.String("input", opts.Input),
		zap.Int("rows", srcStats.Rows),
		zap.Int("records", srcStats.Records),
		zap.Int("skipped", srcStats.Skipped),
		zap.Int("filtered", srcStats.Filtered),
		zap.Bool("geocode", resolver.GeocodingEnabled()),
	)

	parts, emitSummary := emit.New(resolver).Partition(ctx, records)
	rs := resolver.Stats()
	summary = model.RunSummary{
		Records:          emitSummary.Records,
		Malformed:        emitSummary.Malformed,
		Geocoded:         rs.Geocoded,
		Approximate:      rs.Approximate,
		GeocodeFailures:  rs.GeocodeFailures,
		GeocodeMisses:    rs.GeocodeMisses,
		FallbackCentroid: rs.FallbackCentroid,
		SubsetCounts:     emitSummary.Counts,
	}
	if err := ctx.Err(); err != nil {
		return nil, summary, eris.Wrap(err, "batch: resolve")
	}

	if _, err := export.WriteAll(ctx, opts.Output, c.Points.Prefix, parts); err != nil {
		return nil, summary, err
	}
	return parts, summary, nil
}

// mergeStage substitutes boundary polygons into the point layers. When
// parts is nil the point layers are read back from the output directory.
func mergeStage(ctx context.Context, c *config.Config, opts batchOptions, parts map[model.Subset][]model.EnrichedFeature) (int, error) {
	idx, err := boundary.Load(opts.MergePath)
	if err != nil {
		return 0, eris.Wrap(err, "batch: load boundaries")
	}

	if parts == nil {
		parts, err = export.ReadAll(opts.Output, c.Points.Prefix)
		if err != nil {
			return 0, eris.Wrap(err, "batch: read point layers")
		}
	}

	merged := make(map[model.Subset][]model.EnrichedFeature, len(parts))
	matched := 0
	for subset, features := range parts {
		out, stats := boundary.Merge(features, idx)
		merged[subset] = out
		if subset == model.SubsetAll {
			matched = stats.Matched
		}
		zap.L().Info("batch: merged boundaries",
			zap.String("subset", string(subset)),
			zap.Int("matched", stats.Matched),
			zap.Int("unmatched", stats.Unmatched),
		)
	}

	if _, err := export.WriteAll(ctx, opts.Output, c.Merge.Prefix, merged); err != nil {
		return matched, err
	}
	return matched, nil
}

func buildResolver(c *config.Config) (*resolve.Resolver, error) {
	table := centroid.Default()
	if c.Centroids.File != "" {
		t, err := centroid.LoadFile(c.Centroids.File)
		if err != nil {
			return nil, err
		}
		table = t
	}

	opts := []resolve.Option{
		resolve.WithPrecision(c.Offset.Precision),
		resolve.WithCountry(c.Geocode.Country),
	}
	if c.Geocode.Enabled {
		limiter := ratelimit.New(c.Geocode.MinInterval)
		client, err := geocode.New(geocode.Config{
			Providers:    c.Geocode.Providers,
			NominatimURL: c.Geocode.NominatimURL,
			OverpassURL:  c.Geocode.OverpassURL,
			UserAgent:    c.Geocode.UserAgent,
			Timeout:      c.Geocode.Timeout(),
			CountryCodes: c.Geocode.CountryCodes,
			Limiter:      limiter,
		})
		if err != nil {
			return nil, err
		}
		opts = append(opts, resolve.WithGeocoder(client, limiter))
	}

	return resolve.New(table, offset.New(table, c.Offset.Radius), opts...), nil
}

func buildFetcher(c *config.Config) fetcher.Fetcher {
	retry := resilience.DefaultRetryConfig()
	if c.Fetch.MaxAttempts > 0 {
		retry.MaxAttempts = c.Fetch.MaxAttempts
	}
	return fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
		UserAgent: c.Geocode.UserAgent,
		Timeout:   time.Duration(c.Fetch.TimeoutSecs) * time.Second,
		Retry:     retry,
	})
}
