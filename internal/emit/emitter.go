// Package emit turns population records into enriched point features and
// splits them into the output subsets.
package emit

import (
	"context"
	"iter"

	"go.uber.org/zap"

	"github.com/zsj-atlas/zsj-cli/internal/label"
	"github.com/zsj-atlas/zsj-cli/internal/model"
	"github.com/zsj-atlas/zsj-cli/internal/resolve"
)

// Summary describes one Partition pass.
type Summary struct {
	Records   int                  `json:"records"`
	Malformed int                  `json:"malformed"`
	Counts    map[model.Subset]int `json:"counts"`
}

// Emitter builds features with a Resolver.
type Emitter struct {
	resolver *resolve.Resolver
}

// New creates an Emitter.
func New(resolver *resolve.Resolver) *Emitter {
	return &Emitter{resolver: resolver}
}

// Emit returns the features of the records that belong to subset, in input
// order. The sequence is lazy and can be ranged over again; with geocoding
// disabled every pass yields identical features. Malformed records are
// logged and skipped.
func (e *Emitter) Emit(ctx context.Context, records []model.PopulationRecord, subset model.Subset) iter.Seq[model.EnrichedFeature] {
	return func(yield func(model.EnrichedFeature) bool) {
		for i, rec := range records {
			if ctx.Err() != nil {
				return
			}
			if !subset.Includes(rec) {
				continue
			}
			if err := rec.Validate(); err != nil {
				warnMalformed(i, rec, err)
				continue
			}
			if !yield(e.Feature(ctx, rec)) {
				return
			}
		}
	}
}

// Feature resolves and labels a single record.
func (e *Emitter) Feature(ctx context.Context, rec model.PopulationRecord) model.EnrichedFeature {
	location, fullAddress := label.Build(rec)
	return model.EnrichedFeature{
		Record:      rec,
		Coordinate:  e.resolver.Resolve(ctx, rec),
		Location:    location,
		FullAddress: fullAddress,
	}
}

// Partition resolves every valid record once and appends the feature to
// each subset whose predicate it satisfies. Every subset is present in the
// result, possibly empty. A cancelled context stops the pass early.
func (e *Emitter) Partition(ctx context.Context, records []model.PopulationRecord) (map[model.Subset][]model.EnrichedFeature, Summary) {
	out := make(map[model.Subset][]model.EnrichedFeature, len(model.AllSubsets()))
	sum := Summary{Counts: make(map[model.Subset]int, len(model.AllSubsets()))}
	for _, s := range model.AllSubsets() {
		out[s] = []model.EnrichedFeature{}
		sum.Counts[s] = 0
	}

	for i, rec := range records {
		if ctx.Err() != nil {
			zap.L().Warn("emit: cancelled, stopping partition",
				zap.Int("processed", i),
				zap.Int("total", len(records)),
			)
			break
		}
		if err := rec.Validate(); err != nil {
			warnMalformed(i, rec, err)
			sum.Malformed++
			continue
		}

		f := e.Feature(ctx, rec)
		sum.Records++
		for _, s := range model.AllSubsets() {
			if s.Includes(rec) {
				out[s] = append(out[s], f)
				sum.Counts[s]++
			}
		}

		if sum.Records%500 == 0 {
			zap.L().Info("emit: progress", zap.Int("resolved", sum.Records), zap.Int("total", len(records)))
		}
	}
	return out, sum
}

func warnMalformed(index int, rec model.PopulationRecord, err error) {
	zap.L().Warn("emit: skipping malformed record",
		zap.Int("row", index),
		zap.String("zsj_kod", rec.MicroAreaCode),
		zap.String("zsj_nazov", rec.MicroAreaName),
		zap.Error(err),
	)
}
