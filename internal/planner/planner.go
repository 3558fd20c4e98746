// Package planner implements the second pipeline stage: turning detected
// silences into keep ranges and the filter_complex string that renders them.
package planner

import (
	"context"
	"fmt"
	"log/slog"

	"pausetrim/internal/config"
	"pausetrim/internal/filtergraph"
	"pausetrim/internal/logging"
	"pausetrim/internal/queue"
	"pausetrim/internal/services"
	"pausetrim/internal/stage"
	"pausetrim/internal/timeline"
)

// Planner computes keep ranges and the render filter graph for a job.
type Planner struct {
	cfg    *config.Config
	logger *slog.Logger
}

// NewPlanner constructs the planning stage handler.
func NewPlanner(cfg *config.Config, logger *slog.Logger) *Planner {
	return &Planner{cfg: cfg, logger: logging.NewComponentLogger(logger, "planner")}
}

func (p *Planner) Prepare(_ context.Context, item *queue.Item) error {
	item.ErrorMessage = ""
	item.SetProgress("Planning", "Computing keep ranges")
	if item.DurationSeconds <= 0 {
		return services.Wrap(services.ErrValidation, "planning", "validate inputs",
			"Item has no probed duration; run analysis first", nil)
	}
	return nil
}

func (p *Planner) Execute(_ context.Context, item *queue.Item) error {
	logger := p.logger.With(logging.String(logging.FieldJobID, item.JobID))

	silences, err := item.Silences()
	if err != nil {
		return services.Wrap(services.ErrValidation, "planning", "load silences", "Stored silences are unreadable", err)
	}

	keep, err := timeline.BuildKeepRanges(item.DurationSeconds, silences, Policy(p.cfg.Shrink))
	if err != nil {
		return services.Wrap(services.ErrValidation, "planning", "build keep ranges", "Keep range computation failed", err)
	}
	if err := item.SetKeepRanges(keep); err != nil {
		return services.Wrap(services.ErrValidation, "planning", "store keep ranges", "Cannot encode keep ranges", err)
	}

	graph, err := filtergraph.Assemble(keep, filtergraph.Options{
		PreChain:  p.cfg.Filters.AudioPreChain,
		PostChain: p.cfg.Filters.AudioPostChain,
	})
	if err != nil {
		return services.Wrap(services.ErrValidation, "planning", "assemble graph", "Filter graph assembly failed", err)
	}
	item.FilterComplex = filtergraph.FilterComplex(graph)
	item.SetProgress("Planning", fmt.Sprintf("Planned %d segments", len(keep)))

	removed := item.DurationSeconds - totalLength(keep)
	logger.Info("plan complete",
		logging.Int("keep_ranges", len(keep)),
		logging.Float64("removed_s", removed),
	)
	return nil
}

func (p *Planner) HealthCheck(context.Context) stage.Health {
	return stage.Healthy("planner")
}

// Policy maps shrink configuration onto the timeline policy.
func Policy(shrink config.Shrink) timeline.Policy {
	return timeline.Policy{
		LongThreshold: shrink.LongThresholdSec,
		ReduceRatio:   shrink.ReduceRatio,
		MinFinal:      shrink.MinFinalSec,
		MaxFinal:      shrink.MaxFinalSec,
		HeadTailRatio: shrink.HeadTailRatio,
	}
}

func totalLength(ranges []timeline.Interval) float64 {
	total := 0.0
	for _, r := range ranges {
		total += r.Length()
	}
	return total
}
