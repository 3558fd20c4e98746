package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"pausetrim/internal/analysis"
	"pausetrim/internal/config"
	"pausetrim/internal/logging"
	"pausetrim/internal/notifications"
	"pausetrim/internal/organizer"
	"pausetrim/internal/planner"
	"pausetrim/internal/queue"
	"pausetrim/internal/render"
	"pausetrim/internal/stage"
)

// StageSet bundles the concrete handlers the manager orchestrates.
type StageSet struct {
	Analyzer  stage.Handler
	Planner   stage.Handler
	Renderer  stage.Handler
	Organizer stage.Handler
}

// DefaultStages builds the production stage handlers.
func DefaultStages(cfg *config.Config, logger *slog.Logger, uploader organizer.Uploader) StageSet {
	notifier := notifications.NewService(cfg)
	return StageSet{
		Analyzer:  analysis.NewAnalyzer(cfg, logger),
		Planner:   planner.NewPlanner(cfg, logger),
		Renderer:  render.NewRenderer(cfg, logger),
		Organizer: organizer.NewOrganizerWithDependencies(cfg, logger, uploader, notifier),
	}
}

type pipelineStage struct {
	name             string
	handler          stage.Handler
	startStatus      queue.Status
	processingStatus queue.Status
	doneStatus       queue.Status
}

// Summary reports the outcome of one processing run.
type Summary struct {
	Processed int
	Failed    int
	Elapsed   time.Duration
}

// Manager advances queue items through the pipeline.
type Manager struct {
	cfg      *config.Config
	store    *queue.Store
	logger   *slog.Logger
	notifier notifications.Service
	stages   []pipelineStage
	byStart  map[queue.Status]pipelineStage
	lock     *flock.Flock
}

// NewManager constructs a workflow manager with the given stage handlers.
func NewManager(cfg *config.Config, store *queue.Store, logger *slog.Logger, stages StageSet) *Manager {
	return NewManagerWithNotifier(cfg, store, logger, stages, notifications.NewService(cfg))
}

// NewManagerWithNotifier allows injecting the notifier (used in tests).
func NewManagerWithNotifier(cfg *config.Config, store *queue.Store, logger *slog.Logger, stages StageSet, notifier notifications.Service) *Manager {
	ordered := []pipelineStage{
		{name: "analysis", handler: stages.Analyzer, startStatus: queue.StatusPending, processingStatus: queue.StatusAnalyzing, doneStatus: queue.StatusAnalyzed},
		{name: "planning", handler: stages.Planner, startStatus: queue.StatusAnalyzed, processingStatus: queue.StatusPlanning, doneStatus: queue.StatusPlanned},
		{name: "rendering", handler: stages.Renderer, startStatus: queue.StatusPlanned, processingStatus: queue.StatusRendering, doneStatus: queue.StatusRendered},
		{name: "organizing", handler: stages.Organizer, startStatus: queue.StatusRendered, processingStatus: queue.StatusOrganizing, doneStatus: queue.StatusCompleted},
	}
	byStart := make(map[queue.Status]pipelineStage, len(ordered))
	for _, stg := range ordered {
		byStart[stg.startStatus] = stg
	}
	return &Manager{
		cfg:      cfg,
		store:    store,
		logger:   logging.NewComponentLogger(logger, "workflow"),
		notifier: notifier,
		stages:   ordered,
		byStart:  byStart,
		lock:     flock.New(cfg.LockFilePath()),
	}
}

// HealthChecks reports readiness for every configured stage.
func (m *Manager) HealthChecks(ctx context.Context) []stage.Health {
	checks := make([]stage.Health, 0, len(m.stages))
	for _, stg := range m.stages {
		if stg.handler == nil {
			checks = append(checks, stage.Unhealthy(stg.name, "handler not configured"))
			continue
		}
		checks = append(checks, stg.handler.HealthCheck(ctx))
	}
	return checks
}

// RunOnce acquires the processor lock, rolls interrupted items back to their
// last stable state, and drains the queue until nothing is actionable.
func (m *Manager) RunOnce(ctx context.Context) (Summary, error) {
	ok, err := m.lock.TryLock()
	if err != nil {
		return Summary{}, fmt.Errorf("acquire processor lock: %w", err)
	}
	if !ok {
		return Summary{}, errors.New("another pausetrim processor is already running")
	}
	defer func() {
		if err := m.lock.Unlock(); err != nil {
			m.logger.Warn("failed to release processor lock", logging.Error(err))
		}
	}()

	if err := m.store.ResetProcessing(ctx); err != nil {
		return Summary{}, fmt.Errorf("reset interrupted items: %w", err)
	}

	start := time.Now()
	var summary Summary
	for {
		if err := ctx.Err(); err != nil {
			summary.Elapsed = time.Since(start)
			return summary, err
		}
		item, err := m.store.NextActionable(ctx)
		if err != nil {
			summary.Elapsed = time.Since(start)
			return summary, fmt.Errorf("fetch next item: %w", err)
		}
		if item == nil {
			break
		}
		if err := m.processItem(ctx, item); err != nil {
			summary.Elapsed = time.Since(start)
			return summary, err
		}
		switch item.Status {
		case queue.StatusCompleted:
			summary.Processed++
		case queue.StatusFailed:
			summary.Failed++
		}
	}
	summary.Elapsed = time.Since(start)

	if m.notifier != nil && summary.Processed+summary.Failed > 0 {
		if err := m.notifier.NotifyBatchCompleted(ctx, summary.Processed, summary.Failed, summary.Elapsed); err != nil {
			m.logger.Warn("batch notification failed", logging.Error(err))
		}
	}
	return summary, nil
}

// processItem runs a single stage transition for item. Stage failures are
// recorded on the item and return nil; only store and context errors
// propagate, since those make further processing pointless.
func (m *Manager) processItem(ctx context.Context, item *queue.Item) error {
	stg, ok := m.byStart[item.Status]
	if !ok {
		m.failItem(ctx, "workflow", item, fmt.Errorf("no stage configured for status %q", item.Status))
		return nil
	}
	if stg.handler == nil {
		m.failItem(ctx, stg.name, item, fmt.Errorf("stage %s has no handler", stg.name))
		return nil
	}

	logger := m.logger.With(
		logging.String(logging.FieldJobID, item.JobID),
		logging.String(logging.FieldStage, stg.name),
	)

	item.Status = stg.processingStatus
	if err := m.store.Update(ctx, item); err != nil {
		return fmt.Errorf("persist processing transition: %w", err)
	}

	stageStart := time.Now()
	logger.Info("stage started", logging.String(logging.FieldSource, item.SourcePath))

	if err := stg.handler.Prepare(ctx, item); err != nil {
		m.failItem(ctx, stg.name, item, err)
		return nil
	}
	if err := m.store.Update(ctx, item); err != nil {
		return fmt.Errorf("persist stage preparation: %w", err)
	}

	if err := stg.handler.Execute(ctx, item); err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		m.failItem(ctx, stg.name, item, err)
		return nil
	}

	if item.Status == stg.processingStatus || item.Status == "" {
		item.Status = stg.doneStatus
	}
	if err := m.store.Update(ctx, item); err != nil {
		return fmt.Errorf("persist stage result: %w", err)
	}
	logger.Info("stage completed",
		logging.String("next_status", string(item.Status)),
		logging.Duration("stage_duration", time.Since(stageStart)),
	)
	return nil
}

func (m *Manager) failItem(ctx context.Context, stageName string, item *queue.Item, stageErr error) {
	message := strings.TrimSpace(stageErr.Error())
	if message == "" {
		message = fmt.Sprintf("%s failed without error detail", stageName)
	}
	item.Status = queue.StatusFailed
	item.ErrorMessage = message
	item.SetProgress("Failed", message)

	logger := m.logger.With(
		logging.String(logging.FieldJobID, item.JobID),
		logging.String(logging.FieldStage, stageName),
	)
	logger.Error("stage failed", logging.Error(stageErr))

	if err := m.store.Update(ctx, item); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("failed to persist stage failure", logging.Error(err))
	}
	if m.notifier != nil {
		if err := m.notifier.NotifyError(ctx, stageErr, stageName); err != nil {
			logger.Warn("failure notification failed", logging.Error(err))
		}
	}
}
