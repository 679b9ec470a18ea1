// Package acquisition orchestrates content discovery: it runs the scraper
// subprocess, merges its report into the lesson catalog, and broadcasts the
// outcome on the event bus. At most one scrape run is in flight at any time.
package acquisition

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/infoapp-hub/learning-engine/internal/domain/catalog"
	"github.com/infoapp-hub/learning-engine/internal/domain/shared"
	"github.com/infoapp-hub/learning-engine/internal/infrastructure/scraper"
	"github.com/infoapp-hub/learning-engine/pkg/retry"
)

// State is the pipeline's lifecycle state. Completed and Failed are cooldown
// states for the presentation layer; they do not block a new run.
type State string

const (
	StateIdle      State = "idle"
	StateRunning   State = "running"
	StateCompleted State = "completed"
	StateFailed    State = "failed"
)

// DefaultCooldown is how long the pipeline displays a terminal state before
// reverting to idle.
const DefaultCooldown = 5 * time.Second

// ══════════════════════════════════════════════════════════════════════════════
// PIPELINE
// ══════════════════════════════════════════════════════════════════════════════

// Config carries the pipeline's dependencies.
type Config struct {
	Executor scraper.Executor
	Repo     catalog.Repository

	// Cache is optional; when set, catalog snapshots and the last outcome
	// are mirrored there best-effort.
	Cache catalog.Cache

	Events shared.EventPublisher
	Logger *slog.Logger

	// Timeout bounds one subprocess execution.
	Timeout time.Duration

	// Cooldown is how long terminal states linger before reverting to
	// idle. Zero means DefaultCooldown.
	Cooldown time.Duration
}

// Pipeline is the content acquisition pipeline. All methods are safe for
// concurrent use.
type Pipeline struct {
	mu       sync.Mutex
	state    State
	runSeq   uint64 // increments on every accepted run; guards stale cooldown resets
	last     *catalog.ScrapeOutcome
	executor scraper.Executor
	repo     catalog.Repository
	cache    catalog.Cache
	events   shared.EventPublisher
	logger   *slog.Logger
	timeout  time.Duration
	cooldown time.Duration
	retrier  *retry.Retrier
}

// NewPipeline creates a pipeline from the given config.
func NewPipeline(cfg Config) (*Pipeline, error) {
	if cfg.Executor == nil {
		return nil, shared.NewDomainError("acquisition", "NewPipeline", shared.ErrInvalidConfig, "executor is required")
	}
	if cfg.Repo == nil {
		return nil, shared.NewDomainError("acquisition", "NewPipeline", shared.ErrInvalidConfig, "repository is required")
	}
	if cfg.Events == nil {
		return nil, shared.NewDomainError("acquisition", "NewPipeline", shared.ErrInvalidConfig, "event publisher is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Minute
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = DefaultCooldown
	}
	return &Pipeline{
		state:    StateIdle,
		executor: cfg.Executor,
		repo:     cfg.Repo,
		cache:    cfg.Cache,
		events:   cfg.Events,
		logger:   cfg.Logger,
		timeout:  cfg.Timeout,
		cooldown: cfg.Cooldown,
		retrier:  retry.CatalogRetrier(),
	}, nil
}

// State returns the current lifecycle state.
func (p *Pipeline) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// LastOutcome returns the outcome of the most recent run, or nil if none has
// finished since startup.
func (p *Pipeline) LastOutcome() *catalog.ScrapeOutcome {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.last == nil {
		return nil
	}
	out := *p.last
	return &out
}

// ══════════════════════════════════════════════════════════════════════════════
// RUN
// ══════════════════════════════════════════════════════════════════════════════

// Run executes one scrape run synchronously and returns its outcome. If a run
// is already in flight it returns shared.ErrAlreadyRunning without side
// effects. A failed run is reported through the outcome, not the error: the
// error is non-nil only when the run could not be admitted.
func (p *Pipeline) Run(ctx context.Context, trigger catalog.ScrapeTrigger) (*catalog.ScrapeOutcome, error) {
	seq, err := p.admit()
	if err != nil {
		return nil, err
	}
	outcome := p.execute(ctx, trigger)
	p.settle(seq, outcome)
	return outcome, nil
}

// RunAsync starts a scrape run in the background and returns a channel that
// yields its outcome. The concurrency guard is checked before the goroutine
// starts, so a rejected trigger is reported immediately.
func (p *Pipeline) RunAsync(ctx context.Context, trigger catalog.ScrapeTrigger) (<-chan *catalog.ScrapeOutcome, error) {
	seq, err := p.admit()
	if err != nil {
		return nil, err
	}
	done := make(chan *catalog.ScrapeOutcome, 1)
	go func() {
		outcome := p.execute(ctx, trigger)
		p.settle(seq, outcome)
		done <- outcome
	}()
	return done, nil
}

// Bootstrap runs an initial scrape when the catalog is empty, so a fresh
// install has content without waiting for the first scheduled run. A non-empty
// catalog makes this a no-op.
func (p *Pipeline) Bootstrap(ctx context.Context) error {
	count, err := p.repo.CountLessons(ctx)
	if err != nil {
		return shared.WrapPersistence("acquisition", "Bootstrap", err)
	}
	if count > 0 {
		p.logger.Debug("catalog already populated, skipping bootstrap scrape", slog.Int("lessons", count))
		return nil
	}
	p.logger.Info("catalog empty, running bootstrap scrape")
	if _, err := p.Run(ctx, catalog.TriggerBootstrap); err != nil {
		return err
	}
	return nil
}

// admit transitions into Running, or rejects the run if one is in flight.
// Terminal cooldown states accept new runs.
func (p *Pipeline) admit() (uint64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == StateRunning {
		return 0, shared.NewDomainError("acquisition", "Run", shared.ErrAlreadyRunning, "a scrape run is already in flight")
	}
	p.runSeq++
	p.state = StateRunning
	return p.runSeq, nil
}

// settle records the outcome, moves to the terminal state, and arms the
// cooldown reset. The sequence check keeps a stale timer from clobbering the
// state of a run admitted during the cooldown window.
func (p *Pipeline) settle(seq uint64, outcome *catalog.ScrapeOutcome) {
	p.mu.Lock()
	p.last = outcome
	if outcome.Success {
		p.state = StateCompleted
	} else {
		p.state = StateFailed
	}
	p.mu.Unlock()

	time.AfterFunc(p.cooldown, func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		if p.runSeq == seq && p.state != StateRunning {
			p.state = StateIdle
		}
	})
}

// ══════════════════════════════════════════════════════════════════════════════
// EXECUTION
// ══════════════════════════════════════════════════════════════════════════════

// execute performs one admitted run end to end and always produces an
// outcome; every failure mode maps to a failed outcome rather than a panic or
// partial state.
func (p *Pipeline) execute(ctx context.Context, trigger catalog.ScrapeTrigger) *catalog.ScrapeOutcome {
	started := time.Now()
	p.logger.Info("scrape run started", slog.String("trigger", string(trigger)))
	p.publish(catalog.NewScrapeStartedEvent(trigger))

	result, err := p.executor.Execute(ctx, p.timeout)
	if err != nil {
		return p.fail(trigger, classifyExecError(err))
	}

	report, err := scraper.ParseReport(result.Stdout)
	if err != nil {
		return p.fail(trigger, "scraper produced invalid output: "+err.Error())
	}
	if !report.Success {
		return p.fail(trigger, "scraper reported failure: "+report.Error)
	}

	lessons := scraper.MapLessons(report, started)
	breakdown, merged, err := p.merge(ctx, lessons)
	if err != nil {
		return p.fail(trigger, "catalog merge failed: "+err.Error())
	}

	fresh, err := p.rereadCatalog(ctx)
	if err != nil {
		// The merge itself committed; report success but log the
		// degraded broadcast.
		p.logger.Warn("catalog re-read failed after merge", slog.String("error", err.Error()))
	} else {
		p.publish(catalog.NewCatalogUpdatedEvent(fresh))
		p.cacheCatalog(ctx, fresh)
		p.cacheStats(ctx)
	}

	outcome := &catalog.ScrapeOutcome{
		Success:          true,
		Integrated:       merged,
		ModulesBreakdown: breakdown,
		Trigger:          trigger,
		Timestamp:        time.Now(),
	}
	p.cacheOutcome(ctx, outcome)
	p.publish(catalog.NewScrapeCompletedEvent(*outcome))
	p.logger.Info("scrape run completed",
		slog.String("trigger", string(trigger)),
		slog.Int("integrated", merged),
		slog.Duration("duration", time.Since(started)))
	return outcome
}

// merge upserts every discovered lesson and tallies the per-module breakdown.
// Upserts are individually idempotent, so a mid-run failure leaves the
// catalog in a valid (partially refreshed) state.
func (p *Pipeline) merge(ctx context.Context, lessons []catalog.Lesson) (map[string]int, int, error) {
	breakdown := make(map[string]int)
	merged := 0
	for i := range lessons {
		lesson := &lessons[i]
		if err := lesson.Validate(); err != nil {
			return nil, 0, err
		}
		if err := p.repo.UpsertLesson(ctx, lesson); err != nil {
			return nil, 0, shared.WrapPersistence("acquisition", "merge", err)
		}
		breakdown[lesson.ModuleID]++
		merged++
	}
	return breakdown, merged, nil
}

// rereadCatalog fetches the post-merge catalog so observers see data
// consistent with the outcome. Transient read failures are retried.
func (p *Pipeline) rereadCatalog(ctx context.Context) ([]catalog.Lesson, error) {
	var lessons []catalog.Lesson
	err := p.retrier.Do(ctx, func(ctx context.Context) error {
		var readErr error
		lessons, readErr = p.repo.GetCatalog(ctx)
		if readErr != nil {
			return retry.Retryable(readErr)
		}
		return nil
	})
	return lessons, err
}

// fail records the failed outcome and broadcasts only a completed event, per
// the event contract: no catalog update, no partial catalog broadcast.
func (p *Pipeline) fail(trigger catalog.ScrapeTrigger, message string) *catalog.ScrapeOutcome {
	outcome := &catalog.ScrapeOutcome{
		Success:   false,
		Error:     message,
		Trigger:   trigger,
		Timestamp: time.Now(),
	}
	p.cacheOutcome(context.Background(), outcome)
	p.publish(catalog.NewScrapeCompletedEvent(*outcome))
	p.logger.Error("scrape run failed",
		slog.String("trigger", string(trigger)),
		slog.String("error", message))
	return outcome
}

func (p *Pipeline) cacheCatalog(ctx context.Context, lessons []catalog.Lesson) {
	if p.cache == nil {
		return
	}
	if err := p.cache.SetCatalog(ctx, lessons); err != nil {
		p.logger.Warn("failed to cache catalog snapshot", slog.String("error", err.Error()))
	}
}

// cacheStats refreshes the cached catalog statistics so status readers see
// numbers consistent with the merged catalog.
func (p *Pipeline) cacheStats(ctx context.Context) {
	if p.cache == nil {
		return
	}
	stats, err := p.repo.GetStats(ctx)
	if err != nil {
		p.logger.Warn("failed to read catalog stats", slog.String("error", err.Error()))
		return
	}
	if err := p.cache.SetStats(ctx, stats); err != nil {
		p.logger.Warn("failed to cache catalog stats", slog.String("error", err.Error()))
	}
}

func (p *Pipeline) cacheOutcome(ctx context.Context, outcome *catalog.ScrapeOutcome) {
	if p.cache == nil {
		return
	}
	if err := p.cache.SetLastOutcome(ctx, outcome); err != nil {
		p.logger.Warn("failed to cache scrape outcome", slog.String("error", err.Error()))
	}
}

func (p *Pipeline) publish(event shared.Event) {
	if err := p.events.Publish(event); err != nil {
		p.logger.Error("failed to publish event",
			slog.String("event_type", string(event.EventType())),
			slog.String("error", err.Error()))
	}
}

// classifyExecError maps executor failures onto outcome messages.
func classifyExecError(err error) string {
	switch {
	case errors.Is(err, shared.ErrScrapeTimeout):
		return "scraper timed out: " + err.Error()
	case errors.Is(err, shared.ErrScrapeProcess):
		return "scraper process failed: " + err.Error()
	default:
		return "scraper execution failed: " + err.Error()
	}
}
