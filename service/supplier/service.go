package supplier

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tiresync/core/cache"
	"tiresync/core/events"
	"tiresync/core/lock"
	"tiresync/core/metrics"
	supplierEntity "tiresync/model/entity/supplier"
	supplierRepo "tiresync/model/repository/supplier"
)

const lastSummaryKey = "supplier-sync:last-summary"

// SourceStore loads supplier sources and persists their sync state.
type SourceStore interface {
	StateStore
	Get(ctx context.Context, id string) (*supplierEntity.Supplier, error)
	ListActiveFeedSources(ctx context.Context) ([]supplierEntity.Supplier, error)
}

// Deps are the collaborators of a Service. Nil optional fields get in-process defaults.
type Deps struct {
	Sources   SourceStore
	Inventory InventoryStore
	Fetcher   Fetcher
	Locker    lock.Locker
	Publisher events.Publisher
	Cache     *cache.Cache
	Logger    *zap.Logger
}

// SyncOptions tunes a single source run.
type SyncOptions struct {
	// Force re-enters a source stuck in syncing.
	Force bool
}

// Result is the outcome of one source sync.
type Result struct {
	TenantID string `json:"tenant_id"`
	SourceID string `json:"source_id"`
	Supplier string `json:"supplier,omitempty"`
	Success  bool   `json:"success"`
	Imported int    `json:"imported"`
	Updated  int    `json:"updated"`
	Deleted  int    `json:"deleted"`
	Total    int    `json:"total"`
	Error    string `json:"error,omitempty"`
}

// Summary is the outcome of one pass over all active sources.
type Summary struct {
	Total      int       `json:"total"`
	Succeeded  int       `json:"success"`
	Failed     int       `json:"failed"`
	Results    []Result  `json:"results"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// Service orchestrates supplier feed syncs: fetch, parse, plan, apply, with
// state tracking around each source. Sources are processed one at a time.
type Service struct {
	sources   SourceStore
	fetcher   Fetcher
	executor  *Executor
	inventory InventoryStore
	tracker   *Tracker
	locker    lock.Locker
	publisher events.Publisher
	cache     *cache.Cache
	log       *zap.Logger
	opts      Options
	now       func() time.Time
}

func NewService(d Deps, opts Options) *Service {
	opts = opts.withDefaults()
	s := &Service{
		sources:   d.Sources,
		fetcher:   d.Fetcher,
		inventory: d.Inventory,
		executor:  NewExecutor(d.Inventory, opts),
		tracker:   NewTracker(d.Sources),
		locker:    d.Locker,
		publisher: d.Publisher,
		cache:     d.Cache,
		log:       d.Logger,
		opts:      opts,
		now:       time.Now,
	}
	if s.fetcher == nil {
		s.fetcher = NewHTTPFetcher(opts.FetchTimeout, opts.UserAgent)
	}
	if s.locker == nil {
		s.locker = lock.NewLocal()
	}
	if s.publisher == nil {
		s.publisher = events.Nop{}
	}
	if s.cache == nil {
		s.cache = cache.NewCache()
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	return s
}

// SyncAll runs every active feed source sequentially. A failing source is recorded
// in its result and never stops the pass. The error is non-nil only when the
// sources cannot be listed.
func (s *Service) SyncAll(ctx context.Context) (*Summary, error) {
	sources, err := s.sources.ListActiveFeedSources(ctx)
	if err != nil {
		return nil, fmt.Errorf("list feed sources: %w", err)
	}
	s.log.Info("supplier sync pass started", zap.Int("sources", len(sources)))

	sum := &Summary{StartedAt: s.now(), Results: make([]Result, 0, len(sources))}
	for i := range sources {
		src := sources[i]
		res := s.syncLoaded(ctx, &src, SyncOptions{})
		sum.Results = append(sum.Results, res)
		if res.Success {
			sum.Succeeded++
		} else {
			sum.Failed++
		}
	}
	sum.Total = len(sum.Results)
	sum.FinishedAt = s.now()
	s.cache.Set(lastSummaryKey, sum, 0, nil)

	s.log.Info("supplier sync pass completed",
		zap.Int("total", sum.Total),
		zap.Int("success", sum.Succeeded),
		zap.Int("failed", sum.Failed),
		zap.Duration("took", sum.FinishedAt.Sub(sum.StartedAt)))
	return sum, nil
}

// LastSummary returns the summary of the most recent SyncAll of this process.
func (s *Service) LastSummary() (*Summary, bool) {
	v, ok := s.cache.Get(lastSummaryKey)
	if !ok {
		return nil, false
	}
	return v.(*Summary), true
}

// SyncSource runs one source on behalf of a tenant. Precondition failures
// (unknown source, foreign tenant, wrong kind, no URL, already syncing)
// leave the source's state untouched.
func (s *Service) SyncSource(ctx context.Context, tenantID, sourceID string, opt SyncOptions) Result {
	res := Result{TenantID: tenantID, SourceID: sourceID}
	src, err := s.sources.Get(ctx, sourceID)
	if errors.Is(err, supplierRepo.ErrNotFound) {
		res.Error = ErrSourceNotFound.Error()
		return res
	}
	if err != nil {
		res.Error = err.Error()
		return res
	}
	if src.TenantID != tenantID {
		res.Error = ErrAccessDenied.Error()
		return res
	}
	return s.syncLoaded(ctx, src, opt)
}

func (s *Service) syncLoaded(ctx context.Context, src *supplierEntity.Supplier, opt SyncOptions) Result {
	res := Result{TenantID: src.TenantID, SourceID: src.ID, Supplier: src.Code}
	if !src.IsFeed() {
		res.Error = ErrNotFeedSource.Error()
		return res
	}
	if src.FeedURL == nil || *src.FeedURL == "" {
		res.Error = ErrFeedURLMissing.Error()
		return res
	}

	release, err := s.locker.Acquire(ctx, src.TenantID+"/"+src.ID, s.opts.StaleAfter)
	if errors.Is(err, lock.ErrHeld) {
		res.Error = ErrSyncInProgress.Error()
		return res
	}
	if err != nil {
		res.Error = err.Error()
		return res
	}
	defer release()

	if err := s.tracker.Begin(ctx, src, opt.Force); err != nil {
		res.Error = err.Error()
		return res
	}
	return s.run(ctx, src)
}

// run executes the pipeline for a source already in syncing and records its terminal state.
func (s *Service) run(ctx context.Context, src *supplierEntity.Supplier) (res Result) {
	runID := uuid.NewString()
	log := s.log.With(
		zap.String("run_id", runID),
		zap.String("tenant_id", src.TenantID),
		zap.String("source_id", src.ID),
		zap.String("supplier", src.Code),
	)
	start := s.now()
	stats := RunStats{RunID: runID}
	res = Result{TenantID: src.TenantID, SourceID: src.ID, Supplier: src.Code}

	// terminal state is written even if ctx was cancelled mid-run
	finishCtx := context.WithoutCancel(ctx)

	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("sync panicked: %v", r)
			log.Error("supplier sync panicked", zap.Any("panic", r))
			res = s.fail(finishCtx, log, src, err, stats, start)
		}
	}()

	counts, err := s.pipeline(ctx, log, src, &stats)
	if err != nil {
		if counts != (Counts{}) {
			stats.Counts = &counts
		}
		return s.fail(finishCtx, log, src, err, stats, start)
	}

	stats.Counts = &counts
	stats.DurationMs = s.now().Sub(start).Milliseconds()
	if err := s.tracker.Succeed(finishCtx, src, stats); err != nil {
		log.Error("failed to record sync success", zap.Error(err))
	}
	took := s.now().Sub(start)
	metrics.SyncRuns.WithLabelValues(string(supplierEntity.StatusSuccess)).Inc()
	metrics.SyncDuration.WithLabelValues(string(supplierEntity.StatusSuccess)).Observe(took.Seconds())
	metrics.RecordsWritten.WithLabelValues("created").Add(float64(counts.Created))
	metrics.RecordsWritten.WithLabelValues("updated").Add(float64(counts.Updated))
	metrics.RecordsWritten.WithLabelValues("deleted").Add(float64(counts.Deleted))

	log.Info("supplier sync completed",
		zap.Int("created", counts.Created),
		zap.Int("updated", counts.Updated),
		zap.Int("deleted", counts.Deleted),
		zap.Int("total", counts.TotalProcessed),
		zap.Duration("took", took))

	res.Success = true
	res.Imported = counts.Created
	res.Updated = counts.Updated
	res.Deleted = counts.Deleted
	res.Total = counts.TotalProcessed
	s.publish(finishCtx, log, runID, res)
	return res
}

func (s *Service) pipeline(ctx context.Context, log *zap.Logger, src *supplierEntity.Supplier, stats *RunStats) (Counts, error) {
	body, err := s.fetcher.Fetch(ctx, *src.FeedURL)
	if err != nil {
		return Counts{}, err
	}
	log.Debug("feed downloaded", zap.Int("bytes", len(body)))

	parsed, err := Parse(bytes.NewReader(body))
	if err != nil {
		return Counts{}, err
	}
	stats.Lines = parsed.Lines
	stats.Candidates = len(parsed.Candidates)
	stats.Filtered = parsed.Filtered
	stats.Warnings = len(parsed.Warnings)
	for _, w := range parsed.Warnings {
		log.Warn("feed row skipped", zap.Int("line", w.Line), zap.String("reason", w.Reason))
	}
	metrics.RowWarnings.Add(float64(len(parsed.Warnings)))
	if len(parsed.Candidates) == 0 {
		return Counts{}, ErrEmptyFeed
	}

	// snapshot before any write so deletions only target keys this run has seen
	existing, err := s.inventory.ExistingKeys(ctx, src.TenantID, src.ID)
	if err != nil {
		return Counts{}, fmt.Errorf("load existing inventory: %w", err)
	}
	plan := BuildPlan(existing, parsed.Candidates)
	log.Info("supplier sync planned",
		zap.Int("existing", len(existing)),
		zap.Int("discontinued", len(plan.ToDelete)),
		zap.Int("upserts", len(plan.ToUpsert)),
		zap.Int("filtered", parsed.Filtered),
		zap.Int("warnings", len(parsed.Warnings)))

	progress := metrics.SyncProgress.WithLabelValues(src.ID)
	defer metrics.SyncProgress.DeleteLabelValues(src.ID)

	scope := Scope{TenantID: src.TenantID, SourceID: src.ID, Supplier: src.Code}
	return s.executor.Apply(ctx, scope, plan, func(processed, total int) {
		progress.Set(float64(processed) / float64(total))
		log.Info("supplier sync progress", zap.Int("processed", processed), zap.Int("total", total))
	})
}

func (s *Service) fail(ctx context.Context, log *zap.Logger, src *supplierEntity.Supplier, cause error, stats RunStats, start time.Time) Result {
	took := s.now().Sub(start)
	stats.DurationMs = took.Milliseconds()
	log.Error("supplier sync failed", zap.Error(cause), zap.Duration("took", took))
	if err := s.tracker.Fail(ctx, src, cause, stats); err != nil {
		log.Error("failed to record sync error", zap.Error(err))
	}
	metrics.SyncRuns.WithLabelValues(string(supplierEntity.StatusError)).Inc()
	metrics.SyncDuration.WithLabelValues(string(supplierEntity.StatusError)).Observe(took.Seconds())

	res := Result{
		TenantID: src.TenantID,
		SourceID: src.ID,
		Supplier: src.Code,
		Error:    cause.Error(),
	}
	s.publish(ctx, log, stats.RunID, res)
	return res
}

func (s *Service) publish(ctx context.Context, log *zap.Logger, runID string, res Result) {
	ev := events.SyncCompleted{
		RunID:      runID,
		TenantID:   res.TenantID,
		SourceID:   res.SourceID,
		Supplier:   res.Supplier,
		Success:    res.Success,
		Created:    res.Imported,
		Updated:    res.Updated,
		Deleted:    res.Deleted,
		Total:      res.Total,
		Error:      res.Error,
		FinishedAt: s.now(),
	}
	if err := s.publisher.PublishSyncCompleted(ctx, ev); err != nil {
		log.Warn("failed to publish sync event", zap.Error(err))
	}
}
