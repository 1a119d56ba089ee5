package supplier

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"

	supplierEntity "tiresync/model/entity/supplier"
)

// StateStore persists source sync state with conditional transitions.
type StateStore interface {
	BeginSync(ctx context.Context, id string, startedAt time.Time, force bool) (bool, error)
	FinishSync(ctx context.Context, id string, status supplierEntity.SyncStatus, finishedAt time.Time, syncErr *string, stats datatypes.JSON) (bool, error)
}

// ValidTransition reports whether a source may move from one sync status to another.
// A run always enters syncing from a resting state and leaves it exactly once.
func ValidTransition(from, to supplierEntity.SyncStatus) bool {
	switch to {
	case supplierEntity.StatusSyncing:
		return from != supplierEntity.StatusSyncing
	case supplierEntity.StatusSuccess, supplierEntity.StatusError:
		return from == supplierEntity.StatusSyncing
	}
	return false
}

// RunStats is stored on the source after each run for operators.
type RunStats struct {
	RunID      string  `json:"run_id"`
	Counts     *Counts `json:"counts,omitempty"`
	Lines      int     `json:"lines"`
	Candidates int     `json:"candidates"`
	Filtered   int     `json:"filtered"`
	Warnings   int     `json:"warnings"`
	DurationMs int64   `json:"duration_ms"`
}

// Tracker drives the idle/syncing/success/error lifecycle of a source.
type Tracker struct {
	store StateStore
	now   func() time.Time
}

func NewTracker(store StateStore) *Tracker {
	return &Tracker{store: store, now: time.Now}
}

// Begin enters syncing. It fails with ErrSyncInProgress when another run holds the source,
// unless force is set.
func (t *Tracker) Begin(ctx context.Context, src *supplierEntity.Supplier, force bool) error {
	if !force && !ValidTransition(src.SyncStatus, supplierEntity.StatusSyncing) {
		return ErrSyncInProgress
	}
	ok, err := t.store.BeginSync(ctx, src.ID, t.now(), force)
	if err != nil {
		return fmt.Errorf("mark syncing: %w", err)
	}
	if !ok {
		return ErrSyncInProgress
	}
	src.SyncStatus = supplierEntity.StatusSyncing
	return nil
}

// Succeed closes a run as success and clears the last error.
func (t *Tracker) Succeed(ctx context.Context, src *supplierEntity.Supplier, stats RunStats) error {
	return t.finish(ctx, src, supplierEntity.StatusSuccess, nil, stats)
}

// Fail closes a run as error with the cause's message.
func (t *Tracker) Fail(ctx context.Context, src *supplierEntity.Supplier, cause error, stats RunStats) error {
	msg := cause.Error()
	return t.finish(ctx, src, supplierEntity.StatusError, &msg, stats)
}

func (t *Tracker) finish(ctx context.Context, src *supplierEntity.Supplier, status supplierEntity.SyncStatus, syncErr *string, stats RunStats) error {
	if !ValidTransition(src.SyncStatus, status) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, src.SyncStatus, status)
	}
	raw, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	at := t.now()
	ok, err := t.store.FinishSync(ctx, src.ID, status, at, syncErr, datatypes.JSON(raw))
	if err != nil {
		return fmt.Errorf("mark %s: %w", status, err)
	}
	if !ok {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, supplierEntity.StatusSyncing, status)
	}
	src.SyncStatus = status
	src.LastSyncAt = &at
	src.LastSyncError = syncErr
	return nil
}
