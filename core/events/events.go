package events

import (
	"context"
	"time"
)

// SyncCompleted is emitted once per finished source sync, successful or not.
type SyncCompleted struct {
	RunID      string    `json:"run_id"`
	TenantID   string    `json:"tenant_id"`
	SourceID   string    `json:"source_id"`
	Supplier   string    `json:"supplier"`
	Success    bool      `json:"success"`
	Created    int       `json:"created"`
	Updated    int       `json:"updated"`
	Deleted    int       `json:"deleted"`
	Total      int       `json:"total"`
	Error      string    `json:"error,omitempty"`
	FinishedAt time.Time `json:"finished_at"`
}

// Publisher delivers sync events to downstream consumers (auto-ordering, search indexing).
type Publisher interface {
	PublishSyncCompleted(ctx context.Context, ev SyncCompleted) error
}

// Nop drops every event.
type Nop struct{}

func (Nop) PublishSyncCompleted(context.Context, SyncCompleted) error { return nil }
