package supplier

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ConnectionType is how a supplier delivers its catalog.
type ConnectionType string

const (
	// ConnectionFeed is a semicolon-delimited flat-file feed pulled over HTTP.
	ConnectionFeed ConnectionType = "CSV"
	// ConnectionAPI suppliers are synced by a separate integration.
	ConnectionAPI ConnectionType = "API"
)

// SyncStatus is the feed sync state of a supplier source.
type SyncStatus string

const (
	StatusIdle    SyncStatus = "idle"
	StatusSyncing SyncStatus = "syncing"
	StatusSuccess SyncStatus = "success"
	StatusError   SyncStatus = "error"
)

// Supplier represents workshop_suppliers: one external catalog feed configured for one tenant.
type Supplier struct {
	ID             string         `gorm:"column:id;primaryKey;type:varchar(36)" json:"id" yaml:"id"`
	TenantID       string         `gorm:"column:tenant_id;type:varchar(36);not null;index" json:"tenant_id" yaml:"tenant_id"`
	Name           string         `gorm:"column:name;type:varchar(255);not null" json:"name" yaml:"name"`
	Code           string         `gorm:"column:supplier_code;type:varchar(64);not null" json:"supplier_code" yaml:"supplier_code"`
	ConnectionType ConnectionType `gorm:"column:connection_type;type:varchar(16);not null" json:"connection_type" yaml:"connection_type"`
	FeedURL        *string        `gorm:"column:feed_url;type:varchar(1024)" json:"feed_url,omitempty" yaml:"feed_url"`
	IsActive       bool           `gorm:"column:is_active;not null" json:"is_active" yaml:"is_active"`

	SyncStatus    SyncStatus     `gorm:"column:sync_status;type:varchar(16);not null" json:"sync_status" yaml:"-"`
	SyncStartedAt *time.Time     `gorm:"column:sync_started_at" json:"sync_started_at,omitempty" yaml:"-"`
	LastSyncAt    *time.Time     `gorm:"column:last_sync_at" json:"last_sync_at,omitempty" yaml:"-"`
	LastSyncError *string        `gorm:"column:last_sync_error;type:text" json:"last_sync_error,omitempty" yaml:"-"`
	LastSyncStats datatypes.JSON `gorm:"column:last_sync_stats" json:"last_sync_stats,omitempty" yaml:"-"`

	CreatedAt time.Time `gorm:"column:created_at" json:"created_at" yaml:"-"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updated_at" yaml:"-"`
}

func (Supplier) TableName() string {
	return "workshop_suppliers"
}

func (s *Supplier) BeforeCreate(*gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.SyncStatus == "" {
		s.SyncStatus = StatusIdle
	}
	return nil
}

// IsFeed reports whether the supplier is synced from a flat-file feed.
func (s *Supplier) IsFeed() bool {
	return s.ConnectionType == ConnectionFeed
}
