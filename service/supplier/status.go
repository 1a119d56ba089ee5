package supplier

import (
	"context"
	"errors"

	supplierEntity "tiresync/model/entity/supplier"
	supplierRepo "tiresync/model/repository/supplier"
)

// SourceStatus is the operator view of one source.
type SourceStatus struct {
	*supplierEntity.Supplier
	// Stale marks a run that has been syncing longer than the stale threshold.
	// Such a source may be re-triggered with force; the state never expires on its own.
	Stale   bool  `json:"stale"`
	Records int64 `json:"records"`
}

// Status returns the sync state of a tenant's source.
func (s *Service) Status(ctx context.Context, tenantID, sourceID string) (*SourceStatus, error) {
	src, err := s.sources.Get(ctx, sourceID)
	if errors.Is(err, supplierRepo.ErrNotFound) {
		return nil, ErrSourceNotFound
	}
	if err != nil {
		return nil, err
	}
	if src.TenantID != tenantID {
		return nil, ErrAccessDenied
	}
	n, err := s.inventory.CountBySource(ctx, tenantID, sourceID)
	if err != nil {
		return nil, err
	}
	return &SourceStatus{
		Supplier: src,
		Stale:    s.isStale(src),
		Records:  n,
	}, nil
}

func (s *Service) isStale(src *supplierEntity.Supplier) bool {
	if src.SyncStatus != supplierEntity.StatusSyncing || src.SyncStartedAt == nil {
		return false
	}
	return s.now().Sub(*src.SyncStartedAt) > s.opts.StaleAfter
}
