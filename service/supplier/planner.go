package supplier

import (
	inventoryRepo "tiresync/model/repository/inventory"
)

// Plan is the delta of one source sync.
type Plan struct {
	// ToDelete holds ids of stored records whose article number left the feed.
	ToDelete []uint
	// ToUpsert holds every candidate. Feeds carry full state, so all survivors are rewritten.
	ToUpsert []Candidate
}

// BuildPlan reconciles the stored keys of a source against a freshly parsed feed.
// existing must be loaded before any write of the run is applied.
func BuildPlan(existing []inventoryRepo.ExistingKey, candidates []Candidate) Plan {
	inFeed := make(map[string]struct{}, len(candidates))
	for i := range candidates {
		inFeed[candidates[i].ArticleNumber] = struct{}{}
	}
	var toDelete []uint
	for _, k := range existing {
		if _, ok := inFeed[k.ArticleNumber]; !ok {
			toDelete = append(toDelete, k.ID)
		}
	}
	return Plan{ToDelete: toDelete, ToUpsert: candidates}
}
