// ABOUTME: Bulk fetch enrichment fallback policy
// ABOUTME: Decides when the cheap bulk path looks systematically incomplete and per-record fetches are worth paying for
package sync

import (
	"synchro/models"
)

// EnrichmentPolicy decides whether a bulk device fetch looks systematically
// incomplete, in which case the engine re-fetches each contact individually.
// On some platforms a restricted permission scope strips fields from bulk
// reads that fetch-by-id still surfaces.
type EnrichmentPolicy interface {
	NeedsPerContactFetch(contacts []models.DeviceContact) bool
}

// ZeroBirthdayHeuristic flags a bulk fetch when a non-empty contact set came
// back with zero birthdays. Probabilistic: a contact list genuinely without
// birthdays pays one redundant per-record pass.
type ZeroBirthdayHeuristic struct{}

func (ZeroBirthdayHeuristic) NeedsPerContactFetch(contacts []models.DeviceContact) bool {
	if len(contacts) == 0 {
		return false
	}
	for i := range contacts {
		if contacts[i].Birthday != nil {
			return false
		}
	}
	return true
}
