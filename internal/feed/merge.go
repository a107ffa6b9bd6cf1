package feed

import (
	"strings"

	"github.com/Muhammadurasheed/scholarstream/internal/models"
)

// identityKey resolves the cross-source identity of a listing: the source
// URL when present, else the normalized name, else the session id.
func identityKey(opp models.Opportunity) string {
	if opp.SourceURL != "" {
		return opp.SourceURL
	}
	if name := strings.ToLower(strings.TrimSpace(opp.Name)); name != "" {
		return name
	}
	return opp.ID
}

// Merge combines the live pool with a snapshot pool, one item per identity.
// Snapshot items are inserted first so live items overwrite them in place:
// the live copy is the more recently observed one, and first-seen order is
// preserved.
func Merge(live, snapshot []models.Opportunity) []models.Opportunity {
	index := make(map[string]int, len(live)+len(snapshot))
	merged := make([]models.Opportunity, 0, len(live)+len(snapshot))

	insert := func(opp models.Opportunity) {
		key := identityKey(opp)
		if at, ok := index[key]; ok {
			merged[at] = opp
			return
		}
		index[key] = len(merged)
		merged = append(merged, opp)
	}

	for _, opp := range snapshot {
		insert(opp)
	}
	for _, opp := range live {
		insert(opp)
	}
	return merged
}

// mergeFront puts fresh items first, in their given order, and keeps only
// the existing items whose identity no fresh item claims. Fresh wins on
// conflict for the same reason live wins in Merge.
func mergeFront(fresh, existing []models.Opportunity) []models.Opportunity {
	claimed := make(map[string]struct{}, len(fresh))
	out := make([]models.Opportunity, 0, len(fresh)+len(existing))
	for _, opp := range fresh {
		key := identityKey(opp)
		if _, ok := claimed[key]; ok {
			continue
		}
		claimed[key] = struct{}{}
		out = append(out, opp)
	}
	for _, opp := range existing {
		if _, ok := claimed[identityKey(opp)]; ok {
			continue
		}
		out = append(out, opp)
	}
	return out
}
