package feed

import (
	"time"

	"github.com/Muhammadurasheed/scholarstream/internal/models"
)

// recentWindow is how long a freshly flushed item keeps its "recently
// added" highlight.
const recentWindow = 30 * time.Second

// Buffer is the newest-first holding area between the live stream and the
// displayed pool. Arrivals never enter the display directly; Flush is the
// only transition out. Not safe for concurrent use on its own; the feed
// Service serializes access.
type Buffer struct {
	pending   []models.Opportunity
	displayed map[string]struct{}
	recent    map[string]time.Time
	now       func() time.Time
}

func NewBuffer() *Buffer {
	return &Buffer{
		displayed: make(map[string]struct{}),
		recent:    make(map[string]time.Time),
		now:       time.Now,
	}
}

// Add buffers one arrival, newest first. Items without an id and items
// already buffered or already displayed are dropped. Reports whether the
// item was accepted.
func (b *Buffer) Add(opp models.Opportunity) bool {
	if opp.ID == "" {
		return false
	}
	if _, ok := b.displayed[opp.ID]; ok {
		return false
	}
	for _, p := range b.pending {
		if p.ID == opp.ID {
			return false
		}
	}
	b.pending = append([]models.Opportunity{opp}, b.pending...)
	return true
}

// Flush drains the buffer, marks every drained id displayed and recently
// added, and returns the drained items newest first.
func (b *Buffer) Flush() []models.Opportunity {
	if len(b.pending) == 0 {
		return nil
	}
	drained := b.pending
	b.pending = nil
	now := b.now()
	for _, opp := range drained {
		b.displayed[opp.ID] = struct{}{}
		b.recent[opp.ID] = now
	}
	return drained
}

// Count returns the number of buffered items.
func (b *Buffer) Count() int {
	return len(b.pending)
}

// MarkDisplayed records externally displayed ids (snapshot merges) so
// later stream duplicates are suppressed.
func (b *Buffer) MarkDisplayed(ids ...string) {
	for _, id := range ids {
		if id != "" {
			b.displayed[id] = struct{}{}
		}
	}
}

// RecentlyAdded reports whether the id was flushed within the highlight
// window. Expired entries are pruned as they are observed.
func (b *Buffer) RecentlyAdded(id string) bool {
	at, ok := b.recent[id]
	if !ok {
		return false
	}
	if b.now().Sub(at) > recentWindow {
		delete(b.recent, id)
		return false
	}
	return true
}

// RecentIDs returns all ids still inside the highlight window.
func (b *Buffer) RecentIDs() []string {
	now := b.now()
	ids := make([]string, 0, len(b.recent))
	for id, at := range b.recent {
		if now.Sub(at) > recentWindow {
			delete(b.recent, id)
			continue
		}
		ids = append(ids, id)
	}
	return ids
}
