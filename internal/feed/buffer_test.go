package feed

import (
	"testing"
	"time"

	"github.com/Muhammadurasheed/scholarstream/internal/models"
)

func opp(id, name string) models.Opportunity {
	return models.Opportunity{ID: id, Name: name}
}

func TestBufferAddNewestFirst(t *testing.T) {
	b := NewBuffer()
	for _, id := range []string{"a", "b", "c"} {
		if !b.Add(opp(id, id)) {
			t.Fatalf("add %s rejected", id)
		}
	}
	if b.Count() != 3 {
		t.Fatalf("count = %d, want 3", b.Count())
	}

	drained := b.Flush()
	want := []string{"c", "b", "a"}
	for i, id := range want {
		if drained[i].ID != id {
			t.Fatalf("flush order[%d] = %s, want %s", i, drained[i].ID, id)
		}
	}
}

func TestBufferRejectsDuplicatesAndEmptyIDs(t *testing.T) {
	b := NewBuffer()
	if b.Add(models.Opportunity{Name: "no id"}) {
		t.Fatal("accepted an item without an id")
	}
	if !b.Add(opp("a", "A")) {
		t.Fatal("first add rejected")
	}
	if b.Add(opp("a", "A again")) {
		t.Fatal("accepted a duplicate of a buffered item")
	}

	b.Flush()
	if b.Add(opp("a", "A after flush")) {
		t.Fatal("accepted a duplicate of a displayed item")
	}
	if !b.Add(opp("b", "B")) {
		t.Fatal("fresh item rejected after flush")
	}
}

func TestBufferFlushIsAtomic(t *testing.T) {
	b := NewBuffer()
	b.Add(opp("a", "A"))
	b.Add(opp("b", "B"))

	drained := b.Flush()
	if len(drained) != 2 || b.Count() != 0 {
		t.Fatalf("flush drained %d, remaining %d", len(drained), b.Count())
	}
	if again := b.Flush(); again != nil {
		t.Fatalf("second flush returned %d items, want none", len(again))
	}
}

func TestBufferMarkDisplayedSuppressesArrivals(t *testing.T) {
	b := NewBuffer()
	b.MarkDisplayed("snap-1", "")
	if b.Add(opp("snap-1", "already shown")) {
		t.Fatal("accepted an arrival already displayed by the snapshot")
	}
}

func TestBufferRecentWindow(t *testing.T) {
	b := NewBuffer()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	b.now = func() time.Time { return now }

	b.Add(opp("a", "A"))
	b.Flush()
	if !b.RecentlyAdded("a") {
		t.Fatal("flushed item not marked recently added")
	}
	if b.RecentlyAdded("ghost") {
		t.Fatal("unknown id reported as recent")
	}

	now = now.Add(29 * time.Second)
	if !b.RecentlyAdded("a") {
		t.Fatal("item expired before the window closed")
	}
	if ids := b.RecentIDs(); len(ids) != 1 || ids[0] != "a" {
		t.Fatalf("RecentIDs = %v", ids)
	}

	now = now.Add(2 * time.Second)
	if b.RecentlyAdded("a") {
		t.Fatal("item still recent after the window")
	}
	if ids := b.RecentIDs(); len(ids) != 0 {
		t.Fatalf("RecentIDs after expiry = %v", ids)
	}
}
