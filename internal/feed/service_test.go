package feed

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/Muhammadurasheed/scholarstream/internal/models"
	"github.com/Muhammadurasheed/scholarstream/internal/view"
)

func deadlineFromNow(days int) string {
	return time.Now().AddDate(0, 0, days).Format("2006-01-02T15:04:05Z07:00")
}

func idsOf(opps []models.Opportunity) []string {
	ids := make([]string, len(opps))
	for i, opp := range opps {
		ids[i] = opp.ID
	}
	return ids
}

func TestServiceArrivalsStayPendingUntilFlush(t *testing.T) {
	svc := NewService(nil, zap.NewNop())

	svc.OnOpportunity(models.Opportunity{ID: "a", Name: "A", Deadline: deadlineFromNow(30)})
	svc.OnOpportunity(models.Opportunity{ID: "b", Name: "B", Deadline: deadlineFromNow(30)})
	svc.OnOpportunity(models.Opportunity{ID: "a", Name: "A dup", Deadline: deadlineFromNow(30)})

	if got := svc.PendingCount(); got != 2 {
		t.Fatalf("pending = %d, want 2", got)
	}
	if g := svc.View(models.UserProfile{}, view.Options{}); len(g.All) != 0 {
		t.Fatalf("view shows %d items before flush, want 0", len(g.All))
	}

	drained := svc.Flush()
	if len(drained) != 2 || drained[0].ID != "b" {
		t.Fatalf("flush = %v", drained)
	}
	if svc.PendingCount() != 0 {
		t.Fatal("pending not cleared by flush")
	}
	if g := svc.View(models.UserProfile{}, view.Options{}); len(g.All) != 2 {
		t.Fatalf("view shows %d items after flush, want 2", len(g.All))
	}
}

func TestServiceSnapshotMergeSuppressesStreamDuplicates(t *testing.T) {
	snap := []models.Opportunity{
		{ID: "s1", Name: "Snap One", SourceURL: "https://x/1", Deadline: deadlineFromNow(30)},
	}
	svc := NewService(func(context.Context) ([]models.Opportunity, error) {
		return snap, nil
	}, zap.NewNop())

	if err := svc.RefreshSnapshot(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if st := svc.Status(); st.Displayed != 1 || st.LastRefresh.IsZero() {
		t.Fatalf("status after refresh = %+v", st)
	}

	// The same id arriving on the stream must not buffer again.
	svc.OnOpportunity(models.Opportunity{ID: "s1", Name: "Snap One", Deadline: deadlineFromNow(30)})
	if svc.PendingCount() != 0 {
		t.Fatal("snapshot-displayed id re-buffered from the stream")
	}
}

func TestServiceSnapshotMergeKeepsLiveCopy(t *testing.T) {
	snap := []models.Opportunity{
		{ID: "snap-id", Name: "Shared", SourceURL: "https://x/shared", Amount: 100, Deadline: deadlineFromNow(30)},
	}
	svc := NewService(func(context.Context) ([]models.Opportunity, error) {
		return snap, nil
	}, zap.NewNop())

	svc.OnOpportunity(models.Opportunity{
		ID: "live-id", Name: "Shared", SourceURL: "https://x/shared",
		Amount: 999, Deadline: deadlineFromNow(30),
	})
	svc.Flush()
	if err := svc.RefreshSnapshot(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	g := svc.View(models.UserProfile{}, view.Options{})
	if len(g.All) != 1 {
		t.Fatalf("view shows %d items, want 1 after identity merge", len(g.All))
	}
	if g.All[0].Amount != 999 {
		t.Fatalf("merge kept amount %v, want the live copy's 999", g.All[0].Amount)
	}
}

func TestServiceFlushReplacesDisplayedIdentity(t *testing.T) {
	// Snapshot first, then the same listing arrives over the stream under
	// a new session id and a retitled name. Flushing must replace the
	// displayed copy, not display both.
	snap := []models.Opportunity{
		{ID: "y", Name: "AI Grant", SourceURL: "https://grants.example/ai", Deadline: deadlineFromNow(30)},
	}
	svc := NewService(func(context.Context) ([]models.Opportunity, error) {
		return snap, nil
	}, zap.NewNop())

	if err := svc.RefreshSnapshot(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	svc.OnOpportunity(models.Opportunity{
		ID: "x", Name: "AI Grant - Apply Now", SourceURL: "https://grants.example/ai",
		Deadline: deadlineFromNow(30),
	})
	if svc.PendingCount() != 1 {
		t.Fatalf("pending = %d, want 1", svc.PendingCount())
	}
	svc.Flush()

	g := svc.View(models.UserProfile{}, view.Options{})
	if len(g.All) != 1 {
		t.Fatalf("displayed pool has %d entries for one source_url, want 1: %v", len(g.All), idsOf(g.All))
	}
	if g.All[0].ID != "x" {
		t.Fatalf("displayed copy = %s, want the flushed stream copy x", g.All[0].ID)
	}
}

func TestServiceFlushKeepsUnrelatedDisplayed(t *testing.T) {
	snap := []models.Opportunity{
		{ID: "s1", Name: "Snap One", SourceURL: "https://x/1", Deadline: deadlineFromNow(30)},
	}
	svc := NewService(func(context.Context) ([]models.Opportunity, error) {
		return snap, nil
	}, zap.NewNop())

	if err := svc.RefreshSnapshot(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	svc.OnOpportunity(models.Opportunity{
		ID: "l1", Name: "Live One", SourceURL: "https://x/2", Deadline: deadlineFromNow(30),
	})
	svc.Flush()

	if st := svc.Status(); st.Displayed != 2 {
		t.Fatalf("displayed = %d, want 2", st.Displayed)
	}
	g := svc.View(models.UserProfile{}, view.Options{})
	if len(g.All) != 2 {
		t.Fatalf("view shows %d items, want 2", len(g.All))
	}
}

func TestServiceRefreshError(t *testing.T) {
	wantErr := errors.New("upstream down")
	svc := NewService(func(context.Context) ([]models.Opportunity, error) {
		return nil, wantErr
	}, zap.NewNop())

	err := svc.RefreshSnapshot(context.Background())
	if !errors.Is(err, wantErr) {
		t.Fatalf("err = %v, want wrapped upstream error", err)
	}
	if st := svc.Status(); st.Displayed != 0 || !st.LastRefresh.IsZero() {
		t.Fatalf("failed refresh mutated state: %+v", st)
	}
}

func TestServiceConnectionState(t *testing.T) {
	svc := NewService(nil, zap.NewNop())
	if st := svc.Status(); st.Connected || st.Lost {
		t.Fatalf("fresh service status = %+v", st)
	}

	svc.OnConnected()
	if st := svc.Status(); !st.Connected || st.Lost {
		t.Fatalf("status after connect = %+v", st)
	}

	svc.OnConnectionLost(errors.New("gone"))
	if st := svc.Status(); st.Connected || !st.Lost {
		t.Fatalf("status after loss = %+v", st)
	}

	svc.OnConnected()
	if st := svc.Status(); !st.Connected || st.Lost {
		t.Fatalf("reconnect must clear the lost flag: %+v", st)
	}
}
