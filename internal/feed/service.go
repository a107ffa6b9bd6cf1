package feed

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Muhammadurasheed/scholarstream/internal/match"
	"github.com/Muhammadurasheed/scholarstream/internal/models"
	"github.com/Muhammadurasheed/scholarstream/internal/view"
)

// SnapshotFunc fetches the current snapshot of opportunities from the
// upstream catalog.
type SnapshotFunc func(ctx context.Context) ([]models.Opportunity, error)

// Status is the observable state of the feed for the API layer.
type Status struct {
	Connected   bool      `json:"connected"`
	Lost        bool      `json:"connection_lost"`
	Pending     int       `json:"pending"`
	Displayed   int       `json:"displayed"`
	LastRefresh time.Time `json:"last_refresh,omitempty"`
}

// Service wires the live stream, the arrival buffer, the snapshot refresh
// and the ranked view together. It is the stream sink: arrivals land in the
// buffer, never in the displayed pool. The displayed pool changes only on
// Flush and on snapshot merge.
type Service struct {
	snapshot SnapshotFunc
	log      *zap.Logger

	mu          sync.Mutex
	buffer      *Buffer
	displayed   []models.Opportunity
	connected   bool
	lost        bool
	lastRefresh time.Time
}

func NewService(snapshot SnapshotFunc, log *zap.Logger) *Service {
	return &Service{
		snapshot: snapshot,
		log:      log,
		buffer:   NewBuffer(),
	}
}

// OnConnected implements stream.Sink.
func (s *Service) OnConnected() {
	s.mu.Lock()
	s.connected = true
	s.lost = false
	s.mu.Unlock()
	s.log.Info("feed stream connected")
}

// OnOpportunity implements stream.Sink: live arrivals are buffered, not
// displayed.
func (s *Service) OnOpportunity(opp models.Opportunity) {
	s.mu.Lock()
	accepted := s.buffer.Add(opp)
	pending := s.buffer.Count()
	s.mu.Unlock()
	if accepted {
		s.log.Info("opportunity buffered",
			zap.String("id", opp.ID), zap.String("name", opp.Name), zap.Int("pending", pending))
	} else {
		s.log.Debug("duplicate arrival dropped", zap.String("id", opp.ID))
	}
}

// OnConnectionLost implements stream.Sink.
func (s *Service) OnConnectionLost(err error) {
	s.mu.Lock()
	s.connected = false
	s.lost = true
	s.mu.Unlock()
	s.log.Error("feed stream lost", zap.Error(err))
}

// PendingCount returns how many arrivals await a flush.
func (s *Service) PendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buffer.Count()
}

// Flush moves all buffered arrivals to the front of the displayed pool and
// returns them.
func (s *Service) Flush() []models.Opportunity {
	s.mu.Lock()
	defer s.mu.Unlock()
	drained := s.buffer.Flush()
	if len(drained) == 0 {
		return nil
	}
	// Identity merge, not a plain prepend: a stream copy of an already
	// displayed listing (same source URL, new session id) must replace it,
	// never sit next to it.
	s.displayed = mergeFront(drained, s.displayed)
	s.log.Info("buffer flushed",
		zap.Int("flushed", len(drained)), zap.Int("displayed", len(s.displayed)))
	return drained
}

// RefreshSnapshot fetches the snapshot and merges it into the displayed
// pool. Live (already displayed) items win identity conflicts; snapshot ids
// are marked displayed so the stream cannot re-buffer them.
func (s *Service) RefreshSnapshot(ctx context.Context) error {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return fmt.Errorf("refresh snapshot: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.displayed = Merge(s.displayed, snap)
	for _, opp := range snap {
		s.buffer.MarkDisplayed(opp.ID)
	}
	s.lastRefresh = time.Now()
	s.log.Info("snapshot merged",
		zap.Int("snapshot", len(snap)), zap.Int("displayed", len(s.displayed)))
	return nil
}

// RunSnapshotRefresh refreshes immediately and then on the given interval
// until the context is cancelled.
func (s *Service) RunSnapshotRefresh(ctx context.Context, interval time.Duration) {
	if err := s.RefreshSnapshot(ctx); err != nil {
		s.log.Warn("initial snapshot refresh failed", zap.Error(err))
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.RefreshSnapshot(ctx); err != nil {
				s.log.Warn("snapshot refresh failed", zap.Error(err))
			}
		}
	}
}

// View ranks the displayed pool against the profile and runs the
// filter/sort/categorize pipeline over the result.
func (s *Service) View(profile models.UserProfile, opts view.Options) view.Grouped {
	s.mu.Lock()
	pool := make([]models.Opportunity, len(s.displayed))
	copy(pool, s.displayed)
	s.mu.Unlock()

	ranked := match.Rank(pool, profile)
	return view.Process(ranked, opts)
}

// RecentIDs exposes the ids still inside the recently-added highlight
// window.
func (s *Service) RecentIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buffer.RecentIDs()
}

// Status reports connection and pool state.
func (s *Service) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Status{
		Connected:   s.connected,
		Lost:        s.lost,
		Pending:     s.buffer.Count(),
		Displayed:   len(s.displayed),
		LastRefresh: s.lastRefresh,
	}
}
