package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Muhammadurasheed/scholarstream/internal/feed"
	"github.com/Muhammadurasheed/scholarstream/internal/models"
)

func testServer(t *testing.T, snap []models.Opportunity) (*Server, *feed.Service) {
	t.Helper()
	svc := feed.NewService(func(context.Context) ([]models.Opportunity, error) {
		return snap, nil
	}, zap.NewNop())
	profile := func() models.UserProfile {
		return models.UserProfile{Country: "United States", State: "California"}
	}
	return NewServer(svc, profile, zap.NewNop()), svc
}

func futureDeadline(days int) string {
	return time.Now().AddDate(0, 0, days).Format("2006-01-02T15:04:05Z07:00")
}

func TestHealth(t *testing.T) {
	srv, _ := testServer(t, nil)
	rec := httptest.NewRecorder()
	srv.Echo.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestOpportunitiesEndpoint(t *testing.T) {
	snap := []models.Opportunity{
		{ID: "s1", Name: "Merit Scholarship", Deadline: futureDeadline(30)},
		{ID: "h1", Name: "Spring Hackathon", Deadline: futureDeadline(30), SourceType: "devpost"},
	}
	srv, svc := testServer(t, snap)
	if err := svc.RefreshSnapshot(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	rec := httptest.NewRecorder()
	srv.Echo.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/opportunities", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}

	var body struct {
		Opportunities []models.Opportunity `json:"opportunities"`
		Counts        map[string]int       `json:"counts"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Opportunities) != 2 {
		t.Fatalf("opportunities = %d, want 2", len(body.Opportunities))
	}
	if body.Counts["hackathons"] != 1 || body.Counts["scholarships"] != 1 {
		t.Fatalf("counts = %v", body.Counts)
	}

	rec = httptest.NewRecorder()
	srv.Echo.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/opportunities?tab=hackathons", nil))
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode tab: %v", err)
	}
	if len(body.Opportunities) != 1 || body.Opportunities[0].ID != "h1" {
		t.Fatalf("hackathons tab = %+v", body.Opportunities)
	}

	rec = httptest.NewRecorder()
	srv.Echo.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/opportunities?tab=nope", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown tab status = %d", rec.Code)
	}
}

func TestPendingAndProtectedFlush(t *testing.T) {
	srv, svc := testServer(t, nil)
	svc.OnOpportunity(models.Opportunity{ID: "a", Name: "A", Deadline: futureDeadline(20)})

	rec := httptest.NewRecorder()
	srv.Echo.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/pending", nil))
	if rec.Code != http.StatusOK || rec.Body.String() == "" {
		t.Fatalf("pending status = %d", rec.Code)
	}
	var pending map[string]int
	if err := json.Unmarshal(rec.Body.Bytes(), &pending); err != nil {
		t.Fatalf("decode pending: %v", err)
	}
	if pending["pending"] != 1 {
		t.Fatalf("pending = %d, want 1", pending["pending"])
	}

	// Flush without a token is rejected.
	rec = httptest.NewRecorder()
	srv.Echo.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/flush", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated flush status = %d", rec.Code)
	}

	t.Setenv("JWT_SECRET", "test-secret")
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": uuid.NewString(),
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/flush", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	rec = httptest.NewRecorder()
	srv.Echo.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("flush status = %d body=%s", rec.Code, rec.Body.String())
	}

	var flushed struct {
		Flushed int `json:"flushed"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &flushed); err != nil {
		t.Fatalf("decode flush: %v", err)
	}
	if flushed.Flushed != 1 {
		t.Fatalf("flushed = %d, want 1", flushed.Flushed)
	}
	if svc.PendingCount() != 0 {
		t.Fatal("pending not cleared by flush endpoint")
	}
}

func TestStreamStatusEndpoint(t *testing.T) {
	srv, svc := testServer(t, nil)
	svc.OnConnected()

	rec := httptest.NewRecorder()
	srv.Echo.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/stream", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var status feed.Status
	if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !status.Connected || status.Lost {
		t.Fatalf("status = %+v", status)
	}
}
