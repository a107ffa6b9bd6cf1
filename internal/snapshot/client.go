package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/Muhammadurasheed/scholarstream/internal/models"
)

// TokenFunc supplies the current bearer token for the catalog endpoint.
type TokenFunc func() string

// Client fetches the opportunity catalog snapshot. One GET per refresh, no
// retries; the periodic refresh cadence absorbs transient failures.
type Client struct {
	url    string
	token  TokenFunc
	client *http.Client
	log    *zap.Logger
}

func NewClient(url string, token TokenFunc, log *zap.Logger) *Client {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	return &Client{
		url:   url,
		token: token,
		log:   log,
		client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
	}
}

// Fetch GETs the snapshot and normalizes every record. Records that fail
// normalization are skipped, not fatal.
func (c *Client) Fetch(ctx context.Context) ([]models.Opportunity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if tok := c.token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var raw []models.Opportunity
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}

	now := time.Now()
	out := make([]models.Opportunity, 0, len(raw))
	for _, opp := range raw {
		normalized, err := Normalize(opp, now)
		if err != nil {
			c.log.Warn("skipping snapshot record", zap.String("name", opp.Name), zap.Error(err))
			continue
		}
		out = append(out, normalized)
	}
	c.log.Info("snapshot fetched", zap.Int("records", len(out)))
	return out, nil
}
