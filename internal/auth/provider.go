package auth

import (
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Provider holds the rotating stream/catalog token. Token issuance happens
// outside this service; the provider only stores the current value and
// notifies subscribers when it changes so the stream can reconnect with the
// new token.
type Provider struct {
	mu    sync.RWMutex
	token string
	subs  []chan string
}

func NewProvider(initial string) *Provider {
	return &Provider{token: initial}
}

// Token returns the current token, possibly empty.
func (p *Provider) Token() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.token
}

// SetToken stores a new token and notifies subscribers. Slow subscribers
// miss intermediate values rather than blocking the rotation.
func (p *Provider) SetToken(token string) {
	p.mu.Lock()
	changed := token != p.token
	p.token = token
	subs := p.subs
	p.mu.Unlock()

	if !changed {
		return
	}
	for _, ch := range subs {
		select {
		case ch <- token:
		default:
		}
	}
}

// Subscribe returns a channel that receives each new token after a
// rotation.
func (p *Provider) Subscribe() <-chan string {
	ch := make(chan string, 1)
	p.mu.Lock()
	p.subs = append(p.subs, ch)
	p.mu.Unlock()
	return ch
}

// Expiry reads the exp claim without verifying the signature; validation is
// the upstream's job, this only tells the caller when a refresh is due.
// Returns the zero time when the token has no readable expiry.
func (p *Provider) Expiry() time.Time {
	tok := p.Token()
	if tok == "" {
		return time.Time{}
	}
	parsed, _, err := jwt.NewParser().ParseUnverified(tok, jwt.MapClaims{})
	if err != nil {
		return time.Time{}
	}
	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}
