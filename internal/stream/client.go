package stream

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Muhammadurasheed/scholarstream/internal/models"
)

// ErrConnectionLost is surfaced to the sink after the reconnect budget is
// exhausted. The session stays down until Reconnect is called.
var ErrConnectionLost = errors.New("stream connection lost after max reconnect attempts")

const (
	defaultPingInterval = 25 * time.Second
	defaultMaxAttempts  = 5
	maxBackoff          = 30 * time.Second
)

// Sink receives decoded stream events. Callbacks run on the client's read
// goroutine or timer callbacks; implementations must not block.
type Sink interface {
	OnConnected()
	OnOpportunity(opp models.Opportunity)
	OnConnectionLost(err error)
}

// Conn is the subset of a websocket connection the client uses.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Dialer opens one connection to the given URL. Faked in tests.
type Dialer interface {
	Dial(ctx context.Context, url string) (Conn, error)
}

type wsDialer struct{}

func (wsDialer) Dial(ctx context.Context, rawURL string) (Conn, error) {
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, rawURL, nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusUnauthorized {
			return nil, fmt.Errorf("dial stream: unauthorized: %w", err)
		}
		return nil, fmt.Errorf("dial stream: %w", err)
	}
	return conn, nil
}

// Config configures a stream Client. Zero values take the defaults above.
type Config struct {
	URL          string
	PingInterval time.Duration
	MaxAttempts  int
	Dialer       Dialer
}

// Client maintains one live websocket session against the opportunity feed:
// dial with the current token, keepalive pings, decode-and-dispatch, and
// exponential-backoff reconnection on abnormal close.
type Client struct {
	cfg  Config
	sink Sink
	log  *zap.Logger

	mu        sync.Mutex
	conn      Conn
	token     string
	attempts  int
	gen       uint64
	connected bool
	lost      bool
	closed    bool
	reconnect *time.Timer
	pingStop  chan struct{}
}

// NewClient builds a client. The sink is required; Connect must be called to
// open the session.
func NewClient(cfg Config, sink Sink, log *zap.Logger) *Client {
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = defaultPingInterval
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = defaultMaxAttempts
	}
	if cfg.Dialer == nil {
		cfg.Dialer = wsDialer{}
	}
	return &Client{cfg: cfg, sink: sink, log: log}
}

// SetToken stores the auth token used on the next dial. Rotating the token
// does not disturb an open session; call Reconnect to pick it up immediately.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// Connect opens the session. It returns the first dial error synchronously;
// reconnection after a later drop happens in the background.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return errors.New("stream client closed")
	}
	if c.connected {
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()
	return c.dial(ctx)
}

// Reconnect resets the attempt counter and terminal-loss state, then dials.
// This is the manual recovery path after ErrConnectionLost and the way to
// pick up a rotated token.
func (c *Client) Reconnect(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return errors.New("stream client closed")
	}
	c.attempts = 0
	c.lost = false
	c.teardownLocked()
	c.mu.Unlock()
	return c.dial(ctx)
}

// Close sends the normal close code and tears the session down. A closed
// client never reconnects.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	if c.conn != nil {
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "client disconnected")
		if err := c.conn.WriteMessage(websocket.CloseMessage, msg); err != nil {
			c.log.Debug("close handshake write failed", zap.Error(err))
		}
	}
	c.teardownLocked()
	return nil
}

// Connected reports whether a session is currently open.
func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// Lost reports whether the reconnect budget has been exhausted.
func (c *Client) Lost() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lost
}

// Backoff returns the reconnect delay for the given attempt number:
// min(1s * 2^attempt, 30s).
func Backoff(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	if attempt > 5 {
		return maxBackoff
	}
	d := time.Second << uint(attempt)
	if d > maxBackoff {
		return maxBackoff
	}
	return d
}

func (c *Client) dial(ctx context.Context) error {
	c.mu.Lock()
	token := c.token
	c.mu.Unlock()

	conn, err := c.cfg.Dialer.Dial(ctx, streamURL(c.cfg.URL, token))
	if err != nil {
		c.log.Warn("stream dial failed", zap.Error(err))
		c.scheduleReconnect()
		return err
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		conn.Close()
		return errors.New("stream client closed")
	}
	c.gen++
	gen := c.gen
	c.conn = conn
	c.connected = true
	c.attempts = 0
	c.pingStop = make(chan struct{})
	pingStop := c.pingStop
	c.mu.Unlock()

	c.log.Info("stream connected", zap.String("url", c.cfg.URL))
	c.sink.OnConnected()

	go c.keepalive(conn, pingStop)
	go c.readLoop(conn, gen)
	return nil
}

// readLoop owns the connection until it errors. A stale generation bails out
// silently so a manual Reconnect cannot race an old loop into a double
// reconnect schedule.
func (c *Client) readLoop(conn Conn, gen uint64) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			c.mu.Lock()
			if c.gen != gen || c.closed {
				c.mu.Unlock()
				return
			}
			c.connected = false
			c.teardownLocked()
			c.mu.Unlock()
			c.log.Warn("stream read failed", zap.Error(err))
			c.scheduleReconnect()
			return
		}
		c.dispatch(data)
	}
}

func (c *Client) dispatch(data []byte) {
	event, err := Decode(data)
	if err != nil {
		c.log.Warn("skipping stream message", zap.Error(err))
		return
	}
	switch ev := event.(type) {
	case ConnectionEstablished:
		c.log.Info("stream session established", zap.String("message", ev.Message))
	case NewOpportunity:
		c.sink.OnOpportunity(ev.Opportunity)
	case Heartbeat:
		c.log.Debug("stream heartbeat", zap.String("timestamp", ev.Timestamp))
	case Pong:
	}
}

func (c *Client) keepalive(conn Conn, stop chan struct{}) {
	ticker := time.NewTicker(c.cfg.PingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"ping"}`)); err != nil {
				c.log.Debug("keepalive write failed", zap.Error(err))
				return
			}
		}
	}
}

func (c *Client) scheduleReconnect() {
	c.mu.Lock()
	if c.closed || c.lost {
		c.mu.Unlock()
		return
	}
	if c.attempts >= c.cfg.MaxAttempts {
		c.lost = true
		c.mu.Unlock()
		c.log.Error("stream reconnect attempts exhausted",
			zap.Int("attempts", c.cfg.MaxAttempts))
		c.sink.OnConnectionLost(ErrConnectionLost)
		return
	}
	delay := Backoff(c.attempts)
	c.attempts++
	attempt := c.attempts
	c.reconnect = time.AfterFunc(delay, func() {
		if err := c.dial(context.Background()); err != nil {
			c.log.Warn("stream redial failed", zap.Int("attempt", attempt), zap.Error(err))
		}
	})
	c.mu.Unlock()
	c.log.Info("stream reconnect scheduled",
		zap.Duration("delay", delay), zap.Int("attempt", attempt))
}

// teardownLocked stops timers and closes the conn. Caller holds the mutex.
func (c *Client) teardownLocked() {
	if c.reconnect != nil {
		c.reconnect.Stop()
		c.reconnect = nil
	}
	if c.pingStop != nil {
		close(c.pingStop)
		c.pingStop = nil
	}
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	c.connected = false
}

func streamURL(base, token string) string {
	if token == "" {
		return base
	}
	sep := "?"
	if u, err := url.Parse(base); err == nil && u.RawQuery != "" {
		sep = "&"
	}
	return base + sep + "token=" + url.QueryEscape(token)
}
