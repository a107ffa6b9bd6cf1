package stream

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Muhammadurasheed/scholarstream/internal/models"
)

// Wire message tags. The server discriminates every frame on "type".
const (
	typeConnectionEstablished = "connection_established"
	typeNewOpportunity        = "new_opportunity"
	typeHeartbeat             = "heartbeat"
	typePong                  = "pong"
	typePing                  = "ping"
)

var (
	ErrUnknownType        = errors.New("unknown message type")
	ErrMissingOpportunity = errors.New("new_opportunity without payload id")
)

// envelope is the raw inbound frame before tag dispatch.
type envelope struct {
	Type        string              `json:"type"`
	Opportunity *models.Opportunity `json:"opportunity,omitempty"`
	Message     string              `json:"message,omitempty"`
	Timestamp   string              `json:"timestamp,omitempty"`
}

// Event is one decoded inbound message. The set is closed: decoding yields
// exactly one of the concrete event types below or an error.
type Event interface {
	eventTag() string
}

type ConnectionEstablished struct {
	Message string
}

type NewOpportunity struct {
	Opportunity models.Opportunity
}

type Heartbeat struct {
	Timestamp string
}

type Pong struct{}

func (ConnectionEstablished) eventTag() string { return typeConnectionEstablished }
func (NewOpportunity) eventTag() string        { return typeNewOpportunity }
func (Heartbeat) eventTag() string             { return typeHeartbeat }
func (Pong) eventTag() string                  { return typePong }

// Decode parses one inbound frame. Unknown tags return ErrUnknownType and a
// new_opportunity without an id returns ErrMissingOpportunity; the caller
// logs and skips either without tearing down the connection.
func Decode(data []byte) (Event, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode stream message: %w", err)
	}
	switch env.Type {
	case typeConnectionEstablished:
		return ConnectionEstablished{Message: env.Message}, nil
	case typeNewOpportunity:
		if env.Opportunity == nil || env.Opportunity.ID == "" {
			return nil, ErrMissingOpportunity
		}
		return NewOpportunity{Opportunity: *env.Opportunity}, nil
	case typeHeartbeat:
		return Heartbeat{Timestamp: env.Timestamp}, nil
	case typePong:
		return Pong{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, env.Type)
	}
}
