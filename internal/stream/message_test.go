package stream

import (
	"errors"
	"testing"
)

func TestDecodeConnectionEstablished(t *testing.T) {
	ev, err := Decode([]byte(`{"type":"connection_established","message":"welcome"}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	ce, ok := ev.(ConnectionEstablished)
	if !ok {
		t.Fatalf("got %T, want ConnectionEstablished", ev)
	}
	if ce.Message != "welcome" {
		t.Fatalf("message = %q", ce.Message)
	}
}

func TestDecodeNewOpportunity(t *testing.T) {
	payload := `{"type":"new_opportunity","opportunity":{"id":"opp-1","name":"AI Hackathon","amount":5000,"deadline":"2026-01-15","tags":["hackathon"]}}`
	ev, err := Decode([]byte(payload))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	no, ok := ev.(NewOpportunity)
	if !ok {
		t.Fatalf("got %T, want NewOpportunity", ev)
	}
	if no.Opportunity.ID != "opp-1" || no.Opportunity.Name != "AI Hackathon" {
		t.Fatalf("unexpected opportunity %+v", no.Opportunity)
	}
	if no.Opportunity.Amount != 5000 {
		t.Fatalf("amount = %v", no.Opportunity.Amount)
	}
}

func TestDecodeNewOpportunityWithoutID(t *testing.T) {
	cases := []string{
		`{"type":"new_opportunity"}`,
		`{"type":"new_opportunity","opportunity":{"name":"No ID"}}`,
	}
	for _, payload := range cases {
		if _, err := Decode([]byte(payload)); !errors.Is(err, ErrMissingOpportunity) {
			t.Fatalf("Decode(%s) err = %v, want ErrMissingOpportunity", payload, err)
		}
	}
}

func TestDecodeHeartbeatAndPong(t *testing.T) {
	ev, err := Decode([]byte(`{"type":"heartbeat","timestamp":"2026-01-01T00:00:00Z"}`))
	if err != nil {
		t.Fatalf("decode heartbeat: %v", err)
	}
	hb, ok := ev.(Heartbeat)
	if !ok || hb.Timestamp != "2026-01-01T00:00:00Z" {
		t.Fatalf("got %T %+v", ev, ev)
	}

	ev, err = Decode([]byte(`{"type":"pong"}`))
	if err != nil {
		t.Fatalf("decode pong: %v", err)
	}
	if _, ok := ev.(Pong); !ok {
		t.Fatalf("got %T, want Pong", ev)
	}
}

func TestDecodeUnknownType(t *testing.T) {
	if _, err := Decode([]byte(`{"type":"shutdown"}`)); !errors.Is(err, ErrUnknownType) {
		t.Fatalf("err = %v, want ErrUnknownType", err)
	}
}

func TestDecodeMalformed(t *testing.T) {
	if _, err := Decode([]byte(`{not json`)); err == nil {
		t.Fatal("malformed frame decoded without error")
	}
}
