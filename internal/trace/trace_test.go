package trace

import (
	"context"
	"testing"
)

func TestPublisher_DisabledWithoutBrokers(t *testing.T) {
	p := NewPublisher(nil, "asksh.trace")
	if p.Enabled() {
		t.Fatal("publisher should be disabled without brokers")
	}
	// Must be a no-op, not a panic or a network attempt.
	p.Publish(context.Background(), Span{Type: SpanTurn, TurnID: "t1", Title: "turn"})
	if err := p.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}

func TestPublisher_EnabledWithBrokers(t *testing.T) {
	p := NewPublisher([]string{"localhost:9092"}, "asksh.trace")
	if !p.Enabled() {
		t.Fatal("publisher should be enabled with brokers")
	}
	// Close without publishing; no connection is made until a write.
	if err := p.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}
