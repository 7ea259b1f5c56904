// Package trace publishes turn and command spans to Kafka as JSON.
// Publishing is optional; without configured brokers every call is a
// no-op, so call sites never need to branch.
package trace

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
)

// Span types.
const (
	SpanTurn    = "turn"
	SpanCommand = "command"
	SpanGuard   = "guard"
)

// Span is one published trace event.
type Span struct {
	Type       string    `json:"type"`
	TurnID     string    `json:"turn_id"`
	SessionKey string    `json:"session_key,omitempty"`
	Title      string    `json:"title"`
	Detail     string    `json:"detail,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// Publisher writes spans to a Kafka topic.
type Publisher struct {
	writer *kafka.Writer
}

// NewPublisher creates a span publisher. With no brokers it returns a
// disabled publisher whose Publish does nothing.
func NewPublisher(brokers []string, topic string) *Publisher {
	if len(brokers) == 0 {
		return &Publisher{}
	}
	return &Publisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.LeastBytes{},
			RequiredAcks:           kafka.RequireOne,
			AllowAutoTopicCreation: true,
		},
	}
}

// Enabled reports whether spans will actually be written.
func (p *Publisher) Enabled() bool {
	return p.writer != nil
}

// Publish writes one span. Failures are logged, never fatal; tracing
// must not break the turn.
func (p *Publisher) Publish(ctx context.Context, span Span) {
	if p.writer == nil {
		return
	}
	if span.Timestamp.IsZero() {
		span.Timestamp = time.Now()
	}
	payload, err := json.Marshal(span)
	if err != nil {
		slog.Warn("trace: marshal span failed", "error", err)
		return
	}
	writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := p.writer.WriteMessages(writeCtx, kafka.Message{
		Key:   []byte(span.TurnID),
		Value: payload,
	}); err != nil {
		slog.Warn("trace: publish failed", "type", span.Type, "error", err)
	}
}

// Close flushes and closes the underlying writer.
func (p *Publisher) Close() error {
	if p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
