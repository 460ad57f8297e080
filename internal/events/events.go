// Package events publishes booking state changes to Kafka.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"fitclass/internal/logger"
	"fitclass/internal/metrics"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

type Type string

const (
	BookingCreated   Type = "booking.created"
	BookingCancelled Type = "booking.cancelled"
	BookingPromoted  Type = "booking.promoted"
	BookingDemoted   Type = "booking.demoted"
	AttendanceMarked Type = "attendance.marked"
)

type Event struct {
	ID         string    `json:"id"`
	Type       Type      `json:"type"`
	ClassID    int       `json:"class_id"`
	BookingID  int       `json:"booking_id"`
	MemberID   int       `json:"member_id"`
	Status     string    `json:"status,omitempty"`
	Present    *bool     `json:"present,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// New stamps an event with a fresh id.
func New(t Type, classID, bookingID, memberID int, status string, at time.Time) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       t,
		ClassID:    classID,
		BookingID:  bookingID,
		MemberID:   memberID,
		Status:     status,
		OccurredAt: at.UTC(),
	}
}

type Publisher interface {
	Publish(ctx context.Context, events ...Event) error
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Producer struct {
	topic  string
	writer messageWriter
}

func NewProducer(brokers []string, topic string) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 50 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
	}
	return &Producer{topic: topic, writer: writer}
}

// Publish writes events keyed by class id so a class's history stays on one
// partition and in order.
func (p *Producer) Publish(ctx context.Context, events ...Event) error {
	if len(events) == 0 {
		return nil
	}

	msgs := make([]kafka.Message, 0, len(events))
	for _, e := range events {
		data, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("failed to marshal event: %w", err)
		}
		msgs = append(msgs, kafka.Message{
			Key:   []byte(strconv.Itoa(e.ClassID)),
			Value: data,
			Time:  e.OccurredAt,
			Headers: []kafka.Header{
				{Key: "type", Value: []byte(e.Type)},
			},
		})
	}

	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		for _, e := range events {
			metrics.RecordEvent(string(e.Type), "failed")
		}
		return fmt.Errorf("failed to write %d messages to %s: %w", len(msgs), p.topic, err)
	}

	for _, e := range events {
		metrics.RecordEvent(string(e.Type), "success")
	}
	logger.Debug("events published", "topic", p.topic, "count", len(events))
	return nil
}

func (p *Producer) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}

// Nop drops every event. Used when no brokers are configured.
type Nop struct{}

func (Nop) Publish(context.Context, ...Event) error { return nil }
