package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"

	"github.com/stagiu-portal/document-management-api/internal/config"
)

// Publisher is the contract the assignment service depends on. Publishing is
// best-effort: the caller logs a failure and moves on, it never rolls back a
// committed assignment.
type Publisher interface {
	PublishDocumentAssigned(ctx context.Context, event *DocumentAssignedEvent) error
	Close() error
}

// KafkaPublisher publishes events to a Kafka topic
type KafkaPublisher struct {
	writer *kafka.Writer
}

// NewKafkaPublisher builds a publisher from the notifications section of the
// configuration
func NewKafkaPublisher(cfg *config.NotificationsConfig) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(cfg.Broker),
			Topic:        cfg.Topic,
			Balancer:     &kafka.LeastBytes{},
			RequiredAcks: kafka.RequireAll,
			Async:        false,
			WriteTimeout: 10 * time.Second,
		},
	}
}

// PublishDocumentAssigned publishes a document.assigned event keyed by
// student ID so events for one student stay ordered
func (p *KafkaPublisher) PublishDocumentAssigned(ctx context.Context, event *DocumentAssignedEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.StudentID),
		Value: payload,
		Time:  time.Now(),
	})
	if err != nil {
		return fmt.Errorf("failed to publish %s event: %w", event.Event, err)
	}

	logrus.WithFields(logrus.Fields{
		"event":         event.Event,
		"student_id":    event.StudentID,
		"assignment_id": event.AssignmentID,
	}).Debug("Published notification event")
	return nil
}

// Close flushes and closes the underlying writer
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NoopPublisher is used when notifications are disabled in configuration
type NoopPublisher struct{}

// PublishDocumentAssigned does nothing
func (NoopPublisher) PublishDocumentAssigned(ctx context.Context, event *DocumentAssignedEvent) error {
	return nil
}

// Close does nothing
func (NoopPublisher) Close() error { return nil }
