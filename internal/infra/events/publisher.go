// Package events publishes booking change events after a conditional write
// has been applied.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"travel-backoffice/internal/pkg/config"
	"travel-backoffice/internal/pkg/errs"
	"travel-backoffice/internal/usecase/shared"

	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/compress"
)

const headerEventType = "event-type"

type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	writer  MessageWriter
	timeout time.Duration
	logger  *slog.Logger
}

var _ shared.EventPublisher = (*KafkaPublisher)(nil)

func NewKafkaPublisher(writer MessageWriter, timeout time.Duration, logger *slog.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		writer:  writer,
		timeout: timeout,
		logger:  logger,
	}
}

// NewKafkaWriter keys messages by booking id, so events for one booking land
// on one partition in version order.
func NewKafkaWriter(cfg config.EventsConfig, logger *slog.Logger) *kafka.Writer {
	errorLogger := kafka.LoggerFunc(func(format string, args ...any) {
		logger.Error("kafka writer error", slog.String("detail", fmt.Sprintf(format, args...)))
	})
	return &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		Compression:  compress.Snappy,
		MaxAttempts:  3,
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: cfg.PublishTimeout,
		Logger:       kafka.LoggerFunc(func(string, ...any) {}),
		ErrorLogger:  errorLogger,
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, event shared.BookingEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return errs.Wrap(err, "failed to encode booking event")
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	msg := kafka.Message{
		Key:   []byte(event.BookingID.String()),
		Value: value,
		Time:  event.OccurredAt,
		Headers: []kafka.Header{
			{Key: headerEventType, Value: []byte(event.Type)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return errs.Wrapf(err, "failed to publish %s for booking %s", event.Type, event.BookingID)
	}

	p.logger.Debug("booking event published",
		slog.String("event_type", string(event.Type)),
		slog.String("booking_id", event.BookingID.String()),
		slog.Int64("version", event.Version))
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NoopPublisher is used when no broker is configured.
type NoopPublisher struct {
	logger *slog.Logger
}

func NewNoopPublisher(logger *slog.Logger) *NoopPublisher {
	return &NoopPublisher{logger: logger}
}

func (p *NoopPublisher) Publish(_ context.Context, event shared.BookingEvent) error {
	p.logger.Debug("booking event dropped, publishing disabled",
		slog.String("event_type", string(event.Type)),
		slog.String("booking_id", event.BookingID.String()))
	return nil
}
