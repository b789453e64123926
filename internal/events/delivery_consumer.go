package events

import (
	"context"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/gason-app/service-booking/internal/domain"
	"github.com/gason-app/service-booking/internal/kafka"
)

// DeliveryProgressor advances a booking through the delivery leg.
type DeliveryProgressor interface {
	MarkOutForDelivery(ctx context.Context, orderID string) error
	MarkDelivered(ctx context.Context, orderID string) error
}

// DeliveryConsumer consumes delivery fleet events and advances the matching
// bookings to Out for Delivery / Delivered.
type DeliveryConsumer struct {
	consumer *kafka.Consumer
	service  DeliveryProgressor
	logger   *zap.Logger
}

// NewDeliveryConsumer creates a consumer on the delivery events topic.
func NewDeliveryConsumer(brokers []string, groupID string, service DeliveryProgressor, logger *zap.Logger) *DeliveryConsumer {
	return &DeliveryConsumer{
		consumer: kafka.NewConsumer(brokers, groupID, TopicDeliveryEvents, logger),
		service:  service,
		logger:   logger,
	}
}

// Start begins consuming delivery events until the context is cancelled.
func (c *DeliveryConsumer) Start(ctx context.Context) error {
	c.logger.Info("starting delivery events consumer", zap.String("topic", TopicDeliveryEvents))
	return c.consumer.Consume(ctx, c.handleMessage)
}

// Close shuts down the underlying consumer.
func (c *DeliveryConsumer) Close() error {
	return c.consumer.Close()
}

// handleMessage dispatches a single delivery event. Malformed or unknown
// messages are logged and committed; returning an error would block the
// partition on a poison message.
func (c *DeliveryConsumer) handleMessage(ctx context.Context, msg kafkago.Message) error {
	event, err := kafka.ParseCloudEvent(msg.Value)
	if err != nil {
		c.logger.Warn("skipping malformed delivery event",
			zap.Int64("offset", msg.Offset),
			zap.Error(err),
		)
		return nil
	}

	var payload DeliveryStatusEvent
	if err := event.ParseData(&payload); err != nil {
		c.logger.Warn("skipping delivery event with invalid payload",
			zap.String("event_id", event.ID),
			zap.Error(err),
		)
		return nil
	}
	if payload.OrderID == "" {
		c.logger.Warn("skipping delivery event without order id",
			zap.String("event_id", event.ID),
		)
		return nil
	}

	switch event.Type {
	case DeliveryDispatched:
		err = c.service.MarkOutForDelivery(ctx, payload.OrderID)
	case DeliveryCompleted:
		err = c.service.MarkDelivered(ctx, payload.OrderID)
	default:
		c.logger.Debug("ignoring delivery event type", zap.String("type", event.Type))
		return nil
	}

	if err != nil {
		// Status conflicts mean the booking already moved past this update,
		// commonly from redelivered events. Commit and move on.
		switch domain.CodeOf(err) {
		case domain.ErrCodeInvalidTransition, domain.ErrCodeAlreadyProcessed, domain.ErrCodeNotFound:
			c.logger.Warn("delivery event not applicable, skipping",
				zap.String("order_id", payload.OrderID),
				zap.String("type", event.Type),
				zap.Error(err),
			)
			return nil
		}
		return err
	}

	c.logger.Info("booking delivery status updated",
		zap.String("order_id", payload.OrderID),
		zap.String("type", event.Type),
	)
	return nil
}
