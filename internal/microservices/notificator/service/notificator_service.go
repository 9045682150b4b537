package service

import (
	"context"
	"encoding/json"
	"errors"

	amqp "github.com/rabbitmq/amqp091-go"

	"jwt-pizza-service/internal/common/logger"
	"jwt-pizza-service/internal/domain"
)

type DeliverySource interface {
	Consume(queue, consumer string) (<-chan amqp.Delivery, error)
}

type NotificatorServiceInterface interface {
	Notify(ctx context.Context) error
}

type NotificatorService struct {
	source DeliverySource
	queue  string
	log    *logger.Logger
}

func NewNotificatorService(source DeliverySource, queue string) NotificatorServiceInterface {
	return &NotificatorService{source: source, queue: queue, log: logger.New("notification-subscriber")}
}

// Notify logs every order event until ctx is cancelled or the channel closes.
func (ns *NotificatorService) Notify(ctx context.Context) error {
	msgs, err := ns.source.Consume(ns.queue, "notificator")
	if err != nil {
		return err
	}
	ns.log.Info("consumer_started", map[string]any{"queue": ns.queue})

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return errors.New("delivery channel closed")
			}
			ns.handle(msg)
		}
	}
}

func (ns *NotificatorService) handle(msg amqp.Delivery) {
	var ev domain.OrderEvent
	if err := json.Unmarshal(msg.Body, &ev); err != nil {
		ns.log.Error("invalid_event", err, map[string]any{"message_id": msg.MessageId})
		_ = msg.Nack(false, false)
		return
	}

	ns.log.Info("notification_sent", map[string]any{
		"event":        ev.Type,
		"message_id":   msg.MessageId,
		"order_id":     ev.OrderID,
		"diner_id":     ev.DinerID,
		"franchise_id": ev.FranchiseID,
		"store_id":     ev.StoreID,
		"items":        ev.ItemCount,
		"total":        ev.Total,
	})
	_ = msg.Ack(false)
}
