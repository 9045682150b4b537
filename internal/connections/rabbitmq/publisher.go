package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"jwt-pizza-service/internal/domain"
)

// OrderPublisher publishes order events to a fanout exchange.
type OrderPublisher struct {
	client   *Client
	exchange string
}

func NewOrderPublisher(client *Client, exchange string) (*OrderPublisher, error) {
	if err := client.DeclareFanout(exchange); err != nil {
		return nil, err
	}
	return &OrderPublisher{client: client, exchange: exchange}, nil
}

func (p *OrderPublisher) PublishOrderEvent(ctx context.Context, ev domain.OrderEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal order event: %w", err)
	}
	headers := amqp.Table{"x-source": "pizza-service"}
	if err := p.client.Publish(ctx, p.exchange, ev.Type, body, headers, "application/json", true); err != nil {
		return fmt.Errorf("failed to publish %s: %w", ev.Type, err)
	}
	return nil
}
