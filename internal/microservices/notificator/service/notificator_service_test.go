package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jwt-pizza-service/internal/common/logger"
	"jwt-pizza-service/internal/domain"
)

type fakeSource struct {
	msgs chan amqp.Delivery
	err  error
}

func (f *fakeSource) Consume(queue, consumer string) (<-chan amqp.Delivery, error) {
	return f.msgs, f.err
}

type fakeAck struct {
	mu     sync.Mutex
	acked  []uint64
	nacked []uint64
}

func (a *fakeAck) Ack(tag uint64, multiple bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.acked = append(a.acked, tag)
	return nil
}

func (a *fakeAck) Nack(tag uint64, multiple, requeue bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.nacked = append(a.nacked, tag)
	return nil
}

func (a *fakeAck) Reject(tag uint64, requeue bool) error { return a.Nack(tag, false, requeue) }

func TestNotify_AcksEventsAndDropsGarbage(t *testing.T) {
	var buf bytes.Buffer
	logger.SetOutput(&buf)

	body, err := json.Marshal(domain.OrderEvent{
		Type:       domain.EventOrderFulfilled,
		OrderID:    12,
		DinerID:    3,
		ItemCount:  2,
		Total:      0.008,
		OccurredAt: time.Now(),
	})
	require.NoError(t, err)

	ack := &fakeAck{}
	src := &fakeSource{msgs: make(chan amqp.Delivery, 2)}
	src.msgs <- amqp.Delivery{Acknowledger: ack, DeliveryTag: 1, MessageId: "01J", Body: body}
	src.msgs <- amqp.Delivery{Acknowledger: ack, DeliveryTag: 2, Body: []byte("{not json")}
	close(src.msgs)

	err = NewNotificatorService(src, "pizza_notifications").Notify(context.Background())
	assert.EqualError(t, err, "delivery channel closed")

	assert.Equal(t, []uint64{1}, ack.acked)
	assert.Equal(t, []uint64{2}, ack.nacked)
	assert.Contains(t, buf.String(), `"action":"notification_sent"`)
	assert.Contains(t, buf.String(), `"order_id":12`)
	assert.Contains(t, buf.String(), `"action":"invalid_event"`)
}

func TestNotify_StopsOnCancel(t *testing.T) {
	src := &fakeSource{msgs: make(chan amqp.Delivery)}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.NoError(t, NewNotificatorService(src, "q").Notify(ctx))
}

func TestNotify_ConsumeError(t *testing.T) {
	src := &fakeSource{err: errors.New("no such queue")}
	assert.EqualError(t, NewNotificatorService(src, "q").Notify(context.Background()), "no such queue")
}
