package rabbitmq

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	amqp "github.com/rabbitmq/amqp091-go"

	"jwt-pizza-service/internal/config"
)

type Client struct {
	conn *amqp.Connection
	ch   *amqp.Channel
}

func (c *Client) Close() {
	if c.ch != nil {
		_ = c.ch.Close()
	}
	if c.conn != nil {
		_ = c.conn.Close()
	}
}

func Dial(cfg config.RabbitMQConfig) (*Client, error) {
	var (
		conn *amqp.Connection
		err  error
	)
	if cfg.UseTLS {
		conn, err = amqp.DialTLS(amqpURL(cfg), &tls.Config{MinVersion: tls.VersionTLS12})
	} else {
		conn, err = amqp.Dial(amqpURL(cfg))
	}
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := ch.Confirm(false); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("enable publisher confirms: %w", err)
	}

	return &Client{conn: conn, ch: ch}, nil
}

// amqpURL renders the broker URL. An empty path selects the default vhost.
func amqpURL(cfg config.RabbitMQConfig) string {
	scheme := "amqp"
	if cfg.UseTLS {
		scheme = "amqps"
	}
	u := url.URL{
		Scheme: scheme,
		User:   url.UserPassword(cfg.User, cfg.Password),
		Host:   net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Path:   "/" + strings.TrimPrefix(cfg.VHost, "/"),
	}
	return u.String()
}

// Ping reports whether the broker connection is still open.
func (c *Client) Ping(context.Context) error {
	if c.conn == nil || c.conn.IsClosed() {
		return errors.New("rabbitmq connection is closed")
	}
	return nil
}

// DeclareFanout declares a durable fanout exchange.
func (c *Client) DeclareFanout(exchange string) error {
	if err := c.ch.ExchangeDeclare(exchange, amqp.ExchangeFanout, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange %s: %w", exchange, err)
	}
	return nil
}

// BindQueue declares a durable queue and binds it to exchange. Rejected
// deliveries are dead-lettered to <queue>.dlq.
func (c *Client) BindQueue(queue, exchange string) error {
	dlx, dlq := deadLetterNames(queue)
	if err := c.ch.ExchangeDeclare(dlx, amqp.ExchangeDirect, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange %s: %w", dlx, err)
	}
	if _, err := c.ch.QueueDeclare(dlq, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue %s: %w", dlq, err)
	}
	if err := c.ch.QueueBind(dlq, dlq, dlx, false, nil); err != nil {
		return fmt.Errorf("bind queue %s: %w", dlq, err)
	}

	if _, err := c.ch.QueueDeclare(queue, true, false, false, false, amqp.Table{
		"x-dead-letter-exchange":    dlx,
		"x-dead-letter-routing-key": dlq,
	}); err != nil {
		return fmt.Errorf("declare queue %s: %w", queue, err)
	}
	if err := c.ch.QueueBind(queue, "", exchange, false, nil); err != nil {
		return fmt.Errorf("bind queue %s: %w", queue, err)
	}
	return nil
}

func deadLetterNames(queue string) (exchange, dlq string) {
	return queue + ".dlx", queue + ".dlq"
}

// Publish sends one message and waits for the broker's ack or nack of that
// message.
func (c *Client) Publish(ctx context.Context, exchange, key string,
	body []byte, headers amqp.Table, contentType string, persistent bool) error {

	mode := amqp.Transient
	if persistent {
		mode = amqp.Persistent
	}

	conf, err := c.ch.PublishWithDeferredConfirmWithContext(
		ctx,
		exchange,
		key,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			DeliveryMode: mode,
			ContentType:  contentType,
			MessageId:    ulid.Make().String(),
			Timestamp:    time.Now().UTC(),
			Headers:      headers,
			Body:         body,
		},
	)
	if err != nil {
		return err
	}
	return awaitConfirm(ctx, conf)
}

type confirmation interface {
	WaitContext(ctx context.Context) (bool, error)
}

var errNack = errors.New("publish NACK from broker")

func awaitConfirm(ctx context.Context, conf confirmation) error {
	ack, err := conf.WaitContext(ctx)
	if err != nil {
		return err
	}
	if !ack {
		return errNack
	}
	return nil
}

// Consume starts a manual-ack consumer on queue.
func (c *Client) Consume(queue, consumer string) (<-chan amqp.Delivery, error) {
	msgs, err := c.ch.Consume(queue, consumer, false, false, false, false, nil)
	if err != nil {
		return nil, fmt.Errorf("consume %s: %w", queue, err)
	}
	return msgs, nil
}
