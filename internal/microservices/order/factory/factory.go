// Package factory talks to the pizza factory that bakes accepted orders.
package factory

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"syscall"
	"time"

	cleanhttp "github.com/hashicorp/go-cleanhttp"
	retryablehttp "github.com/hashicorp/go-retryablehttp"
	"github.com/sony/gobreaker"

	"jwt-pizza-service/internal/common/logger"
	"jwt-pizza-service/internal/config"
	"jwt-pizza-service/internal/domain"
)

// ErrUnavailable is returned while the circuit breaker is open.
var ErrUnavailable = errors.New("pizza factory unavailable")

// RejectedError carries a non-2xx factory reply. Response holds whatever the
// factory sent back, usually a report URL.
type RejectedError struct {
	Status   int
	Response domain.FactoryOrderResponse
}

func (e *RejectedError) Error() string {
	if e.Response.Message != "" {
		return fmt.Sprintf("factory rejected order: %d %s", e.Status, e.Response.Message)
	}
	return fmt.Sprintf("factory rejected order: %d", e.Status)
}

type FulfillerInterface interface {
	Fulfill(ctx context.Context, req domain.FactoryOrderRequest) (domain.FactoryOrderResponse, error)
}

type Client struct {
	baseURL string
	apiKey  string
	http    *retryablehttp.Client
	breaker *gobreaker.CircuitBreaker
	log     *logger.Logger
}

func NewClient(cfg config.FactoryConfig) *Client {
	log := logger.New("factory-client")

	hc := cleanhttp.DefaultPooledClient()
	hc.Timeout = cfg.Timeout

	rc := &retryablehttp.Client{
		HTTPClient:   hc,
		RetryWaitMin: 100 * time.Millisecond,
		RetryWaitMax: time.Second,
		RetryMax:     max(cfg.RetryMax, 0),
		Backoff:      retryablehttp.LinearJitterBackoff,
		CheckRetry:   retryConnectionErrors,
		ErrorHandler: retryablehttp.PassthroughErrorHandler,
	}

	failures := uint32(max(cfg.BreakerFailures, 1))
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "pizza-factory",
		MaxRequests: 1,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		IsSuccessful: func(err error) bool {
			var abandoned *abandonedError
			return err == nil || errors.As(err, &abandoned)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit_breaker_state", map[string]any{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			})
		},
	})

	return &Client{
		baseURL: strings.TrimRight(cfg.URL, "/"),
		apiKey:  cfg.APIKey,
		http:    rc,
		breaker: breaker,
		log:     log,
	}
}

// abandonedError marks a call the caller gave up on. It says nothing about
// the factory's health.
type abandonedError struct{ err error }

func (e *abandonedError) Error() string { return e.err.Error() }
func (e *abandonedError) Unwrap() error { return e.err }

// retryConnectionErrors retries only when the request never left this
// process. An order the factory received, answered or not, may already be
// baking.
func retryConnectionErrors(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	if resp != nil || err == nil {
		return false, nil
	}
	return notDelivered(err), nil
}

// notDelivered reports whether err proves the connection was never made.
func notDelivered(err error) bool {
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return true
	}
	return errors.Is(err, syscall.ECONNREFUSED)
}

// Fulfill sends the order to the factory. Rejections come back as
// *RejectedError; 5xx replies and transport errors count against the breaker
// unless ctx was already done.
func (c *Client) Fulfill(ctx context.Context, req domain.FactoryOrderRequest) (domain.FactoryOrderResponse, error) {
	var rejected *RejectedError

	out, err := c.breaker.Execute(func() (interface{}, error) {
		resp, err := c.post(ctx, req)
		if errors.As(err, &rejected) && rejected.Status < http.StatusInternalServerError {
			return nil, nil
		}
		if err != nil && ctx.Err() != nil {
			return nil, &abandonedError{err: err}
		}
		return resp, err
	})
	if rejected != nil {
		return rejected.Response, rejected
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return domain.FactoryOrderResponse{}, ErrUnavailable
	}
	if err != nil {
		return domain.FactoryOrderResponse{}, err
	}
	return out.(domain.FactoryOrderResponse), nil
}

func (c *Client) post(ctx context.Context, order domain.FactoryOrderRequest) (domain.FactoryOrderResponse, error) {
	body, err := json.Marshal(order)
	if err != nil {
		return domain.FactoryOrderResponse{}, fmt.Errorf("marshal factory order: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/order", bytes.NewReader(body))
	if err != nil {
		return domain.FactoryOrderResponse{}, fmt.Errorf("build factory request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return domain.FactoryOrderResponse{}, fmt.Errorf("call factory: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return domain.FactoryOrderResponse{}, fmt.Errorf("read factory response: %w", err)
	}

	var out domain.FactoryOrderResponse
	decodeErr := json.Unmarshal(raw, &out)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if decodeErr != nil {
			out = domain.FactoryOrderResponse{}
		}
		return out, &RejectedError{Status: resp.StatusCode, Response: out}
	}
	if decodeErr != nil {
		return domain.FactoryOrderResponse{}, fmt.Errorf("decode factory response: %w", decodeErr)
	}
	return out, nil
}
