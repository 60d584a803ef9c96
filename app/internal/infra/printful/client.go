package printful

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"example.com/mystic-prints/app/internal/domain/fulfillment"
)

const DefaultBaseURL = "https://api.printful.com"

type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
	// Consecutive failures before the breaker opens, and how long it stays open.
	BreakerFailures uint32
	BreakerCooldown time.Duration
}

// Client talks to the Printful REST API. Calls are short-circuited while the
// provider keeps failing.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[[]byte]
	logger  *zap.Logger
}

// StatusError is a non-2xx answer from the provider.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: %d %s", fulfillment.ErrUnexpectedStatus, e.StatusCode, e.Body)
}

func (e *StatusError) Unwrap() error {
	return fulfillment.ErrUnexpectedStatus
}

func NewClient(cfg Config, logger *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.BreakerFailures == 0 {
		cfg.BreakerFailures = 5
	}
	if cfg.BreakerCooldown <= 0 {
		cfg.BreakerCooldown = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	failures := cfg.BreakerFailures
	breaker := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:    "printful",
		Timeout: cfg.BreakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		// A rejected request says nothing about provider health.
		IsSuccessful: func(err error) bool {
			var se *StatusError
			if errors.As(err, &se) {
				return se.StatusCode < http.StatusInternalServerError
			}
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		http:    &http.Client{Timeout: cfg.Timeout},
		breaker: breaker,
		logger:  logger,
	}
}

// envelope is the provider's wrapper around every response body.
type envelope[T any] struct {
	Code   int `json:"code"`
	Result T   `json:"result"`
}

func (c *Client) CreateOrder(ctx context.Context, req fulfillment.OrderRequest) (*fulfillment.Order, error) {
	var out fulfillment.Order
	if err := c.do(ctx, http.MethodPost, "/orders", req, &out); err != nil {
		return nil, err
	}
	if out.ID == 0 {
		return nil, fulfillment.ErrEmptyResult
	}
	return &out, nil
}

func (c *Client) CreateProduct(ctx context.Context, req fulfillment.ProductRequest) (*fulfillment.Product, error) {
	var out fulfillment.Product
	if err := c.do(ctx, http.MethodPost, "/store/products", req, &out); err != nil {
		return nil, err
	}
	if out.ID == 0 {
		return nil, fulfillment.ErrEmptyResult
	}
	return &out, nil
}

func (c *Client) ListProducts(ctx context.Context) ([]fulfillment.Product, error) {
	var out []fulfillment.Product
	if err := c.do(ctx, http.MethodGet, "/store/products", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var payload []byte
	if in != nil {
		var err error
		if payload, err = json.Marshal(in); err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
	}

	body, err := c.breaker.Execute(func() ([]byte, error) {
		return c.roundTrip(ctx, method, path, payload)
	})
	if err != nil {
		c.logger.Error("fulfillment request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err))
		return err
	}

	res := envelope[json.RawMessage]{}
	if err := json.Unmarshal(body, &res); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if len(res.Result) == 0 || string(res.Result) == "null" {
		return fulfillment.ErrEmptyResult
	}
	if err := json.Unmarshal(res.Result, out); err != nil {
		return fmt.Errorf("decode result: %w", err)
	}
	return nil
}

func (c *Client) roundTrip(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	return body, nil
}
