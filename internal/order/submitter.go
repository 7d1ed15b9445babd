package order

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/fjod/omnex-storefront/internal/domain"
	"github.com/fjod/omnex-storefront/internal/logger"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

var implicitAck = json.RawMessage(`{"success":true}`)

// SubmitError is returned when the endpoint answers with a non-2xx status.
type SubmitError struct {
	StatusCode int
	Body       string
}

func (e *SubmitError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
}

// Receipt is the endpoint's acknowledgement of an order.
type Receipt struct {
	// Implicit is set when the endpoint accepted the order with an empty body.
	Implicit bool
	Body     json.RawMessage
}

// Acknowledgement returns the response body, or {"success":true} for an
// implicit acknowledgement.
func (r *Receipt) Acknowledgement() json.RawMessage {
	if r.Implicit {
		return implicitAck
	}
	return r.Body
}

type SubmitterOption func(*Submitter)

// WithBreaker stops sending orders after maxFailures consecutive failed
// submissions and rejects them until openTimeout has passed.
func WithBreaker(maxFailures uint32, openTimeout time.Duration) SubmitterOption {
	return func(s *Submitter) {
		s.breaker = gobreaker.NewCircuitBreaker[*Receipt](gobreaker.Settings{
			Name:        "order-submit",
			MaxRequests: 1,
			Timeout:     openTimeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= maxFailures
			},
			IsSuccessful: func(err error) bool {
				// a rejected order says nothing about the endpoint's health
				var submitErr *SubmitError
				if errors.As(err, &submitErr) {
					return submitErr.StatusCode < 500
				}
				return err == nil
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				s.logger.Warn("circuit breaker state changed",
					zap.String("breaker", name),
					zap.String("from", from.String()),
					zap.String("to", to.String()))
			},
		})
	}
}

// Submitter posts orders to the configured endpoint. It never retries.
type Submitter struct {
	client   *http.Client
	endpoint string
	breaker  *gobreaker.CircuitBreaker[*Receipt]
	logger   *zap.Logger
}

func NewSubmitter(client *http.Client, endpoint string, l *zap.Logger, opts ...SubmitterOption) *Submitter {
	if client == nil {
		client = http.DefaultClient
	}
	s := &Submitter{
		client:   client,
		endpoint: endpoint,
		logger:   logger.OrNop(l),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Submitter) Submit(ctx context.Context, order domain.Order) (*Receipt, error) {
	log := logger.FromContext(ctx, s.logger).With(
		zap.String("order_id", order.OrderID),
		zap.String("endpoint", s.endpoint))
	log.Info("submitting order", zap.Float64("total", order.Total), zap.Int("items", len(order.Items)))

	var (
		receipt *Receipt
		err     error
	)
	if s.breaker != nil {
		receipt, err = s.breaker.Execute(func() (*Receipt, error) {
			return s.post(ctx, order)
		})
	} else {
		receipt, err = s.post(ctx, order)
	}

	if err != nil {
		var submitErr *SubmitError
		if errors.As(err, &submitErr) {
			log.Error("order rejected by endpoint",
				zap.Int("status", submitErr.StatusCode), zap.String("body", submitErr.Body))
		} else {
			log.Error("order submission failed", zap.Error(err))
		}
		return nil, err
	}

	log.Info("order accepted", zap.Bool("implicit_ack", receipt.Implicit))
	return receipt, nil
}

func (s *Submitter) post(ctx context.Context, order domain.Order) (*Receipt, error) {
	payload, err := json.Marshal(order)
	if err != nil {
		return nil, fmt.Errorf("marshal order: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build order request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("post order: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read order response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &SubmitError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return &Receipt{Implicit: true}, nil
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("parse order response: invalid JSON body %q", truncate(body, 200))
	}
	return &Receipt{Body: json.RawMessage(body)}, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
