package hotel

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/stayflow/booking-saga/internal/booking/application"
	"github.com/stayflow/booking-saga/internal/booking/domain"
	"github.com/stayflow/booking-saga/pkg/retry"
)

// errTransport marks failures worth retrying: connection errors,
// timeouts and 5xx answers. Everything else is terminal for the call.
var errTransport = errors.New("transport failure")

type Client struct {
	log            *slog.Logger
	baseURL        string
	hc             *http.Client
	policy         retry.Policy
	attemptTimeout time.Duration
	tracer         trace.Tracer
}

type Option func(*Client)

func WithRetryPolicy(p retry.Policy) Option {
	return func(c *Client) {
		p.Retryable = transient
		c.policy = p
	}
}

func WithAttemptTimeout(d time.Duration) Option {
	return func(c *Client) { c.attemptTimeout = d }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.hc = hc }
}

func NewClient(log *slog.Logger, baseURL string, opts ...Option) *Client {
	c := &Client{
		log:     log,
		baseURL: strings.TrimRight(baseURL, "/"),
		hc:      &http.Client{},
		policy: retry.Policy{
			MaxAttempts:  3,
			InitialDelay: time.Second,
			Multiplier:   2,
			Retryable:    transient,
		},
		attemptTimeout: 5 * time.Second,
		tracer:         otel.Tracer("hotel-client"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func transient(err error) bool {
	return errors.Is(err, errTransport)
}

type availabilityRequest struct {
	StartDate     string `json:"start_date"`
	EndDate       string `json:"end_date"`
	CorrelationID string `json:"correlation_id"`
}

func (c *Client) ConfirmAvailability(ctx context.Context, roomID int64, rng application.DateRange) (bool, error) {
	ctx, span := c.tracer.Start(ctx, "ConfirmAvailability")
	defer span.End()

	body := availabilityRequest{
		StartDate:     rng.Start.Format(time.DateOnly),
		EndDate:       rng.End.Format(time.DateOnly),
		CorrelationID: rng.CorrelationID,
	}

	var available bool
	err := c.policy.Do(ctx, func(ctx context.Context) error {
		return c.postJSON(ctx, fmt.Sprintf("%s/api/rooms/%d/confirm-availability", c.baseURL, roomID), body, &available)
	})
	if err != nil {
		return false, c.finalize(err)
	}
	return available, nil
}

// ReleaseLock is the compensation call. It is fired once, without
// retries: the lock registry expires abandoned entries on its own.
func (c *Client) ReleaseLock(ctx context.Context, roomID int64, correlationID string) error {
	ctx, span := c.tracer.Start(ctx, "ReleaseLock")
	defer span.End()

	u := fmt.Sprintf("%s/api/rooms/%d/release?correlationId=%s", c.baseURL, roomID, url.QueryEscape(correlationID))
	if err := c.postJSON(ctx, u, nil, nil); err != nil {
		return c.finalize(err)
	}
	return nil
}

func (c *Client) RecommendedRooms(ctx context.Context) ([]application.RoomSummary, error) {
	ctx, span := c.tracer.Start(ctx, "RecommendedRooms")
	defer span.End()

	var rooms []application.RoomSummary
	err := c.policy.Do(ctx, func(ctx context.Context) error {
		return c.getJSON(ctx, c.baseURL+"/api/rooms/recommend", &rooms)
	})
	if err != nil {
		return nil, c.finalize(err)
	}
	return rooms, nil
}

func (c *Client) postJSON(ctx context.Context, url string, body, out any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}
	req, err := http.NewRequest(http.MethodPost, url, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.roundTrip(ctx, req, out)
}

func (c *Client) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	return c.roundTrip(ctx, req, out)
}

func (c *Client) roundTrip(ctx context.Context, req *http.Request, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.attemptTimeout)
	defer cancel()
	req = req.WithContext(ctx)
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", errTransport, err)
	}
	defer resp.Body.Close()

	if err := classify(resp.StatusCode); err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %v", errTransport, err)
	}
	return nil
}

func classify(status int) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusUnauthorized:
		return domain.ErrUnauthorized
	case status == http.StatusForbidden:
		return domain.ErrForbidden
	case status >= 400 && status < 500:
		return fmt.Errorf("%w: status %d", domain.ErrRoomRejected, status)
	default:
		return fmt.Errorf("%w: status %d", errTransport, status)
	}
}

// finalize maps exhausted transport retries onto the caller-visible
// error kind; terminal classifications pass through untouched.
func (c *Client) finalize(err error) error {
	if errors.Is(err, errTransport) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", domain.ErrServiceUnavailable, err)
	}
	return err
}
