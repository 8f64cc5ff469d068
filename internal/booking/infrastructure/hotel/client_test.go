package hotel

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stayflow/booking-saga/internal/booking/application"
	"github.com/stayflow/booking-saga/internal/booking/domain"
	"github.com/stayflow/booking-saga/pkg/retry"
)

func fastClient(t *testing.T, url string) *Client {
	t.Helper()
	return NewClient(
		slog.New(slog.DiscardHandler),
		url,
		WithRetryPolicy(retry.Policy{MaxAttempts: 3, InitialDelay: time.Millisecond, Multiplier: 2}),
		WithAttemptTimeout(time.Second),
	)
}

func dateRange() application.DateRange {
	start := time.Now().UTC().Truncate(24 * time.Hour).AddDate(0, 0, 1)
	return application.DateRange{Start: start, End: start.AddDate(0, 0, 3), CorrelationID: "cid-test"}
}

func TestConfirmAvailability_Success(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/rooms/101/confirm-availability", r.URL.Path)
		w.Write([]byte("true"))
	}))
	defer srv.Close()

	available, err := fastClient(t, srv.URL).ConfirmAvailability(context.Background(), 101, dateRange())

	require.NoError(t, err)
	assert.True(t, available)
	assert.Equal(t, int32(1), calls.Load())
}

func TestConfirmAvailability_NotAvailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("false"))
	}))
	defer srv.Close()

	available, err := fastClient(t, srv.URL).ConfirmAvailability(context.Background(), 101, dateRange())

	require.NoError(t, err)
	assert.False(t, available)
}

func TestConfirmAvailability_RetriesTransientThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte("true"))
	}))
	defer srv.Close()

	available, err := fastClient(t, srv.URL).ConfirmAvailability(context.Background(), 101, dateRange())

	require.NoError(t, err)
	assert.True(t, available)
	assert.Equal(t, int32(3), calls.Load())
}

func TestConfirmAvailability_ExhaustedRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := fastClient(t, srv.URL).ConfirmAvailability(context.Background(), 101, dateRange())

	require.ErrorIs(t, err, domain.ErrServiceUnavailable)
	assert.Equal(t, int32(3), calls.Load())
}

func TestConfirmAvailability_AuthFailuresNotRetried(t *testing.T) {
	cases := []struct {
		status int
		want   error
	}{
		{http.StatusUnauthorized, domain.ErrUnauthorized},
		{http.StatusForbidden, domain.ErrForbidden},
		{http.StatusNotFound, domain.ErrRoomRejected},
	}

	for _, tc := range cases {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(tc.status)
		}))

		_, err := fastClient(t, srv.URL).ConfirmAvailability(context.Background(), 101, dateRange())

		require.ErrorIs(t, err, tc.want)
		assert.Equal(t, int32(1), calls.Load(), "status %d must not be retried", tc.status)
		srv.Close()
	}
}

func TestConfirmAvailability_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // nothing listening anymore

	_, err := fastClient(t, srv.URL).ConfirmAvailability(context.Background(), 101, dateRange())

	require.ErrorIs(t, err, domain.ErrServiceUnavailable)
}

func TestReleaseLock_SingleAttempt(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "/api/rooms/101/release", r.URL.Path)
		assert.Equal(t, "cid-test", r.URL.Query().Get("correlationId"))
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	err := fastClient(t, srv.URL).ReleaseLock(context.Background(), 101, "cid-test")

	require.ErrorIs(t, err, domain.ErrServiceUnavailable)
	assert.Equal(t, int32(1), calls.Load())
}

func TestReleaseLock_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	require.NoError(t, fastClient(t, srv.URL).ReleaseLock(context.Background(), 101, "cid-test"))
}

func TestRecommendedRooms(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/rooms/recommend", r.URL.Path)
		w.Write([]byte(`[{"id":7,"number":"201","times_booked":0},{"id":9,"number":"305","times_booked":4}]`))
	}))
	defer srv.Close()

	rooms, err := fastClient(t, srv.URL).RecommendedRooms(context.Background())

	require.NoError(t, err)
	require.Len(t, rooms, 2)
	assert.Equal(t, int64(7), rooms[0].ID)
	assert.Equal(t, "201", rooms[0].Number)
}
