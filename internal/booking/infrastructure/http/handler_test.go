package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stayflow/booking-saga/internal/booking/application"
	"github.com/stayflow/booking-saga/internal/booking/domain"
)

type stubService struct {
	booking   *domain.Booking
	bookings  []*domain.Booking
	err       error
	lastInput application.CreateBookingInput
}

func (s *stubService) CreateBooking(ctx context.Context, userID int64, in application.CreateBookingInput) (*domain.Booking, error) {
	s.lastInput = in
	return s.booking, s.err
}

func (s *stubService) GetUserBookings(ctx context.Context, userID int64) ([]*domain.Booking, error) {
	return s.bookings, s.err
}

func (s *stubService) GetBooking(ctx context.Context, id, userID int64) (*domain.Booking, error) {
	return s.booking, s.err
}

func (s *stubService) CancelBooking(ctx context.Context, id, userID int64) error {
	return s.err
}

func doRequest(t *testing.T, svc BookingService, method, target, body string, withUser bool) *httptest.ResponseRecorder {
	t.Helper()
	h := NewHandler(slog.New(slog.DiscardHandler), svc)

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if withUser {
		req.Header.Set("X-User-ID", "1")
	}
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)
	return rec
}

func TestCreateBooking_OK(t *testing.T) {
	start := time.Now().UTC().Truncate(24 * time.Hour).AddDate(0, 0, 1)
	svc := &stubService{booking: &domain.Booking{ID: 1, RoomID: 101, Status: domain.StatusConfirmed}}

	body := fmt.Sprintf(`{"room_id":101,"start_date":"%s","end_date":"%s"}`,
		start.Format(time.DateOnly), start.AddDate(0, 0, 3).Format(time.DateOnly))
	rec := doRequest(t, svc, http.MethodPost, "/api/bookings", body, true)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, int64(101), svc.lastInput.RoomID)
	assert.Equal(t, start, svc.lastInput.StartDate)
	assert.Contains(t, rec.Body.String(), `"CONFIRMED"`)
}

func TestCreateBooking_MissingUserHeader(t *testing.T) {
	rec := doRequest(t, &stubService{}, http.MethodPost, "/api/bookings", `{"room_id":101}`, false)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateBooking_MalformedDateRejected(t *testing.T) {
	rec := doRequest(t, &stubService{}, http.MethodPost, "/api/bookings",
		`{"room_id":101,"start_date":"not-a-date","end_date":"2026-09-04"}`, true)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateBooking_RoomRequiredWithoutAutoSelect(t *testing.T) {
	rec := doRequest(t, &stubService{}, http.MethodPost, "/api/bookings",
		`{"start_date":"2026-09-01","end_date":"2026-09-04"}`, true)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestErrorMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{domain.ConflictError(1), http.StatusConflict},
		{domain.ErrRoomUnavailable, http.StatusConflict},
		{fmt.Errorf("%w: minimum booking period is 1 day", domain.ErrValidation), http.StatusBadRequest},
		{domain.ErrNoRoomAvailable, http.StatusNotFound},
		{domain.ErrUnauthorized, http.StatusBadGateway},
		{domain.ErrForbidden, http.StatusBadGateway},
		{domain.ErrServiceUnavailable, http.StatusServiceUnavailable},
	}

	for _, tc := range cases {
		svc := &stubService{err: tc.err}
		body := `{"room_id":101,"start_date":"2026-09-01","end_date":"2026-09-04"}`
		rec := doRequest(t, svc, http.MethodPost, "/api/bookings", body, true)

		assert.Equal(t, tc.status, rec.Code, "error %v", tc.err)
	}
}

func TestGetBooking_NotFound(t *testing.T) {
	rec := doRequest(t, &stubService{err: domain.ErrBookingNotFound}, http.MethodGet, "/api/bookings/42", "", true)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListBookings_EmptyIsArray(t *testing.T) {
	rec := doRequest(t, &stubService{}, http.MethodGet, "/api/bookings", "", true)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]\n", rec.Body.String())
}

func TestCancelBooking_NoContent(t *testing.T) {
	rec := doRequest(t, &stubService{}, http.MethodDelete, "/api/bookings/7", "", true)

	assert.Equal(t, http.StatusNoContent, rec.Code)
}
