package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/stayflow/booking-saga/internal/booking/application"
	"github.com/stayflow/booking-saga/internal/booking/domain"
)

type BookingService interface {
	CreateBooking(ctx context.Context, userID int64, in application.CreateBookingInput) (*domain.Booking, error)
	GetUserBookings(ctx context.Context, userID int64) ([]*domain.Booking, error)
	GetBooking(ctx context.Context, id, userID int64) (*domain.Booking, error)
	CancelBooking(ctx context.Context, id, userID int64) error
}

type Handler struct {
	log      *slog.Logger
	service  BookingService
	validate *validator.Validate
	tracer   trace.Tracer
}

func NewHandler(log *slog.Logger, service BookingService) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
		tracer:   otel.Tracer("booking-http"),
	}
}

type createBookingReq struct {
	RoomID     int64  `json:"room_id" validate:"required_without=AutoSelect"`
	StartDate  string `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate    string `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
	AutoSelect bool   `json:"auto_select"`
}

func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Route("/api/bookings", func(r chi.Router) {
		r.Post("/", h.createBooking)
		r.Get("/", h.listBookings)
		r.Get("/{id}", h.getBooking)
		r.Delete("/{id}", h.cancelBooking)
	})
	return r
}

func (h *Handler) createBooking(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "CreateBooking")
	defer span.End()

	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	var req createBookingReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	b, err := h.service.CreateBooking(ctx, userID, application.CreateBookingInput{
		RoomID:     req.RoomID,
		StartDate:  parseDate(req.StartDate),
		EndDate:    parseDate(req.EndDate),
		AutoSelect: req.AutoSelect,
	})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, b)
}

func (h *Handler) listBookings(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "GetUserBookings")
	defer span.End()

	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	bookings, err := h.service.GetUserBookings(ctx, userID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	if bookings == nil {
		bookings = []*domain.Booking{}
	}
	h.writeJSON(w, http.StatusOK, bookings)
}

func (h *Handler) getBooking(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "GetBooking")
	defer span.End()

	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid booking id")
		return
	}

	b, err := h.service.GetBooking(ctx, id, userID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, b)
}

func (h *Handler) cancelBooking(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "CancelBooking")
	defer span.End()

	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid booking id")
		return
	}

	if err := h.service.CancelBooking(ctx, id, userID); err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// userID reads the identity the gateway authenticated upstream.
func (h *Handler) userID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.Header.Get("X-User-ID"), 10, 64)
	if err != nil || id <= 0 {
		h.writeError(w, http.StatusUnauthorized, "missing user identity")
		return 0, false
	}
	return id, true
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrBookingConflict), errors.Is(err, domain.ErrRoomUnavailable):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrBookingNotFound), errors.Is(err, domain.ErrNoRoomAvailable):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrUnauthorized), errors.Is(err, domain.ErrForbidden), errors.Is(err, domain.ErrRoomRejected):
		status = http.StatusBadGateway
	case errors.Is(err, domain.ErrServiceUnavailable):
		status = http.StatusServiceUnavailable
	}
	if status == http.StatusInternalServerError {
		h.log.Error("request failed", "err", err)
	}
	h.writeError(w, status, err.Error())
}

func (h *Handler) writeError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func parseDate(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, _ := time.Parse(time.DateOnly, s)
	return t
}
