package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/stayflow/booking-saga/internal/inventory/application"
	"github.com/stayflow/booking-saga/internal/inventory/domain"
)

type Handler struct {
	log     *slog.Logger
	service *application.Service
	tracer  trace.Tracer
}

func NewHandler(log *slog.Logger, service *application.Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
		tracer:  otel.Tracer("hotel-http"),
	}
}

type availabilityReq struct {
	StartDate     string `json:"start_date"`
	EndDate       string `json:"end_date"`
	CorrelationID string `json:"correlation_id"`
}

func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Route("/api/rooms", func(r chi.Router) {
		r.Get("/recommend", h.recommend)
		r.Get("/{id}", h.getRoom)
		r.Post("/{id}/confirm-availability", h.confirmAvailability)
		r.Post("/{id}/release", h.release)
	})
	return r
}

func (h *Handler) confirmAvailability(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "ConfirmAvailability")
	defer span.End()

	roomID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid room id")
		return
	}
	var req availabilityReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if req.CorrelationID == "" {
		h.writeError(w, http.StatusBadRequest, "correlation_id is required")
		return
	}

	available := h.service.ConfirmAndLock(ctx, roomID, req.CorrelationID)
	h.writeJSON(w, http.StatusOK, available)
}

func (h *Handler) release(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "ReleaseLock")
	defer span.End()

	roomID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid room id")
		return
	}
	correlationID := r.URL.Query().Get("correlationId")
	if correlationID == "" {
		h.writeError(w, http.StatusBadRequest, "correlationId is required")
		return
	}

	h.service.Release(ctx, roomID, correlationID)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) recommend(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "RecommendedRooms")
	defer span.End()

	rooms, err := h.service.RecommendedRooms(ctx)
	if err != nil {
		h.log.Error("recommend rooms failed", "err", err)
		h.writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if rooms == nil {
		rooms = []*domain.Room{}
	}
	h.writeJSON(w, http.StatusOK, rooms)
}

func (h *Handler) getRoom(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "GetRoom")
	defer span.End()

	roomID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid room id")
		return
	}

	room, err := h.service.GetRoom(ctx, roomID)
	if errors.Is(err, domain.ErrRoomNotFound) {
		h.writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		h.log.Error("get room failed", "room_id", roomID, "err", err)
		h.writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	h.writeJSON(w, http.StatusOK, room)
}

func (h *Handler) writeError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
