package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/doorlab/roomkey-bookings/internal/availability"
	"github.com/doorlab/roomkey-bookings/internal/domain"
	"github.com/doorlab/roomkey-bookings/internal/http/response"
	"github.com/doorlab/roomkey-bookings/internal/repo/postgres"
)

type RoomsHandler struct {
	rooms  postgres.RoomRepo
	engine *availability.Engine
}

func NewRoomsHandler(rooms postgres.RoomRepo, engine *availability.Engine) *RoomsHandler {
	return &RoomsHandler{rooms: rooms, engine: engine}
}

func (h *RoomsHandler) List(w http.ResponseWriter, r *http.Request) {
	rooms, err := h.rooms.List(r.Context())
	if err != nil {
		response.WriteDomainError(w, err)
		return
	}
	if rooms == nil {
		rooms = []domain.Room{}
	}
	response.WriteJSON(w, http.StatusOK, rooms)
}

// Availability returns the free slots for a room and date, grid order.
func (h *RoomsHandler) Availability(w http.ResponseWriter, r *http.Request) {
	roomID, err := strconv.ParseInt(chi.URLParam(r, "roomID"), 10, 64)
	if err != nil || roomID <= 0 {
		response.BadRequest(w, "Invalid room id")
		return
	}

	date, err := domain.ParseDate(chi.URLParam(r, "date"))
	if err != nil {
		response.WriteDomainError(w, err)
		return
	}

	room, err := h.rooms.GetByID(r.Context(), roomID)
	if err != nil {
		response.WriteDomainError(w, err)
		return
	}
	if room == nil {
		response.NotFound(w, "Room not found")
		return
	}

	slots, err := h.engine.AvailableSlots(r.Context(), roomID, date)
	if err != nil {
		response.WriteDomainError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, slots)
}
