package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/doorlab/roomkey-bookings/internal/access"
	"github.com/doorlab/roomkey-bookings/internal/domain"
	"github.com/doorlab/roomkey-bookings/internal/http/response"
)

// DeviceHandler serves the embedded door controller: status polling,
// unlock attempts, occupancy transitions and the manual indicator
// override.
type DeviceHandler struct {
	gate      *access.Gate
	indicator *access.IndicatorRegistry
}

func NewDeviceHandler(gate *access.Gate, indicator *access.IndicatorRegistry) *DeviceHandler {
	return &DeviceHandler{gate: gate, indicator: indicator}
}

func roomIDParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "roomID"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid room id", domain.ErrValidation)
	}
	return id, nil
}

func (h *DeviceHandler) Status(w http.ResponseWriter, r *http.Request) {
	roomID, err := roomIDParam(r)
	if err != nil {
		response.WriteDomainError(w, err)
		return
	}

	report, err := h.gate.Status(r.Context(), roomID)
	if err != nil {
		response.WriteDomainError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, report)
}

type unlockRequest struct {
	// The device firmware sends access_code; the web client sends
	// accessCode. Both are accepted.
	AccessCode      string `json:"accessCode"`
	AccessCodeSnake string `json:"access_code"`
	UserID          int64  `json:"userId,omitempty"`
}

func (r *unlockRequest) code() string {
	if r.AccessCodeSnake != "" {
		return r.AccessCodeSnake
	}
	return r.AccessCode
}

type unlockBooking struct {
	ID        int64            `json:"id"`
	StartTime domain.TimeOfDay `json:"startTime"`
	EndTime   domain.TimeOfDay `json:"endTime"`
	UserID    int64            `json:"userId"`
}

type unlockResponse struct {
	Success    bool           `json:"success"`
	Unlocked   bool           `json:"unlocked"`
	Booking    *unlockBooking `json:"booking,omitempty"`
	UnlockTime time.Time      `json:"unlockTime"`
	Message    string         `json:"message"`
}

func (h *DeviceHandler) Unlock(w http.ResponseWriter, r *http.Request) {
	roomID, err := roomIDParam(r)
	if err != nil {
		response.WriteDomainError(w, err)
		return
	}

	var req unlockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	booking, err := h.gate.Unlock(r.Context(), roomID, req.code())
	if err != nil {
		response.WriteDomainError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, unlockResponse{
		Success:  true,
		Unlocked: true,
		Booking: &unlockBooking{
			ID:        booking.ID,
			StartTime: booking.StartTime,
			EndTime:   booking.EndTime,
			UserID:    booking.UserID,
		},
		UnlockTime: time.Now(),
		Message:    fmt.Sprintf("Room %d unlocked successfully", roomID),
	})
}

type occupancyResponse struct {
	Success bool              `json:"success"`
	RoomID  int64             `json:"roomId"`
	Status  domain.RoomStatus `json:"status"`
	Message string            `json:"message"`
}

func (h *DeviceHandler) CheckIn(w http.ResponseWriter, r *http.Request) {
	roomID, err := roomIDParam(r)
	if err != nil {
		response.WriteDomainError(w, err)
		return
	}

	if err := h.gate.CheckIn(r.Context(), roomID); err != nil {
		response.WriteDomainError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, occupancyResponse{
		Success: true,
		RoomID:  roomID,
		Status:  domain.RoomOccupied,
		Message: "Check-in successful",
	})
}

func (h *DeviceHandler) CheckOut(w http.ResponseWriter, r *http.Request) {
	roomID, err := roomIDParam(r)
	if err != nil {
		response.WriteDomainError(w, err)
		return
	}

	if err := h.gate.CheckOut(r.Context(), roomID); err != nil {
		response.WriteDomainError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, occupancyResponse{
		Success: true,
		RoomID:  roomID,
		Status:  domain.RoomAvailable,
		Message: "Check-out successful",
	})
}

type indicatorRequest struct {
	Action string `json:"action"`
}

type indicatorResponse struct {
	Success   bool                  `json:"success"`
	RoomID    int64                 `json:"roomId"`
	LedStates access.IndicatorState `json:"ledStates"`
	Timestamp time.Time             `json:"timestamp"`
}

func (h *DeviceHandler) GetIndicator(w http.ResponseWriter, r *http.Request) {
	roomID, err := roomIDParam(r)
	if err != nil {
		response.WriteDomainError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, indicatorResponse{
		Success:   true,
		RoomID:    roomID,
		LedStates: h.indicator.Get(roomID),
		Timestamp: time.Now(),
	})
}

func (h *DeviceHandler) SetIndicator(w http.ResponseWriter, r *http.Request) {
	roomID, err := roomIDParam(r)
	if err != nil {
		response.WriteDomainError(w, err)
		return
	}

	var req indicatorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	state, err := h.indicator.Apply(roomID, req.Action)
	if err != nil {
		response.WriteDomainError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, indicatorResponse{
		Success:   true,
		RoomID:    roomID,
		LedStates: state,
		Timestamp: time.Now(),
	})
}
