package handlers

import (
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/doorlab/roomkey-bookings/internal/http/response"
	"github.com/doorlab/roomkey-bookings/internal/repo/postgres"
	"github.com/doorlab/roomkey-bookings/pkg/logger"
)

// AdminHandler exposes the destructive operator endpoints. No
// confirmation step; intended for operator and test use only.
type AdminHandler struct {
	bookings postgres.BookingRepo
	pool     *pgxpool.Pool
}

func NewAdminHandler(bookings postgres.BookingRepo, pool *pgxpool.Pool) *AdminHandler {
	return &AdminHandler{bookings: bookings, pool: pool}
}

func (h *AdminHandler) ClearBookings(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.bookings.ClearAll(r.Context())
	if err != nil {
		response.WriteDomainError(w, err)
		return
	}

	logger.InfoContext(r.Context(), "Cleared all bookings", "deleted", deleted)
	response.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success":      true,
		"message":      fmt.Sprintf("Successfully cleared %d bookings", deleted),
		"deletedCount": deleted,
	})
}

func (h *AdminHandler) Reset(w http.ResponseWriter, r *http.Request) {
	deleted, err := postgres.ResetToDefaults(r.Context(), h.pool)
	if err != nil {
		response.WriteDomainError(w, err)
		return
	}

	logger.InfoContext(r.Context(), "Reset database to defaults", "deleted", deleted)
	response.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success":      true,
		"message":      fmt.Sprintf("Database reset successfully. Deleted %d records", deleted),
		"deletedCount": deleted,
	})
}
