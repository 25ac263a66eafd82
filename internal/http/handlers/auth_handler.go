package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/doorlab/roomkey-bookings/internal/domain"
	"github.com/doorlab/roomkey-bookings/internal/http/response"
	"github.com/doorlab/roomkey-bookings/internal/service"
)

type AuthHandler struct {
	auth service.AuthService
}

func NewAuthHandler(auth service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Success bool         `json:"success"`
	Token   string       `json:"token"`
	User    userResponse `json:"user"`
}

type userResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var in registerRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	user, err := h.auth.Register(r.Context(), in.Username, in.Password, in.Email)
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			response.WriteError(w, http.StatusConflict, "Username already taken", response.CodeConflict)
			return
		}
		response.WriteDomainError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusCreated, userResponse{ID: user.ID, Username: user.Username})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var in loginRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	token, user, err := h.auth.Login(r.Context(), in.Username, in.Password)
	if err != nil {
		if errors.Is(err, domain.ErrDenied) {
			response.Unauthorized(w, "Invalid credentials")
			return
		}
		response.WriteDomainError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, loginResponse{
		Success: true,
		Token:   token,
		User:    userResponse{ID: user.ID, Username: user.Username},
	})
}
