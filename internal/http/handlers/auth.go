package handlers

import (
	"net/http"
	"time"

	"practice-api/internal/http/respond"
	"practice-api/internal/models"
	"practice-api/internal/service"
)

type AuthHandler struct {
	auth *service.AuthService
}

func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

type authResponse struct {
	Message   string      `json:"message"`
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
	User      userSummary `json:"user"`
}

type userSummary struct {
	ID    string      `json:"id"`
	Email string      `json:"email"`
	Role  models.Role `json:"role"`
}

func newAuthResponse(msg string, s *service.Session) authResponse {
	return authResponse{
		Message:   msg,
		Token:     s.Token,
		ExpiresAt: s.ExpiresAt,
		User:      userSummary{ID: s.User.ID, Email: s.User.Email, Role: s.User.Role},
	}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string      `json:"email"`
		Password string      `json:"password"`
		Role     models.Role `json:"role"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		respond.Err(w, r, err)
		return
	}

	session, err := h.auth.Register(r.Context(), req.Email, req.Password, req.Role)
	if service.KindOf(err) == service.KindConflict {
		// existing clients expect 400 for a taken email
		respond.Error(w, http.StatusBadRequest, "User already exists")
		return
	}
	if err != nil {
		respond.Err(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, newAuthResponse("User created successfully", session))
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		respond.Err(w, r, err)
		return
	}

	session, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respond.Err(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, newAuthResponse("Login successful", session))
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.auth.Me(r.Context(), caller(r).ID)
	if err != nil {
		respond.Err(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, user)
}
