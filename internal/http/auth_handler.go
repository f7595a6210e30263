package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/yogesh1636/Bibliotheca/internal/auth/domain"
	"github.com/yogesh1636/Bibliotheca/internal/auth/service"
)

type AuthHandler struct {
	auth    *service.AuthService
	timeout time.Duration
}

func NewAuthHandler(auth *service.AuthService, timeout time.Duration) *AuthHandler {
	return &AuthHandler{
		auth:    auth,
		timeout: timeout,
	}
}

type signUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Token   string          `json:"token"`
	Profile *domain.Profile `json:"profile"`
}

type updateProfileRequest struct {
	FullName string `json:"full_name"`
}

func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_argument", "invalid request body")
		return
	}

	ctx, cancel := contextWithTimeout(r, h.timeout)
	defer cancel()

	profile, token, err := h.auth.SignUp(ctx, req.Email, req.Password, req.FullName)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, sessionResponse{Token: token, Profile: profile})
}

func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_argument", "invalid request body")
		return
	}

	ctx, cancel := contextWithTimeout(r, h.timeout)
	defer cancel()

	profile, token, err := h.auth.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, sessionResponse{Token: token, Profile: profile})
}

func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	token, ok := tokenFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthenticated", "missing bearer token")
		return
	}

	ctx, cancel := contextWithTimeout(r, h.timeout)
	defer cancel()

	if err := h.auth.SignOut(ctx, token); err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "signed out"})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	token, ok := tokenFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthenticated", "missing bearer token")
		return
	}

	ctx, cancel := contextWithTimeout(r, h.timeout)
	defer cancel()

	profile, err := h.auth.CurrentUser(ctx, token)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, profile)
}

func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	token, ok := tokenFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthenticated", "missing bearer token")
		return
	}

	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_argument", "invalid request body")
		return
	}
	if req.FullName == "" {
		respondError(w, http.StatusBadRequest, "invalid_argument", "full_name is required")
		return
	}

	ctx, cancel := contextWithTimeout(r, h.timeout)
	defer cancel()

	if err := h.auth.UpdateProfile(ctx, token, req.FullName); err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}
