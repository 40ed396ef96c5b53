package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"health-directory-api/internal/auth"
	"health-directory-api/internal/store"
)

const refreshTokenTTL = 30 * 24 * time.Hour

type loginRequest struct {
	Correo     string `json:"correo"`
	Contrasena string `json:"contrasena"`
}

type loginResponse struct {
	Token        string       `json:"token"`
	RefreshToken string       `json:"refreshToken"`
	Usuario      userResponse `json:"usuario"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type refreshResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Cuerpo JSON inválido")
		return
	}
	if req.Correo == "" || req.Contrasena == "" {
		respondError(w, http.StatusBadRequest, "Correo y contraseña son obligatorios")
		return
	}

	u, err := h.store.UserByEmail(r.Context(), req.Correo)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// same answer as a wrong password; don't reveal which
			respondError(w, http.StatusUnauthorized, "Correo o contraseña incorrectos")
			return
		}
		h.internalError(w, r, err)
		return
	}
	if !auth.CheckPassword(u.PasswordHash, req.Contrasena) {
		respondError(w, http.StatusUnauthorized, "Correo o contraseña incorrectos")
		return
	}

	tok, err := auth.MakeToken(u.ID, u.Email, h.secret)
	if err != nil {
		h.internalError(w, r, err)
		return
	}

	rawRefresh, refreshHash, err := auth.GenerateRefreshToken()
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	if _, err := h.store.CreateRefreshToken(r.Context(), u.ID, refreshHash, time.Now().Add(refreshTokenTTL)); err != nil {
		h.internalError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, loginResponse{
		Token:        tok,
		RefreshToken: rawRefresh,
		Usuario:      toUserResponse(u),
	})
}

// Refresh rotates a refresh token: the presented token is revoked and
// replaced in one transaction, so a replayed old token fails.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Cuerpo JSON inválido")
		return
	}
	if req.RefreshToken == "" {
		respondError(w, http.StatusBadRequest, "refreshToken es obligatorio")
		return
	}

	rt, err := h.store.RefreshTokenByHash(r.Context(), auth.HashRefreshToken(req.RefreshToken))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, http.StatusUnauthorized, "Refresh token inválido")
			return
		}
		h.internalError(w, r, err)
		return
	}
	if rt.Revoked || time.Now().After(rt.ExpiresAt) {
		respondError(w, http.StatusUnauthorized, "Refresh token inválido")
		return
	}

	u, err := h.store.UserByID(r.Context(), rt.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, http.StatusUnauthorized, "Refresh token inválido")
			return
		}
		h.internalError(w, r, err)
		return
	}

	rawRefresh, refreshHash, err := auth.GenerateRefreshToken()
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	newID := uuid.New().String()
	if err := h.store.RotateRefreshToken(r.Context(), rt.ID, newID, rt.UserID, refreshHash, time.Now().Add(refreshTokenTTL)); err != nil {
		h.internalError(w, r, err)
		return
	}

	tok, err := auth.MakeToken(u.ID, u.Email, h.secret)
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, refreshResponse{Token: tok, RefreshToken: rawRefresh})
}
