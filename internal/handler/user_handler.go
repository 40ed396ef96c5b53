package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"health-directory-api/internal/auth"
	"health-directory-api/internal/middleware"
	"health-directory-api/internal/model"
	"health-directory-api/internal/store"
)

type userResponse struct {
	ID       int64  `json:"id"`
	Nombre   string `json:"nombre"`
	Correo   string `json:"correo"`
	Telefono string `json:"telefono"`
}

type userListResponse struct {
	Usuarios     []userResponse `json:"usuarios"`
	Total        int            `json:"total"`
	Pagina       int            `json:"pagina"`
	TotalPaginas int            `json:"totalPaginas"`
}

type createUserRequest struct {
	Nombre     string `json:"nombre" validate:"required"`
	Correo     string `json:"correo" validate:"required,email"`
	Contrasena string `json:"contrasena" validate:"required,min=8"`
	Telefono   string `json:"telefono"`
}

type updateUserRequest struct {
	Nombre   *string `json:"nombre"`
	Correo   *string `json:"correo"`
	Telefono *string `json:"telefono"`
}

func toUserResponse(u *model.User) userResponse {
	return userResponse{ID: u.ID, Nombre: u.Name, Correo: u.Email, Telefono: u.Phone}
}

func (h *Handler) ListUsuarios(w http.ResponseWriter, r *http.Request) {
	page, limit, err := parsePagination(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Parámetros de paginación inválidos")
		return
	}

	users, total, err := h.store.ListUsers(r.Context(), limit, (page-1)*limit)
	if err != nil {
		h.internalError(w, r, err)
		return
	}

	out := make([]userResponse, len(users))
	for i := range users {
		out[i] = toUserResponse(&users[i])
	}
	respondJSON(w, http.StatusOK, userListResponse{
		Usuarios:     out,
		Total:        total,
		Pagina:       page,
		TotalPaginas: totalPages(total, limit),
	})
}

func (h *Handler) CreateUsuario(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Cuerpo JSON inválido")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, registrationError(err))
		return
	}

	hash, err := auth.HashPassword(req.Contrasena)
	if err != nil {
		h.internalError(w, r, err)
		return
	}

	u := &model.User{
		Name:         req.Nombre,
		Email:        req.Correo,
		PasswordHash: hash,
		Phone:        req.Telefono,
	}
	if err := h.store.CreateUser(r.Context(), u); err != nil {
		if errors.Is(err, store.ErrDuplicateEmail) {
			respondError(w, http.StatusBadRequest, "El correo ya está registrado")
			return
		}
		h.internalError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, toUserResponse(u))
}

// registrationError maps the first failed validation tag to a client message.
func registrationError(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		switch verrs[0].Tag() {
		case "email":
			return "El correo no es válido"
		case "min":
			return "La contraseña debe tener al menos 8 caracteres"
		}
	}
	return "Nombre, correo y contraseña son obligatorios"
}

func (h *Handler) GetUsuario(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "userId"), 10, 64)
	if err != nil {
		respondError(w, http.StatusNotFound, "El usuario no existe")
		return
	}

	u, err := h.store.UserByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, http.StatusNotFound, "El usuario no existe")
			return
		}
		h.internalError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toUserResponse(u))
}

func (h *Handler) UpdateUsuario(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "userId"), 10, 64)
	if err != nil {
		respondError(w, http.StatusNotFound, "El usuario no existe")
		return
	}
	if middleware.UserID(r.Context()) != id {
		respondError(w, http.StatusForbidden, "No autorizado para modificar esta cuenta")
		return
	}

	var req updateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Cuerpo JSON inválido")
		return
	}

	patch := store.UserPatch{Name: req.Nombre, Email: req.Correo, Phone: req.Telefono}
	if patch.Empty() {
		respondError(w, http.StatusBadRequest, "No se proporcionaron datos para actualizar")
		return
	}

	u, err := h.store.UpdateUser(r.Context(), id, patch)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			respondError(w, http.StatusNotFound, "El usuario no existe")
		case errors.Is(err, store.ErrDuplicateEmail):
			respondError(w, http.StatusBadRequest, "El correo ya está registrado")
		default:
			h.internalError(w, r, err)
		}
		return
	}
	respondJSON(w, http.StatusOK, toUserResponse(u))
}

func (h *Handler) DeleteUsuario(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "userId"), 10, 64)
	if err != nil {
		respondError(w, http.StatusNotFound, "El usuario no existe")
		return
	}
	if middleware.UserID(r.Context()) != id {
		respondError(w, http.StatusForbidden, "No autorizado para eliminar esta cuenta")
		return
	}

	if err := h.store.RevokeAllRefreshTokens(r.Context(), id); err != nil {
		h.internalError(w, r, err)
		return
	}
	if err := h.store.DeleteUser(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, http.StatusNotFound, "El usuario no existe")
			return
		}
		h.internalError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"mensaje": "Cuenta eliminada correctamente"})
}
