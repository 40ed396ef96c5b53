package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"health-directory-api/internal/model"
	"health-directory-api/internal/store"
)

type entityRef struct {
	ID     int64  `json:"id"`
	Nombre string `json:"nombre"`
}

type citaResponse struct {
	ID          int64     `json:"id"`
	FechaHora   time.Time `json:"fechaHora"`
	Motivo      string    `json:"motivo"`
	Usuario     entityRef `json:"usuario"`
	Profesional entityRef `json:"profesional"`
}

type citaListResponse struct {
	Citas        []citaResponse `json:"citas"`
	Total        int            `json:"total"`
	Pagina       int            `json:"pagina"`
	TotalPaginas int            `json:"totalPaginas"`
}

type createCitaRequest struct {
	UsuarioID     int64  `json:"usuarioId" validate:"required"`
	ProfesionalID int64  `json:"profesionalId" validate:"required"`
	FechaHora     string `json:"fechaHora" validate:"required"`
	Motivo        string `json:"motivo"`
}

func toCitaResponse(a *model.Appointment) citaResponse {
	return citaResponse{
		ID:          a.ID,
		FechaHora:   a.ScheduledAt,
		Motivo:      a.Reason,
		Usuario:     entityRef{ID: a.UserID, Nombre: a.UserName},
		Profesional: entityRef{ID: a.ProfessionalID, Nombre: a.ProfessionalName},
	}
}

// CreateCita validates and commits a booking. Gates run in order and the
// first failure wins: presence, existence of both references, strictly-future
// timestamp, slot exclusivity. The unique constraint on the slot backs up the
// availability pre-check against concurrent requests.
func (h *Handler) CreateCita(w http.ResponseWriter, r *http.Request) {
	var req createCitaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Cuerpo JSON inválido")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, "usuarioId, profesionalId y fechaHora son obligatorios")
		return
	}

	scheduledAt, err := time.Parse(time.RFC3339, req.FechaHora)
	if err != nil {
		respondError(w, http.StatusBadRequest, "fechaHora debe tener formato RFC3339")
		return
	}

	userOK, err := h.store.UserExists(r.Context(), req.UsuarioID)
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	profOK, err := h.store.ProfessionalExists(r.Context(), req.ProfesionalID)
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	// both checked up front so one missing reference never masks the other
	switch {
	case !userOK && !profOK:
		respondError(w, http.StatusNotFound, "Usuario y profesional no encontrados")
		return
	case !userOK:
		respondError(w, http.StatusNotFound, "Usuario no encontrado")
		return
	case !profOK:
		respondError(w, http.StatusNotFound, "Profesional no encontrado")
		return
	}

	if !scheduledAt.After(time.Now()) {
		respondError(w, http.StatusBadRequest, "La fecha de la cita no puede ser en el pasado")
		return
	}

	taken, err := h.store.SlotTaken(r.Context(), req.ProfesionalID, scheduledAt)
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	if taken {
		h.recordConflict()
		respondError(w, http.StatusConflict, "El horario seleccionado no está disponible")
		return
	}

	cita := &model.Appointment{
		UserID:         req.UsuarioID,
		ProfessionalID: req.ProfesionalID,
		ScheduledAt:    scheduledAt,
		Reason:         req.Motivo,
	}
	if err := h.store.CreateAppointment(r.Context(), cita); err != nil {
		if errors.Is(err, store.ErrSlotTaken) {
			// a concurrent booking won the race; the constraint caught it
			h.recordConflict()
			respondError(w, http.StatusConflict, "El horario seleccionado no está disponible")
			return
		}
		h.internalError(w, r, err)
		return
	}

	full, err := h.store.AppointmentByID(r.Context(), cita.ID)
	if err != nil {
		h.internalError(w, r, err)
		return
	}

	if h.collector != nil {
		h.collector.RecordBookingCreated()
	}
	respondJSON(w, http.StatusCreated, toCitaResponse(full))
}

func (h *Handler) ListCitas(w http.ResponseWriter, r *http.Request) {
	page, limit, err := parsePagination(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Parámetros de paginación inválidos")
		return
	}

	citas, total, err := h.store.ListAppointments(r.Context(), limit, (page-1)*limit)
	if err != nil {
		h.internalError(w, r, err)
		return
	}

	out := make([]citaResponse, len(citas))
	for i := range citas {
		out[i] = toCitaResponse(&citas[i])
	}
	respondJSON(w, http.StatusOK, citaListResponse{
		Citas:        out,
		Total:        total,
		Pagina:       page,
		TotalPaginas: totalPages(total, limit),
	})
}

func (h *Handler) GetCita(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "citaId"), 10, 64)
	if err != nil {
		respondError(w, http.StatusNotFound, "La cita especificada no existe")
		return
	}

	cita, err := h.store.AppointmentByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, http.StatusNotFound, "La cita especificada no existe")
			return
		}
		h.internalError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toCitaResponse(cita))
}

func (h *Handler) recordConflict() {
	if h.collector != nil {
		h.collector.RecordBookingConflict()
	}
}
