package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"health-directory-api/internal/model"
	"health-directory-api/internal/store"
)

type insurerDTO struct {
	ID     int64  `json:"id"`
	Nombre string `json:"nombre"`
}

type professionalResponse struct {
	ID               int64        `json:"id"`
	Nombre           string       `json:"nombre"`
	Especialidad     string       `json:"especialidad"`
	Ubicacion        string       `json:"ubicacion"`
	Contacto         string       `json:"contacto"`
	SegurosAceptados []insurerDTO `json:"segurosAceptados"`
}

func toProfessionalResponse(p *model.Professional) professionalResponse {
	seguros := make([]insurerDTO, len(p.Insurers))
	for i, ins := range p.Insurers {
		seguros[i] = insurerDTO{ID: ins.ID, Nombre: ins.Name}
	}
	return professionalResponse{
		ID:               p.ID,
		Nombre:           p.Name,
		Especialidad:     p.Specialty,
		Ubicacion:        p.Location,
		Contacto:         p.Contact,
		SegurosAceptados: seguros,
	}
}

// SearchProfesionales answers the filtered directory search. All filters
// AND-combine; an empty result set answers 404 to match the original client
// contract.
func (h *Handler) SearchProfesionales(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := store.Filter{
		Specialty: q.Get("especialidad"),
		Location:  q.Get("ubicacion"),
		Name:      q.Get("nombre"),
	}

	if raw := q.Get("seguroId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			respondError(w, http.StatusBadRequest, "seguroId inválido")
			return
		}
		f.InsurerID = id
	}
	f.NoInsurance = q.Get("sinSeguro") == "true"

	// a specific insurer and "no insurance at all" contradict each other;
	// rejecting beats silently ignoring one of them
	if f.InsurerID != 0 && f.NoInsurance {
		respondError(w, http.StatusBadRequest, "seguroId y sinSeguro no pueden combinarse")
		return
	}

	profesionales, err := h.store.SearchProfessionals(r.Context(), f)
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	if len(profesionales) == 0 {
		respondError(w, http.StatusNotFound, "No se encontraron profesionales")
		return
	}

	out := make([]professionalResponse, len(profesionales))
	for i := range profesionales {
		out[i] = toProfessionalResponse(&profesionales[i])
	}
	respondJSON(w, http.StatusOK, out)
}

func (h *Handler) GetProfesional(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "profesionalId"), 10, 64)
	if err != nil {
		respondError(w, http.StatusNotFound, "El profesional no existe")
		return
	}

	p, err := h.store.ProfessionalByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, http.StatusNotFound, "El profesional no existe")
			return
		}
		h.internalError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toProfessionalResponse(p))
}

// ListSeguros lists the insurers; an empty table answers 404 like the
// original API did.
func (h *Handler) ListSeguros(w http.ResponseWriter, r *http.Request) {
	seguros, err := h.store.ListInsurers(r.Context())
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	if len(seguros) == 0 {
		respondError(w, http.StatusNotFound, "No hay seguros disponibles")
		return
	}

	out := make([]insurerDTO, len(seguros))
	for i, s := range seguros {
		out[i] = insurerDTO{ID: s.ID, Nombre: s.Name}
	}
	respondJSON(w, http.StatusOK, out)
}
