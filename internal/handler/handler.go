package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"health-directory-api/internal/metrics"
	"health-directory-api/internal/model"
	"health-directory-api/internal/store"
)

// Store is the persistence surface the handlers depend on. *store.Store
// satisfies it; tests substitute an in-memory fake.
type Store interface {
	CreateUser(ctx context.Context, u *model.User) error
	UserByEmail(ctx context.Context, email string) (*model.User, error)
	UserByID(ctx context.Context, id int64) (*model.User, error)
	ListUsers(ctx context.Context, limit, offset int) ([]model.User, int, error)
	UpdateUser(ctx context.Context, id int64, p store.UserPatch) (*model.User, error)
	DeleteUser(ctx context.Context, id int64) error
	UserExists(ctx context.Context, id int64) (bool, error)

	SearchProfessionals(ctx context.Context, f store.Filter) ([]model.Professional, error)
	ProfessionalByID(ctx context.Context, id int64) (*model.Professional, error)
	ProfessionalExists(ctx context.Context, id int64) (bool, error)

	ListInsurers(ctx context.Context) ([]model.Insurer, error)

	SlotTaken(ctx context.Context, professionalID int64, t time.Time) (bool, error)
	CreateAppointment(ctx context.Context, a *model.Appointment) error
	AppointmentByID(ctx context.Context, id int64) (*model.Appointment, error)
	ListAppointments(ctx context.Context, limit, offset int) ([]model.Appointment, int, error)

	CreateRefreshToken(ctx context.Context, userID int64, tokenHash string, expiresAt time.Time) (string, error)
	RefreshTokenByHash(ctx context.Context, tokenHash string) (*store.RefreshToken, error)
	RotateRefreshToken(ctx context.Context, oldID, newID string, userID int64, newHash string, newExpiry time.Time) error
	RevokeAllRefreshTokens(ctx context.Context, userID int64) error
}

type Handler struct {
	store     Store
	secret    string
	validate  *validator.Validate
	log       zerolog.Logger
	collector *metrics.Collector
}

// New builds the handler set. collector may be nil (tests).
func New(st Store, secret string, log zerolog.Logger, collector *metrics.Collector) *Handler {
	return &Handler{
		store:     st,
		secret:    secret,
		validate:  validator.New(),
		log:       log,
		collector: collector,
	}
}

// errorBody is the error contract shared by every endpoint.
type errorBody struct {
	Mensaje string `json:"mensaje"`
	Codigo  int    `json:"codigo"`
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, mensaje string) {
	respondJSON(w, status, errorBody{Mensaje: mensaje, Codigo: status})
}

// internalError logs the underlying fault and answers with the generic 500;
// store details never reach the client.
func (h *Handler) internalError(w http.ResponseWriter, r *http.Request, err error) {
	h.log.Error().Err(err).Str("path", r.URL.Path).Msg("internal error")
	respondError(w, http.StatusInternalServerError, "Error interno del servidor")
}
