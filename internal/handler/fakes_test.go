package handler_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"health-directory-api/internal/auth"
	"health-directory-api/internal/handler"
	"health-directory-api/internal/model"
	"health-directory-api/internal/store"
)

// fakeStore is an in-memory stand-in for *store.Store. It mirrors the
// semantics the handlers rely on: sentinel errors, unique slot/email
// enforcement, denormalized names on appointment reads.
type fakeStore struct {
	users         map[int64]*model.User
	nextUserID    int64
	professionals []model.Professional
	insurers      []model.Insurer
	citas         []model.Appointment
	nextCitaID    int64
	refresh       map[string]store.RefreshToken // keyed by token hash

	// raceOnCreate simulates a concurrent booking winning between the
	// availability pre-check and the insert: SlotTaken answers false but the
	// insert hits the unique constraint.
	raceOnCreate bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:      map[int64]*model.User{},
		nextUserID: 1,
		nextCitaID: 1,
		refresh:    map[string]store.RefreshToken{},
	}
}

// --- users ---

func (f *fakeStore) CreateUser(_ context.Context, u *model.User) error {
	for _, ex := range f.users {
		if ex.Email == u.Email {
			return store.ErrDuplicateEmail
		}
	}
	u.ID = f.nextUserID
	f.nextUserID++
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

func (f *fakeStore) UserByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeStore) UserByID(_ context.Context, id int64) (*model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeStore) ListUsers(_ context.Context, limit, offset int) ([]model.User, int, error) {
	ids := make([]int64, 0, len(f.users))
	for id := range f.users {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var out []model.User
	for i := offset; i < len(ids) && len(out) < limit; i++ {
		out = append(out, *f.users[ids[i]])
	}
	return out, len(ids), nil
}

func (f *fakeStore) UpdateUser(_ context.Context, id int64, p store.UserPatch) (*model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if p.Email != nil {
		for oid, other := range f.users {
			if oid != id && other.Email == *p.Email {
				return nil, store.ErrDuplicateEmail
			}
		}
		u.Email = *p.Email
	}
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Phone != nil {
		u.Phone = *p.Phone
	}
	cp := *u
	return &cp, nil
}

func (f *fakeStore) DeleteUser(_ context.Context, id int64) error {
	if _, ok := f.users[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.users, id)
	return nil
}

func (f *fakeStore) UserExists(_ context.Context, id int64) (bool, error) {
	_, ok := f.users[id]
	return ok, nil
}

// --- professionals / insurers ---

func matches(haystack, needle string) bool {
	return needle == "" || strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func (f *fakeStore) SearchProfessionals(_ context.Context, fl store.Filter) ([]model.Professional, error) {
	var out []model.Professional
	for _, p := range f.professionals {
		if !matches(p.Specialty, fl.Specialty) || !matches(p.Location, fl.Location) || !matches(p.Name, fl.Name) {
			continue
		}
		if fl.NoInsurance && len(p.Insurers) > 0 {
			continue
		}
		if fl.InsurerID != 0 {
			found := false
			for _, ins := range p.Insurers {
				if ins.ID == fl.InsurerID {
					found = true
				}
			}
			if !found {
				continue
			}
		}
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeStore) ProfessionalByID(_ context.Context, id int64) (*model.Professional, error) {
	for _, p := range f.professionals {
		if p.ID == id {
			cp := p
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeStore) ProfessionalExists(_ context.Context, id int64) (bool, error) {
	for _, p := range f.professionals {
		if p.ID == id {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) ListInsurers(_ context.Context) ([]model.Insurer, error) {
	return f.insurers, nil
}

// --- appointments ---

func (f *fakeStore) SlotTaken(_ context.Context, professionalID int64, t time.Time) (bool, error) {
	if f.raceOnCreate {
		return false, nil
	}
	for _, c := range f.citas {
		if c.ProfessionalID == professionalID && c.ScheduledAt.Equal(t) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) CreateAppointment(_ context.Context, a *model.Appointment) error {
	if f.raceOnCreate {
		return store.ErrSlotTaken
	}
	for _, c := range f.citas {
		if c.ProfessionalID == a.ProfessionalID && c.ScheduledAt.Equal(a.ScheduledAt) {
			return store.ErrSlotTaken
		}
	}
	a.ID = f.nextCitaID
	f.nextCitaID++
	a.CreatedAt = time.Now()
	f.citas = append(f.citas, *a)
	return nil
}

func (f *fakeStore) AppointmentByID(_ context.Context, id int64) (*model.Appointment, error) {
	for _, c := range f.citas {
		if c.ID == id {
			cp := c
			if u, ok := f.users[c.UserID]; ok {
				cp.UserName = u.Name
			}
			for _, p := range f.professionals {
				if p.ID == c.ProfessionalID {
					cp.ProfessionalName = p.Name
				}
			}
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeStore) ListAppointments(_ context.Context, limit, offset int) ([]model.Appointment, int, error) {
	sorted := make([]model.Appointment, len(f.citas))
	copy(sorted, f.citas)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ScheduledAt.After(sorted[j].ScheduledAt) })

	var out []model.Appointment
	for i := offset; i < len(sorted) && len(out) < limit; i++ {
		c := sorted[i]
		if u, ok := f.users[c.UserID]; ok {
			c.UserName = u.Name
		}
		for _, p := range f.professionals {
			if p.ID == c.ProfessionalID {
				c.ProfessionalName = p.Name
			}
		}
		out = append(out, c)
	}
	return out, len(sorted), nil
}

// --- refresh tokens ---

func (f *fakeStore) CreateRefreshToken(_ context.Context, userID int64, tokenHash string, expiresAt time.Time) (string, error) {
	id := tokenHash[:8]
	f.refresh[tokenHash] = store.RefreshToken{ID: id, UserID: userID, TokenHash: tokenHash, ExpiresAt: expiresAt}
	return id, nil
}

func (f *fakeStore) RefreshTokenByHash(_ context.Context, tokenHash string) (*store.RefreshToken, error) {
	rt, ok := f.refresh[tokenHash]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := rt
	return &cp, nil
}

func (f *fakeStore) RotateRefreshToken(_ context.Context, oldID, newID string, userID int64, newHash string, newExpiry time.Time) error {
	for h, rt := range f.refresh {
		if rt.ID == oldID {
			rt.Revoked = true
			rt.ReplacedBy = &newID
			f.refresh[h] = rt
		}
	}
	f.refresh[newHash] = store.RefreshToken{ID: newID, UserID: userID, TokenHash: newHash, ExpiresAt: newExpiry}
	return nil
}

func (f *fakeStore) RevokeAllRefreshTokens(_ context.Context, userID int64) error {
	for h, rt := range f.refresh {
		if rt.UserID == userID {
			rt.Revoked = true
			f.refresh[h] = rt
		}
	}
	return nil
}

// --- test harness ---

const testSecret = "test-secret"

// newTestServer seeds the directory from the reference scenario: user 3,
// professional 7 affiliated with insurers 1 and 2, professional 8 with none.
func newTestServer(t *testing.T) (*fakeStore, http.Handler) {
	t.Helper()

	fs := newFakeStore()

	hash, err := auth.HashPassword("secret-123")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	fs.users[3] = &model.User{ID: 3, Name: "Carlos Ruiz", Email: "carlos@example.com", PasswordHash: hash, Phone: "600111222"}
	fs.nextUserID = 4

	fs.insurers = []model.Insurer{{ID: 1, Name: "Segur A"}, {ID: 2, Name: "Segur B"}}
	fs.professionals = []model.Professional{
		{
			ID: 7, Name: "Dra. García", Specialty: "Cardiología", Location: "Madrid",
			Contact: "garcia@clinica.com",
			Insurers: []model.Insurer{{ID: 1, Name: "Segur A"}, {ID: 2, Name: "Segur B"}},
		},
		{
			ID: 8, Name: "Dr. Soto", Specialty: "Dermatología", Location: "Sevilla",
			Contact: "soto@clinica.com", Insurers: []model.Insurer{},
		},
	}

	h := handler.New(fs, testSecret, zerolog.Nop(), nil)
	router := handler.NewRouter(h, handler.RouterDeps{Log: zerolog.Nop()})
	return fs, router
}

func do(t *testing.T, router http.Handler, method, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()

	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}
