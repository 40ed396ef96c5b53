package handler_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type profesionalJSON struct {
	ID               int64  `json:"id"`
	Nombre           string `json:"nombre"`
	Especialidad     string `json:"especialidad"`
	Ubicacion        string `json:"ubicacion"`
	Contacto         string `json:"contacto"`
	SegurosAceptados []struct {
		ID     int64  `json:"id"`
		Nombre string `json:"nombre"`
	} `json:"segurosAceptados"`
}

func TestSearchBySeguroIdAttachesFullSet(t *testing.T) {
	_, router := newTestServer(t)

	// filtering by one insurer still returns the professional's complete
	// affiliation set, not just the matched pair
	w := do(t, router, "GET", "/api/profesionales?seguroId=1", "", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var out []profesionalJSON
	require.NoError(t, json.NewDecoder(w.Body).Decode(&out))
	require.Len(t, out, 1)
	assert.Equal(t, int64(7), out[0].ID)

	require.Len(t, out[0].SegurosAceptados, 2)
	assert.Equal(t, int64(1), out[0].SegurosAceptados[0].ID)
	assert.Equal(t, "Segur A", out[0].SegurosAceptados[0].Nombre)
	assert.Equal(t, int64(2), out[0].SegurosAceptados[1].ID)
	assert.Equal(t, "Segur B", out[0].SegurosAceptados[1].Nombre)
}

func TestSearchSinSeguro(t *testing.T) {
	_, router := newTestServer(t)

	w := do(t, router, "GET", "/api/profesionales?sinSeguro=true", "", "")
	require.Equal(t, http.StatusOK, w.Code)

	var out []profesionalJSON
	require.NoError(t, json.NewDecoder(w.Body).Decode(&out))
	require.Len(t, out, 1)
	assert.Equal(t, int64(8), out[0].ID)
	assert.NotNil(t, out[0].SegurosAceptados)
	assert.Empty(t, out[0].SegurosAceptados)
}

func TestSearchFiltersCombineWithAnd(t *testing.T) {
	_, router := newTestServer(t)

	w := do(t, router, "GET", "/api/profesionales?especialidad=cardio&ubicacion=madrid", "", "")
	require.Equal(t, http.StatusOK, w.Code)

	var out []profesionalJSON
	require.NoError(t, json.NewDecoder(w.Body).Decode(&out))
	require.Len(t, out, 1)
	assert.Equal(t, int64(7), out[0].ID)

	// same specialty, wrong location: nothing matches
	w = do(t, router, "GET", "/api/profesionales?especialidad=cardio&ubicacion=sevilla", "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSearchEmptyResultIs404(t *testing.T) {
	_, router := newTestServer(t)

	w := do(t, router, "GET", "/api/profesionales?nombre=inexistente", "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "No se encontraron profesionales")
	assert.Contains(t, w.Body.String(), `"codigo":404`)
}

func TestSearchRejectsContradictoryInsurerFilters(t *testing.T) {
	_, router := newTestServer(t)

	w := do(t, router, "GET", "/api/profesionales?seguroId=1&sinSeguro=true", "", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "no pueden combinarse")
}

func TestSearchRejectsBadSeguroId(t *testing.T) {
	_, router := newTestServer(t)

	for _, q := range []string{"seguroId=abc", "seguroId=-2", "seguroId=0"} {
		w := do(t, router, "GET", "/api/profesionales?"+q, "", "")
		assert.Equal(t, http.StatusBadRequest, w.Code, q)
	}
}

func TestGetProfesional(t *testing.T) {
	_, router := newTestServer(t)

	w := do(t, router, "GET", "/api/profesionales/7", "", "")
	require.Equal(t, http.StatusOK, w.Code)

	var p profesionalJSON
	require.NoError(t, json.NewDecoder(w.Body).Decode(&p))
	assert.Equal(t, "Dra. García", p.Nombre)
	assert.Equal(t, "Cardiología", p.Especialidad)
	assert.Len(t, p.SegurosAceptados, 2)

	w = do(t, router, "GET", "/api/profesionales/999", "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "El profesional no existe")
}

func TestListSeguros(t *testing.T) {
	fs, router := newTestServer(t)

	w := do(t, router, "GET", "/api/seguros", "", "")
	require.Equal(t, http.StatusOK, w.Code)

	var out []struct {
		ID     int64  `json:"id"`
		Nombre string `json:"nombre"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&out))
	require.Len(t, out, 2)
	assert.Equal(t, "Segur A", out[0].Nombre)

	fs.insurers = nil
	w = do(t, router, "GET", "/api/seguros", "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "No hay seguros disponibles")
}
