package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/curvebuild/api"
	"github.com/meenmo/curvebuild/builder"
	"github.com/meenmo/curvebuild/curve"
	"github.com/meenmo/curvebuild/instruments"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var evalDate = time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)

var prices = map[string]float64{"DEP-3M": 2.0, "DEP-6M": 2.0, "DEP-1Y": 2.0}

func newServer(t *testing.T) *api.Server {
	t.Helper()
	log, _ := test.NewNullLogger()
	tmpl := builder.CurveTemplate{Name: "USD-LIBOR-3M", Interpolation: curve.LinearLogDF}
	for _, n := range []string{"3M", "6M", "1Y"} {
		inst, err := instruments.New(instruments.Spec{
			Name: "DEP-" + n, Type: "Deposit", Curve: "USD-LIBOR-3M", ForecastLeft: "USD-LIBOR-3M",
			ConventionLeft: "ACT360", Start: "E", Length: n,
		}, evalDate)
		require.NoError(t, err)
		tmpl.Instruments = append(tmpl.Instruments, inst)
	}
	b, err := builder.New(builder.Params{EvalDate: evalDate, Templates: []builder.CurveTemplate{tmpl}, Logger: log})
	require.NoError(t, err)
	return api.NewServer(b, api.Options{Logger: log})
}

func do(t *testing.T, s *api.Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

func TestHealthAndListings(t *testing.T) {
	t.Parallel()
	s := newServer(t)

	w := do(t, s, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, s, http.MethodGet, "/api/v1/curves", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"USD-LIBOR-3M"}, decode[api.CurvesResponse](t, w).Curves)

	w = do(t, s, http.MethodGet, "/api/v1/instruments", nil)
	require.Equal(t, http.StatusOK, w.Code)
	rows := decode[api.InstrumentsResponse](t, w).Instruments
	require.Len(t, rows, 3)
	assert.Equal(t, "DEP-3M", rows[0].Name)
	assert.Equal(t, "2025-04-02", rows[0].Pillar)
}

func TestBuildThenReprice(t *testing.T) {
	t.Parallel()
	s := newServer(t)

	w := do(t, s, http.MethodPost, "/api/v1/reprice", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(t, s, http.MethodPost, "/api/v1/build", api.BuildRequest{Prices: prices})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[api.BuildResponse](t, w)
	require.Len(t, resp.Curves.Curves, 1)
	assert.Len(t, resp.Curves.Curves[0].Pillars, 3)
	assert.Len(t, resp.Jacobian.Rows, 3)
	assert.Equal(t, []string{"DEP-3M", "DEP-6M", "DEP-1Y"}, resp.Jacobian.Columns)
	for _, q := range resp.Repriced {
		assert.InDelta(t, prices[q.Instrument], q.Price, 1e-6)
	}

	w = do(t, s, http.MethodPost, "/api/v1/reprice", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[api.RepriceResponse](t, w).Prices, 3)

	// reprice against an explicit snapshot
	w = do(t, s, http.MethodPost, "/api/v1/reprice", api.RepriceRequest{Curves: &resp.Curves})
	require.Equal(t, http.StatusOK, w.Code)
	for _, q := range decode[api.RepriceResponse](t, w).Prices {
		assert.InDelta(t, prices[q.Instrument], q.Price, 1e-6)
	}
}

func TestBuildErrors(t *testing.T) {
	t.Parallel()
	s := newServer(t)

	w := do(t, s, http.MethodPost, "/api/v1/build", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_REQUEST", decode[api.ErrorResponse](t, w).Error.Code)

	w = do(t, s, http.MethodPost, "/api/v1/build", api.BuildRequest{Prices: map[string]float64{"DEP-3M": 2.0}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "PRICE_NOT_FOUND", decode[api.ErrorResponse](t, w).Error.Code)

	bad := curve.Snapshot{Curves: []curve.CurveSnapshot{{Name: "OTHER", EvalDate: "2025-01-02",
		Pillars: []curve.PillarSnapshot{{Date: "2026-01-02", DF: 0.98}}}}}
	w = do(t, s, http.MethodPost, "/api/v1/reprice", api.RepriceRequest{Curves: &bad})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "CONFIGURATION_ERROR", decode[api.ErrorResponse](t, w).Error.Code)
}

func TestCORS(t *testing.T) {
	t.Parallel()
	s := newServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://example.com")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
