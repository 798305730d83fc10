package ui

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"github.com/xuri/excelize/v2"

	"corrlab/adapters/rng"
	"corrlab/adapters/synth"
	"corrlab/internal"
	"corrlab/internal/api"
	"corrlab/internal/explorer"
	"corrlab/internal/render"
)

func newTestServer(t *testing.T, mutate func(*explorer.Config)) (*Server, *explorer.Explorer) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := explorer.DefaultConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	exp, err := explorer.New(cfg, synth.NewSynthesizer(rng.NewSeeded(9)))
	require.NoError(t, err)

	logger := internal.NewLogger(internal.LogLevelError)
	hub := api.NewSSEHub(logger)
	t.Cleanup(hub.Close)

	srv, err := NewServer(os.DirFS("."), exp, render.NewRenderer(320, 240, 2, logger), hub, logger)
	require.NoError(t, err)
	return srv, exp
}

func do(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestState(t *testing.T) {
	srv, exp := newTestServer(t, nil)
	rec := do(t, srv, http.MethodGet, "/api/state", "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Equal(t, "baseline", gjson.Get(body, "mode").String())
	assert.Equal(t, int64(50), gjson.Get(body, "parameters.sample_size").Int())
	assert.Equal(t, 0.5, gjson.Get(body, "parameters.target_correlation").Float())
	assert.Equal(t, int64(50), gjson.Get(body, "points.#").Int())
	assert.Equal(t, int64(0), gjson.Get(body, "residuals.#").Int(), "no residuals before fitting")
	assert.Equal(t, 0.0, gjson.Get(body, "displayed_line.slope").Float())
	assert.InDelta(t, exp.Regression().MeanY, gjson.Get(body, "displayed_line.intercept").Float(), 1e-12)
	assert.Equal(t, int64(10), gjson.Get(body, "bounds.min_sample_size").Int())
	assert.Equal(t, "clamp", gjson.Get(body, "bounds.input_policy").String())
}

func TestWalkthroughOverHTTP(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rec := do(t, srv, http.MethodPost, "/api/correlation", `{"value": 0.9}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 0.9, gjson.Get(rec.Body.String(), "parameters.target_correlation").Float())
	assert.Equal(t, "baseline", gjson.Get(rec.Body.String(), "mode").String())

	rec = do(t, srv, http.MethodPost, "/api/sample-size", `{"value": 50}`)
	require.Equal(t, http.StatusOK, rec.Code)
	fingerprint := gjson.Get(rec.Body.String(), "fingerprint").String()

	rec = do(t, srv, http.MethodPost, "/api/fit", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Equal(t, "fitted", gjson.Get(body, "mode").String())
	assert.Equal(t, fingerprint, gjson.Get(body, "fingerprint").String())
	assert.Equal(t, int64(50), gjson.Get(body, "residuals.#").Int())
	assert.Equal(t, gjson.Get(body, "regression.slope").Float(), gjson.Get(body, "displayed_line.slope").Float())

	rec = do(t, srv, http.MethodPost, "/api/sample-size", `{"value": 60}`)
	require.Equal(t, http.StatusOK, rec.Code)
	body = rec.Body.String()
	assert.Equal(t, "baseline", gjson.Get(body, "mode").String())
	assert.Equal(t, int64(60), gjson.Get(body, "points.#").Int())
}

func TestInputPolicyOverHTTP(t *testing.T) {
	t.Run("clamp", func(t *testing.T) {
		srv, _ := newTestServer(t, nil)
		rec := do(t, srv, http.MethodPost, "/api/correlation", `{"value": 4}`)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 1.0, gjson.Get(rec.Body.String(), "parameters.target_correlation").Float())
	})

	t.Run("reject", func(t *testing.T) {
		srv, exp := newTestServer(t, func(c *explorer.Config) { c.InputPolicy = explorer.Reject })
		before := exp.Snapshot().Revision

		rec := do(t, srv, http.MethodPost, "/api/sample-size", `{"value": 500}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "INVALID_INPUT", gjson.Get(rec.Body.String(), "code").String())
		assert.Equal(t, before, exp.Snapshot().Revision)
	})
}

func TestMalformedRequests(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	tests := []struct {
		name string
		path string
		body string
	}{
		{"missing value", "/api/correlation", `{}`},
		{"not json", "/api/correlation", `r=0.3`},
		{"fractional sample size", "/api/sample-size", `{"value": 12.5}`},
		{"string correlation", "/api/correlation", `{"value": "high"}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(t, srv, http.MethodPost, tc.path, tc.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.True(t, gjson.Get(rec.Body.String(), "error").Exists())
		})
	}
}

func TestResampleResetsMode(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	do(t, srv, http.MethodPost, "/api/fit", "")
	before := gjson.Get(do(t, srv, http.MethodGet, "/api/state", "").Body.String(), "fingerprint").String()

	rec := do(t, srv, http.MethodPost, "/api/resample", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "baseline", gjson.Get(rec.Body.String(), "mode").String())
	assert.NotEqual(t, before, gjson.Get(rec.Body.String(), "fingerprint").String())
}

func TestResidualsAlwaysAvailable(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	rec := do(t, srv, http.MethodGet, "/api/residuals", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Equal(t, int64(50), gjson.Get(body, "residuals.#").Int())
	assert.Equal(t, "baseline", gjson.Get(body, "mode").String())
}

func TestChartEndpoints(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rec := do(t, srv, http.MethodGet, "/api/chart.svg", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/svg+xml", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "<svg")
	assert.Equal(t, "0", rec.Header().Get("X-Revision"))

	rec = do(t, srv, http.MethodGet, "/api/chart.png", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")))
}

func TestExportEndpoints(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rec := do(t, srv, http.MethodGet, "/api/export.csv", "")
	require.Equal(t, http.StatusOK, rec.Code)
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	assert.Equal(t, "x,y,y_predicted,residual", lines[0])
	assert.Len(t, lines, 51)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), ".csv")

	rec = do(t, srv, http.MethodGet, "/api/export.xlsx", "")
	require.Equal(t, http.StatusOK, rec.Code)
	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"Points", "Summary"}, f.GetSheetList())
}

func TestIndexAndHealth(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rec := do(t, srv, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Correlation Lab")
	assert.Contains(t, rec.Body.String(), `/api/chart.svg?rev=0`)

	rec = do(t, srv, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", gjson.Get(rec.Body.String(), "status").String())
	assert.True(t, gjson.Get(rec.Body.String(), "generated_at").Exists())
	assert.GreaterOrEqual(t, gjson.Get(rec.Body.String(), "sample_age_seconds").Float(), 0.0)

	rec = do(t, srv, http.MethodGet, "/static/app.js", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}
