package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spendr/backend/internal/allocation"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer(t *testing.T, history bool) (*Server, *gin.Engine) {
	t.Helper()
	cfg := Config{DisableAI: true, SilentDB: true}
	if history {
		cfg.DBPath = filepath.Join(t.TempDir(), "spendr.db")
	} else {
		cfg.DisableHistory = true
	}
	srv, err := NewServer(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = srv.Close() })
	router, err := srv.Router()
	require.NoError(t, err)
	return srv, router
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch v := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(v))
	default:
		raw, err := json.Marshal(v)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestAllocateEndpoint(t *testing.T) {
	_, router := newTestServer(t, false)

	rec := doJSON(t, router, http.MethodPost, "/api/allocate", map[string]any{
		"total_budget": 1000,
		"industry":     "Ecommerce",
		"audience":     "GenZ",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decode[AllocationResponse](t, rec)
	assert.Empty(t, resp.ID)
	assert.EqualValues(t, "Ecommerce", resp.Industry)
	assert.True(t, resp.AudienceMatched)
	assert.Equal(t, DefaultAOV, resp.AOV)
	require.Len(t, resp.Ranked, 4)
	assert.Equal(t, "GoogleAds", resp.Ranked[0].Channel)
	assert.Equal(t, "Slab1", resp.Ranked[0].Slab)
	assert.InDelta(t, 300, resp.Allocation["Slab1"]["GoogleAds"], 1e-9)
	assert.InDelta(t, 200, resp.Allocation["Slab2"]["YouTube"], 1e-9)
	assert.Empty(t, resp.Allocation["Slab3"])
	assert.Len(t, resp.Explanations, 4)
	assert.InDelta(t, 1000, resp.ProjectedTotals.Spend, 1e-6)

	var pct float64
	for _, slice := range resp.Pie {
		pct += slice.Percentage
	}
	assert.InDelta(t, 100, pct, 0.05)
}

func TestAllocateLabelsAndAudienceFallback(t *testing.T) {
	_, router := newTestServer(t, false)

	rec := doJSON(t, router, http.MethodPost, "/api/allocate", map[string]any{
		"total_budget": 500,
		"industry":     "food_beverage",
		"audience":     "Pet owners",
		"aov":          40,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[AllocationResponse](t, rec)
	assert.EqualValues(t, "Ecommerce", resp.Industry)
	assert.EqualValues(t, "Pet owners", resp.Audience)
	assert.False(t, resp.AudienceMatched)
	assert.Equal(t, "food_beverage", resp.IndustryLabel)
	assert.Equal(t, 40.0, resp.AOV)
}

func TestAllocateErrors(t *testing.T) {
	_, router := newTestServer(t, false)

	cases := []struct {
		name   string
		body   any
		status int
	}{
		{"malformed", `{"total_budget":`, http.StatusBadRequest},
		{"missing budget", map[string]any{"industry": "Travel"}, http.StatusBadRequest},
		{"negative budget", map[string]any{"total_budget": -5, "industry": "Travel"}, http.StatusBadRequest},
		{"negative aov", map[string]any{"total_budget": 5, "industry": "Travel", "aov": -1}, http.StatusBadRequest},
		{"missing industry", map[string]any{"total_budget": 5}, http.StatusBadRequest},
		{"huge budget", map[string]any{"total_budget": 1e307, "industry": "Travel"}, http.StatusBadRequest},
		{"huge aov", map[string]any{"total_budget": 5, "industry": "Travel", "aov": 1.5e308}, http.StatusBadRequest},
		{"unknown industry", map[string]any{"total_budget": 5, "industry": "Aerospace"}, http.StatusUnprocessableEntity},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doJSON(t, router, http.MethodPost, "/api/allocate", tc.body)
			assert.Equal(t, tc.status, rec.Code, rec.Body.String())
			body := decode[map[string]string](t, rec)
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestAllocateAtMaxAmount(t *testing.T) {
	_, router := newTestServer(t, true)

	rec := doJSON(t, router, http.MethodPost, "/api/allocate", map[string]any{
		"total_budget": allocation.MaxAmount,
		"industry":     "Travel",
		"aov":          allocation.MaxAmount,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[AllocationResponse](t, rec)
	assert.NotEmpty(t, resp.ID)
	assert.InDelta(t, allocation.MaxAmount, resp.ProjectedTotals.Spend, 1)

	rec = doJSON(t, router, http.MethodGet, "/api/plans", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, decode[PlansResponse](t, rec).Total)
}

func TestCompareEndpoint(t *testing.T) {
	_, router := newTestServer(t, false)

	rec := doJSON(t, router, http.MethodPost, "/api/compare", map[string]any{
		"total_budget":      1000,
		"industry":          "Ecommerce",
		"audience":          "GenZ",
		"manual_allocation": map[string]float64{"Google": 25, "tiktok": 25, "instagram": 25, "youtube": 25},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decode[CompareResponse](t, rec)
	require.Len(t, resp.Platforms, 4)
	assert.Equal(t, "Google Ads", resp.Platforms[0].Platform)
	assert.InDelta(t, 250, resp.Platforms[0].Manual, 1e-9)
	assert.InDelta(t, 300, resp.Platforms[0].AIOptimized, 1e-9)
	assert.Equal(t, 100.0, resp.ManualCoverage)
	assert.Greater(t, resp.ProjectedROI.AI, resp.ProjectedROI.Manual)
	require.NotNil(t, resp.Insight)
	assert.Equal(t, "template", resp.Insight.Source)
	assert.NotEmpty(t, resp.Insight.Narrative)

	rec = doJSON(t, router, http.MethodPost, "/api/compare", map[string]any{
		"total_budget":      1000,
		"industry":          "Ecommerce",
		"manual_allocation": map[string]float64{"google": 80, "tiktok": 40},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestScoreEndpoint(t *testing.T) {
	_, router := newTestServer(t, true)

	rec := doJSON(t, router, http.MethodPost, "/api/ads/score", ScoreRequest{Text: "We sell clothes."})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[ScoreResponse](t, rec)
	assert.NotEmpty(t, resp.ID)
	assert.InDelta(t, 43.2, resp.Total, 1e-9)
	assert.Equal(t, "Average", resp.Band)
	assert.Equal(t, 3, resp.WordCount)

	rec = doJSON(t, router, http.MethodPost, "/api/ads/score", ScoreRequest{Text: "  "})
	require.Equal(t, http.StatusOK, rec.Code)
	blank := decode[ScoreResponse](t, rec)
	assert.Empty(t, blank.ID)
	assert.Zero(t, blank.Total)

	rec = doJSON(t, router, http.MethodPost, "/api/ads/score", `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/ads/score", ScoreRequest{Text: strings.Repeat("free ", maxFrameBytes/5+1)})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/evaluations?band=average", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[EvaluationsResponse](t, rec)
	assert.EqualValues(t, 1, list.Total)

	rec = doJSON(t, router, http.MethodGet, "/api/evaluations/"+resp.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	one := decode[EvaluationDTO](t, rec)
	assert.Equal(t, "We sell clothes.", one.Text)

	rec = doJSON(t, router, http.MethodGet, "/api/evaluations?min_total=abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPlanHistory(t *testing.T) {
	_, router := newTestServer(t, true)

	rec := doJSON(t, router, http.MethodPost, "/api/allocate", map[string]any{
		"total_budget": 2000,
		"industry":     "Travel",
		"audience":     "Travelers",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	created := decode[AllocationResponse](t, rec)
	require.NotEmpty(t, created.ID)

	rec = doJSON(t, router, http.MethodGet, "/api/plans?industry=travel", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	plans := decode[PlansResponse](t, rec)
	require.EqualValues(t, 1, plans.Total)
	assert.Equal(t, created.ID, plans.Items[0].ID)
	assert.Equal(t, created.Ranked[0].Channel, plans.Items[0].TopChannel)
	assert.Empty(t, plans.Items[0].Payload)

	rec = doJSON(t, router, http.MethodGet, "/api/plans/"+created.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	plan := decode[PlanDTO](t, rec)
	var payload AllocationResponse
	require.NoError(t, json.Unmarshal(plan.Payload, &payload))
	assert.Equal(t, created.Ranked[0].Channel, payload.Ranked[0].Channel)

	rec = doJSON(t, router, http.MethodGet, "/api/plans/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/export.csv", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "id,kind,industry,audience"))
	assert.Contains(t, lines[1], created.ID)

	rec = doJSON(t, router, http.MethodGet, "/api/export.json?type=bogus", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodDelete, "/api/history", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/config", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	cfg := decode[map[string]any](t, rec)
	assert.Equal(t, true, cfg["history_enabled"])
	assert.EqualValues(t, 0, cfg["plans"])
}

func TestHistoryDisabled(t *testing.T) {
	_, router := newTestServer(t, false)

	for _, path := range []string{"/api/plans", "/api/evaluations", "/api/export.csv"} {
		rec := doJSON(t, router, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code, path)
	}
}

func TestCatalogAndMetrics(t *testing.T) {
	_, router := newTestServer(t, false)

	rec := doJSON(t, router, http.MethodGet, "/api/catalog", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	catalog := decode[CatalogResponse](t, rec)
	assert.Len(t, catalog.Industries, 5)
	assert.Len(t, catalog.Audiences, 5)

	rec = doJSON(t, router, http.MethodPost, "/api/allocate", map[string]any{"total_budget": 100, "industry": "Education"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "spendr_allocations_total")
	assert.Contains(t, rec.Body.String(), "spendr_compute_duration_seconds")
}

func TestAdStream(t *testing.T) {
	_, router := newTestServer(t, false)
	httpSrv := httptest.NewServer(router)
	defer httpSrv.Close()

	url := "ws" + strings.TrimPrefix(httpSrv.URL, "http") + "/api/ads/stream"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var ready Event
	require.NoError(t, conn.ReadJSON(&ready))
	assert.Equal(t, EventReady, ready.Type)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("We sell clothes.")))
	var result Event
	require.NoError(t, conn.ReadJSON(&result))
	assert.Equal(t, EventResult, result.Type)
	require.NotNil(t, result.Score)
	assert.InDelta(t, 43.2, result.Score.Total, 1e-9)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"text": "We sell clothes."}`)))
	require.NoError(t, conn.ReadJSON(&result))
	assert.Equal(t, EventResult, result.Type)
	assert.Equal(t, 3, result.Score.WordCount)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"text": `)))
	var bad Event
	require.NoError(t, conn.ReadJSON(&bad))
	assert.Equal(t, EventError, bad.Type)
}
