package integration

import (
	"bytes"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/zdvihtech/counterweight/internal/api"
	"github.com/zdvihtech/counterweight/internal/catalog"
	"github.com/zdvihtech/counterweight/internal/metrics"
	"github.com/zdvihtech/counterweight/internal/solver"
)

func newRouter(t *testing.T) http.Handler {
	t.Helper()

	store := catalog.NewMemory()
	m := metrics.New()
	handler := api.NewHandler(solver.New(), store, api.WithMetrics(m))
	logger := zaptest.NewLogger(t)
	return api.NewRouter(handler, logger, api.WithRouterMetrics(m))
}

func performRequest(t *testing.T, handler http.Handler, method, target string, body []byte, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, reader)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestIntegrationFlow(t *testing.T) {
	handler := newRouter(t)

	rec := performRequest(t, handler, http.MethodGet, "/api/health", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("health check failed with status %d", rec.Code)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Fatalf("expected request ID header on response")
	}

	// Narrow the catalog to the two materials of the reference scenario.
	replaceBody := []byte(`{"materials":[{"name":"Beton","density":2400,"locked":true},{"name":"Ocel","density":7850}]}`)
	rec = performRequest(t, handler, http.MethodPut, "/api/materials", replaceBody, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("replace materials failed with status %d: %s", rec.Code, rec.Body.String())
	}

	solveBody := []byte(`{"dimensions":{"width":600,"depth":100,"height":1800},"targetTotalWeight":780,"frameWeight":79}`)
	rec = performRequest(t, handler, http.MethodPost, "/api/solve", solveBody, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("solve failed with status %d: %s", rec.Code, rec.Body.String())
	}

	var result struct {
		Feasible    bool   `json:"feasible"`
		Reason      string `json:"reason"`
		Allocations []struct {
			Name     string  `json:"name"`
			VolumeM3 float64 `json:"volumeM3"`
			WeightKg float64 `json:"weightKg"`
		} `json:"allocations"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode solve response: %v", err)
	}
	if !result.Feasible || result.Reason != "SUCCESS_PAIR" {
		t.Fatalf("expected pair solution, got %+v", result)
	}
	if len(result.Allocations) != 2 || result.Allocations[0].Name != "Beton" {
		t.Fatalf("unexpected allocations: %+v", result.Allocations)
	}
	totalWeight := result.Allocations[0].WeightKg + result.Allocations[1].WeightKg
	if math.Abs(totalWeight-701) > 0.1 {
		t.Fatalf("allocation weights should sum to 701 kg, got %v", totalWeight)
	}

	// Locked materials survive catalog mutations.
	materials := listMaterials(t, handler)
	rec = performRequest(t, handler, http.MethodDelete, "/api/materials/"+materials["Beton"], nil, nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 deleting locked material, got %d", rec.Code)
	}

	addBody := []byte(`{"name":"Litina","density":7200}`)
	rec = performRequest(t, handler, http.MethodPost, "/api/materials", addBody, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("add material failed with status %d: %s", rec.Code, rec.Body.String())
	}

	rec = performRequest(t, handler, http.MethodGet, "/metrics", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics endpoint failed with status %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "counterweight_solve_results_total") {
		t.Fatalf("expected solve counter in metrics output")
	}
}

func TestIntegrationInfeasibleSolve(t *testing.T) {
	handler := newRouter(t)

	solveBody := []byte(`{"dimensions":{"width":600,"depth":100,"height":1800},"targetTotalWeight":50000,"frameWeight":79}`)
	rec := performRequest(t, handler, http.MethodPost, "/api/solve", solveBody, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("solve failed with status %d: %s", rec.Code, rec.Body.String())
	}

	var result struct {
		Feasible        bool    `json:"feasible"`
		Reason          string  `json:"reason"`
		MaxFillWeightKg float64 `json:"maxFillWeightKg"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode solve response: %v", err)
	}
	if result.Feasible || result.Reason != "TARGET_TOO_HIGH" {
		t.Fatalf("expected TARGET_TOO_HIGH, got %+v", result)
	}
	if result.MaxFillWeightKg <= 0 {
		t.Fatalf("expected achievable maximum in diagnostic payload, got %+v", result)
	}
}

func listMaterials(t *testing.T, handler http.Handler) map[string]string {
	t.Helper()

	rec := performRequest(t, handler, http.MethodGet, "/api/materials", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list materials failed with status %d", rec.Code)
	}

	var resp struct {
		Materials []struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"materials"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode materials response: %v", err)
	}

	byName := make(map[string]string, len(resp.Materials))
	for _, m := range resp.Materials {
		byName[m.Name] = m.ID
	}
	return byName
}
