package api

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"sync"
	"time"

	"github.com/zdvihtech/counterweight/internal/catalog"
	"github.com/zdvihtech/counterweight/internal/metrics"
	"github.com/zdvihtech/counterweight/internal/solver"
)

type contextKey string

const requestIDContextKey contextKey = "requestID"

// Handler wires solver and catalog dependencies into HTTP handlers.
type Handler struct {
	solver  solver.Solver
	catalog catalog.Store
	metrics *metrics.Metrics

	clock func() time.Time

	mu               sync.RWMutex
	catalogUpdatedAt time.Time
}

// HandlerOption configures Handler behaviour.
type HandlerOption func(*Handler)

// WithClock overrides the time source, primarily for tests.
func WithClock(clock func() time.Time) HandlerOption {
	return func(h *Handler) {
		h.clock = clock
	}
}

// WithMetrics attaches solve-outcome instrumentation.
func WithMetrics(m *metrics.Metrics) HandlerOption {
	return func(h *Handler) {
		h.metrics = m
	}
}

// NewHandler constructs a Handler with the provided dependencies.
func NewHandler(s solver.Solver, store catalog.Store, opts ...HandlerOption) *Handler {
	h := &Handler{
		solver:  s,
		catalog: store,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	h.catalogUpdatedAt = h.clock()
	return h
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	_ = r
	resp := healthResponse{
		Status:    "ok",
		Timestamp: h.clock(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleGetMaterials(w http.ResponseWriter, r *http.Request) {
	_ = r
	resp := materialsResponse{
		Materials: toMaterialPayloads(h.catalog.List()),
		UpdatedAt: h.currentCatalogUpdatedAt(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handlePutMaterials(w http.ResponseWriter, r *http.Request) {
	var req replaceMaterialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "unable to parse JSON payload")
		return
	}

	if len(req.Materials) == 0 {
		writeError(w, http.StatusBadRequest, "Invalid materials", "materials must contain at least one entry")
		return
	}

	if err := h.catalog.Replace(req.Materials); err != nil {
		writeCatalogError(w, err)
		return
	}

	h.markCatalogUpdated()

	resp := materialsResponse{
		Materials: toMaterialPayloads(h.catalog.List()),
		UpdatedAt: h.currentCatalogUpdatedAt(),
		Message:   "Materials replaced successfully",
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleAddMaterial(w http.ResponseWriter, r *http.Request) {
	var req addMaterialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "unable to parse JSON payload")
		return
	}

	material, err := h.catalog.Add(req.Name, req.Density, req.Locked)
	if err != nil {
		writeCatalogError(w, err)
		return
	}

	h.markCatalogUpdated()
	writeJSON(w, http.StatusCreated, toMaterialPayload(material))
}

func (h *Handler) handleUpdateMaterial(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req updateMaterialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "unable to parse JSON payload")
		return
	}

	current, ok := h.findMaterial(id)
	if !ok {
		writeError(w, http.StatusNotFound, "Unknown material", "no material with id "+id)
		return
	}

	if req.Name != nil || req.Density != nil {
		name := current.Name
		if req.Name != nil {
			name = *req.Name
		}
		density := current.Density
		if req.Density != nil {
			density = *req.Density
		}
		if _, err := h.catalog.Update(id, name, density); err != nil {
			writeCatalogError(w, err)
			return
		}
	}

	if req.Priority != nil {
		if err := h.catalog.Move(id, *req.Priority); err != nil {
			writeCatalogError(w, err)
			return
		}
	}

	h.markCatalogUpdated()

	updated, ok := h.findMaterial(id)
	if !ok {
		writeInternalError(w, errors.New("material disappeared during update"))
		return
	}
	writeJSON(w, http.StatusOK, toMaterialPayload(updated))
}

func (h *Handler) handleDeleteMaterial(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := h.catalog.Remove(id); err != nil {
		writeCatalogError(w, err)
		return
	}

	h.markCatalogUpdated()
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleSolve(w http.ResponseWriter, r *http.Request) {
	var req solveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "unable to parse JSON payload")
		return
	}

	if detail := validateSolveRequest(req); detail != "" {
		writeError(w, http.StatusBadRequest, "Invalid request", detail)
		return
	}

	dims := solver.Dimensions{
		Width:  req.Dimensions.Width,
		Depth:  req.Dimensions.Depth,
		Height: req.Dimensions.Height,
	}
	materials := h.catalog.List()

	start := time.Now()
	result := h.solver.Solve(dims, req.TargetTotalWeight, req.FrameWeight, materials)
	elapsed := time.Since(start)

	h.metrics.RecordSolve(string(result.Reason), elapsed)

	resp := solveResponse{
		TotalVolume:       result.TotalVolume,
		NetTargetWeight:   result.NetTargetWeight,
		Feasible:          result.Feasible,
		Reason:            string(result.Reason),
		Message:           result.Message,
		MinFillWeight:     result.MinFillWeight,
		MaxFillWeight:     result.MaxFillWeight,
		Allocations:       toAllocationPayloads(result.Allocations, req.Dimensions, req.PlateThickness),
		CalculationTimeMs: elapsed.Milliseconds(),
	}
	writeJSON(w, http.StatusOK, resp)
}

// validateSolveRequest rejects malformed input before it reaches the
// solver. Infeasible but well-formed requests pass through; infeasibility
// is a domain outcome, not an HTTP error.
func validateSolveRequest(req solveRequest) string {
	for _, side := range []float64{req.Dimensions.Width, req.Dimensions.Depth, req.Dimensions.Height} {
		if math.IsNaN(side) || math.IsInf(side, 0) || side <= 0 {
			return "dimensions must be positive millimeter values"
		}
	}
	for _, weight := range []float64{req.TargetTotalWeight, req.FrameWeight} {
		if math.IsNaN(weight) || math.IsInf(weight, 0) || weight < 0 {
			return "weights must be non-negative finite values"
		}
	}
	if req.PlateThickness < 0 || math.IsNaN(req.PlateThickness) || math.IsInf(req.PlateThickness, 0) {
		return "plateThickness must be a non-negative millimeter value"
	}
	return ""
}

func (h *Handler) findMaterial(id string) (solver.Material, bool) {
	for _, material := range h.catalog.List() {
		if material.ID == id {
			return material, true
		}
	}
	return solver.Material{}, false
}

func (h *Handler) currentCatalogUpdatedAt() time.Time {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.catalogUpdatedAt
}

func (h *Handler) markCatalogUpdated() {
	h.mu.Lock()
	h.catalogUpdatedAt = h.clock()
	h.mu.Unlock()
}

func requestIDFromContext(ctx context.Context) string {
	if v := ctx.Value(requestIDContextKey); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

func writeCatalogError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		writeError(w, http.StatusNotFound, "Unknown material", err.Error())
	case errors.Is(err, catalog.ErrLocked):
		writeError(w, http.StatusConflict, "Material locked", err.Error())
	case errors.Is(err, catalog.ErrInvalidMaterial),
		errors.Is(err, catalog.ErrDuplicateName),
		errors.Is(err, catalog.ErrEmptyCatalog):
		writeError(w, http.StatusBadRequest, "Invalid materials", err.Error())
	default:
		writeInternalError(w, err)
	}
}
