package api

import (
	"encoding/json"
	"math"
	"net/http"
	"time"

	"github.com/zdvihtech/counterweight/internal/catalog"
	"github.com/zdvihtech/counterweight/internal/solver"
)

type dimensionsPayload struct {
	Width  float64 `json:"width"`  // mm
	Depth  float64 `json:"depth"`  // mm
	Height float64 `json:"height"` // mm
}

type solveRequest struct {
	Dimensions        dimensionsPayload `json:"dimensions"`
	TargetTotalWeight float64           `json:"targetTotalWeight"` // kg
	FrameWeight       float64           `json:"frameWeight"`       // kg
	// PlateThickness, when positive, asks for a per-allocation piece
	// count assuming the material is stacked as full-footprint plates of
	// this thickness in mm. Display-level derivation, not a solver input.
	PlateThickness float64 `json:"plateThickness,omitempty"`
}

type allocationPayload struct {
	MaterialID string  `json:"materialId"`
	Name       string  `json:"name"`
	Density    float64 `json:"density"`
	Priority   int     `json:"priority"`
	Volume     float64 `json:"volumeM3"`
	Weight     float64 `json:"weightKg"`
	Percentage float64 `json:"percentage"`
	Pieces     int     `json:"pieces,omitempty"`
}

type solveResponse struct {
	TotalVolume       float64             `json:"totalVolumeM3"`
	NetTargetWeight   float64             `json:"netTargetWeightKg"`
	Feasible          bool                `json:"feasible"`
	Reason            string              `json:"reason"`
	Message           string              `json:"message"`
	MinFillWeight     float64             `json:"minFillWeightKg,omitempty"`
	MaxFillWeight     float64             `json:"maxFillWeightKg,omitempty"`
	Allocations       []allocationPayload `json:"allocations"`
	CalculationTimeMs int64               `json:"calculationTimeMs"`
}

type materialPayload struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Density  float64 `json:"density"`
	Priority int     `json:"priority"`
	Locked   bool    `json:"locked"`
}

type materialsResponse struct {
	Materials []materialPayload `json:"materials"`
	UpdatedAt time.Time         `json:"updatedAt"`
	Message   string            `json:"message,omitempty"`
}

type replaceMaterialsRequest struct {
	Materials []catalog.Spec `json:"materials"`
}

type addMaterialRequest struct {
	Name    string  `json:"name"`
	Density float64 `json:"density"`
	Locked  bool    `json:"locked"`
}

type updateMaterialRequest struct {
	Name     *string  `json:"name"`
	Density  *float64 `json:"density"`
	Priority *int     `json:"priority"`
}

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

type errorResponse struct {
	Error      string `json:"error"`
	Details    string `json:"details,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

func toMaterialPayload(m solver.Material) materialPayload {
	return materialPayload{
		ID:       m.ID,
		Name:     m.Name,
		Density:  m.Density,
		Priority: m.Priority,
		Locked:   m.Locked,
	}
}

func toMaterialPayloads(materials []solver.Material) []materialPayload {
	out := make([]materialPayload, 0, len(materials))
	for _, m := range materials {
		out = append(out, toMaterialPayload(m))
	}
	return out
}

func toAllocationPayloads(allocations []solver.Allocation, dims dimensionsPayload, plateThickness float64) []allocationPayload {
	out := make([]allocationPayload, 0, len(allocations))
	for _, a := range allocations {
		payload := allocationPayload{
			MaterialID: a.Material.ID,
			Name:       a.Material.Name,
			Density:    a.Material.Density,
			Priority:   a.Material.Priority,
			Volume:     a.Volume,
			Weight:     a.Weight,
			Percentage: a.Percentage,
		}
		payload.Pieces = pieceCount(a.Volume, dims, plateThickness)
		out = append(out, payload)
	}
	return out
}

// pieceCount derives how many full-footprint plates of the given thickness
// cover the allocated volume, rounded up. Zero when no thickness was asked
// for.
func pieceCount(volume float64, dims dimensionsPayload, plateThickness float64) int {
	if plateThickness <= 0 {
		return 0
	}
	plateVolume := (dims.Width / 1000) * (dims.Depth / 1000) * (plateThickness / 1000)
	if plateVolume <= 0 {
		return 0
	}
	return int(math.Ceil(volume / plateVolume))
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if status != 0 {
		w.WriteHeader(status)
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message, details string, suggestion ...string) {
	resp := errorResponse{
		Error:   message,
		Details: details,
	}
	if len(suggestion) > 0 {
		resp.Suggestion = suggestion[0]
	}
	writeJSON(w, status, resp)
}

func writeInternalError(w http.ResponseWriter, err error) {
	writeError(w, http.StatusInternalServerError, "Internal error", err.Error())
}
