package solver

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// The two tolerances are deliberately different scales and must stay
// separate: pair acceptance works on volumes, the single-material fallback
// on weights.
const (
	// volumeSlack is the tolerance around [0, totalVolume] when accepting
	// the volumes produced by an adjacent-pair solve, in m³.
	volumeSlack = 1e-6
	// singleFitTolerance is the absolute weight tolerance for the
	// single-material exact fit, in kg.
	singleFitTolerance = 0.1
)

type pairSolver struct{}

// New creates a Solver using the adjacent-priority pair strategy.
func New() Solver {
	return &pairSolver{}
}

// Solve fills the cavity described by dims so that frame plus fill weighs
// targetTotalWeight. Candidates are tried as consecutive pairs in priority
// order; the first pair admitting a valid split wins, then a single full
// fill is tried, then the failure is classified against the achievable
// weight range. Callers must supply positive dimensions and a valid total
// order of priorities.
func (s *pairSolver) Solve(dims Dimensions, targetTotalWeight, frameWeight float64, materials []Material) Result {
	totalVolume := dims.Volume()
	net := targetTotalWeight - frameWeight

	res := Result{
		TotalVolume:     totalVolume,
		NetTargetWeight: net,
	}

	if bad := validateFinite(dims, targetTotalWeight, frameWeight, materials); bad != "" {
		res.Reason = ReasonInvalidInput
		res.Message = bad
		return res
	}

	if net <= 0 {
		res.Reason = ReasonFrameExceedsTarget
		res.Message = fmt.Sprintf("frame weight %.1f kg already meets or exceeds the target total of %.1f kg", frameWeight, targetTotalWeight)
		return res
	}

	if len(materials) == 0 {
		res.Reason = ReasonNoMaterials
		res.Message = "no candidate materials supplied"
		return res
	}

	sorted := sortByPriority(materials)

	// Adjacent-priority pairs, bottom of the stack first. The first pair
	// that admits a valid split wins; this is not an optimum search.
	for i := 0; i+1 < len(sorted); i++ {
		m1, m2 := sorted[i], sorted[i+1]
		if m1.Density == m2.Density {
			// Singular system, no unique split.
			continue
		}

		v1 := (net - totalVolume*m2.Density) / (m1.Density - m2.Density)
		v2 := totalVolume - v1
		if !withinVolumeRange(v1, totalVolume) || !withinVolumeRange(v2, totalVolume) {
			continue
		}
		v1 = clamp(v1, 0, totalVolume)
		v2 = clamp(v2, 0, totalVolume)

		res.Feasible = true
		res.Reason = ReasonPair
		res.Message = fmt.Sprintf("split between %s and %s", m1.Name, m2.Name)
		res.Allocations = []Allocation{
			makeAllocation(m1, v1, totalVolume),
			makeAllocation(m2, v2, totalVolume),
		}
		return res
	}

	// Single-material fallback: one candidate filling the whole cavity.
	for _, m := range sorted {
		if math.Abs(totalVolume*m.Density-net) <= singleFitTolerance {
			res.Feasible = true
			res.Reason = ReasonSingle
			res.Message = fmt.Sprintf("%s fills the cavity on its own", m.Name)
			res.Allocations = []Allocation{makeAllocation(m, totalVolume, totalVolume)}
			return res
		}
	}

	return diagnose(res, sorted)
}

// diagnose classifies an unsolvable request against the weight range
// achievable at full volume. Both bound checks run independently and their
// messages concatenate, though for a well-formed range at most one holds.
func diagnose(res Result, sorted []Material) Result {
	minDensity, maxDensity := sorted[0].Density, sorted[0].Density
	for _, m := range sorted[1:] {
		minDensity = math.Min(minDensity, m.Density)
		maxDensity = math.Max(maxDensity, m.Density)
	}

	res.MinFillWeight = res.TotalVolume * minDensity
	res.MaxFillWeight = res.TotalVolume * maxDensity

	var parts []string
	if res.NetTargetWeight < res.MinFillWeight {
		res.Reason = ReasonTargetTooLow
		parts = append(parts, fmt.Sprintf("required fill of %.1f kg is below the lightest full fill of %.1f kg", res.NetTargetWeight, res.MinFillWeight))
	}
	if res.NetTargetWeight > res.MaxFillWeight {
		if res.Reason == "" {
			res.Reason = ReasonTargetTooHigh
		}
		parts = append(parts, fmt.Sprintf("required fill of %.1f kg exceeds the densest full fill of %.1f kg", res.NetTargetWeight, res.MaxFillWeight))
	}
	if res.Reason == "" {
		res.Reason = ReasonNoSplit
		parts = append(parts, "no adjacent-priority pair or single material fits the target exactly")
	}
	res.Message = strings.Join(parts, "; ")
	return res
}

// sortByPriority returns a copy sorted ascending by priority. The sort is
// stable so equal priorities, while not expected, keep their input order.
func sortByPriority(materials []Material) []Material {
	sorted := make([]Material, len(materials))
	copy(sorted, materials)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority < sorted[j].Priority
	})
	return sorted
}

func makeAllocation(m Material, volume, totalVolume float64) Allocation {
	return Allocation{
		Material:   m,
		Volume:     volume,
		Weight:     volume * m.Density,
		Percentage: volume / totalVolume * 100,
	}
}

func withinVolumeRange(v, totalVolume float64) bool {
	return v >= -volumeSlack && v <= totalVolume+volumeSlack
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func validateFinite(dims Dimensions, targetTotalWeight, frameWeight float64, materials []Material) string {
	for _, v := range []float64{dims.Width, dims.Depth, dims.Height} {
		if !isFinite(v) {
			return "dimensions must be finite numbers"
		}
	}
	if !isFinite(targetTotalWeight) || !isFinite(frameWeight) {
		return "weights must be finite numbers"
	}
	for _, m := range materials {
		if !isFinite(m.Density) {
			return fmt.Sprintf("material %q has a non-finite density", m.Name)
		}
	}
	return ""
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
