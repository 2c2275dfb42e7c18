package solver

// Dimensions describes the inner cavity of a counterweight frame in
// millimeters. All three sides must be positive; the solver does not guard
// against zero or negative values, it is the caller's responsibility to
// validate dimensions before solving.
type Dimensions struct {
	Width  float64
	Depth  float64
	Height float64
}

// Volume returns the cavity volume in cubic meters. Millimeters are
// converted to meters before multiplying so the result is in m³.
func (d Dimensions) Volume() float64 {
	return (d.Width / 1000) * (d.Depth / 1000) * (d.Height / 1000)
}

// Material is one candidate fill material. Priority is a positive rank,
// unique within the set passed to Solve; rank 1 is placed at the bottom of
// the stack and tried first. Locked materials have a fixed density and
// cannot be renamed or removed — that rule is enforced by the catalog, the
// solver itself only reads Density and Priority.
type Material struct {
	ID       string
	Name     string
	Density  float64 // kg/m³
	Priority int
	Locked   bool
}

// Allocation is one material's share of the cavity in a feasible solution.
type Allocation struct {
	Material   Material
	Volume     float64 // m³
	Weight     float64 // kg
	Percentage float64 // share of total volume, 0–100
}

// Result is the outcome of a single Solve call. It is newly constructed per
// call and never aliases the input materials slice. Allocations holds zero
// entries when infeasible, one for a single-material fit, two for a split.
// MinFillWeight and MaxFillWeight are populated only when the target was
// diagnosed as out of range (ReasonTargetTooLow / ReasonTargetTooHigh).
type Result struct {
	TotalVolume     float64 // m³
	NetTargetWeight float64 // kg, target minus frame
	Feasible        bool
	Reason          Reason
	Message         string
	MinFillWeight   float64 // kg, lightest material at full volume
	MaxFillWeight   float64 // kg, densest material at full volume
	Allocations     []Allocation
}

// Solver computes counterweight fill splits.
type Solver interface {
	Solve(dims Dimensions, targetTotalWeight, frameWeight float64, materials []Material) Result
}
