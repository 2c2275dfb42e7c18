// Package catalog manages the prioritized set of fill materials the solver
// chooses from. It owns the collection rules the solver itself stays
// agnostic to: contiguous priority renumbering after every mutation, name
// uniqueness, and the locked flag that pins a material's name and density.
package catalog

import (
	"errors"
	"math"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/zdvihtech/counterweight/internal/solver"
)

var (
	// ErrNotFound indicates the requested material ID is not in the catalog.
	ErrNotFound = errors.New("material not found")
	// ErrLocked indicates a mutation was attempted on a locked material.
	ErrLocked = errors.New("material is locked and cannot be changed or removed")
	// ErrInvalidMaterial indicates a missing name or non-positive density.
	ErrInvalidMaterial = errors.New("material requires a name and a positive density")
	// ErrDuplicateName indicates the material name is already in use.
	ErrDuplicateName = errors.New("material name already in use")
	// ErrEmptyCatalog indicates an attempt to replace the catalog with nothing.
	ErrEmptyCatalog = errors.New("at least one material is required")
)

// Spec describes a material before it enters the catalog, as supplied by
// configuration or by the replace endpoint. Identity and priority are
// assigned by the catalog itself.
type Spec struct {
	Name    string  `yaml:"name" json:"name"`
	Density float64 `yaml:"density" json:"density"`
	Locked  bool    `yaml:"locked" json:"locked"`
}

// Store provides the ordered material set consumed by the solver.
type Store interface {
	List() []solver.Material
	Add(name string, density float64, locked bool) (solver.Material, error)
	Update(id, name string, density float64) (solver.Material, error)
	Move(id string, priority int) error
	Remove(id string) error
	Replace(specs []Spec) error
}

// defaultSpecs is the factory material set. Concrete is locked: its density
// is standardized and fill plans must not silently drift from it.
var defaultSpecs = []Spec{
	{Name: "Beton", Density: 2400, Locked: true},
	{Name: "Litina", Density: 7200},
	{Name: "Ocel", Density: 7850},
	{Name: "Magnetit", Density: 4650},
}

// DefaultSpecs returns a copy of the factory material set.
func DefaultSpecs() []Spec {
	out := make([]Spec, len(defaultSpecs))
	copy(out, defaultSpecs)
	return out
}

// Memory keeps materials in process memory, guarded by an RWMutex. The
// backing slice is always sorted by priority and renumbered contiguously
// from 1 after every mutation.
type Memory struct {
	mu        sync.RWMutex
	materials []solver.Material
}

// NewMemory initialises a catalog populated with the factory material set.
func NewMemory() *Memory {
	m := &Memory{}
	if err := m.Replace(DefaultSpecs()); err != nil {
		// The factory set is static and valid.
		panic(err)
	}
	return m
}

// List returns a defensive copy sorted ascending by priority.
func (m *Memory) List() []solver.Material {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]solver.Material, len(m.materials))
	copy(out, m.materials)
	return out
}

// Add appends a material at the lowest priority (end of the stack).
func (m *Memory) Add(name string, density float64, locked bool) (solver.Material, error) {
	name = strings.TrimSpace(name)
	if err := validate(name, density); err != nil {
		return solver.Material{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.nameTaken(name, "") {
		return solver.Material{}, ErrDuplicateName
	}

	material := solver.Material{
		ID:       uuid.NewString(),
		Name:     name,
		Density:  density,
		Priority: len(m.materials) + 1,
		Locked:   locked,
	}
	m.materials = append(m.materials, material)
	return material, nil
}

// Update changes a material's name and density. Locked materials keep both
// fixed and are rejected outright.
func (m *Memory) Update(id, name string, density float64) (solver.Material, error) {
	name = strings.TrimSpace(name)
	if err := validate(name, density); err != nil {
		return solver.Material{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	idx := m.indexOf(id)
	if idx < 0 {
		return solver.Material{}, ErrNotFound
	}
	if m.materials[idx].Locked {
		return solver.Material{}, ErrLocked
	}
	if m.nameTaken(name, id) {
		return solver.Material{}, ErrDuplicateName
	}

	m.materials[idx].Name = name
	m.materials[idx].Density = density
	return m.materials[idx], nil
}

// Move reorders a material to the given priority and renumbers the rest
// contiguously. Reordering is allowed for locked materials; only their name
// and density are pinned.
func (m *Memory) Move(id string, priority int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := m.indexOf(id)
	if idx < 0 {
		return ErrNotFound
	}

	target := priority - 1
	if target < 0 {
		target = 0
	}
	if target >= len(m.materials) {
		target = len(m.materials) - 1
	}

	material := m.materials[idx]
	m.materials = append(m.materials[:idx], m.materials[idx+1:]...)
	m.materials = append(m.materials[:target], append([]solver.Material{material}, m.materials[target:]...)...)
	m.renumber()
	return nil
}

// Remove deletes a material and renumbers the remaining priorities.
func (m *Memory) Remove(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := m.indexOf(id)
	if idx < 0 {
		return ErrNotFound
	}
	if m.materials[idx].Locked {
		return ErrLocked
	}

	m.materials = append(m.materials[:idx], m.materials[idx+1:]...)
	m.renumber()
	return nil
}

// Replace swaps the whole catalog for the given specs, assigning fresh
// identities and priorities in slice order.
func (m *Memory) Replace(specs []Spec) error {
	if len(specs) == 0 {
		return ErrEmptyCatalog
	}

	materials := make([]solver.Material, 0, len(specs))
	seen := make(map[string]struct{}, len(specs))
	for i, spec := range specs {
		name := strings.TrimSpace(spec.Name)
		if err := validate(name, spec.Density); err != nil {
			return err
		}
		key := strings.ToLower(name)
		if _, dup := seen[key]; dup {
			return ErrDuplicateName
		}
		seen[key] = struct{}{}

		materials = append(materials, solver.Material{
			ID:       uuid.NewString(),
			Name:     name,
			Density:  spec.Density,
			Priority: i + 1,
			Locked:   spec.Locked,
		})
	}

	m.mu.Lock()
	m.materials = materials
	m.mu.Unlock()
	return nil
}

func (m *Memory) indexOf(id string) int {
	for i, material := range m.materials {
		if material.ID == id {
			return i
		}
	}
	return -1
}

func (m *Memory) nameTaken(name, excludeID string) bool {
	for _, material := range m.materials {
		if material.ID != excludeID && strings.EqualFold(material.Name, name) {
			return true
		}
	}
	return false
}

// renumber reassigns contiguous priorities from 1. The backing slice is
// kept in priority order by every mutation, so position is priority.
func (m *Memory) renumber() {
	for i := range m.materials {
		m.materials[i].Priority = i + 1
	}
}

func validate(name string, density float64) error {
	if name == "" || density <= 0 || math.IsNaN(density) || math.IsInf(density, 0) {
		return ErrInvalidMaterial
	}
	return nil
}
