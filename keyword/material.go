package keyword

import (
	"fmt"
	"sort"
	"strings"
)

// Material is an isotropic elastic material in SI units
type Material struct {
	ID      int
	Title   string
	Density float64 // kg/m^3
	Youngs  float64 // Pa
	Poisson float64
}

var presets = map[string]Material{
	"steel":    {Title: "Steel", Density: 7850, Youngs: 2e11, Poisson: 0.3},
	"aluminum": {Title: "Aluminum", Density: 2700, Youngs: 6.9e10, Poisson: 0.33},
	"cfrp":     {Title: "CFRP", Density: 1600, Youngs: 1.35e11, Poisson: 0.3},
}

// DefaultMaterial is used for bodies without a bound material
func DefaultMaterial() Material { return presets["steel"] }

// Preset looks a material up by case insensitive name
func Preset(name string) (Material, error) {
	m, ok := presets[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Material{}, fmt.Errorf("unknown material preset %q, known: %s",
			name, strings.Join(PresetNames(), ", "))
	}
	return m, nil
}

func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for n := range presets {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Validate rejects non-physical constants
func (m Material) Validate() error {
	if m.Density <= 0 || m.Youngs <= 0 || m.Poisson < 0 || m.Poisson >= 0.5 {
		return fmt.Errorf("material %q: density, modulus and Poisson ratio out of range", m.Title)
	}
	return nil
}
