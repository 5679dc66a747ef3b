package keyword

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidUnits = errors.New("invalid unit system")
	ErrSegmentNodes = errors.New("segment has more than four nodes")
)

// Units converts SI model values into the unit system of the deck
type Units struct {
	Name    string
	Length  float64 // Multiplier applied to meters
	Density float64 // Multiplier applied to kg/m^3
	Stress  float64 // Multiplier applied to Pa
}

var (
	// MM is millimetre, tonne, second, as used by most LS-DYNA decks
	MM = Units{Name: "mm-t-s", Length: 1e3, Density: 1e-12, Stress: 1e-6}
	// SI is metre, kilogram, second
	SI = Units{Name: "m-kg-s", Length: 1, Density: 1, Stress: 1}
)

// ParseUnits accepts "mm", "mm-t-s", "mm-tonne-s", "si", "m" and "m-kg-s"
func ParseUnits(name string) (Units, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "mm", "mm-t-s", "mm-tonne-s":
		return MM, nil
	case "si", "m", "m-kg-s":
		return SI, nil
	}
	return Units{}, fmt.Errorf("%w: %q", ErrInvalidUnits, name)
}

// Validate rejects unit systems with non-positive factors
func (u Units) Validate() error {
	if u.Length <= 0 || u.Density <= 0 || u.Stress <= 0 {
		return fmt.Errorf("%w: %+v", ErrInvalidUnits, u)
	}
	return nil
}
