package geometry

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Direction is the dominant signed axis of a face normal
type Direction uint8

const (
	PlusX Direction = iota
	MinusX
	PlusY
	MinusY
	PlusZ
	MinusZ
)

func (d Direction) String() string {
	switch d {
	case PlusX:
		return "+X"
	case MinusX:
		return "-X"
	case PlusY:
		return "+Y"
	case MinusY:
		return "-Y"
	case PlusZ:
		return "+Z"
	case MinusZ:
		return "-Z"
	default:
		panic(fmt.Errorf("invalid direction %d", d))
	}
}

// SemanticName is the region base name used for faces pointing along d
func (d Direction) SemanticName() string {
	switch d {
	case PlusX:
		return "Cap_Right"
	case MinusX:
		return "Cap_Left"
	case PlusY:
		return "Cap_Front"
	case MinusY:
		return "Cap_Back"
	case PlusZ:
		return "Cap_Upper"
	case MinusZ:
		return "Cap_Lower"
	default:
		panic(fmt.Errorf("invalid direction %d", d))
	}
}

// ParseDirection is the inverse of String
func ParseDirection(s string) (Direction, error) {
	for d := PlusX; d <= MinusZ; d++ {
		if d.String() == s {
			return d, nil
		}
	}
	return 0, fmt.Errorf("unknown direction %q", s)
}

// Classify returns the axis of the largest normal component. Ties go to Z,
// then Y, then X.
func Classify(n r3.Vec) Direction {
	ax, ay, az := math.Abs(n.X), math.Abs(n.Y), math.Abs(n.Z)
	switch {
	case az >= ax && az >= ay:
		if n.Z > 0 {
			return PlusZ
		}
		return MinusZ
	case ay >= ax:
		if n.Y > 0 {
			return PlusY
		}
		return MinusY
	default:
		if n.X > 0 {
			return PlusX
		}
		return MinusX
	}
}
