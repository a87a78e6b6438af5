package deconflict

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// Verdict classifies one aligned sample pair against the safety distance.
type Verdict struct {
	Conflict   bool
	Separation float64
}

func (s Sample) vec() r3.Vec {
	return r3.Vec{X: s.X, Y: s.Y, Z: s.Z}
}

// Separation returns the Euclidean 3-D distance between the pair's positions.
func Separation(p SamplePair) float64 {
	return r3.Norm(r3.Sub(p.A.vec(), p.B.vec()))
}

// midpoint returns the point halfway between the pair's positions, reported as
// the location of a conflict.
func midpoint(p SamplePair) Position {
	m := r3.Scale(0.5, r3.Add(p.A.vec(), p.B.vec()))
	return Position{X: m.X, Y: m.Y, Z: m.Z}
}

// Evaluate computes the pair's separation and classifies it against the
// safety distance. The comparison is strict: a pair exactly at the threshold
// is clear, so tangential boundary passes are not flagged as violations.
func Evaluate(p SamplePair, safetyDistance float64) (Verdict, error) {
	if safetyDistance <= 0 {
		return Verdict{}, fmt.Errorf("%w: safety_distance %g must be > 0",
			ErrInvalidParameter, safetyDistance)
	}
	sep := Separation(p)
	return Verdict{Conflict: sep < safetyDistance, Separation: sep}, nil
}
