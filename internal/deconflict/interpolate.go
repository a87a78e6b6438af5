package deconflict

import (
	"fmt"
	"iter"
)

// Sample is one interpolated position at one instant on a drone's path.
// Samples are derived values: produced in bulk by Trajectory, consumed by the
// alignment and evaluation stages, and discarded once aggregation completes.
type Sample struct {
	X, Y, Z float64
	T       float64
	DroneID string
}

// Trajectory converts a mission into a lazy, finite, restartable sequence of
// samples covering [StartT, EndT] at the given step. The sequence walks a step
// grid anchored at the mission start and additionally emits every waypoint
// timestamp exactly, so no segment endpoint is skipped and the interpolated
// position at a waypoint's timestamp is that waypoint's position with no
// drift. Positions inside a segment are linear interpolations.
//
// The mission is validated before the sequence is built: a non-positive step
// returns ErrInvalidParameter, a zero-duration segment ErrDegenerateSegment.
// The returned sequence itself is pure and can be ranged over any number of
// times.
func Trajectory(m Mission, step float64) (iter.Seq[Sample], error) {
	if step <= 0 {
		return nil, fmt.Errorf("%w: step %g must be > 0", ErrInvalidParameter, step)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}

	return func(yield func(Sample) bool) {
		start, end := m.StartT(), m.EndT()
		seg := 0
		k := 0 // index of the next grid point to consider
		t := start
		for {
			for m.Waypoints[seg+1].T < t {
				seg++
			}
			if !yield(m.sampleAt(seg, t)) {
				return
			}
			if t >= end {
				return
			}

			// Next sample time: the first grid point strictly after t, unless
			// a waypoint comes sooner. Grid points are computed from the
			// anchor rather than accumulated so step error cannot drift over
			// long missions. The waypoint clamp must look past waypoints at or
			// before t, or a sample landing on a segment boundary would repeat
			// forever; t < end guarantees a later waypoint exists.
			for start+float64(k)*step <= t {
				k++
			}
			next := start + float64(k)*step
			for m.Waypoints[seg+1].T <= t {
				seg++
			}
			if wp := m.Waypoints[seg+1].T; wp < next {
				next = wp
			}
			if next > end {
				next = end
			}
			t = next
		}
	}, nil
}

// sampleAt interpolates within segment seg at time t. Waypoint timestamps are
// matched exactly so segment boundaries carry no floating-point drift.
func (m Mission) sampleAt(seg int, t float64) Sample {
	a, b := m.Waypoints[seg], m.Waypoints[seg+1]
	switch t {
	case a.T:
		return Sample{X: a.X, Y: a.Y, Z: a.Z, T: t, DroneID: m.DroneID}
	case b.T:
		return Sample{X: b.X, Y: b.Y, Z: b.Z, T: t, DroneID: m.DroneID}
	}
	r := (t - a.T) / (b.T - a.T)
	return Sample{
		X:       a.X + r*(b.X-a.X),
		Y:       a.Y + r*(b.Y-a.Y),
		Z:       a.Z + r*(b.Z-a.Z),
		T:       t,
		DroneID: m.DroneID,
	}
}

// PositionAt returns the mission's interpolated position at time t, clamped
// to the mission's time window. A convenience for probing a single instant
// without materializing a trajectory; assumes the mission has been validated.
func PositionAt(m Mission, t float64) Position {
	if t <= m.StartT() {
		w := m.Waypoints[0]
		return Position{X: w.X, Y: w.Y, Z: w.Z}
	}
	if t >= m.EndT() {
		w := m.Waypoints[len(m.Waypoints)-1]
		return Position{X: w.X, Y: w.Y, Z: w.Z}
	}
	seg := 0
	for m.Waypoints[seg+1].T < t {
		seg++
	}
	s := m.sampleAt(seg, t)
	return Position{X: s.X, Y: s.Y, Z: s.Z}
}
