package deconflict

import (
	"fmt"
	"math"
)

// Waypoint is one planned position on a mission, timestamped in seconds since
// the mission epoch.
type Waypoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
	T float64 `json:"t"`
}

// Mission is a drone's planned path as an ordered sequence of timestamped
// waypoints. Waypoints must be strictly increasing in T and there must be at
// least two of them; see Validate. Missions are immutable inputs — nothing in
// this package mutates them.
type Mission struct {
	DroneID   string     `json:"drone_id"`
	Waypoints []Waypoint `json:"waypoints"`
}

// StartT returns the timestamp of the first waypoint.
func (m Mission) StartT() float64 { return m.Waypoints[0].T }

// EndT returns the timestamp of the last waypoint.
func (m Mission) EndT() float64 { return m.Waypoints[len(m.Waypoints)-1].T }

// Validate checks the mission invariants: at least two waypoints and strictly
// increasing timestamps. Two consecutive waypoints sharing a timestamp are
// reported as ErrDegenerateSegment, out-of-order timestamps as
// ErrInvalidMission.
func (m Mission) Validate() error {
	if len(m.Waypoints) < 2 {
		return fmt.Errorf("%w: drone %q has %d waypoints, need at least 2",
			ErrInvalidMission, m.DroneID, len(m.Waypoints))
	}
	for i := 1; i < len(m.Waypoints); i++ {
		prev, cur := m.Waypoints[i-1].T, m.Waypoints[i].T
		if cur == prev {
			return fmt.Errorf("%w: drone %q waypoints %d and %d share timestamp %g",
				ErrDegenerateSegment, m.DroneID, i-1, i, cur)
		}
		if cur < prev {
			return fmt.Errorf("%w: drone %q waypoint %d timestamp %g precedes waypoint %d timestamp %g",
				ErrInvalidMission, m.DroneID, i, cur, i-1, prev)
		}
	}
	return nil
}

// Position is a location without a timestamp: an untimed route point when
// building a mission from a time window, or a reported conflict location.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// MissionFromWindow builds a mission from untimed positions and a mission time
// window, assigning each waypoint a timestamp proportional to the cumulative
// path distance flown so far. A path with zero total distance falls back to
// equal time spacing. This mirrors how operators commonly plan: a route plus a
// takeoff/landing window, with constant ground speed assumed in between.
func MissionFromWindow(droneID string, positions []Position, startT, endT float64) (Mission, error) {
	if len(positions) < 2 {
		return Mission{}, fmt.Errorf("%w: drone %q has %d positions, need at least 2",
			ErrInvalidMission, droneID, len(positions))
	}
	if endT <= startT {
		return Mission{}, fmt.Errorf("%w: drone %q time window [%g, %g] has no duration",
			ErrInvalidMission, droneID, startT, endT)
	}

	duration := endT - startT

	total := 0.0
	for i := 1; i < len(positions); i++ {
		total += dist(positions[i-1], positions[i])
	}

	wps := make([]Waypoint, len(positions))
	if total == 0 {
		// Hovering route: spread the waypoints evenly across the window.
		n := float64(len(positions) - 1)
		for i, p := range positions {
			wps[i] = Waypoint{X: p.X, Y: p.Y, Z: p.Z, T: startT + duration*float64(i)/n}
		}
	} else {
		flown := 0.0
		for i, p := range positions {
			if i > 0 {
				flown += dist(positions[i-1], p)
			}
			wps[i] = Waypoint{X: p.X, Y: p.Y, Z: p.Z, T: startT + duration*flown/total}
		}
	}

	m := Mission{DroneID: droneID, Waypoints: wps}
	if err := m.Validate(); err != nil {
		// Repeated consecutive positions collapse onto one timestamp.
		return Mission{}, err
	}
	return m, nil
}

func dist(a, b Position) float64 {
	dx, dy, dz := a.X-b.X, a.Y-b.Y, a.Z-b.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}
