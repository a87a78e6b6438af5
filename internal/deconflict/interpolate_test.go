package deconflict

import (
	"errors"
	"slices"
	"testing"
)

func collect(t *testing.T, m Mission, step float64) []Sample {
	t.Helper()
	seq, err := Trajectory(m, step)
	if err != nil {
		t.Fatalf("Trajectory() error = %v", err)
	}
	return slices.Collect(seq)
}

func TestTrajectoryContinuityAtWaypoints(t *testing.T) {
	// Waypoint timestamps that do not land on the step grid must still be
	// emitted, and at exactly the waypoint's position.
	m := Mission{DroneID: "d1", Waypoints: []Waypoint{
		{X: 0, Y: 0, Z: 0, T: 0},
		{X: 7, Y: 3, Z: 1, T: 2.5},
		{X: 1, Y: 9, Z: 4, T: 7.25},
		{X: 0, Y: 0, Z: 10, T: 10},
	}}
	samples := collect(t, m, 1.0)

	for _, w := range m.Waypoints {
		i := slices.IndexFunc(samples, func(s Sample) bool { return s.T == w.T })
		if i < 0 {
			t.Fatalf("no sample at waypoint timestamp %g", w.T)
		}
		s := samples[i]
		if s.X != w.X || s.Y != w.Y || s.Z != w.Z {
			t.Errorf("sample at t=%g = (%g, %g, %g), want waypoint (%g, %g, %g)",
				w.T, s.X, s.Y, s.Z, w.X, w.Y, w.Z)
		}
	}
}

func TestTrajectoryMonotonicAndSpansWindow(t *testing.T) {
	m := Mission{DroneID: "d1", Waypoints: []Waypoint{
		{X: 0, T: 1.5},
		{X: 10, T: 4.2},
		{X: 20, T: 11},
	}}
	samples := collect(t, m, 1.0)

	if got := samples[0].T; got != m.StartT() {
		t.Errorf("first sample T = %g, want %g", got, m.StartT())
	}
	if got := samples[len(samples)-1].T; got != m.EndT() {
		t.Errorf("last sample T = %g, want %g", got, m.EndT())
	}
	for i := 1; i < len(samples); i++ {
		if samples[i].T <= samples[i-1].T {
			t.Fatalf("samples not strictly increasing at %d: %g then %g",
				i, samples[i-1].T, samples[i].T)
		}
	}
}

func TestTrajectoryAdvancesPastInteriorWaypoints(t *testing.T) {
	// A sample landing exactly on an interior waypoint must move on into the
	// next segment instead of re-emitting the boundary forever.
	m := Mission{DroneID: "d1", Waypoints: []Waypoint{
		{X: 0, T: 0},
		{X: 5, T: 5},
		{X: 10, T: 10},
	}}
	got := sampleTimes(collect(t, m, 1.0))
	want := []float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	if !slices.Equal(got, want) {
		t.Fatalf("sample times = %v, want %v", got, want)
	}

	// Several waypoints inside a single grid interval are each emitted once,
	// in order, before the grid resumes.
	m = Mission{DroneID: "d1", Waypoints: []Waypoint{
		{X: 0, T: 0},
		{X: 1, T: 0.5},
		{X: 2, T: 0.7},
		{X: 3, T: 2},
	}}
	got = sampleTimes(collect(t, m, 1.0))
	want = []float64{0, 0.5, 0.7, 1, 2}
	if !slices.Equal(got, want) {
		t.Fatalf("sample times = %v, want %v", got, want)
	}
}

func sampleTimes(samples []Sample) []float64 {
	out := make([]float64, len(samples))
	for i, s := range samples {
		out[i] = s.T
	}
	return out
}

func TestTrajectoryLinearInterpolation(t *testing.T) {
	m := Mission{DroneID: "d1", Waypoints: []Waypoint{
		{X: 0, Y: 0, Z: 0, T: 0},
		{X: 10, Y: 20, Z: 40, T: 10},
	}}
	samples := collect(t, m, 1.0)
	if len(samples) != 11 {
		t.Fatalf("len(samples) = %d, want 11", len(samples))
	}
	s := samples[5]
	if s.X != 5 || s.Y != 10 || s.Z != 20 {
		t.Errorf("midpoint sample = (%g, %g, %g), want (5, 10, 20)", s.X, s.Y, s.Z)
	}
}

func TestTrajectoryStepLargerThanMission(t *testing.T) {
	m := Mission{DroneID: "d1", Waypoints: []Waypoint{
		{X: 0, T: 0},
		{X: 10, T: 10},
	}}
	samples := collect(t, m, 100)
	if len(samples) != 2 {
		t.Fatalf("len(samples) = %d, want start and end only", len(samples))
	}
	if samples[0].T != 0 || samples[1].T != 10 {
		t.Errorf("sample times = %g, %g, want 0, 10", samples[0].T, samples[1].T)
	}
}

func TestTrajectoryRestartable(t *testing.T) {
	m := Mission{DroneID: "d1", Waypoints: []Waypoint{
		{X: 0, T: 0},
		{X: 10, T: 10},
	}}
	seq, err := Trajectory(m, 1.0)
	if err != nil {
		t.Fatalf("Trajectory() error = %v", err)
	}
	first := slices.Collect(seq)
	second := slices.Collect(seq)
	if !slices.Equal(first, second) {
		t.Error("second enumeration differs from first")
	}
}

func TestTrajectoryErrors(t *testing.T) {
	valid := Mission{DroneID: "d1", Waypoints: []Waypoint{
		{X: 0, T: 0},
		{X: 10, T: 10},
	}}

	if _, err := Trajectory(valid, 0); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("step 0: error = %v, want ErrInvalidParameter", err)
	}
	if _, err := Trajectory(valid, -1); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("step -1: error = %v, want ErrInvalidParameter", err)
	}

	degenerate := Mission{DroneID: "d1", Waypoints: []Waypoint{
		{X: 0, T: 0},
		{X: 5, T: 0},
	}}
	if _, err := Trajectory(degenerate, 1); !errors.Is(err, ErrDegenerateSegment) {
		t.Errorf("degenerate segment: error = %v, want ErrDegenerateSegment", err)
	}
}

func TestPositionAtClampsToWindow(t *testing.T) {
	m := Mission{DroneID: "d1", Waypoints: []Waypoint{
		{X: 0, T: 5},
		{X: 10, T: 15},
	}}
	if p := PositionAt(m, 0); p.X != 0 {
		t.Errorf("PositionAt before window = %+v, want first waypoint", p)
	}
	if p := PositionAt(m, 100); p.X != 10 {
		t.Errorf("PositionAt after window = %+v, want last waypoint", p)
	}
	if p := PositionAt(m, 10); p.X != 5 {
		t.Errorf("PositionAt(10).X = %g, want 5", p.X)
	}
}
