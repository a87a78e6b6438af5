package deconflict

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lineMission(id string, from, to Waypoint) Mission {
	return Mission{DroneID: id, Waypoints: []Waypoint{from, to}}
}

func TestCheckMissionNoConflict(t *testing.T) {
	// Parallel tracks 100 units apart for the whole mission.
	primary := lineMission("primary",
		Waypoint{X: 0, Y: 0, Z: 0, T: 0},
		Waypoint{X: 10, Y: 0, Z: 0, T: 10})
	other := lineMission("drone-1",
		Waypoint{X: 0, Y: 100, Z: 0, T: 0},
		Waypoint{X: 10, Y: 100, Z: 0, T: 10})

	report, err := CheckMission(context.Background(), primary, []Mission{other}, DefaultCheckConfig())
	require.NoError(t, err)
	assert.True(t, report.Safe)
	assert.Empty(t, report.Conflicts)
	assert.NotNil(t, report.Conflicts)
}

func TestCheckMissionIdenticalPaths(t *testing.T) {
	primary := lineMission("primary",
		Waypoint{X: 0, Y: 0, Z: 0, T: 0},
		Waypoint{X: 10, Y: 0, Z: 0, T: 10})
	other := lineMission("drone-1",
		Waypoint{X: 0, Y: 0, Z: 0, T: 0},
		Waypoint{X: 10, Y: 0, Z: 0, T: 10})

	report, err := CheckMission(context.Background(), primary, []Mission{other}, DefaultCheckConfig())
	require.NoError(t, err)
	assert.False(t, report.Safe)
	require.Len(t, report.Conflicts, 1)

	ev := report.Conflicts[0]
	assert.Equal(t, "primary", ev.DroneA)
	assert.Equal(t, "drone-1", ev.DroneB)
	assert.Equal(t, 0.0, ev.TStart)
	assert.Equal(t, 10.0, ev.TEnd)
	assert.Equal(t, 0.0, ev.MinSeparation)
	assert.Equal(t, SeverityCritical, ev.Severity)
}

func TestCheckMissionAltitudeSeparation(t *testing.T) {
	primary := lineMission("primary",
		Waypoint{X: 0, Y: 0, Z: 0, T: 0},
		Waypoint{X: 10, Y: 0, Z: 0, T: 10})

	t.Run("offset below threshold conflicts", func(t *testing.T) {
		other := lineMission("drone-1",
			Waypoint{X: 0, Y: 0, Z: 1.5, T: 0},
			Waypoint{X: 10, Y: 0, Z: 1.5, T: 10})
		report, err := CheckMission(context.Background(), primary, []Mission{other}, DefaultCheckConfig())
		require.NoError(t, err)
		assert.False(t, report.Safe)
		require.NotEmpty(t, report.Conflicts)
		assert.Equal(t, 1.5, report.Conflicts[0].MinSeparation)
	})

	t.Run("offset above threshold is clear", func(t *testing.T) {
		other := lineMission("drone-1",
			Waypoint{X: 0, Y: 0, Z: 3.0, T: 0},
			Waypoint{X: 10, Y: 0, Z: 3.0, T: 10})
		report, err := CheckMission(context.Background(), primary, []Mission{other}, DefaultCheckConfig())
		require.NoError(t, err)
		assert.True(t, report.Safe)
	})
}

func TestCheckMissionDisjointTimeWindows(t *testing.T) {
	// Same corridor, but an hour apart: spatial proximity alone is not a
	// conflict.
	primary := lineMission("primary",
		Waypoint{X: 0, Y: 0, Z: 0, T: 0},
		Waypoint{X: 10, Y: 0, Z: 0, T: 10})
	other := lineMission("drone-1",
		Waypoint{X: 0, Y: 0, Z: 0, T: 3600},
		Waypoint{X: 10, Y: 0, Z: 0, T: 3610})

	report, err := CheckMission(context.Background(), primary, []Mission{other}, DefaultCheckConfig())
	require.NoError(t, err)
	assert.True(t, report.Safe)
}

func TestCheckMissionMultipleOthersSorted(t *testing.T) {
	primary := lineMission("primary",
		Waypoint{X: 0, Y: 0, Z: 0, T: 0},
		Waypoint{X: 100, Y: 0, Z: 0, T: 100})
	// Crosses the primary's path late.
	late := lineMission("drone-late",
		Waypoint{X: 80, Y: 0, Z: 0, T: 75},
		Waypoint{X: 90, Y: 0, Z: 0, T: 95})
	// Crosses early.
	early := lineMission("drone-early",
		Waypoint{X: 5, Y: 0, Z: 0, T: 0},
		Waypoint{X: 15, Y: 0, Z: 0, T: 20})

	report, err := CheckMission(context.Background(), primary, []Mission{late, early}, DefaultCheckConfig())
	require.NoError(t, err)
	assert.False(t, report.Safe)
	require.GreaterOrEqual(t, len(report.Conflicts), 2)
	for i := 1; i < len(report.Conflicts); i++ {
		assert.LessOrEqual(t, report.Conflicts[i-1].TStart, report.Conflicts[i].TStart)
	}
	assert.Equal(t, "drone-early", report.Conflicts[0].DroneB)
}

func TestCheckMissionValidationFailures(t *testing.T) {
	valid := lineMission("primary",
		Waypoint{X: 0, T: 0},
		Waypoint{X: 10, T: 10})

	t.Run("invalid config fails fast", func(t *testing.T) {
		cfg := DefaultCheckConfig()
		cfg.Step = 0
		_, err := CheckMission(context.Background(), valid, nil, cfg)
		assert.ErrorIs(t, err, ErrInvalidParameter)
	})

	t.Run("invalid primary", func(t *testing.T) {
		bad := Mission{DroneID: "primary", Waypoints: []Waypoint{{T: 0}}}
		_, err := CheckMission(context.Background(), bad, nil, DefaultCheckConfig())
		assert.ErrorIs(t, err, ErrInvalidMission)
	})

	t.Run("invalid other fails the whole call", func(t *testing.T) {
		bad := Mission{DroneID: "drone-1", Waypoints: []Waypoint{
			{T: 0}, {X: 1, T: 0},
		}}
		report, err := CheckMission(context.Background(), valid, []Mission{bad}, DefaultCheckConfig())
		assert.ErrorIs(t, err, ErrDegenerateSegment)
		assert.Nil(t, report, "no partial report on failure")
	})
}

func TestCheckMissionDeterministic(t *testing.T) {
	primary := lineMission("primary",
		Waypoint{X: 0, Y: 0, Z: 0, T: 0},
		Waypoint{X: 50, Y: 0, Z: 0, T: 50})
	others := []Mission{
		lineMission("d1", Waypoint{X: 10, Y: 1, T: 5}, Waypoint{X: 20, Y: 1, T: 25}),
		lineMission("d2", Waypoint{X: 30, Y: -1, T: 25}, Waypoint{X: 40, Y: -1, T: 45}),
		lineMission("d3", Waypoint{X: 0, Y: 500, T: 0}, Waypoint{X: 50, Y: 500, T: 50}),
	}

	first, err := CheckMission(context.Background(), primary, others, DefaultCheckConfig())
	require.NoError(t, err)
	for range 5 {
		again, err := CheckMission(context.Background(), primary, others, DefaultCheckConfig())
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestCheckMissionCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	primary := lineMission("primary", Waypoint{T: 0}, Waypoint{X: 10, T: 10})
	other := lineMission("d1", Waypoint{T: 0}, Waypoint{X: 10, T: 10})
	_, err := CheckMission(ctx, primary, []Mission{other}, DefaultCheckConfig())
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestConfigOverrides(t *testing.T) {
	step := 0.5
	safety := 5.0
	cfg := CheckOverrides{Step: &step, SafetyDistance: &safety}.Apply(DefaultCheckConfig())
	assert.Equal(t, 0.5, cfg.Step)
	assert.Equal(t, DefaultTimeTolerance, cfg.TimeTolerance)
	assert.Equal(t, 5.0, cfg.SafetyDistance)
}
