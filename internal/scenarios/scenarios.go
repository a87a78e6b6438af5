// Package scenarios is the canned mission catalog used for demos and
// regression checks. Each scenario bundles a primary mission, the other
// traffic, the check configuration it was designed against, and — where the
// outcome is part of the scenario's contract — the expected safe verdict.
package scenarios

import (
	"fmt"
	"sort"

	"github.com/corvid-data/airspace.report/internal/deconflict"
)

// CatalogSafetyDistance is the separation minimum the canned scenarios were
// designed against. It is deliberately larger than the service default: the
// catalog models a conservative multi-rotor planning rule.
const CatalogSafetyDistance = 10.0

// Scenario is one canned deconfliction case.
type Scenario struct {
	ID          string                 `json:"id"`
	Description string                 `json:"description"`
	Primary     deconflict.Mission     `json:"primary"`
	Others      []deconflict.Mission   `json:"others"`
	Config      deconflict.CheckConfig `json:"config"`
	// ExpectSafe is the documented outcome, nil where the scenario is
	// exploratory rather than a regression fixture.
	ExpectSafe *bool `json:"expect_safe,omitempty"`
}

// Summary is the catalog listing entry.
type Summary struct {
	ID          string `json:"id"`
	Description string `json:"description"`
}

func boolPtr(b bool) *bool { return &b }

func catalogConfig() deconflict.CheckConfig {
	cfg := deconflict.DefaultCheckConfig()
	cfg.SafetyDistance = CatalogSafetyDistance
	return cfg
}

// windowed builds a primary mission from untimed route points and a mission
// window, the way the catalog's missions were originally planned.
func windowed(id string, startT, endT float64, points ...deconflict.Position) deconflict.Mission {
	m, err := deconflict.MissionFromWindow(id, points, startT, endT)
	if err != nil {
		panic(fmt.Sprintf("scenarios: bad catalog mission %q: %v", id, err))
	}
	return m
}

func timed(id string, wps ...deconflict.Waypoint) deconflict.Mission {
	return deconflict.Mission{DroneID: id, Waypoints: wps}
}

var catalog = map[string]Scenario{
	"no_conflict_2d": {
		ID:          "no_conflict_2d",
		Description: "No conflict scenario in 2D - all drones keep safe distances",
		Primary: windowed("primary", 0, 100,
			deconflict.Position{X: 0, Y: 0},
			deconflict.Position{X: 10, Y: 10},
			deconflict.Position{X: 20, Y: 20},
			deconflict.Position{X: 30, Y: 10}),
		Others: []deconflict.Mission{
			timed("drone_1",
				deconflict.Waypoint{X: 50, Y: 50, T: 10},
				deconflict.Waypoint{X: 60, Y: 40, T: 30},
				deconflict.Waypoint{X: 70, Y: 50, T: 50},
				deconflict.Waypoint{X: 80, Y: 60, T: 70}),
			timed("drone_2",
				deconflict.Waypoint{X: 10, Y: 40, T: 20},
				deconflict.Waypoint{X: 20, Y: 50, T: 40},
				deconflict.Waypoint{X: 30, Y: 60, T: 60},
				deconflict.Waypoint{X: 40, Y: 70, T: 80}),
		},
		Config:     catalogConfig(),
		ExpectSafe: boolPtr(true),
	},

	"spatial_conflict_2d": {
		ID:          "spatial_conflict_2d",
		Description: "Spatial conflict scenario in 2D - primary mission conflicts with drone_3",
		Primary: windowed("primary", 0, 100,
			deconflict.Position{X: 0, Y: 0},
			deconflict.Position{X: 25, Y: 25},
			deconflict.Position{X: 50, Y: 50},
			deconflict.Position{X: 75, Y: 25}),
		Others: []deconflict.Mission{
			timed("drone_3",
				deconflict.Waypoint{X: 30, Y: 30, T: 30},
				deconflict.Waypoint{X: 40, Y: 40, T: 50},
				deconflict.Waypoint{X: 50, Y: 30, T: 70},
				deconflict.Waypoint{X: 60, Y: 20, T: 90}),
			timed("drone_4",
				deconflict.Waypoint{X: 10, Y: 40, T: 20},
				deconflict.Waypoint{X: 20, Y: 50, T: 40},
				deconflict.Waypoint{X: 40, Y: 60, T: 70},
				deconflict.Waypoint{X: 60, Y: 70, T: 90}),
		},
		Config:     catalogConfig(),
		ExpectSafe: boolPtr(false),
	},

	"temporal_conflict_2d": {
		ID:          "temporal_conflict_2d",
		Description: "Temporal conflict scenario in 2D - primary and drone_5 meet in both time and space",
		Primary: windowed("primary", 0, 100,
			deconflict.Position{X: 0, Y: 0},
			deconflict.Position{X: 20, Y: 20},
			deconflict.Position{X: 40, Y: 40},
			deconflict.Position{X: 60, Y: 20}),
		Others: []deconflict.Mission{
			timed("drone_5",
				deconflict.Waypoint{X: 10, Y: 10, T: 10},
				deconflict.Waypoint{X: 30, Y: 30, T: 40},
				deconflict.Waypoint{X: 50, Y: 50, T: 70},
				deconflict.Waypoint{X: 70, Y: 70, T: 100}),
		},
		Config:     catalogConfig(),
		ExpectSafe: boolPtr(false),
	},

	"no_conflict_3d": {
		ID:          "no_conflict_3d",
		Description: "No conflict scenario in 3D - traffic separated by altitude",
		Primary: windowed("primary", 0, 100,
			deconflict.Position{X: 0, Y: 0, Z: 10},
			deconflict.Position{X: 10, Y: 10, Z: 20},
			deconflict.Position{X: 20, Y: 20, Z: 30},
			deconflict.Position{X: 30, Y: 10, Z: 40}),
		Others: []deconflict.Mission{
			timed("drone_6",
				deconflict.Waypoint{X: 5, Y: 5, Z: 40, T: 20},
				deconflict.Waypoint{X: 15, Y: 15, Z: 50, T: 40},
				deconflict.Waypoint{X: 25, Y: 25, Z: 60, T: 60},
				deconflict.Waypoint{X: 35, Y: 35, Z: 70, T: 80}),
			timed("drone_7",
				deconflict.Waypoint{X: 10, Y: 30, Z: 5, T: 30},
				deconflict.Waypoint{X: 20, Y: 40, Z: 5, T: 50},
				deconflict.Waypoint{X: 30, Y: 50, Z: 5, T: 70},
				deconflict.Waypoint{X: 40, Y: 60, Z: 5, T: 90}),
		},
		Config:     catalogConfig(),
		ExpectSafe: boolPtr(true),
	},

	"altitude_conflict_3d": {
		ID:          "altitude_conflict_3d",
		Description: "Altitude conflict scenario in 3D - primary and drone_8 converge in all three axes",
		Primary: windowed("primary", 0, 100,
			deconflict.Position{X: 0, Y: 0, Z: 10},
			deconflict.Position{X: 10, Y: 10, Z: 20},
			deconflict.Position{X: 20, Y: 20, Z: 30},
			deconflict.Position{X: 30, Y: 10, Z: 25}),
		Others: []deconflict.Mission{
			timed("drone_8",
				deconflict.Waypoint{X: 15, Y: 15, Z: 20, T: 40},
				deconflict.Waypoint{X: 25, Y: 25, Z: 25, T: 60},
				deconflict.Waypoint{X: 35, Y: 35, Z: 30, T: 80},
				deconflict.Waypoint{X: 45, Y: 45, Z: 35, T: 100}),
		},
		Config:     catalogConfig(),
		ExpectSafe: boolPtr(false),
	},

	"complex_scenario": {
		ID:          "complex_scenario",
		Description: "Complex scenario with multiple potential conflicts in 3D space and time",
		Primary: windowed("primary", 0, 200,
			deconflict.Position{X: 0, Y: 0, Z: 20},
			deconflict.Position{X: 20, Y: 20, Z: 30},
			deconflict.Position{X: 40, Y: 40, Z: 40},
			deconflict.Position{X: 60, Y: 20, Z: 30},
			deconflict.Position{X: 80, Y: 0, Z: 20}),
		Others: []deconflict.Mission{
			timed("drone_9",
				deconflict.Waypoint{X: 10, Y: 10, Z: 10, T: 20},
				deconflict.Waypoint{X: 30, Y: 30, Z: 20, T: 60},
				deconflict.Waypoint{X: 50, Y: 50, Z: 30, T: 100},
				deconflict.Waypoint{X: 70, Y: 70, Z: 40, T: 140},
				deconflict.Waypoint{X: 90, Y: 90, Z: 50, T: 180}),
			timed("drone_10",
				deconflict.Waypoint{X: 80, Y: 10, Z: 30, T: 40},
				deconflict.Waypoint{X: 60, Y: 30, Z: 35, T: 80},
				deconflict.Waypoint{X: 40, Y: 50, Z: 40, T: 120},
				deconflict.Waypoint{X: 20, Y: 70, Z: 45, T: 160}),
			timed("drone_11",
				deconflict.Waypoint{X: 50, Y: 0, Z: 25, T: 50},
				deconflict.Waypoint{X: 40, Y: 20, Z: 35, T: 90},
				deconflict.Waypoint{X: 30, Y: 40, Z: 45, T: 130},
				deconflict.Waypoint{X: 20, Y: 60, Z: 55, T: 170}),
		},
		Config:     catalogConfig(),
		ExpectSafe: boolPtr(false),
	},
}

// Get returns the scenario with the given ID.
func Get(id string) (Scenario, bool) {
	s, ok := catalog[id]
	return s, ok
}

// List returns catalog summaries sorted by ID.
func List() []Summary {
	out := make([]Summary, 0, len(catalog))
	for _, s := range catalog {
		out = append(out, Summary{ID: s.ID, Description: s.Description})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
