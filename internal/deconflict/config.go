package deconflict

import "fmt"

// Defaults for CheckConfig. The tolerance and safety distance are operational
// constants inherited from the planning rules this service enforces; they are
// configuration, not physics.
const (
	DefaultStep           = 1.0 // seconds between interpolated samples
	DefaultTimeTolerance  = 1.0 // seconds within which two samples count as simultaneous
	DefaultSafetyDistance = 2.0 // metres of required 3-D separation
)

// CheckConfig holds the tunable parameters for one deconfliction check.
type CheckConfig struct {
	// Step is the interpolation resolution in seconds. Must be > 0.
	Step float64 `json:"step"`
	// TimeTolerance is the maximum timestamp difference, in seconds, for two
	// samples to be compared. Must be > 0.
	TimeTolerance float64 `json:"time_tolerance"`
	// SafetyDistance is the minimum allowed 3-D separation in metres.
	// Separation exactly at the threshold is not a conflict. Must be > 0.
	SafetyDistance float64 `json:"safety_distance"`
}

// DefaultCheckConfig returns the stock configuration.
func DefaultCheckConfig() CheckConfig {
	return CheckConfig{
		Step:           DefaultStep,
		TimeTolerance:  DefaultTimeTolerance,
		SafetyDistance: DefaultSafetyDistance,
	}
}

// Validate rejects non-positive parameters before any interpolation work.
func (c CheckConfig) Validate() error {
	if c.Step <= 0 {
		return fmt.Errorf("%w: step %g must be > 0", ErrInvalidParameter, c.Step)
	}
	if c.TimeTolerance <= 0 {
		return fmt.Errorf("%w: time_tolerance %g must be > 0", ErrInvalidParameter, c.TimeTolerance)
	}
	if c.SafetyDistance <= 0 {
		return fmt.Errorf("%w: safety_distance %g must be > 0", ErrInvalidParameter, c.SafetyDistance)
	}
	return nil
}

// CheckOverrides carries optional parameter overrides from the API layer.
// Nil fields keep the default. The same JSON shape is accepted in check
// requests and stored alongside run history.
type CheckOverrides struct {
	Step           *float64 `json:"step,omitempty"`
	TimeTolerance  *float64 `json:"time_tolerance,omitempty"`
	SafetyDistance *float64 `json:"safety_distance,omitempty"`
}

// Apply overlays the non-nil overrides onto base and returns the result.
func (o CheckOverrides) Apply(base CheckConfig) CheckConfig {
	if o.Step != nil {
		base.Step = *o.Step
	}
	if o.TimeTolerance != nil {
		base.TimeTolerance = *o.TimeTolerance
	}
	if o.SafetyDistance != nil {
		base.SafetyDistance = *o.SafetyDistance
	}
	return base
}
