package deconflict

import "errors"

// Sentinel errors returned by mission validation and CheckMission. Callers
// match with errors.Is; the wrapped message carries the offending mission or
// parameter.
var (
	// ErrInvalidMission indicates a mission with fewer than two waypoints or
	// waypoints whose timestamps are not strictly increasing.
	ErrInvalidMission = errors.New("invalid mission")

	// ErrDegenerateSegment indicates two consecutive waypoints sharing a
	// timestamp, leaving a segment with no duration to interpolate over.
	ErrDegenerateSegment = errors.New("degenerate segment")

	// ErrInvalidParameter indicates a non-positive step, time tolerance or
	// safety distance in the check configuration.
	ErrInvalidParameter = errors.New("invalid parameter")
)
