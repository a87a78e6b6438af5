// Package deconflict implements strategic deconfliction for planned drone
// waypoint missions: it interpolates each mission into a dense time-stamped
// trajectory, aligns trajectories pairwise within a time tolerance, evaluates
// 3-D separation against a safety distance, and folds consecutive violations
// into discrete conflict events.
//
// The package holds no process-wide state. All inputs are immutable values
// supplied by the caller; CheckMission is the only entry point collaborators
// need.
package deconflict
