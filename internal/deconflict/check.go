package deconflict

import (
	"context"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"
)

// Report is the outcome of one deconfliction check. Safe is true exactly when
// Conflicts is empty. Conflicts are ordered chronologically by TStart.
type Report struct {
	Safe      bool            `json:"safe"`
	Conflicts []ConflictEvent `json:"conflicts"`
}

// CheckMission checks the primary mission against every other mission and
// reports all conflicts. Configuration and every mission are validated before
// any interpolation work; a single invalid mission fails the whole call rather
// than silently skipping a drone, since a missed drone is a safety hazard, not
// something to degrade past. No partial report is ever returned alongside an
// error.
//
// Each (primary, other) pair runs its own interpolate → align → evaluate →
// aggregate pipeline on its own goroutine; the pipelines share only immutable
// inputs, so no locking is involved. Results are joined, concatenated and
// sorted before returning. The computation is deterministic for given inputs.
func CheckMission(ctx context.Context, primary Mission, others []Mission, cfg CheckConfig) (*Report, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := primary.Validate(); err != nil {
		return nil, err
	}
	for _, o := range others {
		if err := o.Validate(); err != nil {
			return nil, err
		}
	}

	primaryTraj, err := Trajectory(primary, cfg.Step)
	if err != nil {
		return nil, err
	}

	perPair := make([][]ConflictEvent, len(others))
	g, ctx := errgroup.WithContext(ctx)
	for i, other := range others {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			traj, err := Trajectory(other, cfg.Step)
			if err != nil {
				return err
			}
			pairs := AlignedPairs(primaryTraj, traj, cfg.TimeTolerance)
			perPair[i] = AggregateConflicts(pairs, cfg.SafetyDistance)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	conflicts := []ConflictEvent{}
	for _, events := range perPair {
		conflicts = append(conflicts, events...)
	}
	slices.SortFunc(conflicts, func(a, b ConflictEvent) int {
		switch {
		case a.TStart < b.TStart:
			return -1
		case a.TStart > b.TStart:
			return 1
		}
		return strings.Compare(a.DroneB, b.DroneB)
	})

	return &Report{Safe: len(conflicts) == 0, Conflicts: conflicts}, nil
}
