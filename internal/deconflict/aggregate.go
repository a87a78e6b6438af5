package deconflict

import "iter"

// Severity grades a conflict event by how deeply the pair penetrated the
// safety distance at its worst point.
type Severity string

const (
	SeverityCritical Severity = "critical" // worst separation below half the safety distance
	SeverityHigh     Severity = "high"     // below three quarters
	SeverityMedium   Severity = "medium"   // below the safety distance
)

func severityFor(separation, safetyDistance float64) Severity {
	switch ratio := separation / safetyDistance; {
	case ratio < 0.5:
		return SeverityCritical
	case ratio < 0.75:
		return SeverityHigh
	default:
		return SeverityMedium
	}
}

// ConflictEvent is one continuous interval during which two drones were in
// conflict. Location and MinSeparation describe the worst point of the
// encounter. Events are immutable once emitted.
type ConflictEvent struct {
	DroneA        string   `json:"drone_a"`
	DroneB        string   `json:"drone_b"`
	TStart        float64  `json:"t_start"`
	TEnd          float64  `json:"t_end"`
	Location      Position `json:"location"`
	MinSeparation float64  `json:"min_separation"`
	Severity      Severity `json:"severity"`
}

// instant is the reduced verdict for one primary-sample timestamp: when the
// aligner pairs several b samples against the same a sample, the closest
// approach decides that instant.
type instant struct {
	t        float64
	sep      float64
	location Position
}

// AggregateConflicts folds the aligned pair stream for one drone pair into
// discrete conflict events. Without this stage a dense sample grid would
// report thousands of near-duplicate single-instant conflicts per encounter.
//
// The fold is a two-state machine over instants in primary-time order:
//
//	Clear      --conflict--> InConflict   opens an event
//	InConflict --conflict--> InConflict   extends TEnd, tracks the minimum
//	InConflict --clear-----> Clear        emits the event
//
// An event still open when the stream ends is closed at the last seen
// timestamp. The machine is private to its caller, so independent drone pairs
// can aggregate concurrently with no shared state.
func AggregateConflicts(pairs iter.Seq[SamplePair], safetyDistance float64) []ConflictEvent {
	events := []ConflictEvent{}

	var (
		cur     instant
		haveCur bool

		open    bool
		current ConflictEvent
	)

	step := func(in instant) {
		conflict := in.sep < safetyDistance
		switch {
		case conflict && !open:
			open = true
			current = ConflictEvent{
				TStart:        in.t,
				TEnd:          in.t,
				Location:      in.location,
				MinSeparation: in.sep,
			}
		case conflict && open:
			current.TEnd = in.t
			if in.sep < current.MinSeparation {
				current.MinSeparation = in.sep
				current.Location = in.location
			}
		case !conflict && open:
			current.Severity = severityFor(current.MinSeparation, safetyDistance)
			events = append(events, current)
			open = false
		}
	}

	var droneA, droneB string
	for p := range pairs {
		droneA, droneB = p.A.DroneID, p.B.DroneID
		sep := Separation(p)
		if haveCur && p.A.T == cur.t {
			if sep < cur.sep {
				cur.sep = sep
				cur.location = midpoint(p)
			}
			continue
		}
		if haveCur {
			step(cur)
		}
		cur = instant{t: p.A.T, sep: sep, location: midpoint(p)}
		haveCur = true
	}
	if haveCur {
		step(cur)
	}
	if open {
		current.Severity = severityFor(current.MinSeparation, safetyDistance)
		events = append(events, current)
	}

	for i := range events {
		events[i].DroneA = droneA
		events[i].DroneB = droneB
	}
	return events
}
