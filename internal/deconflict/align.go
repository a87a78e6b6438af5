package deconflict

import "iter"

// SamplePair is two temporally aligned samples from different drones. A is
// always the primary drone's sample; pairs are produced ordered by A.T.
type SamplePair struct {
	A, B Sample
}

// AlignedPairs pairs every sample from a with every sample from b whose
// timestamps differ by at most tol (inclusive). Both inputs must be
// time-ordered, which lets the pairing run as a merge-style sweep: a sliding
// window of b samples within tolerance of the current a sample, advanced as a
// advances. This stays linear in the combined sample count for evenly stepped
// trajectories instead of the quadratic cross-product.
//
// When several b samples fall within tolerance of one a sample, all of them
// are paired; severity is the evaluator's call, not the aligner's. Inputs with
// disjoint time windows simply produce no pairs.
func AlignedPairs(a, b iter.Seq[Sample], tol float64) iter.Seq[SamplePair] {
	return func(yield func(SamplePair) bool) {
		next, stop := iter.Pull(b)
		defer stop()

		pending, ok := next()
		var window []Sample
		for sa := range a {
			// Evict candidates that have fallen behind the tolerance window.
			i := 0
			for i < len(window) && sa.T-window[i].T > tol {
				i++
			}
			window = window[i:]

			// Admit b samples up to the leading edge of the window. Samples
			// already older than the trailing edge are skipped outright; a
			// future sa only moves further away from them.
			for ok && pending.T <= sa.T+tol {
				if sa.T-pending.T <= tol {
					window = append(window, pending)
				}
				pending, ok = next()
			}

			for _, sb := range window {
				if !yield(SamplePair{A: sa, B: sb}) {
					return
				}
			}
		}
	}
}
