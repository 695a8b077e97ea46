package stat

import "fmt"

// AnalyzableStatistic extends [Statistic] with the chunked-termination
// vocabulary needed to drive sequential output analysis: a statistic whose
// observations arrive in "chunks" (replications or batches), each chunk
// subject to transient-phase and chunk-size detection before it is folded
// into the running estimate.
type AnalyzableStatistic interface {
	Statistic

	// TargetRelativePrecision returns the relative-precision threshold that
	// must be met for TargetPrecisionReached to report true.
	TargetRelativePrecision() float64
	// MaxNumObservations returns the hard cap on observations (chunks) this
	// statistic will accept; once reached, further Collect calls are ignored
	// (the statistic stays enabled).
	MaxNumObservations() int
	// TargetPrecisionReached reports whether RelativePrecision() <=
	// TargetRelativePrecision(), given enough observations to compute a
	// finite half-width.
	TargetPrecisionReached() bool
	// ObservationComplete reports whether the current chunk (replication or
	// batch) has finished accumulating and is ready to be folded into the
	// running estimate.
	ObservationComplete() bool
	// SteadyStateEntered reports whether the transient (warm-up) phase has
	// been detected and steady-state accumulation has begun.
	SteadyStateEntered() bool
	// TransientPhaseLength returns the number of raw samples identified as
	// warm-up, or -1 if not yet determined.
	TransientPhaseLength() int
	// InitializeForExperiment resets per-chunk state at the start of a new
	// chunk (replication or batch run), while state that must persist across
	// chunks (the grand-mean accumulator, chunk-count detectors) survives.
	InitializeForExperiment()
	// FinalizeForExperiment folds the current chunk's result into the
	// running estimate and advances chunk-count detection.
	FinalizeForExperiment()
	// Refresh re-evaluates ObservationComplete/SteadyStateEntered after new
	// observations have been collected; called once per dispatch-loop
	// iteration by the owning engine.
	Refresh()
}

// Format renders s as "est ± sd — C.I. (lo, hi) at L% (r.e. p% — sample
// size: N)", with a "([[INCOMPLETE]])" suffix if the current chunk has not
// finished and "([[DISABLED]])" if the statistic is disabled.
func Format(s Statistic) string {
	est := s.Estimate()
	hw := s.HalfWidth()
	sd := s.StandardDeviation()
	lo, hi := est-hw, est+hw
	out := fmt.Sprintf(
		"%g ± %g — C.I. (%g, %g) at %g%% (r.e. %g%% — sample size: %d)",
		est, sd, lo, hi, s.ConfidenceLevel()*100, s.RelativePrecision()*100, s.NumObservations(),
	)
	if as, ok := s.(AnalyzableStatistic); ok && !as.ObservationComplete() {
		out += " ([[INCOMPLETE]])"
	}
	if !s.Enabled() {
		out += " ([[DISABLED]])"
	}
	return out
}
