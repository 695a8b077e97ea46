package analyze

import (
	"math"

	"github.com/joeycumines/go-desim/numeric"
)

// NumReplicationsDetector decides, after each completed replication, whether
// enough replications have run — by a fixed count, a fixed wall-clock/
// simulated duration, or Banks (2005)'s CI-driven iterative formula.
type NumReplicationsDetector interface {
	// Observe is called once per completed replication with the current
	// grand-mean estimate and sample standard deviation across replications
	// performed so far, and the number of replications performed so far.
	Observe(estimate, stddev float64, numReplications int)
	// Detected reports whether enough replications have been performed to
	// meet the target.
	Detected() bool
	// Aborted reports whether the detector exceeded r_max without the
	// estimate converging.
	Aborted() bool
	// RequiredReplications returns the current estimate of replications
	// required (R), which may still change as more data arrives for the
	// Banks-2005 variant.
	RequiredReplications() int
	Reset()
}

// FixedCountDetector requires exactly N completed replications.
type FixedCountDetector struct {
	target    int
	performed int
}

// NewFixedCountDetector returns a [NumReplicationsDetector] that is
// satisfied once n replications have completed.
func NewFixedCountDetector(n int) *FixedCountDetector {
	return &FixedCountDetector{target: n}
}

func (d *FixedCountDetector) Observe(_, _ float64, numReplications int) {
	d.performed = numReplications
}
func (d *FixedCountDetector) Detected() bool             { return d.performed >= d.target }
func (d *FixedCountDetector) Aborted() bool               { return false }
func (d *FixedCountDetector) RequiredReplications() int   { return d.target }
func (d *FixedCountDetector) Reset()                       { d.performed = 0 }

// FixedDurationDetector requires replications to continue until the sum of
// simulated replication durations reaches a target. It does not measure
// durations itself: Observe ignores its arguments, and the detector reports
// Detected only after a caller that tracks cumulative duration calls
// MarkSatisfied.
type FixedDurationDetector struct {
	satisfied bool
}

// NewFixedDurationDetector returns a [NumReplicationsDetector] satisfied the
// first time the caller reports it via MarkSatisfied.
func NewFixedDurationDetector() *FixedDurationDetector {
	return &FixedDurationDetector{}
}

// MarkSatisfied marks the detector satisfied. No engine in this module calls
// it; the caller that tracks cumulative simulated duration across
// replications does.
func (d *FixedDurationDetector) MarkSatisfied() { d.satisfied = true }

func (d *FixedDurationDetector) Observe(_, _ float64, _ int)    {}
func (d *FixedDurationDetector) Detected() bool                 { return d.satisfied }
func (d *FixedDurationDetector) Aborted() bool                   { return false }
func (d *FixedDurationDetector) RequiredReplications() int       { return -1 }
func (d *FixedDurationDetector) Reset()                           { d.satisfied = false }

// Banks2005Detector implements the Banks (2005) confidence-interval-driven
// iterative formula for the required number of replications: starting from
// R0 = ceil((z_{1-alpha/2} * s / eps)^2), iterate
// R <- ceil((t_{1-alpha/2, R-1} * s / eps)^2) until R stabilizes or r_max is
// hit, where eps is target relative precision times the current estimate.
type Banks2005Detector struct {
	confidenceLevel float64
	relativePrecision float64
	rMin, rMax      int

	studentT numeric.StudentT

	rCurrent  int
	detected  bool
	aborted   bool
	firstCall bool
}

// NewBanks2005Detector constructs a [Banks2005Detector].
func NewBanks2005Detector(confidenceLevel, relativePrecision float64, rMin, rMax int, studentT numeric.StudentT) *Banks2005Detector {
	if studentT == nil {
		studentT = numeric.NewStudentT()
	}
	return &Banks2005Detector{
		confidenceLevel:   confidenceLevel,
		relativePrecision: relativePrecision,
		rMin:              rMin,
		rMax:              rMax,
		studentT:          studentT,
		firstCall:         true,
	}
}

func (d *Banks2005Detector) Observe(estimate, stddev float64, numReplications int) {
	if numReplications < 2 || estimate == 0 {
		d.rCurrent = d.rMin
		d.firstCall = false
		return
	}
	alpha := 1 - d.confidenceLevel
	eps := d.relativePrecision * math.Abs(estimate)
	if eps == 0 {
		d.detected = numReplications >= d.rMin
		return
	}

	z := d.studentT.Quantile(alpha, 1e9)
	r := int(math.Ceil(math.Pow(z*stddev/eps, 2)))

	for iter := 0; iter < 50; iter++ {
		if r < 2 {
			r = 2
		}
		t := d.studentT.Quantile(alpha, float64(r-1))
		next := int(math.Ceil(math.Pow(t*stddev/eps, 2)))
		if next == r {
			break
		}
		r = next
	}
	if r < d.rMin {
		r = d.rMin
	}
	d.rCurrent = r
	d.firstCall = false

	if numReplications >= r {
		d.detected = true
		return
	}
	if d.rMax > 0 && numReplications >= d.rMax {
		d.aborted = true
	}
}

func (d *Banks2005Detector) Detected() bool             { return d.detected }
func (d *Banks2005Detector) Aborted() bool               { return d.aborted }
func (d *Banks2005Detector) RequiredReplications() int   { return d.rCurrent }
func (d *Banks2005Detector) Reset() {
	d.rCurrent = 0
	d.detected = false
	d.aborted = false
	d.firstCall = true
}
