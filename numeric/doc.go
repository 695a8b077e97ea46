// Package numeric defines the narrow capability interfaces the kernel and
// output-analysis packages consume as external collaborators, together with
// one reference implementation of each: a probability distribution, a
// uniform random source, a Student-t quantile function, an
// orthogonal-polynomial least-squares fitter, and the Heidelberger-Welch
// spectral variance estimator that sits on top of the polynomial fitter.
//
// None of the interfaces here are meant to be the "right" numerical library
// for a production statistics package — this module deliberately treats the
// probability-distribution library, the RNG, and the numerical helpers
// (orthogonal polynomial fitting, periodograms, Student-t quantiles) as
// pluggable collaborators rather than core concerns. The reference
// implementations exist so the rest of the module is runnable end-to-end and
// testable, and so that a caller who already has a preferred distribution/
// RNG/stats package can swap it in behind the same narrow interfaces
// (Distribution's Sample and Quantile, RNG's NextUniform, StudentT's
// Quantile).
package numeric
