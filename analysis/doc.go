// Package analysis decomposes the predictive uncertainty of classifiers that
// emit several stochastic predictions (draws) per input, such as deep
// ensembles or MC dropout, and measures what happens to accuracy when the
// most uncertain inputs are rejected.
//
// Everything here is a pure function over in-memory arrays. Inputs are never
// modified and outputs are freshly allocated, so the package is safe for
// concurrent use. Loading predictions from disk lives in the predictions
// package; rendering lives in the plotting package.
//
// The rejection metrics follow the usual definitions for classifiers with a
// reject option:
//
//	NRA = n_cor_nonrej / n_nonrej
//	CQ  = (n_cor_nonrej + n_incor_rej) / n
//	RQ  = (n_incor_rej / n_cor_rej) / (n_incor / n_cor)
//
// Degenerate denominators map to +Inf (or 1 for RQ when nothing is rejected)
// rather than NaN, so the values order correctly against finite metrics.
package analysis
