package analysis

import (
	"gonum.org/v1/gonum/floats"
)

// SweepPoint is the outcome of one rule in a threshold sweep.
type SweepPoint struct {
	Rule      Rule
	Confusion Confusion
	Metrics   Metrics
}

// Sweep evaluates each rule in turn over the same predictions.
func Sweep(yTrue, yPred []int, scores []float64, rules []Rule, idx []int) []SweepPoint {
	out := make([]SweepPoint, 0, len(rules))
	for _, rule := range rules {
		c := ConfusionMatrixRej(yTrue, yPred, scores, rule, idx)
		out = append(out, SweepPoint{
			Rule:      rule,
			Confusion: c,
			Metrics:   c.Metrics(),
		})
	}

	return out
}

// Fractions returns steps Relative rules evenly spaced over [0, 1].
func Fractions(steps int) []Rule {
	if steps < 2 {
		return []Rule{Relative(0)}
	}

	out := make([]Rule, 0, steps)
	for _, v := range floats.Span(make([]float64, steps), 0, 1) {
		out = append(out, Relative(v))
	}

	return out
}

// Cutoffs returns steps Absolute rules evenly spaced between the smallest and
// largest score.
func Cutoffs(scores []float64, steps int) []Rule {
	if len(scores) == 0 {
		return nil
	}

	lo, hi := floats.Min(scores), floats.Max(scores)
	if steps < 2 || lo == hi {
		return []Rule{Absolute(lo)}
	}

	out := make([]Rule, 0, steps)
	for _, v := range floats.Span(make([]float64, steps), lo, hi) {
		out = append(out, Absolute(v))
	}

	return out
}
