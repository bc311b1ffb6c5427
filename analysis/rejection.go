package analysis

import (
	"fmt"
	"math"
	"sort"
)

// A Rule decides which samples to reject (abstain on) given a score per
// sample, where a higher score means a less trustworthy prediction.
type Rule interface {
	// Reject reports, for each position listed in idx, whether that sample
	// is rejected. The result is parallel to idx.
	Reject(scores []float64, idx []int) []bool

	// Threshold is the rule's numeric parameter.
	Threshold() float64
}

// Absolute rejects every sample whose score is at or above the threshold.
type Absolute float64

func (t Absolute) Reject(scores []float64, idx []int) []bool {
	out := make([]bool, len(idx))
	for k, i := range idx {
		out[k] = scores[i] >= float64(t)
	}
	return out
}

func (t Absolute) Threshold() float64 { return float64(t) }

func (t Absolute) String() string { return fmt.Sprintf("absolute(%g)", float64(t)) }

// Relative rejects a fixed fraction of the evaluated samples: the ceil(f*n)
// highest scores among the n samples in idx. Equal scores are ranked by
// position, lower positions being rejected first, so the rejected set is
// always exactly that size.
type Relative float64

func (f Relative) Reject(scores []float64, idx []int) []bool {
	out := make([]bool, len(idx))

	k := f.count(len(idx))
	if k == 0 {
		return out
	}

	order := make([]int, len(idx))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		ia, ib := idx[order[a]], idx[order[b]]
		sa, sb := scores[ia], scores[ib]

		// NaN scores rank below everything else.
		switch na, nb := math.IsNaN(sa), math.IsNaN(sb); {
		case na && nb:
			return ia < ib
		case na:
			return false
		case nb:
			return true
		}

		if sa != sb {
			return sa > sb
		}
		return ia < ib
	})

	for _, o := range order[:k] {
		out[o] = true
	}

	return out
}

func (f Relative) Threshold() float64 { return float64(f) }

func (f Relative) String() string { return fmt.Sprintf("relative(%g)", float64(f)) }

// count is the number of samples out of n that the fraction rejects. The
// small tolerance keeps products like 0.3*10 from rounding up to 4.
func (f Relative) count(n int) int {
	if n == 0 || !(f > 0) {
		return 0
	}
	if f >= 1 {
		return n
	}

	k := int(math.Ceil(float64(f)*float64(n) - 1e-9))
	if k > n {
		return n
	}

	return k
}

// Confusion crosses the rejection decision with prediction correctness.
type Confusion struct {
	CorRej      int
	CorNonrej   int
	IncorRej    int
	IncorNonrej int
}

func (c Confusion) Rejected() int    { return c.CorRej + c.IncorRej }
func (c Confusion) Nonrejected() int { return c.CorNonrej + c.IncorNonrej }
func (c Confusion) Correct() int     { return c.CorRej + c.CorNonrej }
func (c Confusion) Incorrect() int   { return c.IncorRej + c.IncorNonrej }
func (c Confusion) Total() int       { return c.Rejected() + c.Nonrejected() }

// NRA is the accuracy over the samples that were not rejected. It is +Inf
// when everything was rejected.
func (c Confusion) NRA() float64 {
	if c.Nonrejected() == 0 {
		return math.Inf(1)
	}

	return float64(c.CorNonrej) / float64(c.Nonrejected())
}

// CQ, the classification quality, is the share of samples handled correctly
// by the classifier-with-rejection: correct predictions kept plus incorrect
// predictions rejected. It is +Inf when there are no samples at all.
func (c Confusion) CQ() float64 {
	if c.Total() == 0 {
		return math.Inf(1)
	}

	return float64(c.CorNonrej+c.IncorRej) / float64(c.Total())
}

// RQ, the rejection quality, compares the incorrect-to-correct ratio among
// rejected samples with the same ratio over all samples. 1 means rejection
// is no better than chance. Rejecting nothing yields 1; rejecting without
// touching a single correct prediction, or rejecting when there is nothing
// incorrect to compare against, yields +Inf.
func (c Confusion) RQ() float64 {
	if c.Rejected() == 0 {
		return 1
	}
	if c.CorRej == 0 || c.Incorrect() == 0 {
		return math.Inf(1)
	}

	rejRatio := float64(c.IncorRej) / float64(c.CorRej)
	baseRatio := float64(c.Incorrect()) / float64(c.Correct())

	return rejRatio / baseRatio
}

// Metrics gathers NRA, CQ and RQ.
func (c Confusion) Metrics() Metrics {
	return Metrics{NRA: c.NRA(), CQ: c.CQ(), RQ: c.RQ()}
}

// Metrics are the rejection metrics for one rule.
type Metrics struct {
	NRA float64
	CQ  float64
	RQ  float64
}

// ConfusionMatrixRej counts correct/incorrect predictions that the rule
// rejects or keeps. If idx is nil every position is evaluated; otherwise only
// the listed positions are, and a Relative rule ranks scores within that
// subset only. yTrue, yPred and scores must have the same length.
func ConfusionMatrixRej(yTrue, yPred []int, scores []float64, rule Rule, idx []int) Confusion {
	mustSameLen(len(yTrue), len(yPred), len(scores))

	if idx == nil {
		idx = allPositions(len(yTrue))
	}

	var out Confusion
	for k, rejected := range rule.Reject(scores, idx) {
		i := idx[k]
		correct := yTrue[i] == yPred[i]

		switch {
		case correct && rejected:
			out.CorRej++
		case correct:
			out.CorNonrej++
		case rejected:
			out.IncorRej++
		default:
			out.IncorNonrej++
		}
	}

	return out
}

// ComputeMetricsRej evaluates NRA, CQ and RQ for a rule. See
// ConfusionMatrixRej for the meaning of idx.
func ComputeMetricsRej(rule Rule, yTrue, yPred []int, scores []float64, idx []int) Metrics {
	return ConfusionMatrixRej(yTrue, yPred, scores, rule, idx).Metrics()
}

// CountAbove returns how many scores are at or above the threshold.
func CountAbove(threshold float64, scores []float64) int {
	n := 0
	for _, v := range scores {
		if v >= threshold {
			n++
		}
	}
	return n
}
