package analysis

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// PosNegProbs converts a [sample, draw] array of positive-class probabilities
// into a [sample, draw, 2] stack whose channels are (1-p, p).
func PosNegProbs(pos Array) (Array, error) {
	if pos.Rank() != 2 {
		return Array{}, &RankError{Op: "PosNegProbs", Want: 2, Got: pos.Rank()}
	}
	if err := pos.validate(); err != nil {
		return Array{}, err
	}

	out := make([]float64, 2*len(pos.Data))
	for i, p := range pos.Data {
		out[2*i] = 1 - p
		out[2*i+1] = p
	}

	return Array{Shape: []int{pos.Shape[0], pos.Shape[1], 2}, Data: out}, nil
}

// MeanLabel averages a stack over its draws and returns the [sample, class]
// mean prediction along with the argmax label of each sample. When several
// classes share the maximum, the lowest class index wins.
func MeanLabel(a Array) (*mat.Dense, []int, error) {
	s, err := asStack("MeanLabel", a)
	if err != nil {
		return nil, nil, err
	}

	mean := s.mean()
	labels := make([]int, s.samples)
	for i := range labels {
		labels[i] = floats.MaxIdx(mean.RawRowView(i))
	}

	return mean, labels, nil
}

// ComputeConfidence returns, per sample, the largest class probability of
// the mean prediction.
func ComputeConfidence(a Array) ([]float64, error) {
	s, err := asStack("ComputeConfidence", a)
	if err != nil {
		return nil, err
	}

	mean := s.mean()
	out := make([]float64, s.samples)
	for i := range out {
		out[i] = floats.Max(mean.RawRowView(i))
	}

	return out, nil
}

func (s stack) mean() *mat.Dense {
	// mat.NewDense panics on zero dimensions; an empty Dense is the natural
	// result for an empty stack.
	if s.samples == 0 || s.classes == 0 {
		return &mat.Dense{}
	}

	m := mat.NewDense(s.samples, s.classes, nil)
	for i := 0; i < s.samples; i++ {
		row := m.RawRowView(i)
		for d := 0; d < s.draws; d++ {
			floats.Add(row, s.draw(i, d))
		}
		floats.Scale(1/float64(s.draws), row)
	}

	return m
}
