package analysis

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Uncertainty holds the per-sample decomposition of predictive uncertainty.
// Total is the entropy of the mean prediction, Aleatoric is the expected
// entropy of the individual draws, and Epistemic is their difference (the
// mutual information between the prediction and the draw).
type Uncertainty struct {
	Total     []float64
	Aleatoric []float64
	Epistemic []float64
}

// ComputeUncertainty decomposes the uncertainty of every sample in the stack,
// in nats.
func ComputeUncertainty(a Array) (Uncertainty, error) {
	return decompose("ComputeUncertainty", a, 1)
}

// ComputeUncertaintyBase is ComputeUncertainty with entropies expressed in
// the given logarithm base. Base 2 gives bits, so a uniform binary
// prediction has a total uncertainty of exactly 1.
func ComputeUncertaintyBase(a Array, base float64) (Uncertainty, error) {
	if !(base > 0) || base == 1 || math.IsInf(base, 0) {
		return Uncertainty{}, &DomainError{Param: "logarithm base", Value: base}
	}

	return decompose("ComputeUncertaintyBase", a, 1/math.Log(base))
}

func decompose(op string, a Array, scale float64) (Uncertainty, error) {
	s, err := asStack(op, a)
	if err != nil {
		return Uncertainty{}, err
	}

	out := Uncertainty{
		Total:     make([]float64, s.samples),
		Aleatoric: make([]float64, s.samples),
		Epistemic: make([]float64, s.samples),
	}

	mean := s.mean()
	for i := 0; i < s.samples; i++ {
		// stat.Entropy uses the natural log and treats 0*log(0) as 0
		total := stat.Entropy(mean.RawRowView(i))

		var ale float64
		for d := 0; d < s.draws; d++ {
			ale += stat.Entropy(s.draw(i, d))
		}
		ale /= float64(s.draws)

		out.Total[i] = scale * total
		out.Aleatoric[i] = scale * ale
		out.Epistemic[i] = out.Total[i] - out.Aleatoric[i]
	}

	return out, nil
}
