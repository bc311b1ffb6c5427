package analysis

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConcatGetIdx(t *testing.T) {
	yA := []int{10, 10, 10}
	yB := []int{20, 20, 20}
	yC := []int{30, 30, 30}

	c := ConcatGetIdx(yA, yB, yC)

	assert.Equal(t, []int{10, 10, 10, 20, 20, 20, 30, 30, 30}, c.All)
	assert.Equal(t, []int{0, 0, 0, 1, 1, 1, 2, 2, 2}, c.Source)
	require.Len(t, c.Idx, 3)
	assert.Equal(t, []int{0, 1, 2}, c.Idx[0])
	assert.Equal(t, []int{3, 4, 5}, c.Idx[1])
	assert.Equal(t, []int{6, 7, 8}, c.Idx[2])
}

func TestIdxCorrect(t *testing.T) {
	correct, incorrect := IdxCorrect(yTrueLabel, yPredLabel)
	assert.Equal(t, []int{0, 2, 3}, correct)
	assert.Equal(t, []int{1, 4}, incorrect)
}

func TestSubset(t *testing.T) {
	up := make([]float64, 10)
	down := make([]float64, 10)
	for i := range up {
		up[i] = float64(i)
		down[i] = float64(10 - i)
	}

	out := Subset([]int{0, 1, 2}, up, down)
	require.Len(t, out, 2)
	assert.Equal(t, []float64{0, 1, 2}, out[0])
	assert.Equal(t, []float64{10, 9, 8}, out[1])
}

func TestSubsetStack(t *testing.T) {
	sub, err := SubsetStack(yStack(), []int{1})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 3, 2}, sub.Shape)
	assert.Equal(t, 0.12, sub.At(0, 0, 0))
	assert.Equal(t, 0.92, sub.At(0, 2, 1))
}

var confusionCases = []struct {
	rule     Rule
	expected Confusion
}{
	{Absolute(0.45), Confusion{1, 2, 2, 0}},
	{Absolute(0.1), Confusion{3, 0, 2, 0}},
	{Absolute(0.9), Confusion{0, 3, 0, 2}},
	{Relative(0.45), Confusion{1, 2, 2, 0}},
	{Relative(0.1), Confusion{0, 3, 1, 1}},
	{Relative(0.9), Confusion{3, 0, 2, 0}},
}

func TestConfusionMatrixRej(t *testing.T) {
	for _, v := range confusionCases {
		t.Run(fmt.Sprint(v.rule), func(t *testing.T) {
			actual := ConfusionMatrixRej(yTrueLabel, yPredLabel, uncAry, v.rule, nil)
			assert.Equal(t, v.expected, actual)
			assert.Equal(t, len(yTrueLabel), actual.Total())
		})
	}
}

func TestConfusionMatrixRejEdges(t *testing.T) {
	empty := ConfusionMatrixRej(yTrueLabel, yPredLabel, uncAry, Relative(0.5), []int{})
	assert.Equal(t, Confusion{}, empty)

	none := ConfusionMatrixRej(yTrueLabel, yPredLabel, uncAry, Relative(0), nil)
	assert.Equal(t, 0, none.Rejected())

	all := ConfusionMatrixRej(yTrueLabel, yPredLabel, uncAry, Relative(1.5), nil)
	assert.Equal(t, 5, all.Rejected())

	// Relative ranking only considers the subset: of positions 0, 2 and 3
	// the highest score belongs to position 3.
	sub := ConfusionMatrixRej(yTrueLabel, yPredLabel, uncAry, Relative(0.2), []int{0, 2, 3})
	assert.Equal(t, Confusion{CorRej: 1, CorNonrej: 2}, sub)
}

func TestRelativeTies(t *testing.T) {
	scores := []float64{0.5, 0.5, 0.5, 0.5}
	rejected := Relative(0.5).Reject(scores, allPositions(4))
	assert.Equal(t, []bool{true, true, false, false}, rejected)

	// NaN never outranks a real score
	scores = []float64{math.NaN(), 0.1, 0.2}
	rejected = Relative(0.5).Reject(scores, allPositions(3))
	assert.Equal(t, []bool{false, true, true}, rejected)
}

func TestRelativeCount(t *testing.T) {
	for _, v := range []struct {
		f        Relative
		n        int
		expected int
	}{
		{0.1, 5, 1},
		{0.45, 5, 3},
		{0.9, 5, 5},
		{0.3, 10, 3},
		{0.7, 10, 7},
		{0, 10, 0},
		{-1, 10, 0},
		{1, 10, 10},
		{0.5, 0, 0},
	} {
		if actual := v.f.count(v.n); actual != v.expected {
			t.Errorf("%v of %d: got %d, expected %d", v.f, v.n, actual, v.expected)
		}
	}
}

func TestComputeMetricsRej(t *testing.T) {
	inf := math.Inf(1)
	cases := []struct {
		rule     Rule
		expected Metrics
	}{
		{Absolute(0.45), Metrics{1.0, 0.8, 3.0}},
		{Absolute(0.1), Metrics{inf, 0.4, 1.0}},
		{Absolute(0.9), Metrics{0.6, 0.6, 1.0}},
		{Relative(0.45), Metrics{1.0, 0.8, 3.0}},
		{Relative(0.1), Metrics{0.75, 0.8, inf}},
		{Relative(0.9), Metrics{inf, 0.4, 1.0}},
	}

	for _, useIdx := range []bool{false, true} {
		var idx []int
		if useIdx {
			idx = allPositions(len(yTrueLabel))
		}

		for _, v := range cases {
			t.Run(fmt.Sprintf("%v/idx=%t", v.rule, useIdx), func(t *testing.T) {
				actual := ComputeMetricsRej(v.rule, yTrueLabel, yPredLabel, uncAry, idx)
				assertMetric(t, "NRA", v.expected.NRA, actual.NRA)
				assertMetric(t, "CQ", v.expected.CQ, actual.CQ)
				assertMetric(t, "RQ", v.expected.RQ, actual.RQ)
			})
		}
	}
}

func assertMetric(t *testing.T, name string, expected, actual float64) {
	t.Helper()
	if math.IsInf(expected, 1) {
		assert.True(t, math.IsInf(actual, 1), "%s should be +Inf, is %v", name, actual)
		return
	}
	assert.InDelta(t, expected, actual, 1e-9, "%s", name)
}

func TestMetricsEdgeNRA(t *testing.T) {
	m := ComputeMetricsRej(Absolute(0.1), []int{0, 1, 1, 0}, []int{0, 1, 1, 1}, []float64{0.2, 0.15, 0.3, 0.7}, nil)
	assert.True(t, math.IsInf(m.NRA, 1), "NRA should be +Inf if all observations are rejected, is %v", m.NRA)
}

func TestMetricsEdgeCQ(t *testing.T) {
	m := ComputeMetricsRej(Absolute(0.1), []int{}, []int{}, []float64{}, nil)
	assert.True(t, math.IsInf(m.CQ, 1), "CQ should be +Inf if there are no observations, is %v", m.CQ)
}

func TestMetricsNothingCorrect(t *testing.T) {
	// Every prediction is wrong; rejecting half of them is half right
	m := ComputeMetricsRej(Absolute(0.5), []int{0, 0}, []int{1, 1}, []float64{0.9, 0.1}, nil)
	assert.Equal(t, 0.5, m.CQ)
	assert.Equal(t, 0.0, m.NRA)
	assert.True(t, math.IsInf(m.RQ, 1))

	m = ComputeMetricsRej(Absolute(0.95), []int{0, 0}, []int{1, 1}, []float64{0.9, 0.1}, nil)
	assert.Equal(t, 0.0, m.CQ)
	assert.Equal(t, 1.0, m.RQ)
}

func TestMetricsEdgeRQ(t *testing.T) {
	yTrue := []int{0, 1, 1, 0}
	yPred := []int{0, 1, 1, 0}
	unc := []float64{0.2, 0.15, 0.3, 0.7}

	m := ComputeMetricsRej(Absolute(0.1), yTrue, yPred, unc, nil)
	assert.True(t, math.IsInf(m.RQ, 1), "RQ should be +Inf if samples are rejected with nothing incorrect, is %v", m.RQ)

	m = ComputeMetricsRej(Absolute(0.9), yTrue, yPred, unc, nil)
	assert.Equal(t, 1.0, m.RQ, "RQ should be 1 if no samples are rejected")

	// Only the incorrect prediction is rejected
	m = ComputeMetricsRej(Absolute(0.5), yTrueLabel, yPredLabel, []float64{0, 0.9, 0, 0, 0}, nil)
	assert.True(t, math.IsInf(m.RQ, 1), "RQ should be +Inf if n_cor_rej = 0 and a sample is rejected, is %v", m.RQ)
}

func TestInfOrdersAboveFinite(t *testing.T) {
	m := ComputeMetricsRej(Absolute(0.1), yTrueLabel, yPredLabel, uncAry, nil)
	assert.Greater(t, m.NRA, math.MaxFloat64)
}

func TestCountAbove(t *testing.T) {
	for _, v := range []struct {
		threshold float64
		expected  int
	}{
		{0.45, 3},
		{0.1, 5},
		{0.9, 0},
	} {
		if actual := CountAbove(v.threshold, uncAry); actual != v.expected {
			t.Errorf("Threshold %g: count should be %d, is %d", v.threshold, v.expected, actual)
		}
	}
}

func TestLengthMismatchPanics(t *testing.T) {
	assert.Panics(t, func() {
		ConfusionMatrixRej([]int{0, 1}, []int{0}, []float64{0.1, 0.2}, Absolute(0.1), nil)
	})
}

func TestSweep(t *testing.T) {
	rules := Fractions(11)
	require.Len(t, rules, 11)
	assert.Equal(t, 0.0, rules[0].Threshold())
	assert.Equal(t, 1.0, rules[10].Threshold())

	points := Sweep(yTrueLabel, yPredLabel, uncAry, rules, nil)
	require.Len(t, points, 11)
	assert.Equal(t, 0, points[0].Confusion.Rejected())
	assert.Equal(t, 5, points[10].Confusion.Rejected())
	for k := 1; k < len(points); k++ {
		assert.GreaterOrEqual(t, points[k].Confusion.Rejected(), points[k-1].Confusion.Rejected())
	}

	cutoffs := Cutoffs(uncAry, 4)
	require.Len(t, cutoffs, 4)
	assert.InDelta(t, 0.2, cutoffs[0].Threshold(), 1e-12)
	assert.InDelta(t, 0.8, cutoffs[3].Threshold(), 1e-12)
	assert.Nil(t, Cutoffs(nil, 4))
}
