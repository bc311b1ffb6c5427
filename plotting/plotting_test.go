package plotting

import (
	"bytes"
	"errors"
	"image/png"
	"testing"

	"github.com/carbocation/uncrej/analysis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wcharczuk/go-chart/v2"
)

// fixture is a small two-class problem with four draws per sample. Samples
// 0-3 are confidently right, 4-5 uncertain and wrong.
func fixture(t *testing.T) (yTrue []int, stack analysis.Array, unc analysis.Uncertainty, conf []float64) {
	t.Helper()

	data := []float64{
		0.95, 0.05, 0.90, 0.10, 0.97, 0.03, 0.92, 0.08,
		0.10, 0.90, 0.05, 0.95, 0.20, 0.80, 0.15, 0.85,
		0.85, 0.15, 0.80, 0.20, 0.90, 0.10, 0.75, 0.25,
		0.30, 0.70, 0.25, 0.75, 0.20, 0.80, 0.35, 0.65,
		0.60, 0.40, 0.30, 0.70, 0.55, 0.45, 0.70, 0.30,
		0.40, 0.60, 0.55, 0.45, 0.45, 0.55, 0.30, 0.70,
	}

	stack, err := analysis.NewArray(data, 6, 4, 2)
	require.NoError(t, err)

	unc, err = analysis.ComputeUncertainty(stack)
	require.NoError(t, err)

	conf, err = analysis.ComputeConfidence(stack)
	require.NoError(t, err)

	return []int{0, 1, 0, 1, 1, 0}, stack, unc, conf
}

func requirePNG(t *testing.T, buf *bytes.Buffer, width int) {
	t.Helper()

	img, err := png.Decode(buf)
	require.NoError(t, err)
	assert.Equal(t, width, img.Bounds().Dx())
}

func TestParseTags(t *testing.T) {
	for _, s := range []string{"TU", "AU", "EU", "Conf"} {
		u, err := ParseUncType(s)
		require.NoError(t, err)
		assert.Equal(t, s, string(u))
		assert.NotEmpty(t, u.Label())
	}

	for _, s := range []string{"nra", "cq", "rq"} {
		m, err := ParseMetric(s)
		require.NoError(t, err)
		assert.Equal(t, s, string(m))
	}

	var domainErr *DomainError

	_, err := ParseUncType("tu")
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, "tu", domainErr.Value)

	_, err = ParseMetric("accuracy")
	require.True(t, errors.As(err, &domainErr))
}

func TestHistUnc(t *testing.T) {
	_, _, unc, conf := fixture(t)

	var buf bytes.Buffer
	require.NoError(t, HistUnc(&buf, unc.Total, HistOptions{UncType: TU, NumClasses: 2}))
	requirePNG(t, &buf, panelWidth)

	buf.Reset()
	require.NoError(t, HistUnc(&buf, conf, HistOptions{UncType: Conf, Bins: 5}))
	requirePNG(t, &buf, panelWidth)

	// Identical values still make a drawable histogram
	buf.Reset()
	require.NoError(t, HistUnc(&buf, []float64{0.3, 0.3, 0.3}, HistOptions{UncType: EU}))
	requirePNG(t, &buf, panelWidth)
}

func TestHistUnc3(t *testing.T) {
	_, _, unc, _ := fixture(t)

	var buf bytes.Buffer
	require.NoError(t, HistUnc3(&buf, unc.Total, unc.Aleatoric, unc.Epistemic, 2, 0))
	requirePNG(t, &buf, 3*panelWidth)
}

func TestHistUncBase2(t *testing.T) {
	// A uniform binary prediction carries exactly one bit of total uncertainty
	stack, err := analysis.NewArray([]float64{0.5, 0.5, 0.5, 0.5, 0.9, 0.1, 0.1, 0.9}, 2, 2, 2)
	require.NoError(t, err)
	unc, err := analysis.ComputeUncertaintyBase(stack, 2)
	require.NoError(t, err)
	require.InDelta(t, 1.0, unc.Total[0], 1e-12)

	opt := HistOptions{UncType: TU, NumClasses: 2, Base: 2}
	graph, err := histChart(unc.Total, opt, 0)
	require.NoError(t, err)
	xr, ok := graph.XAxis.Range.(*chart.ContinuousRange)
	require.True(t, ok)
	assert.InDelta(t, 1.0, xr.Max, 1e-12)

	var buf bytes.Buffer
	require.NoError(t, HistUnc(&buf, unc.Total, opt))
	requirePNG(t, &buf, panelWidth)

	buf.Reset()
	require.NoError(t, HistUnc3(&buf, unc.Total, unc.Aleatoric, unc.Epistemic, 2, 2))
	requirePNG(t, &buf, 3*panelWidth)

	// A mismatched base widens the axis instead of clipping
	graph, err = histChart(unc.Total, HistOptions{UncType: TU, NumClasses: 2}, 0)
	require.NoError(t, err)
	xr = graph.XAxis.Range.(*chart.ContinuousRange)
	assert.GreaterOrEqual(t, xr.Max, 1.0)
}

func TestCountUnc(t *testing.T) {
	_, _, unc, _ := fixture(t)

	var buf bytes.Buffer
	require.NoError(t, CountUnc(&buf, unc.Total, TU))
	requirePNG(t, &buf, panelWidth)
}

func TestRejection(t *testing.T) {
	yTrue, stack, unc, conf := fixture(t)

	for _, v := range []struct {
		name   string
		scores []float64
		opt    RejectionOptions
	}{
		{"relative nra", unc.Total, RejectionOptions{Metric: NRA, UncType: TU, Relative: true}},
		{"absolute cq", unc.Epistemic, RejectionOptions{Metric: CQ, UncType: EU, Steps: 20}},
		{"confidence rq", conf, RejectionOptions{Metric: RQ, UncType: Conf, Relative: true}},
		{"subsets", unc.Total, RejectionOptions{
			Metric:   NRA,
			UncType:  TU,
			Relative: true,
			Subsets:  []Subset{{Name: "A", Idx: []int{0, 1, 2}}, {Name: "B", Idx: []int{3, 4, 5}}},
		}},
	} {
		t.Run(v.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Rejection(&buf, yTrue, stack, v.scores, v.opt))
			requirePNG(t, &buf, panelWidth)
		})
	}
}

func TestRejectionConfidenceOrder(t *testing.T) {
	yTrue, stack, _, conf := fixture(t)

	in, err := newRejectionInput(yTrue, stack, conf)
	require.NoError(t, err)

	// Rejecting the least confident third removes only wrong predictions
	xs, ys := in.curve(conf, Conf, NRA, true, 4, nil)
	require.Len(t, xs, 3)
	assert.InDelta(t, 1.0/3, xs[1], 1e-12)
	assert.InDelta(t, 1.0, ys[1], 1e-12)
}

func TestRejectionSetMetric3(t *testing.T) {
	yTrue, stack, unc, _ := fixture(t)

	var buf bytes.Buffer
	require.NoError(t, RejectionSetMetric3(&buf, yTrue, stack, unc.Total, unc.Aleatoric, unc.Epistemic, NRA, true))
	requirePNG(t, &buf, 3*panelWidth)
}

func TestRejectionMixMetric3(t *testing.T) {
	yTrue, stack, unc, _ := fixture(t)

	var buf bytes.Buffer
	require.NoError(t, RejectionMixMetric3(&buf, yTrue, stack, unc.Total, TU, true))
	requirePNG(t, &buf, 3*panelWidth)
}

func TestInvalidTagsWriteNothing(t *testing.T) {
	yTrue, stack, unc, _ := fixture(t)

	var domainErr *DomainError
	var buf bytes.Buffer

	for _, err := range []error{
		HistUnc(&buf, unc.Total, HistOptions{UncType: "XU"}),
		CountUnc(&buf, unc.Total, "total"),
		Rejection(&buf, yTrue, stack, unc.Total, RejectionOptions{Metric: NRA, UncType: "XU"}),
		Rejection(&buf, yTrue, stack, unc.Total, RejectionOptions{Metric: "f1", UncType: TU}),
		RejectionSetMetric3(&buf, yTrue, stack, unc.Total, unc.Aleatoric, unc.Epistemic, "f1", true),
		RejectionMixMetric3(&buf, yTrue, stack, unc.Total, "XU", false),
	} {
		assert.True(t, errors.As(err, &domainErr), "%v", err)
	}

	assert.Zero(t, buf.Len())
}

func TestRejectionLengthMismatch(t *testing.T) {
	yTrue, stack, unc, _ := fixture(t)

	var buf bytes.Buffer
	assert.Error(t, Rejection(&buf, yTrue[:3], stack, unc.Total, RejectionOptions{Metric: NRA, UncType: TU}))
	assert.Error(t, Rejection(&buf, yTrue, stack, unc.Total[:2], RejectionOptions{Metric: NRA, UncType: TU}))
	assert.Zero(t, buf.Len())
}
