package plotting

import (
	"fmt"
	"io"

	"github.com/carbocation/uncrej/analysis"
	"github.com/wcharczuk/go-chart/v2"
)

// Subset names a group of sample positions, e.g. the in-distribution or
// out-of-distribution part of a concatenated test set.
type Subset struct {
	Name string
	Idx  []int
}

// RejectionOptions controls Rejection.
type RejectionOptions struct {
	Metric  Metric
	UncType UncType

	// Relative sweeps the rejected fraction over [0, 1]; otherwise an
	// absolute threshold is swept over the range of the scores.
	Relative bool

	// Steps defaults to 100.
	Steps int

	// Subsets draws one curve per subset. Nil draws a single curve over all
	// samples.
	Subsets []Subset

	Title string
}

func (o RejectionOptions) steps() int {
	if o.Steps < 2 {
		return 100
	}
	return o.Steps
}

func (o RejectionOptions) validate() error {
	if err := o.Metric.validate(); err != nil {
		return err
	}
	return o.UncType.validate()
}

func metricValue(m analysis.Metrics, metric Metric) float64 {
	switch metric {
	case CQ:
		return m.CQ
	case RQ:
		return m.RQ
	}
	return m.NRA
}

func xLabel(uncType UncType, relative bool) string {
	if relative {
		return "Rejected fraction"
	}
	return uncType.Label() + " threshold"
}

// rejectionInput is everything needed to trace rejection curves.
type rejectionInput struct {
	yTrue []int
	yPred []int
}

func newRejectionInput(yTrue []int, stack analysis.Array, scores ...[]float64) (rejectionInput, error) {
	_, yPred, err := analysis.MeanLabel(stack)
	if err != nil {
		return rejectionInput{}, err
	}

	if len(yTrue) != len(yPred) {
		return rejectionInput{}, fmt.Errorf("%d true labels for %d predictions", len(yTrue), len(yPred))
	}
	for _, s := range scores {
		if len(s) != len(yPred) {
			return rejectionInput{}, fmt.Errorf("%d scores for %d predictions", len(s), len(yPred))
		}
	}

	return rejectionInput{yTrue: yTrue, yPred: yPred}, nil
}

// curve sweeps one score over one subset. Rules always treat higher scores as
// less trustworthy, so confidence is ranked negated and reported positive.
func (in rejectionInput) curve(scores []float64, uncType UncType, metric Metric, relative bool, steps int, idx []int) (xs, ys []float64) {
	sign := 1.0
	if uncType == Conf {
		sign = -1
		flipped := make([]float64, len(scores))
		for i, v := range scores {
			flipped[i] = -v
		}
		scores = flipped
	}

	var rules []analysis.Rule
	if relative {
		rules = analysis.Fractions(steps)
	} else {
		clean, _ := finite(scores, scores)
		rules = analysis.Cutoffs(clean, steps)
	}

	for _, p := range analysis.Sweep(in.yTrue, in.yPred, scores, rules, idx) {
		x := p.Rule.Threshold()
		if !relative {
			x *= sign
		}
		xs = append(xs, x)
		ys = append(ys, metricValue(p.Metrics, metric))
	}

	return finite(xs, ys)
}

func (in rejectionInput) panel(title string, scores []float64, uncType UncType, metric Metric, relative bool, steps int, subsets []Subset) (chart.Chart, error) {
	if len(subsets) == 0 {
		subsets = []Subset{{Name: "All"}}
	}

	series := make([]chart.ContinuousSeries, 0, len(subsets))
	for i, sub := range subsets {
		xs, ys := in.curve(scores, uncType, metric, relative, steps, sub.Idx)
		if len(xs) == 0 {
			continue
		}
		series = append(series, chart.ContinuousSeries{
			Name:    sub.Name,
			Style:   chart.Style{StrokeColor: seriesColor(i), StrokeWidth: 2},
			XValues: xs,
			YValues: ys,
		})
	}

	if len(series) == 0 {
		return chart.Chart{}, fmt.Errorf("no finite %s values to plot", metric)
	}

	return lineChart(title, xLabel(uncType, relative), metric.Label(), series), nil
}

// Rejection draws one rejection metric as a function of the rejection
// threshold for one score.
func Rejection(w io.Writer, yTrue []int, stack analysis.Array, scores []float64, opt RejectionOptions) error {
	if err := opt.validate(); err != nil {
		return err
	}

	in, err := newRejectionInput(yTrue, stack, scores)
	if err != nil {
		return err
	}

	graph, err := in.panel(opt.Title, scores, opt.UncType, opt.Metric, opt.Relative, opt.steps(), opt.Subsets)
	if err != nil {
		return err
	}

	return render(w, graph)
}

// RejectionSetMetric3 draws one metric for total, aleatoric and epistemic
// uncertainty side by side.
func RejectionSetMetric3(w io.Writer, yTrue []int, stack analysis.Array, tot, ale, epi []float64, metric Metric, relative bool) error {
	if err := metric.validate(); err != nil {
		return err
	}

	in, err := newRejectionInput(yTrue, stack, tot, ale, epi)
	if err != nil {
		return err
	}

	graphs := make([]chart.Chart, 0, 3)
	for _, v := range []struct {
		scores  []float64
		uncType UncType
	}{
		{tot, TU},
		{ale, AU},
		{epi, EU},
	} {
		graph, err := in.panel(v.uncType.Label(), v.scores, v.uncType, metric, relative, 100, nil)
		if err != nil {
			return err
		}
		graphs = append(graphs, graph)
	}

	return compose(w, metric.Label(), graphs)
}

// RejectionMixMetric3 draws NRA, CQ and RQ for one score side by side.
func RejectionMixMetric3(w io.Writer, yTrue []int, stack analysis.Array, scores []float64, uncType UncType, relative bool) error {
	if err := uncType.validate(); err != nil {
		return err
	}

	in, err := newRejectionInput(yTrue, stack, scores)
	if err != nil {
		return err
	}

	graphs := make([]chart.Chart, 0, 3)
	for _, metric := range []Metric{NRA, CQ, RQ} {
		graph, err := in.panel(metric.Label(), scores, uncType, metric, relative, 100, nil)
		if err != nil {
			return err
		}
		graphs = append(graphs, graph)
	}

	return compose(w, uncType.Label(), graphs)
}
