package plotting

import (
	"fmt"
	"io"
	"math"

	"github.com/aybabtme/uniplot/histogram"
	"github.com/carbocation/uncrej/analysis"
	"github.com/wcharczuk/go-chart/v2"
	"gonum.org/v1/gonum/floats"
)

// HistOptions controls HistUnc.
type HistOptions struct {
	UncType UncType

	// NumClasses fixes the x axis at [0, log(NumClasses)], the largest
	// possible entropy. Ignored for Conf, which always spans [0, 1].
	NumClasses int

	// Base is the logarithm base the entropies were computed in. Zero means
	// natural log.
	Base float64

	// Bins defaults to 30.
	Bins  int
	Title string
}

// maxEntropy is the entropy of the uniform distribution over the classes.
func (o HistOptions) maxEntropy() float64 {
	h := math.Log(float64(o.NumClasses))
	if o.Base > 0 && o.Base != 1 {
		h /= math.Log(o.Base)
	}
	return h
}

func (o HistOptions) bins() int {
	if o.Bins < 1 {
		return 30
	}
	return o.Bins
}

// histSeries bins values and traces the histogram outline as a filled step
// curve.
func histSeries(name string, values []float64, bins int, color int) (chart.ContinuousSeries, error) {
	clean, _ := finite(values, values)
	if len(clean) == 0 {
		return chart.ContinuousSeries{}, fmt.Errorf("no finite values to bin")
	}

	var hist histogram.Histogram
	if lo, hi := floats.Min(clean), floats.Max(clean); lo == hi {
		hist.Buckets = []histogram.Bucket{{Min: lo, Max: hi, Count: len(clean)}}
	} else {
		hist = histogram.Hist(bins, clean)
	}

	xs := make([]float64, 0, 2*len(hist.Buckets)+2)
	ys := make([]float64, 0, 2*len(hist.Buckets)+2)

	xs, ys = append(xs, hist.Buckets[0].Min), append(ys, 0)
	for _, bucket := range hist.Buckets {
		xs = append(xs, bucket.Min, bucket.Max)
		ys = append(ys, float64(bucket.Count), float64(bucket.Count))
	}
	xs, ys = append(xs, hist.Buckets[len(hist.Buckets)-1].Max), append(ys, 0)

	c := seriesColor(color)
	return chart.ContinuousSeries{
		Name: name,
		Style: chart.Style{
			StrokeColor: c,
			StrokeWidth: 1.5,
			FillColor:   c.WithAlpha(96),
		},
		XValues: xs,
		YValues: ys,
	}, nil
}

func histChart(values []float64, opt HistOptions, color int) (chart.Chart, error) {
	s, err := histSeries(opt.UncType.Label(), values, opt.bins(), color)
	if err != nil {
		return chart.Chart{}, err
	}

	graph := lineChart(opt.Title, opt.UncType.Label(), "Count", []chart.ContinuousSeries{s})

	_, xhi, _, yhi := bounds([]chart.ContinuousSeries{s})
	graph.YAxis.Range = &chart.ContinuousRange{Min: 0, Max: math.Max(1, yhi*1.05)}

	switch {
	case opt.UncType == Conf:
		graph.XAxis.Range = &chart.ContinuousRange{Min: 0, Max: 1}
	case opt.NumClasses > 1:
		// Values past the bound mean NumClasses or Base disagree with the
		// data; widen rather than clip.
		graph.XAxis.Range = &chart.ContinuousRange{Min: 0, Max: math.Max(opt.maxEntropy(), xhi)}
	}

	return graph, nil
}

// HistUnc draws the distribution of one uncertainty (or confidence) score.
func HistUnc(w io.Writer, unc []float64, opt HistOptions) error {
	if err := opt.UncType.validate(); err != nil {
		return err
	}

	graph, err := histChart(unc, opt, 0)
	if err != nil {
		return err
	}

	return render(w, graph)
}

// HistUnc3 draws total, aleatoric and epistemic uncertainty side by side on
// a shared x axis. base is the logarithm base of the entropies, zero meaning
// natural log.
func HistUnc3(w io.Writer, tot, ale, epi []float64, numClasses int, base float64) error {
	graphs := make([]chart.Chart, 0, 3)
	for i, v := range []struct {
		unc     []float64
		uncType UncType
	}{
		{tot, TU},
		{ale, AU},
		{epi, EU},
	} {
		graph, err := histChart(v.unc, HistOptions{UncType: v.uncType, NumClasses: numClasses, Base: base}, i)
		if err != nil {
			return err
		}
		graphs = append(graphs, graph)
	}

	return compose(w, "Uncertainty decomposition", graphs)
}

// CountUnc draws how many samples have a score at or above each threshold.
func CountUnc(w io.Writer, unc []float64, uncType UncType) error {
	if err := uncType.validate(); err != nil {
		return err
	}

	clean, _ := finite(unc, unc)
	rules := analysis.Cutoffs(clean, 100)
	if len(rules) == 0 {
		return fmt.Errorf("no finite values to count")
	}

	xs := make([]float64, 0, len(rules))
	ys := make([]float64, 0, len(rules))
	for _, rule := range rules {
		xs = append(xs, rule.Threshold())
		ys = append(ys, float64(analysis.CountAbove(rule.Threshold(), clean)))
	}

	s := chart.ContinuousSeries{
		Name:    uncType.Label(),
		Style:   chart.Style{StrokeColor: seriesColor(0), StrokeWidth: 2},
		XValues: xs,
		YValues: ys,
	}

	graph := lineChart("", uncType.Label()+" threshold", "Samples at or above threshold", []chart.ContinuousSeries{s})
	graph.YAxis.Range = &chart.ContinuousRange{Min: 0, Max: math.Max(1, float64(len(clean))*1.05)}

	return render(w, graph)
}
