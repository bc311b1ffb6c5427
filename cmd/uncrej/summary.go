package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/aybabtme/uniplot/histogram"
	"github.com/carbocation/pfx"
	"github.com/carbocation/runningvariance"
	"github.com/carbocation/uncrej/analysis"
	"github.com/carbocation/uncrej/plotting"
	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/floats"
)

// rawScores returns the chosen score as reported, i.e. confidence is not
// negated.
func (e evaluation) rawScores() []float64 {
	if e.uncType == plotting.Conf {
		return e.conf
	}
	return e.scores()
}

// summaryLine describes the score distribution over the samples in idx.
func summaryLine(name string, e evaluation, idx []int) ([]string, error) {
	raw := e.rawScores()

	rs := runningvariance.NewRunningStat()
	values := make([]float64, 0, len(idx))
	for _, i := range idx {
		rs.Push(raw[i])
		values = append(values, raw[i])
	}

	correct, _ := analysis.IdxCorrect(analysis.Subset(idx, e.yTrue)[0], analysis.Subset(idx, e.pred.Label)[0])

	output := []string{name, fmt.Sprintf("%d", rs.N)}
	if rs.N == 0 {
		return append(output, "N/A", "N/A", "N/A", "N/A", "N/A", "N/A"), nil
	}

	output = append(output, fmt.Sprintf("%.3f", float64(len(correct))/float64(len(idx))))
	output = append(output, fmt.Sprintf("%.3f", rs.Mean()), fmt.Sprintf("%.3f", rs.StandardDeviation()))

	data := stats.LoadRawData(values)
	for _, f := range []func() (float64, error){
		data.Median,
		func() (float64, error) { return data.Percentile(5) },
		func() (float64, error) { return data.Percentile(95) },
	} {
		fl, err := f()
		if err != nil {
			return nil, pfx.Err(err)
		}
		output = append(output, fmt.Sprintf("%.3f", fl))
	}

	return output, nil
}

// summarize logs per-source accuracy and score distribution to stderr.
func summarize(e evaluation) error {
	all := make([]int, len(e.yTrue))
	for i := range all {
		all[i] = i
	}

	fmt.Fprintln(os.Stderr, strings.Join([]string{"source", "N", "accuracy", "mean_" + string(e.uncType), "sd", "median", "p5", "p95"}, "\t"))

	line, err := summaryLine("all", e, all)
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stderr, strings.Join(line, "\t"))

	for i, name := range e.names {
		line, err := summaryLine(name, e, e.concat.Idx[i])
		if err != nil {
			return err
		}
		fmt.Fprintln(os.Stderr, strings.Join(line, "\t"))
	}

	raw := e.rawScores()
	if len(raw) == 0 || floats.Min(raw) == floats.Max(raw) {
		return nil
	}

	fmt.Fprintf(os.Stderr, "%s histogram:\n", e.uncType.Label())
	hist := histogram.Hist(20, raw)
	if err := histogram.Fprint(os.Stderr, hist, histogram.Linear(40)); err != nil {
		return pfx.Err(err)
	}

	return nil
}
