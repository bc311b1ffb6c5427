package main

import (
	"fmt"
	"log"
	"math"

	"github.com/carbocation/uncrej/analysis"
	"github.com/carbocation/uncrej/config"
	"github.com/carbocation/uncrej/plotting"
	"github.com/carbocation/uncrej/predictions"
)

// OODLabel is assigned to out-of-distribution samples. No classifier predicts
// a negative class, so these are always counted as incorrect.
const OODLabel = -1

// evaluation holds everything derived from one predictions file.
type evaluation struct {
	pred    predictions.Predictions
	yTrue   []int
	concat  analysis.Concatenation
	names   []string
	unc     analysis.Uncertainty
	conf    []float64
	uncType plotting.UncType
	metric  plotting.Metric
}

// scores returns the chosen score oriented so that higher means reject first.
func (e evaluation) scores() []float64 {
	switch e.uncType {
	case plotting.AU:
		return e.unc.Aleatoric
	case plotting.EU:
		return e.unc.Epistemic
	case plotting.Conf:
		out := make([]float64, len(e.conf))
		for i, v := range e.conf {
			out[i] = -v
		}
		return out
	}
	return e.unc.Total
}

func run(cfg config.JSONConfig, summary bool) error {
	uncType, err := plotting.ParseUncType(cfg.UncType)
	if err != nil {
		return err
	}
	metric, err := plotting.ParseMetric(cfg.Metric)
	if err != nil {
		return err
	}

	e, err := evaluate(cfg)
	if err != nil {
		return err
	}
	e.uncType, e.metric = uncType, metric

	if summary {
		if err := summarize(e); err != nil {
			return err
		}
	}

	if err := writeSweep(cfg, e); err != nil {
		return err
	}

	if cfg.PlotPrefix != "" {
		if err := writePlots(cfg, e); err != nil {
			return err
		}
	}

	return nil
}

func evaluate(cfg config.JSONConfig) (evaluation, error) {
	var e evaluation

	var err error
	if cfg.Positive {
		e.pred, err = predictions.LoadPositive(cfg.Predictions, client)
	} else {
		e.pred, err = predictions.Load(cfg.Predictions, client)
	}
	if err != nil {
		return e, err
	}
	log.Printf("Loaded %d samples x %d draws x %d classes from %s\n", e.pred.Samples(), e.pred.Draws(), e.pred.Classes(), cfg.Predictions)

	labelSets := make([][]int, 0, len(cfg.Sources))
	for _, s := range cfg.Sources {
		labels, err := sourceLabels(s)
		if err != nil {
			return e, err
		}
		labelSets = append(labelSets, labels)
		e.names = append(e.names, s.Name)
	}

	e.concat = analysis.ConcatGetIdx(labelSets...)
	e.yTrue = e.concat.All
	if len(e.yTrue) != e.pred.Samples() {
		return e, fmt.Errorf("the label sources hold %d samples but there are %d predictions", len(e.yTrue), e.pred.Samples())
	}

	if cfg.Base == 0 {
		e.unc, err = analysis.ComputeUncertainty(e.pred.Stack)
	} else {
		e.unc, err = analysis.ComputeUncertaintyBase(e.pred.Stack, cfg.Base)
	}
	if err != nil {
		return e, err
	}

	e.conf, err = analysis.ComputeConfidence(e.pred.Stack)
	if err != nil {
		return e, err
	}

	return e, nil
}

func sourceLabels(s config.Source) ([]int, error) {
	var labels []int
	if s.Labels != "" {
		var err error
		labels, err = predictions.LoadLabels(s.Labels, client)
		if err != nil {
			return nil, err
		}
	} else {
		labels = make([]int, s.Count)
	}

	if s.OutOfDistribution {
		for i := range labels {
			labels[i] = OODLabel
		}
	}

	log.Printf("Source %q: %d samples\n", s.Name, len(labels))

	return labels, nil
}

// rules builds the sweep grid for the configured mode.
func rules(cfg config.JSONConfig, scores []float64) []analysis.Rule {
	if cfg.Relative {
		return analysis.Fractions(cfg.Steps)
	}

	finite := make([]float64, 0, len(scores))
	for _, v := range scores {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			finite = append(finite, v)
		}
	}

	return analysis.Cutoffs(finite, cfg.Steps)
}
