package main

import (
	"io"
	"log"
	"os"

	"github.com/carbocation/pfx"
	"github.com/carbocation/uncrej/config"
	"github.com/carbocation/uncrej/plotting"
)

func writePNG(path string, draw func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return pfx.Err(err)
	}
	defer f.Close()

	if err := draw(f); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}

	log.Println("Wrote", path)

	return pfx.Err(f.Close())
}

func writePlots(cfg config.JSONConfig, e evaluation) error {
	prefix := cfg.PlotPrefix
	classes := e.pred.Classes()

	subsets := make([]plotting.Subset, 0, len(e.names)+1)
	subsets = append(subsets, plotting.Subset{Name: "all"})
	if len(e.names) > 1 {
		for i, name := range e.names {
			subsets = append(subsets, plotting.Subset{Name: name, Idx: e.concat.Idx[i]})
		}
	}

	plots := []struct {
		suffix string
		draw   func(io.Writer) error
	}{
		{"_hist.png", func(w io.Writer) error {
			return plotting.HistUnc(w, e.rawScores(), plotting.HistOptions{UncType: e.uncType, NumClasses: classes, Base: cfg.Base})
		}},
		{"_hist3.png", func(w io.Writer) error {
			return plotting.HistUnc3(w, e.unc.Total, e.unc.Aleatoric, e.unc.Epistemic, classes, cfg.Base)
		}},
		{"_count.png", func(w io.Writer) error {
			return plotting.CountUnc(w, e.rawScores(), e.uncType)
		}},
		{"_rejection.png", func(w io.Writer) error {
			return plotting.Rejection(w, e.yTrue, e.pred.Stack, e.rawScores(), plotting.RejectionOptions{
				Metric:   e.metric,
				UncType:  e.uncType,
				Relative: cfg.Relative,
				Steps:    cfg.Steps,
				Subsets:  subsets,
			})
		}},
		{"_setmetric3.png", func(w io.Writer) error {
			return plotting.RejectionSetMetric3(w, e.yTrue, e.pred.Stack, e.unc.Total, e.unc.Aleatoric, e.unc.Epistemic, e.metric, cfg.Relative)
		}},
		{"_mixmetric3.png", func(w io.Writer) error {
			return plotting.RejectionMixMetric3(w, e.yTrue, e.pred.Stack, e.rawScores(), e.uncType, cfg.Relative)
		}},
	}

	for _, p := range plots {
		if err := writePNG(prefix+p.suffix, p.draw); err != nil {
			return err
		}
	}

	return nil
}
