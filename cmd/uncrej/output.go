package main

import (
	"encoding/csv"
	"io"
	"log"
	"os"

	"github.com/carbocation/pfx"
	"github.com/carbocation/uncrej/analysis"
	"github.com/carbocation/uncrej/config"
	"github.com/carbocation/uncrej/plotting"
	"github.com/gocarina/gocsv"
)

// sweepRow is one line of output: one rule applied to one subset.
type sweepRow struct {
	Subset      string  `csv:"subset"`
	UncType     string  `csv:"unc_type"`
	Mode        string  `csv:"mode"`
	Threshold   float64 `csv:"threshold"`
	CorRej      int     `csv:"cor_rej"`
	CorNonrej   int     `csv:"cor_nonrej"`
	IncorRej    int     `csv:"incor_rej"`
	IncorNonrej int     `csv:"incor_nonrej"`
	NRA         float64 `csv:"nra"`
	CQ          float64 `csv:"cq"`
	RQ          float64 `csv:"rq"`
}

func sweepRows(cfg config.JSONConfig, e evaluation) []sweepRow {
	scores := e.scores()
	grid := rules(cfg, scores)

	mode := "absolute"
	if cfg.Relative {
		mode = "relative"
	}

	subsets := []plotting.Subset{{Name: "all"}}
	if len(e.names) > 1 {
		for i, name := range e.names {
			subsets = append(subsets, plotting.Subset{Name: name, Idx: e.concat.Idx[i]})
		}
	}

	out := make([]sweepRow, 0, len(subsets)*len(grid))
	for _, sub := range subsets {
		for _, p := range analysis.Sweep(e.yTrue, e.pred.Label, scores, grid, sub.Idx) {
			threshold := p.Rule.Threshold()
			if e.uncType == plotting.Conf && !cfg.Relative {
				threshold = -threshold
			}

			out = append(out, sweepRow{
				Subset:      sub.Name,
				UncType:     string(e.uncType),
				Mode:        mode,
				Threshold:   threshold,
				CorRej:      p.Confusion.CorRej,
				CorNonrej:   p.Confusion.CorNonrej,
				IncorRej:    p.Confusion.IncorRej,
				IncorNonrej: p.Confusion.IncorNonrej,
				NRA:         p.Metrics.NRA,
				CQ:          p.Metrics.CQ,
				RQ:          p.Metrics.RQ,
			})
		}
	}

	return out
}

// writeRows writes rows with a header line, separated by comma.
func writeRows(w io.Writer, rows []sweepRow, comma rune) error {
	cw := csv.NewWriter(w)
	cw.Comma = comma

	if err := gocsv.MarshalCSV(&rows, gocsv.NewSafeCSVWriter(cw)); err != nil {
		return pfx.Err(err)
	}
	cw.Flush()

	return pfx.Err(cw.Error())
}

func writeSweep(cfg config.JSONConfig, e evaluation) error {
	rows := sweepRows(cfg, e)

	if cfg.Output == "" {
		return writeRows(os.Stdout, rows, '\t')
	}

	f, err := os.Create(cfg.Output)
	if err != nil {
		return pfx.Err(err)
	}
	defer f.Close()

	if err := writeRows(f, rows, ','); err != nil {
		return err
	}

	log.Printf("Wrote %d sweep rows to %s\n", len(rows), cfg.Output)

	return pfx.Err(f.Close())
}
