// uncrej evaluates how well an uncertainty (or confidence) score separates
// correct from incorrect predictions, by sweeping a rejection threshold and
// reporting non-rejected accuracy, classification quality and rejection
// quality at each step.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/carbocation/uncrej"
	_ "github.com/carbocation/uncrej/compileinfoprint"
	"github.com/carbocation/uncrej/config"
)

func init() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s -config run.json | -predictions stack.npy -labels y.tsv[,y2.tsv]\n", os.Args[0])
		flag.PrintDefaults()

		log.Println("Example JSONConfig file layout:")
		example := config.Default()
		example.Predictions = "gs://bucket/y_stack.npy"
		example.Sources = []config.Source{
			{Name: "mnist", Labels: "y_mnist.tsv"},
			{Name: "notmnist", OutOfDistribution: true, Count: 18724},
		}
		bts, err := json.MarshalIndent(example, "", "  ")
		if err == nil {
			log.Println(string(bts))
		}
	}
}

// Safe for concurrent use by multiple goroutines
var client *storage.Client

func main() {
	fmt.Fprintf(os.Stderr, "%q\n", os.Args)

	var jsonConfig, labels string
	var summary bool
	var oodCount int
	cfg := config.Default()

	flag.StringVar(&jsonConfig, "config", "", "(Optional) JSONConfig file describing the run. Flags that are set explicitly override its values.")
	flag.StringVar(&cfg.Predictions, "predictions", "", "Path to an .npy file of predictions, shaped [sample, draw, class] or [sample, class]. May be gzip/xz/zip compressed or on gs://")
	flag.BoolVar(&cfg.Positive, "positive", false, "(Optional) The predictions file holds [sample, draw] positive-class probabilities of a binary classifier")
	flag.StringVar(&labels, "labels", "", "Comma-separated label files (.npy, or delimited text with the label in the last column), one per source, in the order the predictions were concatenated")
	flag.IntVar(&oodCount, "ood", 0, "(Optional) Number of out-of-distribution samples appended after the labelled sources. Every prediction on them counts as incorrect.")
	flag.StringVar(&cfg.UncType, "unc", cfg.UncType, "Score to reject on: TU, AU, EU or Conf")
	flag.StringVar(&cfg.Metric, "metric", cfg.Metric, "Metric to plot: nra, cq or rq")
	flag.BoolVar(&cfg.Relative, "relative", false, "(Optional) Sweep the rejected fraction instead of an absolute threshold")
	flag.IntVar(&cfg.Steps, "steps", cfg.Steps, "Number of thresholds in the sweep")
	flag.Float64Var(&cfg.Base, "base", 0, "(Optional) Logarithm base for entropies. 0 means natural log (nats); 2 gives bits.")
	flag.StringVar(&cfg.Output, "out", "", "(Optional) Write the sweep as CSV to this file instead of TSV to stdout")
	flag.StringVar(&cfg.PlotPrefix, "plot", "", "(Optional) Write PNG plots with this path prefix")
	flag.BoolVar(&summary, "summary", false, "(Optional) Log a summary of the scores per source")
	flag.Parse()

	cfg, err := buildConfig(flag.CommandLine, jsonConfig, labels, oodCount, cfg)
	if err != nil {
		log.Println(err)
		flag.Usage()
		os.Exit(1)
	}

	// Initialize the Google Storage client only if we're pointing to Google
	// Storage paths.
	if usesGoogleStorage(cfg) {
		client, err = storage.NewClient(context.Background())
		if err != nil {
			log.Fatalln(err)
		}
	}

	if err := run(cfg, summary); err != nil {
		log.Fatalln(err)
	}
}

func usesGoogleStorage(cfg config.JSONConfig) bool {
	if uncrej.IsGSPath(cfg.Predictions) {
		return true
	}
	for _, s := range cfg.Sources {
		if uncrej.IsGSPath(s.Labels) {
			return true
		}
	}
	return false
}

// buildConfig layers the explicitly set flags of fs over the JSON config file,
// if any, and checks that the result is runnable. flagged holds the values
// the flags were parsed into.
func buildConfig(fs *flag.FlagSet, jsonConfig, labels string, oodCount int, flagged config.JSONConfig) (config.JSONConfig, error) {
	cfg := flagged
	if jsonConfig != "" {
		fromFile, err := config.ParseJSONConfigFromPath(jsonConfig)
		if err != nil {
			return cfg, err
		}
		cfg = overrideWithFlags(fs, fromFile, flagged)
	}

	if labels != "" {
		cfg.Sources = nil
		for i, v := range strings.Split(labels, ",") {
			cfg.Sources = append(cfg.Sources, config.Source{Name: fmt.Sprintf("source%d", i+1), Labels: v})
		}
	}
	if oodCount > 0 {
		cfg.Sources = append(cfg.Sources, config.Source{Name: "ood", OutOfDistribution: true, Count: oodCount})
	}

	if err := cfg.ExpandPaths(); err != nil {
		return cfg, err
	}

	return cfg, cfg.Validate()
}

// overrideWithFlags copies every explicitly set flag from flagged onto base.
func overrideWithFlags(fs *flag.FlagSet, base, flagged config.JSONConfig) config.JSONConfig {
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "predictions":
			base.Predictions = flagged.Predictions
		case "positive":
			base.Positive = flagged.Positive
		case "unc":
			base.UncType = flagged.UncType
		case "metric":
			base.Metric = flagged.Metric
		case "relative":
			base.Relative = flagged.Relative
		case "steps":
			base.Steps = flagged.Steps
		case "base":
			base.Base = flagged.Base
		case "out":
			base.Output = flagged.Output
		case "plot":
			base.PlotPrefix = flagged.PlotPrefix
		}
	})

	return base
}
