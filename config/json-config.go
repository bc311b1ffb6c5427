// Package config describes an uncertainty-rejection run in a JSON file, so
// that the same analysis can be repeated over new predictions.
package config

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/carbocation/pfx"
	"github.com/carbocation/uncrej"
)

// Source is one block of rows in the predictions file. Sources are
// concatenated in the order listed.
type Source struct {
	Name   string `json:"name"`
	Labels string `json:"labels"`

	// OutOfDistribution marks samples whose true class is none of the
	// predicted classes, so every prediction on them counts as incorrect.
	// Count gives the number of such samples when there is no labels file.
	OutOfDistribution bool `json:"ood"`
	Count             int  `json:"count"`
}

// JSONConfig is one run: where the predictions and labels live, which score
// and metric to sweep, and where to write results.
type JSONConfig struct {
	ConfigPath string `json:"-"`

	Predictions string   `json:"predictions"`
	Positive    bool     `json:"positive"`
	Sources     []Source `json:"sources"`

	UncType  string  `json:"unc_type"`
	Metric   string  `json:"metric"`
	Relative bool    `json:"relative"`
	Steps    int     `json:"steps"`
	Base     float64 `json:"base"`

	Output     string `json:"output"`
	PlotPrefix string `json:"plot_prefix"`
	CacheDir   string `json:"cache_dir"`
}

// Default is the configuration used for anything a file or flag leaves unset.
func Default() JSONConfig {
	return JSONConfig{
		UncType: "TU",
		Metric:  "nra",
		Steps:   100,
	}
}

// ParseJSONConfigFromPath reads a JSONConfig on top of Default and expands
// its paths. The result may be incomplete; call Validate once any overrides
// have been applied.
func ParseJSONConfigFromPath(path string) (JSONConfig, error) {
	out := Default()

	expanded, err := uncrej.ExpandHome(path)
	if err != nil {
		return out, err
	}
	out.ConfigPath = expanded

	f, err := os.Open(expanded)
	if err != nil {
		return out, pfx.Err(err)
	}
	defer f.Close()

	dec := json.NewDecoder(f)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&out); err != nil {
		if e, ok := err.(*json.SyntaxError); ok {
			log.Printf("syntax error at byte offset %d", e.Offset)
		}
		return out, pfx.Err(err)
	}

	return out, out.ExpandPaths()
}

// ExpandPaths interprets a leading ~ in every path-valued field.
func (c *JSONConfig) ExpandPaths() error {
	var err error
	for _, p := range []*string{&c.Predictions, &c.Output, &c.PlotPrefix, &c.CacheDir} {
		if *p, err = uncrej.ExpandHome(*p); err != nil {
			return err
		}
	}

	for i := range c.Sources {
		if c.Sources[i].Labels, err = uncrej.ExpandHome(c.Sources[i].Labels); err != nil {
			return err
		}
	}

	return nil
}

// Validate checks that the configuration describes a runnable analysis.
// Tag values are checked where they are parsed.
func (c JSONConfig) Validate() error {
	if c.Predictions == "" {
		return fmt.Errorf("no predictions file given")
	}
	if len(c.Sources) == 0 {
		return fmt.Errorf("no label sources given")
	}
	if c.Steps < 2 {
		return fmt.Errorf("steps must be at least 2, got %d", c.Steps)
	}

	for i, s := range c.Sources {
		if s.Labels == "" && !(s.OutOfDistribution && s.Count > 0) {
			return fmt.Errorf("source %d (%q) needs a labels file, or ood with a count", i, s.Name)
		}
	}

	return nil
}
