// Package plotting renders uncertainty distributions and rejection curves as
// PNG images.
package plotting

import "fmt"

// DomainError reports a tag that is not one of the recognized values.
type DomainError struct {
	Param string
	Value string
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("plotting: %q is not a valid %s", e.Value, e.Param)
}

// UncType selects which score a plot is about.
type UncType string

const (
	TU   UncType = "TU"
	AU   UncType = "AU"
	EU   UncType = "EU"
	Conf UncType = "Conf"
)

var uncLabels = map[UncType]string{
	TU:   "Total uncertainty",
	AU:   "Aleatoric uncertainty",
	EU:   "Epistemic uncertainty",
	Conf: "Confidence",
}

// ParseUncType accepts TU, AU, EU or Conf.
func ParseUncType(s string) (UncType, error) {
	u := UncType(s)
	if err := u.validate(); err != nil {
		return "", err
	}
	return u, nil
}

func (u UncType) validate() error {
	if _, ok := uncLabels[u]; !ok {
		return &DomainError{Param: "uncertainty type", Value: string(u)}
	}
	return nil
}

// Label is the axis label for u.
func (u UncType) Label() string {
	return uncLabels[u]
}

// Metric selects a rejection metric.
type Metric string

const (
	NRA Metric = "nra"
	CQ  Metric = "cq"
	RQ  Metric = "rq"
)

var metricLabels = map[Metric]string{
	NRA: "Non-rejected accuracy",
	CQ:  "Classification quality",
	RQ:  "Rejection quality",
}

// ParseMetric accepts nra, cq or rq.
func ParseMetric(s string) (Metric, error) {
	m := Metric(s)
	if err := m.validate(); err != nil {
		return "", err
	}
	return m, nil
}

func (m Metric) validate() error {
	if _, ok := metricLabels[m]; !ok {
		return &DomainError{Param: "metric", Value: string(m)}
	}
	return nil
}

// Label is the axis label for m.
func (m Metric) Label() string {
	return metricLabels[m]
}
