package plotting

import (
	"bytes"
	"image"
	"image/png"
	"io"
	"math"

	"github.com/carbocation/pfx"
	"github.com/fogleman/gg"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

const (
	panelWidth  = 640
	panelHeight = 400
	titleHeight = 32
)

var palette = []drawing.Color{
	drawing.ColorFromHex("1f77b4"),
	drawing.ColorFromHex("ff7f0e"),
	drawing.ColorFromHex("2ca02c"),
	drawing.ColorFromHex("d62728"),
	drawing.ColorFromHex("9467bd"),
	drawing.ColorFromHex("8c564b"),
}

func seriesColor(i int) drawing.Color {
	return palette[i%len(palette)]
}

// paddedRange returns an axis range covering [lo, hi] with a little margin.
// go-chart refuses to draw an axis whose range has zero width.
func paddedRange(lo, hi float64) *chart.ContinuousRange {
	if math.IsInf(lo, 0) || math.IsNaN(lo) || math.IsInf(hi, 0) || math.IsNaN(hi) {
		return &chart.ContinuousRange{Min: 0, Max: 1}
	}
	if lo == hi {
		pad := math.Max(0.5, math.Abs(lo)*0.05)
		return &chart.ContinuousRange{Min: lo - pad, Max: hi + pad}
	}

	pad := (hi - lo) * 0.05
	return &chart.ContinuousRange{Min: lo - pad, Max: hi + pad}
}

// finite drops points whose x or y is NaN or infinite.
func finite(xs, ys []float64) ([]float64, []float64) {
	outX := make([]float64, 0, len(xs))
	outY := make([]float64, 0, len(ys))
	for i := range xs {
		if math.IsInf(xs[i], 0) || math.IsNaN(xs[i]) || math.IsInf(ys[i], 0) || math.IsNaN(ys[i]) {
			continue
		}
		outX = append(outX, xs[i])
		outY = append(outY, ys[i])
	}
	return outX, outY
}

func bounds(series []chart.ContinuousSeries) (xlo, xhi, ylo, yhi float64) {
	xlo, ylo = math.Inf(1), math.Inf(1)
	xhi, yhi = math.Inf(-1), math.Inf(-1)
	for _, s := range series {
		for i := range s.XValues {
			xlo = math.Min(xlo, s.XValues[i])
			xhi = math.Max(xhi, s.XValues[i])
			ylo = math.Min(ylo, s.YValues[i])
			yhi = math.Max(yhi, s.YValues[i])
		}
	}
	return
}

// lineChart lays out one panel. Series must be non-empty and finite.
func lineChart(title, xName, yName string, series []chart.ContinuousSeries) chart.Chart {
	xlo, xhi, ylo, yhi := bounds(series)

	graph := chart.Chart{
		Title:  title,
		Width:  panelWidth,
		Height: panelHeight,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20},
		},
		XAxis: chart.XAxis{
			Name:  xName,
			Range: paddedRange(xlo, xhi),
		},
		YAxis: chart.YAxis{
			Name:  yName,
			Range: paddedRange(ylo, yhi),
		},
	}

	for _, s := range series {
		graph.Series = append(graph.Series, s)
	}

	if len(series) > 1 {
		graph.Elements = []chart.Renderable{chart.Legend(&graph)}
	}

	return graph
}

// render draws a single chart and only writes to w once it has succeeded.
func render(w io.Writer, graph chart.Chart) error {
	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return pfx.Err(err)
	}

	if _, err := buffer.WriteTo(w); err != nil {
		return pfx.Err(err)
	}

	return nil
}

// compose renders each chart and places them side by side under a title.
func compose(w io.Writer, title string, graphs []chart.Chart) error {
	panels := make([]image.Image, 0, len(graphs))
	for _, graph := range graphs {
		buffer := bytes.NewBuffer([]byte{})
		if err := graph.Render(chart.PNG, buffer); err != nil {
			return pfx.Err(err)
		}

		img, err := png.Decode(buffer)
		if err != nil {
			return pfx.Err(err)
		}
		panels = append(panels, img)
	}

	dc := gg.NewContext(panelWidth*len(panels), panelHeight+titleHeight)
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	dc.SetRGB(0, 0, 0)
	dc.DrawStringAnchored(title, float64(dc.Width())/2, titleHeight/2, 0.5, 0.5)

	for i, img := range panels {
		dc.DrawImage(img, i*panelWidth, titleHeight)
	}

	buffer := bytes.NewBuffer([]byte{})
	if err := dc.EncodePNG(buffer); err != nil {
		return pfx.Err(err)
	}

	if _, err := buffer.WriteTo(w); err != nil {
		return pfx.Err(err)
	}

	return nil
}
