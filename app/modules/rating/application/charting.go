package ratingservice

import (
	"bytes"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// ChartPalette holds the colors of the momentum chart.
type ChartPalette struct {
	Background  drawing.Color
	PrimaryLine drawing.Color
	AccentLine  drawing.Color
	TextColor   drawing.Color
}

// DefaultPalette is court blue on white.
var DefaultPalette = ChartPalette{
	Background:  drawing.ColorWhite,
	PrimaryLine: drawing.ColorFromHex("1d4ed8"),
	AccentLine:  drawing.ColorFromHex("f59e0b"),
	TextColor:   drawing.ColorFromHex("111827"),
}

// renderMomentumChart draws rating after each finalized match.
func renderMomentumChart(m *Momentum, palette ChartPalette) ([]byte, error) {
	if len(m.Points) == 0 {
		return renderNoDataPlaceholder(palette)
	}

	// A single point does not draw a line, so the series starts from the
	// rating held before the first match in the window.
	first := m.Points[0]
	xValues := []time.Time{first.FinalizedAt.Add(-time.Hour)}
	yValues := []float64{first.RatingAfter - float64(first.Delta)}
	for _, p := range m.Points {
		xValues = append(xValues, p.FinalizedAt)
		yValues = append(yValues, p.RatingAfter)
	}

	mainSeries := chart.TimeSeries{
		Name:    "Rating",
		XValues: xValues,
		YValues: yValues,
		Style: chart.Style{
			StrokeColor: palette.PrimaryLine,
			StrokeWidth: 2,
			DotWidth:    4,
			DotColor:    palette.AccentLine,
		},
	}

	graph := chart.Chart{
		Width:  800,
		Height: 400,
		Background: chart.Style{
			FillColor: palette.Background,
		},
		Canvas: chart.Style{
			FillColor: palette.Background,
		},
		XAxis: chart.XAxis{
			Name:           "Date",
			ValueFormatter: chart.TimeValueFormatterWithFormat("2006-01-02"),
			Style: chart.Style{
				FontColor: palette.TextColor,
			},
		},
		YAxis: chart.YAxis{
			Name: "Rating",
			Style: chart.Style{
				FontColor: palette.TextColor,
			},
		},
		Series: []chart.Series{mainSeries},
	}

	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

func renderNoDataPlaceholder(palette ChartPalette) ([]byte, error) {
	const (
		width  = 400
		height = 200
		msg    = "No rated matches in this period"
	)

	graph := chart.Chart{
		Width:  width,
		Height: height,
		Background: chart.Style{
			FillColor: palette.Background,
		},
		Canvas: chart.Style{
			FillColor: palette.Background,
		},
		Elements: []chart.Renderable{
			func(r chart.Renderer, cb chart.Box, chartDefaults chart.Style) {
				r.SetFontColor(palette.TextColor)
				r.SetFontSize(12.0)
				tb := r.MeasureText(msg)
				x := (cb.Width() - tb.Width()) / 2
				y := (cb.Height() + tb.Height()) / 2
				r.Text(msg, x, y)
			},
		},
	}
	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}
