package report

import (
	"bytes"
	"fmt"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/bobmcallan/sweep/internal/models"
	"github.com/bobmcallan/sweep/internal/services/scoring"
)

// RenderTrendChart renders a PNG line chart of daily closes with the
// 20-period moving average overlaid once enough bars exist to compute it.
// Returns raw PNG bytes.
func (s *Service) RenderTrendChart(ticker string, bars []models.PriceBar) ([]byte, error) {
	if len(bars) < 2 {
		return nil, fmt.Errorf("need at least 2 data points for %s, got %d", ticker, len(bars))
	}

	xValues := make([]time.Time, len(bars))
	closeY := make([]float64, len(bars))
	for i, bar := range bars {
		xValues[i] = bar.Date
		closeY[i] = bar.Close
	}

	closeSeries := chart.TimeSeries{
		Name: "Close",
		Style: chart.Style{
			StrokeColor: drawing.ColorFromHex("2563eb"), // blue-600
			StrokeWidth: 2.5,
		},
		XValues: xValues,
		YValues: closeY,
	}

	series := []chart.Series{closeSeries}

	// The average starts where the window first fills.
	if len(bars) >= scoring.TrendWindow {
		smaX := make([]time.Time, 0, len(bars)-scoring.TrendWindow+1)
		smaY := make([]float64, 0, len(bars)-scoring.TrendWindow+1)
		for i := scoring.TrendWindow - 1; i < len(bars); i++ {
			smaX = append(smaX, bars[i].Date)
			smaY = append(smaY, scoring.SMA(bars[:i+1], scoring.TrendWindow))
		}

		series = append(series, chart.TimeSeries{
			Name: fmt.Sprintf("SMA%d", scoring.TrendWindow),
			Style: chart.Style{
				StrokeColor:     drawing.ColorFromHex("f59e0b"), // amber-500
				StrokeWidth:     1.5,
				StrokeDashArray: []float64{5.0, 3.0},
			},
			XValues: smaX,
			YValues: smaY,
		})
	}

	graph := chart.Chart{
		Title:  fmt.Sprintf("%s Trend", ticker),
		Width:  900,
		Height: 400,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		XAxis: chart.XAxis{
			TickPosition: chart.TickPositionBetweenTicks,
			ValueFormatter: func(v interface{}) string {
				if t, ok := v.(float64); ok {
					return chart.TimeFromFloat64(t).Format("Jan 02")
				}
				return ""
			},
		},
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%.2f", f)
				}
				return ""
			},
		},
		Series: series,
	}

	graph.Elements = []chart.Renderable{
		chart.LegendLeft(&graph),
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}

	return buf.Bytes(), nil
}
