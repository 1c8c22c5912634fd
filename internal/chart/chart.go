// Package chart renders dashboard series to PNG.
package chart

import (
	"bytes"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/ppiankov/csrlens/internal/dashboard"
	"github.com/ppiankov/csrlens/internal/model"
)

const maxBarLabel = 18

// Size is the output image size in pixels
type Size struct {
	Width  int
	Height int
}

func (s Size) orDefault() Size {
	if s.Width <= 0 {
		s.Width = 1024
	}
	if s.Height <= 0 {
		s.Height = 512
	}
	return s
}

// ErrNoData is returned when there is nothing to plot
var ErrNoData = eris.New("chart: no data to plot")

// IndicatorBars renders the search result as one bar per indicator
func IndicatorBars(title string, points []dashboard.ChartPoint, size Size) ([]byte, error) {
	if len(points) == 0 {
		return nil, ErrNoData
	}
	size = size.orDefault()

	bars := make([]gochart.Value, 0, len(points))
	lo, hi := 0.0, 0.0
	for i, p := range points {
		bars = append(bars, gochart.Value{
			Label: shorten(p.IndicatorName, maxBarLabel),
			Value: p.Value,
			Style: gochart.Style{
				FillColor:   hexColor(dashboard.Palette[i%len(dashboard.Palette)]),
				StrokeColor: hexColor(dashboard.Palette[i%len(dashboard.Palette)]),
				StrokeWidth: 1,
			},
		})
		lo = math.Min(lo, p.Value)
		hi = math.Max(hi, p.Value)
	}
	lo, hi = axisBounds(lo, hi)

	barWidth := (size.Width - 80) / (len(bars) * 2)
	barWidth = max(4, min(barWidth, 60))

	bc := gochart.BarChart{
		Title:        title,
		Width:        size.Width,
		Height:       size.Height,
		BarWidth:     barWidth,
		BarSpacing:   barWidth,
		Background:   gochart.Style{Padding: gochart.Box{Top: 40, Left: 16, Right: 16, Bottom: 24}},
		YAxis:        gochart.YAxis{Range: &gochart.ContinuousRange{Min: lo, Max: hi}},
		UseBaseValue: lo < 0,
		BaseValue:    0,
		Bars:         bars,
	}

	var buf bytes.Buffer
	if err := bc.Render(gochart.PNG, &buf); err != nil {
		return nil, eris.Wrap(err, "chart: render bars")
	}
	return buf.Bytes(), nil
}

// Trend renders an indicator history as a line over years
func Trend(title, unit string, points []dashboard.TrendPoint, size Size) ([]byte, error) {
	if len(points) == 0 {
		return nil, ErrNoData
	}
	size = size.orDefault()

	xs := make([]float64, 0, len(points))
	ys := make([]float64, 0, len(points))
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, p := range points {
		xs = append(xs, float64(p.Year))
		ys = append(ys, p.Value)
		lo = math.Min(lo, p.Value)
		hi = math.Max(hi, p.Value)
	}
	xs, ys = padFlat(xs, ys)
	lo, hi = axisBounds(math.Min(lo, 0), hi)

	c := gochart.Chart{
		Title:      title,
		Width:      size.Width,
		Height:     size.Height,
		Background: gochart.Style{Padding: gochart.Box{Top: 40, Left: 16, Right: 16, Bottom: 24}},
		XAxis: gochart.XAxis{
			Name:           "Year",
			ValueFormatter: yearFormatter,
			Ticks:          yearTicks(points),
		},
		YAxis: gochart.YAxis{Name: unit, Range: &gochart.ContinuousRange{Min: lo, Max: hi}},
		Series: []gochart.Series{
			gochart.ContinuousSeries{
				Name:    title,
				XValues: xs,
				YValues: ys,
				Style: gochart.Style{
					StrokeColor: hexColor(dashboard.Palette[0]),
					StrokeWidth: 2,
					DotColor:    hexColor(dashboard.Palette[0]),
					DotWidth:    4,
				},
			},
		},
	}

	var buf bytes.Buffer
	if err := c.Render(gochart.PNG, &buf); err != nil {
		return nil, eris.Wrap(err, "chart: render trend")
	}
	return buf.Bytes(), nil
}

// Compare renders every dataset of a comparison against the shared labels
func Compare(title string, cc *dashboard.CompareChart, size Size) ([]byte, error) {
	if cc == nil || len(cc.Labels) == 0 || len(cc.Datasets) == 0 {
		return nil, ErrNoData
	}
	size = size.orDefault()

	ticks := make([]gochart.Tick, 0, len(cc.Labels))
	xs := make([]float64, 0, len(cc.Labels))
	for i, l := range cc.Labels {
		ticks = append(ticks, gochart.Tick{Value: float64(i), Label: l})
		xs = append(xs, float64(i))
	}

	lo, hi := 0.0, 0.0
	series := make([]gochart.Series, 0, len(cc.Datasets))
	for _, ds := range cc.Datasets {
		col := hexColor(ds.Color)
		style := gochart.Style{StrokeColor: col, StrokeWidth: 2, DotColor: col, DotWidth: 4}
		if cc.Type == model.ChartBar {
			style = gochart.Style{StrokeWidth: 0, DotColor: col, DotWidth: 7}
		}
		x, y := padFlat(xs, ds.Data)
		series = append(series, gochart.ContinuousSeries{Name: ds.Label, XValues: x, YValues: y, Style: style})
		for _, v := range ds.Data {
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	lo, hi = axisBounds(lo, hi)

	c := gochart.Chart{
		Title:      title,
		Width:      size.Width,
		Height:     size.Height,
		Background: gochart.Style{Padding: gochart.Box{Top: 40, Left: 16, Right: 16, Bottom: 24}},
		XAxis:      gochart.XAxis{Ticks: ticks},
		YAxis:      gochart.YAxis{Range: &gochart.ContinuousRange{Min: lo, Max: hi}},
		Series:     series,
	}
	c.Elements = []gochart.Renderable{gochart.Legend(&c)}

	var buf bytes.Buffer
	if err := c.Render(gochart.PNG, &buf); err != nil {
		return nil, eris.Wrap(err, "chart: render compare")
	}
	return buf.Bytes(), nil
}

// padFlat widens a series whose x values are all equal (one point, or
// several points in one year) so the x range is never empty
func padFlat(xs, ys []float64) ([]float64, []float64) {
	if len(xs) == 0 || len(xs) != len(ys) || slices.Min(xs) != slices.Max(xs) {
		return xs, ys
	}
	x := xs[0]
	px := append(append([]float64{x - 0.5}, xs...), x+0.5)
	py := append(append([]float64{ys[0]}, ys...), ys[len(ys)-1])
	return px, py
}

// axisBounds pads [lo, hi] by 5% and guarantees a non-empty span
func axisBounds(lo, hi float64) (float64, float64) {
	if hi <= lo {
		hi = lo + 1
	}
	pad := (hi - lo) * 0.05
	if lo < 0 {
		lo -= pad
	}
	return lo, hi + pad
}

// yearTicks labels each distinct year; fewer than two years uses default ticks
func yearTicks(points []dashboard.TrendPoint) []gochart.Tick {
	ticks := make([]gochart.Tick, 0, len(points))
	for i, p := range points {
		if i > 0 && points[i-1].Year == p.Year {
			continue
		}
		ticks = append(ticks, gochart.Tick{Value: float64(p.Year), Label: strconv.Itoa(p.Year)})
	}
	if len(ticks) < 2 {
		return nil
	}
	return ticks
}

func yearFormatter(v interface{}) string {
	if f, ok := v.(float64); ok {
		return strconv.Itoa(int(math.Round(f)))
	}
	return ""
}

func shorten(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// hexColor parses "#rrggbb"; anything else falls back to gray
func hexColor(hex string) drawing.Color {
	hex = strings.TrimPrefix(hex, "#")
	v, err := strconv.ParseUint(hex, 16, 32)
	if len(hex) != 6 || err != nil {
		return drawing.Color{R: 128, G: 128, B: 128, A: 255}
	}
	return drawing.Color{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}
}
