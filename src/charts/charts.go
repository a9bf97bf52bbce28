// Package charts renders the fixed set of report charts from a built table.
// Bar and line charts are written as SVG; the coverage heatmap is a PNG
// raster. Every renderer writes one file, or one per direction for the
// individual/coverage variants (up_<name>, down_<name>).
package charts

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"

	"github.com/adamkpickering/living-lab-visualize/src/api"
	"github.com/adamkpickering/living-lab-visualize/src/table"
)

const defaultWidth = 1000

func normWidth(w int) int {
	if w <= 0 {
		return defaultWidth
	}
	return w
}

// Charts keep the original 10:6 figure proportions.
func heightFor(w int) int { return w * 3 / 5 }

func ensureData(t *table.Table) error {
	if t.Empty() {
		return fmt.Errorf("%s table has no data to plot", t.Metric)
	}
	return nil
}

func yLabel(t *table.Table) string {
	metric := t.Metric
	if metric != "" {
		metric = strings.ToUpper(metric[:1]) + metric[1:]
	}
	if t.Unit == "" {
		return metric
	}
	return fmt.Sprintf("%s (%s)", metric, t.Unit)
}

func directionTitle(d table.Direction) string {
	switch d {
	case table.DirectionUp:
		return "Up"
	case table.DirectionDown:
		return "Down"
	}
	return ""
}

// directionVariant derives the per-direction output path and title, e.g.
// 24h_bandwidth.svg -> up_24h_bandwidth.svg with title suffix " (Up)".
func directionVariant(path, title string, d table.Direction) (string, string) {
	if d == table.DirectionNone {
		return path, title
	}
	dir, base := filepath.Split(path)
	return filepath.Join(dir, string(d)+"_"+base), title + " (" + directionTitle(d) + ")"
}

func renderToFile(path string, render func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := render(f); err != nil {
		f.Close()
		return fmt.Errorf("render %s: %w", path, err)
	}
	api.Infof("wrote %s", path)
	return f.Close()
}

// segments returns the contiguous non-NaN index runs of ys, so a series with
// interior gaps renders as separate strokes instead of bridging the hole.
func segments(ys []float64) [][2]int {
	var runs [][2]int
	start := -1
	for i, y := range ys {
		if math.IsNaN(y) {
			if start >= 0 {
				runs = append(runs, [2]int{start, i})
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		runs = append(runs, [2]int{start, len(ys)})
	}
	return runs
}

func lineStyle(i int) chart.Style {
	return chart.Style{
		StrokeColor: chart.GetDefaultColor(i),
		StrokeWidth: 1.5,
		DotColor:    chart.GetDefaultColor(i),
		DotWidth:    2,
	}
}

// continuousGapSeries appends one ContinuousSeries per non-NaN run. Only the
// first run carries the name so the legend lists each logical series once.
func continuousGapSeries(series []chart.Series, name string, xs, ys []float64, colorIndex int) []chart.Series {
	for i, run := range segments(ys) {
		s := chart.ContinuousSeries{
			XValues: xs[run[0]:run[1]],
			YValues: ys[run[0]:run[1]],
			Style:   lineStyle(colorIndex),
		}
		if i == 0 {
			s.Name = name
		}
		series = append(series, s)
	}
	return series
}

// timeGapSeries is continuousGapSeries over a time axis.
func timeGapSeries(series []chart.Series, name string, xs []time.Time, ys []float64, colorIndex int) []chart.Series {
	for i, run := range segments(ys) {
		s := chart.TimeSeries{
			XValues: xs[run[0]:run[1]],
			YValues: ys[run[0]:run[1]],
			Style:   lineStyle(colorIndex),
		}
		if i == 0 {
			s.Name = name
		}
		series = append(series, s)
	}
	return series
}

func renderLineChart(path, title string, width int, xAxis chart.XAxis, yName string, series []chart.Series) error {
	if len(series) == 0 {
		return fmt.Errorf("%s: no observed values to plot", path)
	}
	ch := chart.Chart{
		Title:      title,
		Width:      width,
		Height:     heightFor(width),
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20}},
		XAxis:      xAxis,
		YAxis:      chart.YAxis{Name: yName},
		Series:     series,
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	return renderToFile(path, func(w io.Writer) error { return ch.Render(chart.SVG, w) })
}

// Average draws grouped bars of per-nanopi mean values, one bar per
// direction, x-axis labeled through labels.
func Average(t *table.Table, labels api.Labels, path, title string, width int) error {
	if err := ensureData(t); err != nil {
		return err
	}
	width = normWidth(width)
	dirs := t.DirectionAxes()
	var bars []chart.Value
	for _, avg := range t.AverageByNanopi() {
		name := labels.Get(avg.Nanopi)
		for j, d := range dirs {
			v := avg.Mean[d]
			if math.IsNaN(v) {
				v = 0 // unobserved combination draws as a zero-height bar
			}
			label := name
			if d != table.DirectionNone {
				label = fmt.Sprintf("%s (%s)", name, d)
			}
			bars = append(bars, chart.Value{
				Label: label,
				Value: v,
				Style: chart.Style{
					FillColor:   chart.GetDefaultColor(j),
					StrokeColor: chart.GetDefaultColor(j),
				},
			})
		}
	}
	barWidth := (width - 150) / len(bars)
	if barWidth > 50 {
		barWidth = 50
	}
	if barWidth < 10 {
		barWidth = 10
	}
	bc := chart.BarChart{
		Title:      title,
		Width:      width,
		Height:     heightFor(width),
		BarWidth:   barWidth,
		BarSpacing: 15,
		Background: chart.Style{Padding: chart.Box{Top: 40}},
		XAxis:      chart.Style{TextRotationDegrees: 45},
		YAxis:      chart.YAxis{Name: yLabel(t)},
		Bars:       bars,
	}
	return renderToFile(path, func(w io.Writer) error { return bc.Render(chart.SVG, w) })
}

func hourOfDayAxis() chart.XAxis {
	return chart.XAxis{
		Name:  "Hour of Day",
		Range: &chart.ContinuousRange{Min: 0, Max: 23},
	}
}

var hourOfDayXs = func() []float64 {
	xs := make([]float64, 24)
	for i := range xs {
		xs[i] = float64(i)
	}
	return xs
}()

// HourlyAggregate draws the across-nanopi mean by hour of day, one line per
// direction.
func HourlyAggregate(t *table.Table, loc *time.Location, path, title string, width int) error {
	if err := ensureData(t); err != nil {
		return err
	}
	width = normWidth(width)
	byHour := t.HourOfDayAggregate(loc)
	var series []chart.Series
	for j, d := range t.DirectionAxes() {
		name := string(d)
		if d == table.DirectionNone {
			name = t.Metric
		}
		series = continuousGapSeries(series, name, hourOfDayXs, byHour[d], j)
	}
	return renderLineChart(path, title, width, hourOfDayAxis(), yLabel(t), series)
}

// Hourly draws one hour-of-day line per nanopi. Tables with a direction axis
// produce one file per direction (up_<name>, down_<name>).
func Hourly(t *table.Table, labels api.Labels, loc *time.Location, path, title string, width int) error {
	if err := ensureData(t); err != nil {
		return err
	}
	width = normWidth(width)
	byHour := t.HourOfDayByNanopi(loc)
	for _, d := range t.DirectionAxes() {
		var series []chart.Series
		for i, n := range t.Nanopis {
			series = continuousGapSeries(series, labels.Get(n), hourOfDayXs, byHour[d][n], i)
		}
		outPath, outTitle := directionVariant(path, title, d)
		if err := renderLineChart(outPath, outTitle, width, hourOfDayAxis(), yLabel(t), series); err != nil {
			return err
		}
	}
	return nil
}

var weekdayNames = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

func dayOfWeekAxis() chart.XAxis {
	ticks := make([]chart.Tick, len(weekdayNames))
	for i, name := range weekdayNames {
		ticks[i] = chart.Tick{Value: float64(i), Label: name}
	}
	return chart.XAxis{
		Name:  "Day of Week",
		Ticks: ticks,
		Range: &chart.ContinuousRange{Min: 0, Max: 6},
	}
}

var dayOfWeekXs = []float64{0, 1, 2, 3, 4, 5, 6}

// DayOfWeekAggregate draws the across-nanopi mean by weekday. All seven
// weekdays are on the axis; unobserved days show as gaps.
func DayOfWeekAggregate(t *table.Table, loc *time.Location, path, title string, width int) error {
	if err := ensureData(t); err != nil {
		return err
	}
	width = normWidth(width)
	byDow := t.DayOfWeekAggregate(loc)
	var series []chart.Series
	for j, d := range t.DirectionAxes() {
		name := string(d)
		if d == table.DirectionNone {
			name = t.Metric
		}
		series = continuousGapSeries(series, name, dayOfWeekXs, byDow[d], j)
	}
	return renderLineChart(path, title, width, dayOfWeekAxis(), yLabel(t), series)
}

// DayOfWeek draws one weekday line per nanopi, split into per-direction
// files like Hourly.
func DayOfWeek(t *table.Table, labels api.Labels, loc *time.Location, path, title string, width int) error {
	if err := ensureData(t); err != nil {
		return err
	}
	width = normWidth(width)
	byDow := t.DayOfWeekByNanopi(loc)
	for _, d := range t.DirectionAxes() {
		var series []chart.Series
		for i, n := range t.Nanopis {
			series = continuousGapSeries(series, labels.Get(n), dayOfWeekXs, byDow[d][n], i)
		}
		outPath, outTitle := directionVariant(path, title, d)
		if err := renderLineChart(outPath, outTitle, width, dayOfWeekAxis(), yLabel(t), series); err != nil {
			return err
		}
	}
	return nil
}

func dateAxis() chart.XAxis {
	return chart.XAxis{
		Name:           "Date",
		ValueFormatter: chart.TimeValueFormatterWithFormat("2006-01-02 15:04"),
	}
}

// FullRangeAggregate draws the across-nanopi mean over the whole observed
// hourly range, one line per direction.
func FullRangeAggregate(t *table.Table, path, title string, width int) error {
	if err := ensureData(t); err != nil {
		return err
	}
	width = normWidth(width)
	byHour := t.FullRangeAggregate()
	var series []chart.Series
	for j, d := range t.DirectionAxes() {
		name := string(d)
		if d == table.DirectionNone {
			name = t.Metric
		}
		series = timeGapSeries(series, name, t.Hours, byHour[d], j)
	}
	return renderLineChart(path, title, width, dateAxis(), yLabel(t), series)
}

// FullRange draws every nanopi's hourly series over the whole observed
// range, split into per-direction files like Hourly.
func FullRange(t *table.Table, labels api.Labels, path, title string, width int) error {
	if err := ensureData(t); err != nil {
		return err
	}
	width = normWidth(width)
	byNanopi := t.FullRangeByNanopi()
	for _, d := range t.DirectionAxes() {
		var series []chart.Series
		for i, n := range t.Nanopis {
			series = timeGapSeries(series, labels.Get(n), t.Hours, byNanopi[d][n], i)
		}
		outPath, outTitle := directionVariant(path, title, d)
		if err := renderLineChart(outPath, outTitle, width, dateAxis(), yLabel(t), series); err != nil {
			return err
		}
	}
	return nil
}
