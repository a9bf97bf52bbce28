package table

import (
	"math"
	"time"
)

// Aggregations over the dense table. Missing cells are excluded from means;
// a group with no observations at all yields NaN so renderers can show a gap.

// NanopiAverage is the mean value for one nanopi, per direction.
type NanopiAverage struct {
	Nanopi int64
	Mean   map[Direction]float64
}

// AverageByNanopi computes the mean per (nanopi, direction), in nanopi-id
// order.
func (t *Table) AverageByNanopi() []NanopiAverage {
	out := make([]NanopiAverage, 0, len(t.Nanopis))
	for _, n := range t.Nanopis {
		means := make(map[Direction]float64, len(t.DirectionAxes()))
		for _, d := range t.DirectionAxes() {
			var sum float64
			var count int
			for _, h := range t.Hours {
				if c, ok := t.At(h, n, d); ok {
					sum += c.Value
					count++
				}
			}
			means[d] = meanOf(sum, count)
		}
		out = append(out, NanopiAverage{Nanopi: n, Mean: means})
	}
	return out
}

// HourOfDayAggregate groups all nanopis' values by hour of day (0-23) in the
// given timezone and averages across nanopis and days.
func (t *Table) HourOfDayAggregate(loc *time.Location) map[Direction][]float64 {
	loc = orUTC(loc)
	out := make(map[Direction][]float64, len(t.DirectionAxes()))
	for _, d := range t.DirectionAxes() {
		sums := make([]float64, 24)
		counts := make([]int, 24)
		for _, h := range t.Hours {
			slot := h.In(loc).Hour()
			for _, n := range t.Nanopis {
				if c, ok := t.At(h, n, d); ok {
					sums[slot] += c.Value
					counts[slot]++
				}
			}
		}
		out[d] = meansOf(sums, counts)
	}
	return out
}

// HourOfDayByNanopi is the per-nanopi variant of HourOfDayAggregate.
func (t *Table) HourOfDayByNanopi(loc *time.Location) map[Direction]map[int64][]float64 {
	loc = orUTC(loc)
	out := make(map[Direction]map[int64][]float64, len(t.DirectionAxes()))
	for _, d := range t.DirectionAxes() {
		out[d] = make(map[int64][]float64, len(t.Nanopis))
		for _, n := range t.Nanopis {
			sums := make([]float64, 24)
			counts := make([]int, 24)
			for _, h := range t.Hours {
				if c, ok := t.At(h, n, d); ok {
					slot := h.In(loc).Hour()
					sums[slot] += c.Value
					counts[slot]++
				}
			}
			out[d][n] = meansOf(sums, counts)
		}
	}
	return out
}

// DayOfWeekAggregate groups by weekday (0=Monday .. 6=Sunday) in the given
// timezone. All 7 slots are always present; unobserved days are NaN.
func (t *Table) DayOfWeekAggregate(loc *time.Location) map[Direction][]float64 {
	loc = orUTC(loc)
	out := make(map[Direction][]float64, len(t.DirectionAxes()))
	for _, d := range t.DirectionAxes() {
		sums := make([]float64, 7)
		counts := make([]int, 7)
		for _, h := range t.Hours {
			slot := weekdaySlot(h.In(loc))
			for _, n := range t.Nanopis {
				if c, ok := t.At(h, n, d); ok {
					sums[slot] += c.Value
					counts[slot]++
				}
			}
		}
		out[d] = meansOf(sums, counts)
	}
	return out
}

// DayOfWeekByNanopi is the per-nanopi variant of DayOfWeekAggregate.
func (t *Table) DayOfWeekByNanopi(loc *time.Location) map[Direction]map[int64][]float64 {
	loc = orUTC(loc)
	out := make(map[Direction]map[int64][]float64, len(t.DirectionAxes()))
	for _, d := range t.DirectionAxes() {
		out[d] = make(map[int64][]float64, len(t.Nanopis))
		for _, n := range t.Nanopis {
			sums := make([]float64, 7)
			counts := make([]int, 7)
			for _, h := range t.Hours {
				if c, ok := t.At(h, n, d); ok {
					slot := weekdaySlot(h.In(loc))
					sums[slot] += c.Value
					counts[slot]++
				}
			}
			out[d][n] = meansOf(sums, counts)
		}
	}
	return out
}

// FullRangeAggregate averages across nanopis for every hour of the observed
// span. The result is aligned with t.Hours.
func (t *Table) FullRangeAggregate() map[Direction][]float64 {
	out := make(map[Direction][]float64, len(t.DirectionAxes()))
	for _, d := range t.DirectionAxes() {
		values := make([]float64, len(t.Hours))
		for i, h := range t.Hours {
			var sum float64
			var count int
			for _, n := range t.Nanopis {
				if c, ok := t.At(h, n, d); ok {
					sum += c.Value
					count++
				}
			}
			values[i] = meanOf(sum, count)
		}
		out[d] = values
	}
	return out
}

// FullRangeByNanopi returns every nanopi's hourly series over the observed
// span, aligned with t.Hours, NaN where a sample is missing.
func (t *Table) FullRangeByNanopi() map[Direction]map[int64][]float64 {
	out := make(map[Direction]map[int64][]float64, len(t.DirectionAxes()))
	for _, d := range t.DirectionAxes() {
		out[d] = make(map[int64][]float64, len(t.Nanopis))
		for _, n := range t.Nanopis {
			values := make([]float64, len(t.Hours))
			for i, h := range t.Hours {
				if c, ok := t.At(h, n, d); ok {
					values[i] = c.Value
				} else {
					values[i] = math.NaN()
				}
			}
			out[d][n] = values
		}
	}
	return out
}

// Coverage returns the presence grid for one direction: one row per nanopi
// (in t.Nanopis order), one column per hour of the span.
func (t *Table) Coverage(d Direction) [][]bool {
	grid := make([][]bool, len(t.Nanopis))
	for i, n := range t.Nanopis {
		row := make([]bool, len(t.Hours))
		for j, h := range t.Hours {
			_, row[j] = t.At(h, n, d)
		}
		grid[i] = row
	}
	return grid
}

// weekdaySlot maps time.Weekday (Sunday=0) onto Monday=0 .. Sunday=6.
func weekdaySlot(t time.Time) int { return (int(t.Weekday()) + 6) % 7 }

func orUTC(loc *time.Location) *time.Location {
	if loc == nil {
		return time.UTC
	}
	return loc
}

func meanOf(sum float64, count int) float64 {
	if count == 0 {
		return math.NaN()
	}
	return sum / float64(count)
}

func meansOf(sums []float64, counts []int) []float64 {
	means := make([]float64, len(sums))
	for i := range sums {
		means[i] = meanOf(sums[i], counts[i])
	}
	return means
}
