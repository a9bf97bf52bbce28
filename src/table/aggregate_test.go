package table

import (
	"math"
	"testing"
	"time"

	"github.com/adamkpickering/living-lab-visualize/src/api"
)

func TestAverageByNanopiIgnoresMissing(t *testing.T) {
	records := []api.BandwidthRecord{
		{ID: 1, Bandwidth: 40, Nanopi: 1, Direction: "up", UploadDate: ts(0, 0)},
		{ID: 2, Bandwidth: 60, Nanopi: 1, Direction: "up", UploadDate: ts(1, 0)},
		{ID: 3, Bandwidth: 10, Nanopi: 2, Direction: "down", UploadDate: ts(0, 0)},
	}
	tbl := Bandwidth(records)
	avgs := tbl.AverageByNanopi()
	if len(avgs) != 2 || avgs[0].Nanopi != 1 || avgs[1].Nanopi != 2 {
		t.Fatalf("expected nanopis [1 2], got %+v", avgs)
	}
	if got := avgs[0].Mean[DirectionUp]; got != 50 {
		t.Fatalf("nanopi 1 up mean should ignore the missing hour, got %v", got)
	}
	if !math.IsNaN(avgs[0].Mean[DirectionDown]) {
		t.Fatalf("nanopi 1 down has no samples, expected NaN got %v", avgs[0].Mean[DirectionDown])
	}
	if got := avgs[1].Mean[DirectionDown]; got != 10 {
		t.Fatalf("nanopi 2 down mean wrong: %v", got)
	}
}

func TestHourOfDayAggregate(t *testing.T) {
	records := []api.JitterRecord{
		{ID: 1, Jitter: 10, Nanopi: 1, UploadDate: ts(0, 5)},
		{ID: 2, Jitter: 20, Nanopi: 2, UploadDate: ts(0, 10)},
		{ID: 3, Jitter: 30, Nanopi: 1, UploadDate: ts(1, 0)},
	}
	tbl := Jitter(records)
	byHour := tbl.HourOfDayAggregate(time.UTC)[DirectionNone]
	if len(byHour) != 24 {
		t.Fatalf("expected 24 slots got %d", len(byHour))
	}
	if byHour[0] != 15 {
		t.Fatalf("hour 0 mean across nanopis should be 15, got %v", byHour[0])
	}
	if byHour[1] != 30 {
		t.Fatalf("hour 1 mean should be 30, got %v", byHour[1])
	}
	if !math.IsNaN(byHour[5]) {
		t.Fatalf("unobserved hour should be NaN, got %v", byHour[5])
	}
}

func TestHourOfDayUsesLocation(t *testing.T) {
	// 00:00 UTC is 17:00 the previous day in Edmonton (MST, UTC-7)
	loc := time.FixedZone("MST", -7*3600)
	records := []api.JitterRecord{
		{ID: 1, Jitter: 10, Nanopi: 1, UploadDate: ts(0, 0)},
	}
	byHour := Jitter(records).HourOfDayAggregate(loc)[DirectionNone]
	if byHour[17] != 10 {
		t.Fatalf("expected sample in local hour 17, got %v", byHour)
	}
	if !math.IsNaN(byHour[0]) {
		t.Fatalf("UTC hour slot should be empty under local grouping, got %v", byHour[0])
	}
}

func TestDayOfWeekAggregateAlwaysSevenSlots(t *testing.T) {
	// 2023-01-01 is a Sunday -> slot 6; Monday..Saturday unobserved
	records := []api.JitterRecord{
		{ID: 1, Jitter: 12, Nanopi: 1, UploadDate: ts(10, 0)},
	}
	byDow := Jitter(records).DayOfWeekAggregate(time.UTC)[DirectionNone]
	if len(byDow) != 7 {
		t.Fatalf("expected 7 slots got %d", len(byDow))
	}
	if byDow[6] != 12 {
		t.Fatalf("Sunday slot should hold the sample, got %v", byDow)
	}
	for slot := 0; slot < 6; slot++ {
		if !math.IsNaN(byDow[slot]) {
			t.Fatalf("slot %d should be NaN, got %v", slot, byDow[slot])
		}
	}
}

func TestWeekdaySlotMondayFirst(t *testing.T) {
	monday := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 7; i++ {
		if got := weekdaySlot(monday.AddDate(0, 0, i)); got != i {
			t.Fatalf("day %d: expected slot %d got %d", i, i, got)
		}
	}
}

func TestFullRangeAlignedWithHours(t *testing.T) {
	records := []api.BandwidthRecord{
		{ID: 1, Bandwidth: 40, Nanopi: 1, Direction: "up", UploadDate: ts(0, 0)},
		{ID: 2, Bandwidth: 60, Nanopi: 2, Direction: "up", UploadDate: ts(0, 30)},
		{ID: 3, Bandwidth: 80, Nanopi: 1, Direction: "up", UploadDate: ts(2, 0)},
	}
	tbl := Bandwidth(records)
	agg := tbl.FullRangeAggregate()[DirectionUp]
	if len(agg) != len(tbl.Hours) {
		t.Fatalf("aggregate not aligned with hours: %d vs %d", len(agg), len(tbl.Hours))
	}
	if agg[0] != 50 {
		t.Fatalf("hour 0 mean should be 50, got %v", agg[0])
	}
	if !math.IsNaN(agg[1]) {
		t.Fatalf("gap hour should be NaN, got %v", agg[1])
	}
	if agg[2] != 80 {
		t.Fatalf("hour 2 mean should be 80, got %v", agg[2])
	}

	byNanopi := tbl.FullRangeByNanopi()[DirectionUp]
	if len(byNanopi[1]) != 3 || byNanopi[1][0] != 40 || !math.IsNaN(byNanopi[1][1]) {
		t.Fatalf("unexpected nanopi 1 series: %v", byNanopi[1])
	}
}

func TestCoverageGrid(t *testing.T) {
	records := []api.BandwidthRecord{
		{ID: 1, Bandwidth: 40, Nanopi: 1, Direction: "up", UploadDate: ts(0, 0)},
		{ID: 2, Bandwidth: 60, Nanopi: 2, Direction: "up", UploadDate: ts(1, 0)},
	}
	tbl := Bandwidth(records)
	grid := tbl.Coverage(DirectionUp)
	if len(grid) != 2 || len(grid[0]) != 2 {
		t.Fatalf("expected 2x2 grid, got %dx%d", len(grid), len(grid[0]))
	}
	if !grid[0][0] || grid[0][1] || grid[1][0] || !grid[1][1] {
		t.Fatalf("unexpected presence pattern: %v", grid)
	}
	down := tbl.Coverage(DirectionDown)
	for _, row := range down {
		for _, present := range row {
			if present {
				t.Fatal("down direction has no samples, grid should be all missing")
			}
		}
	}
}
