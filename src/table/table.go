// Package table assembles raw measurement records into dense hour-indexed
// tables. A table's key space is the cartesian product of every hour between
// the first and last observation, every nanopi seen, and (for bandwidth) both
// directions; combinations with no observation are explicit misses so
// aggregation treats them as gaps instead of silently skipping them.
package table

import (
	"sort"
	"time"

	"github.com/adamkpickering/living-lab-visualize/src/api"
)

// Direction of a bandwidth test. Metrics without a direction use
// DirectionNone.
type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
	DirectionNone Direction = ""
)

// Key identifies one slot in the dense key space. The hour is stored as a
// unix timestamp so keys are safely comparable.
type Key struct {
	HourUnix  int64
	Nanopi    int64
	Direction Direction
}

// Hour returns the hour-floored timestamp of the key in UTC.
func (k Key) Hour() time.Time { return time.Unix(k.HourUnix, 0).UTC() }

// Cell holds the surviving observation for a key after de-duplication.
type Cell struct {
	ID         int64
	Value      float64
	UploadDate time.Time
}

// Table is a dense hour-indexed measurement table. Cells holds only the
// present observations; every (hour, nanopi, direction) combination from the
// axes is part of the key space, and At reports absent combinations as
// misses.
type Table struct {
	Metric     string
	Unit       string
	Hours      []time.Time // dense hourly range, UTC, empty when no records
	Nanopis    []int64     // ascending
	Directions []Direction // nil when direction does not apply
	Cells      map[Key]Cell
}

// Empty reports whether the table was built from no records.
func (t *Table) Empty() bool { return len(t.Hours) == 0 }

// At looks up the cell for an (hour, nanopi, direction) combination. The
// hour is floored before lookup. ok is false for in-space keys with no
// observation.
func (t *Table) At(hour time.Time, nanopi int64, d Direction) (Cell, bool) {
	c, ok := t.Cells[Key{hourFloor(hour), nanopi, d}]
	return c, ok
}

// DirectionAxes returns the direction axis, collapsing to a single
// DirectionNone slot for metrics without one.
func (t *Table) DirectionAxes() []Direction {
	if len(t.Directions) == 0 {
		return []Direction{DirectionNone}
	}
	return t.Directions
}

// NumKeys is the cardinality of the dense key space:
// |hours| * |nanopis| * |directions|.
func (t *Table) NumKeys() int {
	return len(t.Hours) * len(t.Nanopis) * len(t.DirectionAxes())
}

// Keys enumerates the full dense key space in hour, nanopi, direction order.
func (t *Table) Keys() []Key {
	keys := make([]Key, 0, t.NumKeys())
	for _, h := range t.Hours {
		for _, n := range t.Nanopis {
			for _, d := range t.DirectionAxes() {
				keys = append(keys, Key{h.Unix(), n, d})
			}
		}
	}
	return keys
}

func hourFloor(t time.Time) int64 { return t.UTC().Truncate(time.Hour).Unix() }

type observation struct {
	key  Key
	cell Cell
}

// assemble de-duplicates observations on their composite key (latest upload
// date wins, ties go to the last record seen) and derives the dense axes
// from what was observed. No records yields an empty table rather than a
// degenerate span.
func assemble(metric, unit string, directions []Direction, obs []observation) *Table {
	t := &Table{
		Metric:     metric,
		Unit:       unit,
		Directions: directions,
		Cells:      make(map[Key]Cell, len(obs)),
	}
	if len(obs) == 0 {
		return t
	}

	api.Debugf("%s: de-duplicating %d records", metric, len(obs))
	minHour := obs[0].key.HourUnix
	maxHour := obs[0].key.HourUnix
	nanopis := map[int64]struct{}{}
	for _, o := range obs {
		if old, ok := t.Cells[o.key]; !ok || !o.cell.UploadDate.Before(old.UploadDate) {
			t.Cells[o.key] = o.cell
		}
		if o.key.HourUnix < minHour {
			minHour = o.key.HourUnix
		}
		if o.key.HourUnix > maxHour {
			maxHour = o.key.HourUnix
		}
		nanopis[o.key.Nanopi] = struct{}{}
	}

	for h := minHour; h <= maxHour; h += int64(time.Hour / time.Second) {
		t.Hours = append(t.Hours, time.Unix(h, 0).UTC())
	}
	for n := range nanopis {
		t.Nanopis = append(t.Nanopis, n)
	}
	sort.Slice(t.Nanopis, func(i, j int) bool { return t.Nanopis[i] < t.Nanopis[j] })
	api.Debugf("%s: %d cells over %d hours x %d nanopis", metric, len(t.Cells), len(t.Hours), len(t.Nanopis))
	return t
}

// Bandwidth builds the dense bandwidth table. Keys include the test
// direction; values are Mbit/s.
func Bandwidth(records []api.BandwidthRecord) *Table {
	obs := make([]observation, 0, len(records))
	for _, r := range records {
		obs = append(obs, observation{
			key:  Key{hourFloor(r.UploadDate), r.Nanopi, Direction(r.Direction)},
			cell: Cell{ID: r.ID, Value: r.Bandwidth, UploadDate: r.UploadDate},
		})
	}
	return assemble("bandwidth", "Mbit/s", []Direction{DirectionUp, DirectionDown}, obs)
}

// Jitter builds the dense jitter table. No direction axis.
func Jitter(records []api.JitterRecord) *Table {
	obs := make([]observation, 0, len(records))
	for _, r := range records {
		obs = append(obs, observation{
			key:  Key{hourFloor(r.UploadDate), r.Nanopi, DirectionNone},
			cell: Cell{ID: r.ID, Value: r.Jitter, UploadDate: r.UploadDate},
		})
	}
	return assemble("jitter", "ms", nil, obs)
}

// Latency builds the dense latency table. Raw sockperf values are 1000x the
// reported unit, so each value is divided down on the way in.
func Latency(records []api.LatencyRecord) *Table {
	obs := make([]observation, 0, len(records))
	for _, r := range records {
		obs = append(obs, observation{
			key:  Key{hourFloor(r.UploadDate), r.Nanopi, DirectionNone},
			cell: Cell{ID: r.ID, Value: r.Latency / 1000, UploadDate: r.UploadDate},
		})
	}
	return assemble("latency", "ms", nil, obs)
}

// PingEntry is one ping state observation, with the observation time
// converted to the report timezone.
type PingEntry struct {
	ID         int64
	Nanopi     int64
	State      string
	Time       time.Time
	UploadDate time.Time
}

// PingLog is a sparse log of ping state observations in arrival order. Ping
// records describe state transitions, not periodic samples, so there is no
// dense reindexing step.
type PingLog []PingEntry

// Ping converts raw ping records into a PingLog. A nil location leaves the
// observation times in UTC.
func Ping(records []api.PingRecord, loc *time.Location) PingLog {
	if loc == nil {
		loc = time.UTC
	}
	log := make(PingLog, 0, len(records))
	for _, r := range records {
		log = append(log, PingEntry{
			ID:         r.ID,
			Nanopi:     r.Nanopi,
			State:      r.State,
			Time:       r.Time.In(loc),
			UploadDate: r.UploadDate,
		})
	}
	return log
}
