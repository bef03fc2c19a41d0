// Package series implements the shared hourly DatetimeIndex and the
// per-region hourly Frame it indexes: left-joining per-region hourly
// tables onto a common index, back-filling gaps of up to 4 hours and
// zeroing longer gaps, and pointwise frame addition for aggregate
// regions.
package series

import (
	"sort"
	"time"
)

// DatetimeIndex is a shared hourly timestamp axis, possibly spanning
// multiple calendar years.
type DatetimeIndex struct {
	times []time.Time
}

// NewHourlyIndex builds an hourly index of `hours` consecutive
// timestamps, the first one being start.
func NewHourlyIndex(start time.Time, hours int) DatetimeIndex {
	times := make([]time.Time, hours)
	for i := 0; i < hours; i++ {
		times[i] = start.Add(time.Duration(i) * time.Hour)
	}
	return DatetimeIndex{times: times}
}

// NewIndexFromTimes builds an index from explicit, ascending timestamps.
func NewIndexFromTimes(times []time.Time) DatetimeIndex {
	cp := make([]time.Time, len(times))
	copy(cp, times)
	return DatetimeIndex{times: cp}
}

// Len returns the number of hours in the index.
func (idx DatetimeIndex) Len() int { return len(idx.times) }

// At returns the timestamp of hour t.
func (idx DatetimeIndex) At(t int) time.Time { return idx.times[t] }

// Times returns the underlying timestamp slice (read-only by convention).
func (idx DatetimeIndex) Times() []time.Time { return idx.times }

// HourOfDay returns the clock hour (0-23) of hour t's timestamp, in the
// timestamp's own location. The midnight-snap constraint in internal/lp
// does not call it: it uses the index position t % 24 directly.
func (idx DatetimeIndex) HourOfDay(t int) int { return idx.times[t].Hour() }

// DayOfYear returns the 1-based day-of-year for hour t, used by the
// Summer/Winter season split (spec.md §4.7).
func (idx DatetimeIndex) DayOfYear(t int) int { return idx.times[t].YearDay() }

// IndexOf returns the position of ts in the index, or -1.
func (idx DatetimeIndex) IndexOf(ts time.Time) int {
	i := sort.Search(len(idx.times), func(i int) bool { return !idx.times[i].Before(ts) })
	if i < len(idx.times) && idx.times[i].Equal(ts) {
		return i
	}
	return -1
}
