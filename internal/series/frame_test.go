package series

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrame_ColAllocatesZeroedColumnWhenAbsent(t *testing.T) {
	idx := NewHourlyIndex(time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC), 3)
	f := NewFrame(idx)

	assert.False(t, f.Has("Load"))
	col := f.Col("Load")
	assert.Equal(t, []float64{0, 0, 0}, col)
	assert.True(t, f.Has("Load"))
}

func TestFrame_AtReturnsZeroForMissingColumn(t *testing.T) {
	idx := NewHourlyIndex(time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC), 2)
	f := NewFrame(idx)
	assert.Equal(t, 0.0, f.At("Missing", 0))
}

func TestFrame_SetColPanicsOnLengthMismatch(t *testing.T) {
	idx := NewHourlyIndex(time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC), 3)
	f := NewFrame(idx)
	assert.Panics(t, func() { f.SetCol("Load", []float64{1, 2}) })
}

func TestFrame_RequireColumns_ReportsFirstMissingColumn(t *testing.T) {
	idx := NewHourlyIndex(time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC), 1)
	f := NewFrame(idx)
	f.SetCol("Load", []float64{10})

	err := f.RequireColumns("A", "Load", "Solar")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Solar")

	assert.NoError(t, f.RequireColumns("A", "Load"))
}

func TestFrame_Add_SumsSharedAndMissingColumnsAsZero(t *testing.T) {
	idx := NewHourlyIndex(time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC), 2)
	a := NewFrame(idx)
	a.SetCol("Load", []float64{10, 20})
	a.SetCol("Solar", []float64{1, 2})

	b := NewFrame(idx)
	b.SetCol("Load", []float64{5, 5})
	b.SetCol("Wind", []float64{3, 4})

	sum := a.Add(b)
	assert.Equal(t, []float64{15, 25}, sum.Col("Load"))
	assert.Equal(t, []float64{1, 2}, sum.Col("Solar"))
	assert.Equal(t, []float64{3, 4}, sum.Col("Wind"))
}

func TestSumFrames_MatchesPairwiseAddAcrossThreeFrames(t *testing.T) {
	idx := NewHourlyIndex(time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC), 1)
	f1 := NewFrame(idx)
	f1.SetCol("Load", []float64{1})
	f2 := NewFrame(idx)
	f2.SetCol("Load", []float64{2})
	f3 := NewFrame(idx)
	f3.SetCol("Load", []float64{3})

	sum := SumFrames(f1, f2, f3)
	assert.Equal(t, 6.0, sum.At("Load", 0))
}

func TestSumFrames_EmptyReturnsNil(t *testing.T) {
	assert.Nil(t, SumFrames())
}

func TestLeftJoinBackfill_KeepsPresentValuesAndBackfillsShortGaps(t *testing.T) {
	start := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	dst := NewHourlyIndex(start, 6)
	// src has hours 0, 2, 5 only (gaps at 1, 3, 4)
	src := NewIndexFromTimes([]time.Time{
		start,
		start.Add(2 * time.Hour),
		start.Add(5 * time.Hour),
	})
	srcCol := []float64{10, 30, 60}

	out := LeftJoinBackfill(dst, src, srcCol)
	require.Len(t, out, 6)
	assert.Equal(t, 10.0, out[0])
	assert.Equal(t, 30.0, out[1], "hour 1 backfills from hour 2's value")
	assert.Equal(t, 30.0, out[2])
	assert.Equal(t, 60.0, out[3], "hour 3 backfills from hour 5's value, within the 4-hour gap limit")
	assert.Equal(t, 60.0, out[4])
	assert.Equal(t, 60.0, out[5])
}

func TestLeftJoinBackfill_ZeroesGapsLongerThanFourHours(t *testing.T) {
	start := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	dst := NewHourlyIndex(start, 7)
	src := NewIndexFromTimes([]time.Time{start})
	srcCol := []float64{10}

	out := LeftJoinBackfill(dst, src, srcCol)
	assert.Equal(t, 10.0, out[0])
	for t := 1; t < 7; t++ {
		assert.Equal(t, 0.0, out[t], "hour %d is more than 4 hours from the next known value", t)
	}
}

func TestDatetimeIndex_HourOfDayAndDayOfYear(t *testing.T) {
	idx := NewHourlyIndex(time.Date(2030, 1, 1, 22, 0, 0, 0, time.UTC), 4)
	assert.Equal(t, 22, idx.HourOfDay(0))
	assert.Equal(t, 0, idx.HourOfDay(2), "hour 2 wraps to Jan 2nd 00:00")
	assert.Equal(t, 1, idx.DayOfYear(0))
	assert.Equal(t, 2, idx.DayOfYear(2))
}

func TestDatetimeIndex_IndexOfReturnsMinusOneWhenAbsent(t *testing.T) {
	start := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	idx := NewHourlyIndex(start, 3)
	assert.Equal(t, 1, idx.IndexOf(start.Add(time.Hour)))
	assert.Equal(t, -1, idx.IndexOf(start.Add(24*time.Hour)))
}
