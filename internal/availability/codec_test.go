package availability

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaskLayout(t *testing.T) {
	// day 0: morning=2, afternoon=4, evening=8
	assert.Equal(t, 2, Mask(SegmentMorning, 0))
	assert.Equal(t, 4, Mask(SegmentAfternoon, 0))
	assert.Equal(t, 8, Mask(SegmentEvening, 0))
	// day 1 shifts by three bits
	assert.Equal(t, 16, Mask(SegmentMorning, 1))
	assert.Equal(t, 64, Mask(SegmentEvening, 1))
}

func TestDecodeValidValues(t *testing.T) {
	// 6 = morning|afternoon on day 0, 112 = full day 1
	p := Decode("6,112")

	assert.True(t, p[0][SegmentMorning-1])
	assert.True(t, p[0][SegmentAfternoon-1])
	assert.False(t, p[0][SegmentEvening-1])

	assert.True(t, p[1][SegmentMorning-1])
	assert.True(t, p[1][SegmentAfternoon-1])
	assert.True(t, p[1][SegmentEvening-1])

	for day := 2; day < DaysPerWeek; day++ {
		assert.Zero(t, p.DayValue(day))
	}
}

func TestDecodeRejectsInvalidBitPatterns(t *testing.T) {
	// 9 and 17 straddle day boundaries: neither matches any day's seven
	// valid combinations, so both are dropped without error.
	p := Decode("9,17")
	assert.True(t, p.IsZero())
}

func TestDecodeIgnoresGarbageTokens(t *testing.T) {
	p := Decode("abc,,0,-1, 6 ,xyz")
	assert.Equal(t, 6, p.DayValue(0))
	for day := 1; day < DaysPerWeek; day++ {
		assert.Zero(t, p.DayValue(day))
	}

	assert.True(t, Decode("").IsZero())
	assert.True(t, Decode(",,,").IsZero())
}

func TestEncodeOmitsEmptyDays(t *testing.T) {
	var p Pattern
	assert.Equal(t, "", Encode(p))

	p[3][SegmentEvening-1] = true
	encoded := Encode(p)
	assert.Equal(t, strconv.Itoa(Mask(SegmentEvening, 3)), encoded)
	assert.NotContains(t, strings.Split(encoded, ","), "0")
	assert.NotContains(t, strings.Split(encoded, ","), "-1")
}

func TestRoundTrip(t *testing.T) {
	st := NewState()
	st.Set(0, SegmentMorning)
	st.Set(0, SegmentEvening)
	st.FillDay(4)
	st.Set(6, SegmentAfternoon)

	decoded := Decode(Encode(st.Pattern()))
	require.Equal(t, st.Pattern(), decoded)
}

func TestRoundTripAllCombos(t *testing.T) {
	for day := 0; day < DaysPerWeek; day++ {
		for bits := 1; bits < 8; bits++ {
			var p Pattern
			for s := SegmentMorning; s <= SegmentEvening; s++ {
				p[day][s-SegmentMorning] = bits&(1<<(s-SegmentMorning)) != 0
			}
			got := Decode(Encode(p))
			require.Equalf(t, p, got, "day %d bits %03b", day, bits)
		}
	}
}
