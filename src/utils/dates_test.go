package utils_test

import (
	"testing"
	"time"

	"qcdispatch/src/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWeekdays(t *testing.T) {
	t.Run("valid tags", func(t *testing.T) {
		days, err := utils.ParseWeekdays([]string{"MON", "WED", "FRI"})
		require.NoError(t, err)
		assert.Equal(t, map[time.Weekday]bool{
			time.Monday:    true,
			time.Wednesday: true,
			time.Friday:    true,
		}, days)
	})

	t.Run("tags are case-insensitive and trimmed", func(t *testing.T) {
		days, err := utils.ParseWeekdays([]string{" sun ", "Sat"})
		require.NoError(t, err)
		assert.True(t, days[time.Sunday])
		assert.True(t, days[time.Saturday])
	})

	t.Run("unknown tag", func(t *testing.T) {
		_, err := utils.ParseWeekdays([]string{"MON", "FUNDAY"})
		assert.Error(t, err)
	})
}

func TestParseTimeOfDay(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		tod, err := utils.ParseTimeOfDay("09:30")
		require.NoError(t, err)
		assert.Equal(t, utils.TimeOfDay{Hour: 9, Minute: 30}, tod)
		assert.Equal(t, "09:30", tod.String())
	})

	t.Run("invalid", func(t *testing.T) {
		for _, value := range []string{"", "9am", "25:00", "09:61"} {
			_, err := utils.ParseTimeOfDay(value)
			assert.Error(t, err, "value %q", value)
		}
	})
}

func TestTimeOfDayAt(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	day := time.Date(2024, 3, 4, 17, 45, 12, 0, loc)
	anchored := utils.TimeOfDay{Hour: 9, Minute: 0}.At(day)

	assert.Equal(t, time.Date(2024, 3, 4, 9, 0, 0, 0, loc), anchored)
	assert.Equal(t, loc, anchored.Location())
}

func TestSameDay(t *testing.T) {
	morning := time.Date(2024, 3, 4, 0, 0, 1, 0, time.UTC)
	night := time.Date(2024, 3, 4, 23, 59, 59, 0, time.UTC)
	nextDay := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)

	assert.True(t, utils.SameDay(morning, night))
	assert.False(t, utils.SameDay(night, nextDay))
}
