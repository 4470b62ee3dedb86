package store

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-06-08")
	require.NoError(t, err)
	assert.Equal(t, 2025, d.Year)
	assert.Equal(t, time.June, d.Month)
	assert.Equal(t, 8, d.Day)
	assert.Equal(t, "2025-06-08", d.String())
}

func TestParseDateRejectsGarbage(t *testing.T) {
	for _, input := range []string{"", "not-a-date", "2025-13-40", "08.06.2025"} {
		_, err := ParseDate(input)
		assert.Error(t, err, "input %q", input)
	}
}

func TestDateZeroMeansAbsent(t *testing.T) {
	assert.True(t, Date{}.IsZero())
	assert.False(t, DateOf(time.Now()).IsZero())
}

func TestDateMidnight(t *testing.T) {
	d := Date{Year: 2025, Month: time.June, Day: 8}

	utc := d.Midnight(nil)
	assert.Equal(t, time.Date(2025, 6, 8, 0, 0, 0, 0, time.UTC), utc)

	berlin, err := time.LoadLocation("Europe/Berlin")
	if err == nil {
		// CEST is UTC+2 in June.
		assert.Equal(t, time.Date(2025, 6, 7, 22, 0, 0, 0, time.UTC), d.Midnight(berlin).UTC())
	}
}

func TestDateBefore(t *testing.T) {
	earlier := Date{Year: 2025, Month: time.June, Day: 8}
	later := Date{Year: 2025, Month: time.June, Day: 9}

	assert.True(t, earlier.Before(later))
	assert.False(t, later.Before(earlier))
	assert.False(t, earlier.Before(earlier))
	assert.True(t, Date{Year: 2024, Month: time.December, Day: 31}.Before(earlier))
}

func TestDateJSONRoundTrip(t *testing.T) {
	ci := CheckIn{UserID: "u1", Date: Date{Year: 2025, Month: time.June, Day: 8}}

	raw, err := json.Marshal(ci)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"check_in_date":"2025-06-08"`)

	var decoded CheckIn
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, ci.Date, decoded.Date)
}

func TestDateUnmarshalRejectsInvalid(t *testing.T) {
	var d Date
	assert.Error(t, json.Unmarshal([]byte(`"yesterday"`), &d))
	assert.Error(t, json.Unmarshal([]byte(`42`), &d))
}
