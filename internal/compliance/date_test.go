package compliance

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDate_AddDays(t *testing.T) {
	t.Parallel()

	d := NewDate(2026, time.February, 27)

	assert.Equal(t, NewDate(2026, time.March, 1), d.AddDays(2))
	assert.Equal(t, NewDate(2026, time.February, 20), d.AddDays(-7))

	// Leap year.
	assert.Equal(t, NewDate(2028, time.February, 29), NewDate(2028, time.February, 28).AddDays(1))
}

func TestDate_JSON(t *testing.T) {
	t.Parallel()

	d := NewDate(2026, time.August, 24)

	encoded, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"2026-08-24"`, string(encoded))

	var decoded Date
	require.NoError(t, json.Unmarshal(encoded, &decoded))
	assert.True(t, d.Equal(decoded))

	assert.Error(t, json.Unmarshal([]byte(`"not-a-date"`), &decoded))
	assert.Error(t, json.Unmarshal([]byte(`20260824`), &decoded))
}

func TestDate_Ordering(t *testing.T) {
	t.Parallel()

	a := NewDate(2026, time.January, 1)
	b := NewDate(2026, time.January, 2)

	assert.True(t, a.Before(b))
	assert.True(t, b.After(a))
	assert.False(t, a.Equal(b))
	assert.Equal(t, "2026-01-01", a.String())
	assert.Equal(t, time.Thursday, a.Weekday())
}
