package week

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	require.NoError(t, err)
	return d
}

func TestID(t *testing.T) {
	tests := []struct {
		day  string
		want string
	}{
		{"2025-09-29", "2025-09-29"}, // Monday
		{"2025-10-01", "2025-09-29"}, // Wednesday
		{"2025-10-04", "2025-09-29"}, // Saturday
		{"2025-10-05", "2025-09-29"}, // Sunday belongs to the preceding Monday
		{"2025-10-06", "2025-10-06"}, // next Monday
		{"2026-01-01", "2025-12-29"}, // across a year boundary
	}

	for _, tt := range tests {
		t.Run(tt.day, func(t *testing.T) {
			assert.Equal(t, tt.want, ID(date(t, tt.day)))
		})
	}

	t.Run("ignores time of day", func(t *testing.T) {
		late := time.Date(2025, 10, 5, 23, 59, 0, 0, time.UTC)
		assert.Equal(t, "2025-09-29", ID(late))
	})

	t.Run("always lands on a Monday", func(t *testing.T) {
		start := date(t, "2024-02-20")
		for i := 0; i < 400; i++ {
			d := start.AddDate(0, 0, i)
			m := Monday(d)
			assert.Equal(t, time.Monday, m.Weekday())
			assert.True(t, !m.After(d) && d.Sub(m) < 7*24*time.Hour)
		}
	})
}

func TestWindow(t *testing.T) {
	ids, err := Window("2025-09-29", 4)
	require.NoError(t, err)
	assert.Equal(t, []string{"2025-09-29", "2025-10-06", "2025-10-13", "2025-10-20"}, ids)

	ids, err = Window("2025-10-02", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"2025-09-29", "2025-10-06"}, ids)

	_, err = Window("soon", 4)
	assert.Error(t, err)
}

func TestDays(t *testing.T) {
	days, err := Days("2025-09-29")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"2025-09-29", "2025-09-30", "2025-10-01", "2025-10-02",
		"2025-10-03", "2025-10-04", "2025-10-05",
	}, days)

	_, err = Days("2025-09-30")
	assert.Error(t, err)
}

func TestParse(t *testing.T) {
	now := date(t, "2025-10-01")

	tests := []struct {
		spec string
		want string
	}{
		{"", "2025-09-29"},
		{"today", "2025-09-29"},
		{"next", "2025-10-06"},
		{"last", "2025-09-22"},
		{"+2", "2025-10-13"},
		{"-1", "2025-09-22"},
		{"2025-10-05", "2025-09-29"},
	}
	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			got, err := Parse(tt.spec, now)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, bad := range []string{"someday", "3", "+1abc", "-2weeks", "+1.5", "+", "--1"} {
		t.Run("rejects "+bad, func(t *testing.T) {
			_, err := Parse(bad, now)
			assert.Error(t, err)
		})
	}
}

func TestContains(t *testing.T) {
	assert.True(t, Contains("2025-09-29", "2025-10-05"))
	assert.False(t, Contains("2025-09-29", "2025-10-06"))
	assert.False(t, Contains("2025-09-29", "not-a-date"))
}
