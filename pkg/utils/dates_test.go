package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2024-01-01", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"2024-01-01T10:30", time.Date(2024, 1, 1, 10, 30, 0, 0, time.UTC)},
		{"2024-01-01T10:30:15", time.Date(2024, 1, 1, 10, 30, 15, 0, time.UTC)},
		{"2024-01-01 10:30:15", time.Date(2024, 1, 1, 10, 30, 15, 0, time.UTC)},
		{"2024-01-01T10:30:15.500Z", time.Date(2024, 1, 1, 10, 30, 15, 500_000_000, time.UTC)},
		{"2024-01-01T12:00:00+06:00", time.Date(2024, 1, 1, 6, 0, 0, 0, time.UTC)},
		{" 2024-03-05 ", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDate(tt.in)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s", got)
			assert.Equal(t, time.UTC, got.Location())
		})
	}
}

func TestParseDateRejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "invalid", "2024-13-01", "01/02/2024"} {
		_, err := ParseDate(in)
		assert.Error(t, err, in)
	}
}

func TestDayKey(t *testing.T) {
	ts := time.Date(2024, 1, 1, 23, 30, 0, 0, time.FixedZone("UTC-2", -2*3600))
	assert.Equal(t, "2024-01-02", DayKey(ts))
}
