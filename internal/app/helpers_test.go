package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEndOfMonthPlus2(t *testing.T) {
	cases := []struct {
		now  string
		want string
	}{
		{"2026-03-02", "2026-05-31"},
		{"2026-12-15", "2027-02-28"},
		{"2026-01-31", "2026-03-31"},
	}

	for _, tc := range cases {
		now, err := time.Parse("2006-01-02", tc.now)
		assert.NoError(t, err)
		assert.Equal(t, tc.want, endOfMonthPlus2(now).Format("2006-01-02"), "now=%s", tc.now)
	}
}

func TestYMD(t *testing.T) {
	assert.Equal(t, "20260302", ymd(time.Date(2026, 3, 2, 23, 59, 0, 0, time.UTC)))
}
