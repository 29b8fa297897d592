package mpin

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDatePatterns(t *testing.T) {
	t.Run("full pattern list in order", func(t *testing.T) {
		got := DatePatterns("1998-01-02")
		assert.Equal(t, []string{
			"0201", "0102",
			"0298", "9802",
			"0198", "9801",
			"1998",
			"020198", "010298", "980102",
			"02011998", "01021998",
		}, got)
	})

	t.Run("always twelve patterns for a valid date", func(t *testing.T) {
		for _, date := range []string{"1985-02-15", "2020-06-14", "2000-12-31"} {
			assert.Len(t, DatePatterns(date), 12, date)
		}
	})

	t.Run("empty and malformed input yields nothing", func(t *testing.T) {
		for _, date := range []string{
			"",
			"not-a-date",
			"1998/01/02",
			"1998-01",
			"1998-01-02-03",
			"1998--02",
			"19x8-01-02",
			"1998-01-02T00:00:00",
		} {
			assert.Empty(t, DatePatterns(date), "date %q", date)
		}
	})

	t.Run("short year falls back to the whole year", func(t *testing.T) {
		got := DatePatterns("7-01-02")
		assert.Contains(t, got, "02017")
	})
}
