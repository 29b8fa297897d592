package mpin

import (
	"reflect"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommonPatternsFour(t *testing.T) {
	patterns := CommonPatterns(4)
	require.Len(t, patterns, 29)

	for _, pin := range []string{
		"0000", "5555", "9999",
		"0123", "3456", "6789",
		"9876", "5432", "3210",
		"1212", "1122", "1010", "2020", "6969",
	} {
		assert.Contains(t, patterns, pin)
	}

	// 4-digit runs never wrap past 9 or below 0.
	for _, pin := range []string{"7890", "8901", "2109", "1098"} {
		assert.NotContains(t, patterns, pin)
	}
}

func TestCommonPatternsSix(t *testing.T) {
	patterns := CommonPatterns(6)

	// 102030, 112233 and the ten repeats are unique; 123456 and 654321
	// overlap with the generated runs.
	require.Len(t, patterns, 22)

	for _, pin := range []string{
		"000000", "777777",
		"012345", "123456", "234567", "345678", "456789",
		"987654", "876543", "765432", "654321", "543210",
		"112233", "102030",
	} {
		assert.Contains(t, patterns, pin)
	}
	for _, pin := range []string{"567890", "432109"} {
		assert.NotContains(t, patterns, pin)
	}
}

func TestCommonPatternsUnsupportedLength(t *testing.T) {
	assert.Nil(t, CommonPatterns(5))
	assert.False(t, IsCommon("12345"))
	assert.False(t, IsCommon(""))
}

func TestCommonPatternsReturnsCopy(t *testing.T) {
	first := CommonPatterns(4)
	first[0] = "mutated"
	assert.NotContains(t, CommonPatterns(4), "mutated")
	assert.False(t, IsCommon("mutated"))
}

func TestRun(t *testing.T) {
	assert.Equal(t, "0123", run(0, 4, 1))
	assert.Equal(t, "3210", run(3, 4, -1))
	assert.Equal(t, "901234", run(9, 6, 1))
	assert.Equal(t, "109876", run(1, 6, -1))
}

func TestCommonSetsBuildOnceUnderConcurrentFirstAccess(t *testing.T) {
	tests := []struct {
		name  string
		build func() map[string]struct{}
		size  int
	}{
		{name: "four digit", build: buildCommonFour, size: 29},
		{name: "six digit", build: buildCommonSix, size: 22},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var builds sync.Map
			calls := 0
			set := sync.OnceValue(func() map[string]struct{} {
				calls++
				return tt.build()
			})

			const workers = 64
			got := make([]map[string]struct{}, workers)
			start := make(chan struct{})
			var wg sync.WaitGroup
			for i := range workers {
				wg.Go(func() {
					<-start
					got[i] = set()
					builds.Store(reflect.ValueOf(got[i]).Pointer(), struct{}{})
				})
			}
			close(start)
			wg.Wait()

			require.Equal(t, 1, calls)
			distinct := 0
			builds.Range(func(_, _ any) bool {
				distinct++
				return true
			})
			assert.Equal(t, 1, distinct, "every caller sees the same set")
			for i := range workers {
				require.Len(t, got[i], tt.size)
				assert.Equal(t, got[0], got[i])
			}
		})
	}
}
