package mpin

import (
	"slices"
	"strconv"
	"strings"
	"sync"
)

var (
	commonFour = sync.OnceValue(buildCommonFour)
	commonSix  = sync.OnceValue(buildCommonSix)
)

// IsCommon reports whether pin is in the commonly-used set for its length.
// Pins of any other length are never common.
func IsCommon(pin string) bool {
	set := commonSet(len(pin))
	if set == nil {
		return false
	}
	_, ok := set[pin]
	return ok
}

// CommonPatterns returns a sorted copy of the commonly-used set for length,
// or nil for unsupported lengths.
func CommonPatterns(length int) []string {
	set := commonSet(length)
	if set == nil {
		return nil
	}
	out := make([]string, 0, len(set))
	for pin := range set {
		out = append(out, pin)
	}
	slices.Sort(out)
	return out
}

func commonSet(length int) map[string]struct{} {
	switch length {
	case 4:
		return commonFour()
	case 6:
		return commonSix()
	default:
		return nil
	}
}

// buildCommonFour enumerates repeated digits, non-wrapping ascending and
// descending runs, and a fixed list of popular choices.
func buildCommonFour() map[string]struct{} {
	set := make(map[string]struct{}, 29)
	addRepeated(set, 4)
	for start := 0; start <= 6; start++ {
		set[run(start, 4, 1)] = struct{}{}
	}
	for start := 9; start >= 3; start-- {
		set[run(start, 4, -1)] = struct{}{}
	}
	for _, pin := range []string{"1212", "1122", "1010", "2020", "6969"} {
		set[pin] = struct{}{}
	}
	return set
}

// buildCommonSix is the 6-digit analogue. Its runs wrap modulo 10, unlike
// the 4-digit runs.
func buildCommonSix() map[string]struct{} {
	set := make(map[string]struct{}, 24)
	addRepeated(set, 6)
	for start := 0; start <= 4; start++ {
		set[run(start, 6, 1)] = struct{}{}
	}
	for start := 9; start >= 5; start-- {
		set[run(start, 6, -1)] = struct{}{}
	}
	for _, pin := range []string{"123456", "654321", "112233", "102030"} {
		set[pin] = struct{}{}
	}
	return set
}

func addRepeated(set map[string]struct{}, length int) {
	for d := 0; d <= 9; d++ {
		set[strings.Repeat(strconv.Itoa(d), length)] = struct{}{}
	}
}

// run builds length digits starting at start and moving by step, modulo 10.
// Callers keep non-wrapping runs in range by choosing their start digits.
func run(start, length, step int) string {
	var b strings.Builder
	b.Grow(length)
	for i := range length {
		d := ((start+step*i)%10 + 10) % 10
		b.WriteByte(byte('0' + d))
	}
	return b.String()
}
