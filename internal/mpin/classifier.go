// Package mpin classifies numeric MPINs as strong, weak or invalid.
//
// The classification is a pure function of the MPIN and the optional personal
// dates: it does no I/O and keeps no per-call state, so it is safe to call from
// any number of goroutines.
package mpin

import "slices"

// ValidFormat reports whether pin is exactly 4 or 6 ASCII digits.
func ValidFormat(pin string) bool {
	if len(pin) != 4 && len(pin) != 6 {
		return false
	}
	return isDigits(pin)
}

// demographicChecks fixes the order dates are checked in.
var demographicChecks = []struct {
	date   func(Dates) string
	reason Reason
}{
	{func(d Dates) string { return d.Self }, ReasonDemographicDOBSelf},
	{func(d Dates) string { return d.Spouse }, ReasonDemographicDOBSpouse},
	{func(d Dates) string { return d.Anniversary }, ReasonDemographicAnniversary},
}

// Evaluate classifies pin.
//
// Rule order:
//  1. Format (hard fail, exclusive): anything but 4 or 6 digits is INVALID.
//  2. Common patterns for the pin's length.
//  3. Self, spouse and anniversary dates, each checked independently.
//
// Any reason from 2-3 makes the pin WEAK; otherwise it is STRONG.
func Evaluate(pin string, dates Dates) Result {
	if !ValidFormat(pin) {
		return Result{Verdict: VerdictInvalid, Reasons: []Reason{ReasonInvalidFormat}}
	}

	reasons := make([]Reason, 0, 4)
	if IsCommon(pin) {
		reasons = append(reasons, ReasonCommonlyUsed)
	}
	for _, check := range demographicChecks {
		date := check.date(dates)
		if date == "" {
			continue
		}
		if slices.Contains(DatePatterns(date), pin) {
			reasons = append(reasons, check.reason)
		}
	}

	if len(reasons) > 0 {
		return Result{Verdict: VerdictWeak, Reasons: reasons}
	}
	return Result{Verdict: VerdictStrong, Reasons: reasons}
}
