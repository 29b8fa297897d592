package mpin

import (
	"slices"

	dErrors "pinguard/pkg/domain-errors"
)

// Verdict is the final strength classification of an MPIN.
type Verdict string

const (
	VerdictStrong  Verdict = "STRONG"
	VerdictWeak    Verdict = "WEAK"
	VerdictInvalid Verdict = "INVALID"
)

// String returns the string representation.
func (v Verdict) String() string {
	return string(v)
}

// Reason explains why an MPIN was classified as weak or invalid.
type Reason string

const (
	ReasonCommonlyUsed           Reason = "COMMONLY_USED"
	ReasonDemographicDOBSelf     Reason = "DEMOGRAPHIC_DOB_SELF"
	ReasonDemographicDOBSpouse   Reason = "DEMOGRAPHIC_DOB_SPOUSE"
	ReasonDemographicAnniversary Reason = "DEMOGRAPHIC_ANNIVERSARY"
	ReasonInvalidFormat          Reason = "INVALID_FORMAT"
)

var reasonDescriptions = map[Reason]string{
	ReasonCommonlyUsed:           "This MPIN is commonly used and easily guessable.",
	ReasonDemographicDOBSelf:     "This MPIN matches patterns from your date of birth.",
	ReasonDemographicDOBSpouse:   "This MPIN matches patterns from your spouse's date of birth.",
	ReasonDemographicAnniversary: "This MPIN matches patterns from your anniversary date.",
	ReasonInvalidFormat:          "Invalid format - MPIN must be 4 or 6 digits only.",
}

// AllReasons lists every reason in detection order, INVALID_FORMAT last.
func AllReasons() []Reason {
	return []Reason{
		ReasonCommonlyUsed,
		ReasonDemographicDOBSelf,
		ReasonDemographicDOBSpouse,
		ReasonDemographicAnniversary,
		ReasonInvalidFormat,
	}
}

// ParseReason creates a Reason from a string, validating it.
func ParseReason(s string) (Reason, error) {
	r := Reason(s)
	if !r.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "unknown reason: "+s)
	}
	return r, nil
}

// IsValid checks if the reason is one of the supported enum values.
func (r Reason) IsValid() bool {
	_, ok := reasonDescriptions[r]
	return ok
}

// Description returns the end-user text for the reason. Unknown reasons
// describe themselves.
func (r Reason) Description() string {
	if d, ok := reasonDescriptions[r]; ok {
		return d
	}
	return string(r)
}

// String returns the string representation.
func (r Reason) String() string {
	return string(r)
}

// Dates holds the optional personal dates an MPIN is checked against, each in
// YYYY-MM-DD form. An empty field means the date was not supplied.
type Dates struct {
	Self        string
	Spouse      string
	Anniversary string
}

// Supplied returns the names of the dates that were provided, for logging.
func (d Dates) Supplied() []string {
	out := make([]string, 0, 3)
	if d.Self != "" {
		out = append(out, "dob")
	}
	if d.Spouse != "" {
		out = append(out, "spouse_dob")
	}
	if d.Anniversary != "" {
		out = append(out, "anniversary")
	}
	return out
}

// Result is the outcome of evaluating one MPIN. Reasons are in detection
// order; compare them as a set.
type Result struct {
	Verdict Verdict
	Reasons []Reason
}

// IsWeak reports whether the MPIN was flagged as weak.
func (r Result) IsWeak() bool {
	return r.Verdict == VerdictWeak
}

// HasReason reports whether reason was detected.
func (r Result) HasReason(reason Reason) bool {
	return slices.Contains(r.Reasons, reason)
}

// ReasonSet returns the reasons as a set for order-independent comparison.
func (r Result) ReasonSet() map[Reason]struct{} {
	set := make(map[Reason]struct{}, len(r.Reasons))
	for _, reason := range r.Reasons {
		set[reason] = struct{}{}
	}
	return set
}

// Descriptions maps the detected reasons to their end-user text, in order.
func (r Result) Descriptions() []string {
	out := make([]string, 0, len(r.Reasons))
	for _, reason := range r.Reasons {
		out = append(out, reason.Description())
	}
	return out
}
