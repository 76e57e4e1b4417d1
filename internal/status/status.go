// Package status defines the application-status vocabulary.
//
// Unlike a strict state machine, the status column is an OPEN
// enumeration: the UI offers the canonical values below, but free text
// is accepted and stored verbatim. Normalize only canonicalizes casing
// for values we recognise ("interview" → "Interview") and applies the
// default for empty input.
package status

import "strings"

const (
	Applied          = "Applied"
	OnlineAssessment = "Online Assessment"
	Interview        = "Interview"
	Offer            = "Offer"
	Rejected         = "Rejected"
)

// Default is the status assigned when the form leaves the field blank.
const Default = Applied

// canonical is keyed by the lowercase form for case-insensitive lookup.
var canonical = map[string]string{
	strings.ToLower(Applied):          Applied,
	strings.ToLower(OnlineAssessment): OnlineAssessment,
	strings.ToLower(Interview):        Interview,
	strings.ToLower(Offer):            Offer,
	strings.ToLower(Rejected):         Rejected,
}

// Values returns the canonical statuses in pipeline order.
// Used to populate the status dropdown in the list/edit forms.
func Values() []string {
	return []string{Applied, OnlineAssessment, Interview, Offer, Rejected}
}

// Known reports whether s (case-insensitively) matches a canonical status.
func Known(s string) bool {
	_, ok := canonical[strings.ToLower(strings.TrimSpace(s))]
	return ok
}

// Normalize trims the input, substitutes Default for empty, and maps
// case-insensitive matches onto their canonical spelling. Anything else
// passes through untouched — the enumeration is open.
func Normalize(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Default
	}
	if c, ok := canonical[strings.ToLower(s)]; ok {
		return c
	}
	return s
}
