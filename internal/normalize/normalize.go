// Package normalize converts provider-specific raw field values into
// canonical typed values. Every function is pure and total: malformed
// input degrades to a nil/default value, never an error, so a bad field
// can never abort a record on its own.
package normalize

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/ballotwatch/candidate-sync/internal/model"
)

// partyCodes maps provider party codes to the canonical enumeration.
// FEC three-letter codes plus the single letters the wiki source yields.
var partyCodes = map[string]model.Party{
	"DEM": model.Democratic,
	"D":   model.Democratic,
	"DFL": model.Democratic,
	"REP": model.Republican,
	"R":   model.Republican,
	"LIB": model.Libertarian,
	"L":   model.Libertarian,
	"GRE": model.Green,
	"GRN": model.Green,
	"G":   model.Green,
	"IND": model.Independent,
	"I":   model.Independent,
	"NPA": model.Independent,
}

// Party maps a raw party code to the canonical party. Unmapped codes
// default to other; an unknown party is not an error condition.
func Party(code string) model.Party {
	if p, ok := partyCodes[strings.ToUpper(strings.TrimSpace(code))]; ok {
		return p
	}
	return model.OtherParty
}

// Office maps a raw office code to the canonical office. The second
// return reports whether the code was recognized.
func Office(code string) (model.Office, bool) {
	switch strings.ToUpper(strings.TrimSpace(code)) {
	case "S", "SENATE":
		return model.Senate, true
	case "H", "HOUSE":
		return model.House, true
	case "G", "GOV", "GOVERNOR":
		return model.Governor, true
	default:
		return "", false
	}
}

var districtNumRe = regexp.MustCompile(`\d+`)

// District parses a raw district value into a district number.
// "At-Large" in its various spellings maps to 0; an embedded number is
// accepted ("District 12" -> 12); anything unparsable returns nil, which
// is still usable for senate and governor drafts.
func District(raw string) *int {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}

	switch strings.ToUpper(strings.ReplaceAll(s, "-", " ")) {
	case "AT LARGE", "AL":
		return intPtr(0)
	}

	m := districtNumRe.FindString(s)
	if m == "" {
		return nil
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return nil
	}
	return intPtr(n)
}

var romanClasses = map[string]int{"I": 1, "II": 2, "III": 3}

// SenateClass parses a senate class from free text: "Class II", "Class 2",
// "II", and "2" all yield 2. Values outside 1..3 and unparsable text
// return nil.
func SenateClass(raw string) *int {
	s := strings.ToUpper(strings.TrimSpace(raw))
	s = strings.TrimSpace(strings.TrimPrefix(s, "CLASS"))
	if s == "" {
		return nil
	}

	if n, ok := romanClasses[s]; ok {
		return intPtr(n)
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > 3 {
		return nil
	}
	return intPtr(n)
}

// Name splits a "LAST, FIRST MIDDLE" filing name on the first comma.
// The first name is the first token after the comma. When no comma is
// present the whole string doubles as full and last name and no first
// name is inferred.
func Name(raw string) (full, first, last string) {
	full = strings.TrimSpace(raw)
	if full == "" {
		return "", "", ""
	}

	before, after, found := strings.Cut(full, ",")
	if !found {
		return full, "", full
	}

	last = strings.TrimSpace(before)
	if rest := strings.Fields(after); len(rest) > 0 {
		first = rest[0]
	}
	return full, first, last
}

// DisplayName splits a western-order "First Middle Last" display name,
// as published by the wiki source. The last token is the last name.
func DisplayName(raw string) (full, first, last string) {
	full = strings.TrimSpace(raw)
	if full == "" {
		return "", "", ""
	}

	parts := strings.Fields(full)
	first = parts[0]
	last = parts[len(parts)-1]
	if len(parts) == 1 {
		first = ""
	}
	return full, first, last
}

// Incumbent derives the incumbent flag from a free-text incumbency or
// challenge indicator ("I", "incumbent").
func Incumbent(raw string) bool {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "I", "INCUMBENT":
		return true
	default:
		return false
	}
}

// Status maps a provider candidacy status code to the canonical status.
// FEC uses C (statutory candidate), F (future), N (not yet statutory),
// P (prior cycle). Unknown codes default to declared.
func Status(raw string) model.CandidateStatus {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "C":
		return model.StatusFiled
	case "F", "N":
		return model.StatusDeclared
	case "P":
		return model.StatusWithdrawn
	default:
		return model.StatusDeclared
	}
}

func intPtr(n int) *int { return &n }
