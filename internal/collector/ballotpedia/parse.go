package ballotpedia

import (
	"regexp"
	"strings"

	"github.com/ballotwatch/candidate-sync/internal/model"
	"github.com/ballotwatch/candidate-sync/internal/normalize"
)

// contestCandidate is one name extracted from a contest page, with the
// party letter the page prints next to it and the incumbency marker.
type contestCandidate struct {
	Name      string
	PartyHint string
	Incumbent bool
}

// Contest pages list candidates as profile links followed by a
// parenthesized party, with an optional "(i)" incumbency marker:
//
//	<a href="/Jane_Smith">Jane Smith</a> (D) (i)
//
// The pattern anchors on that link-plus-party shape rather than page
// structure, which has survived several site redesigns.
var candidateRe = regexp.MustCompile(
	`<a [^>]*href="/[^"]+"[^>]*>([A-Z][^<>]{0,79}?)</a>\s*\(([^()<>]{1,40})\)(\s*\(i\))?`)

// parseCandidates extracts the candidate list from a contest page.
// Duplicate names (candidate boxes repeat across page sections) are
// collapsed to their first occurrence.
func parseCandidates(page []byte) []contestCandidate {
	seen := make(map[string]bool)
	var out []contestCandidate

	for _, m := range candidateRe.FindAllStringSubmatch(string(page), -1) {
		name := strings.TrimSpace(m[1])
		if name == "" || seen[name] || !looksLikeName(name) {
			continue
		}
		seen[name] = true
		out = append(out, contestCandidate{
			Name:      name,
			PartyHint: strings.TrimSpace(m[2]),
			Incumbent: m[3] != "",
		})
	}
	return out
}

// looksLikeName filters out navigation links the candidate pattern can
// also match, such as year links and ballot-measure cross references.
func looksLikeName(s string) bool {
	if strings.ContainsAny(s, "0123456789") {
		return false
	}
	lower := strings.ToLower(s)
	for _, junk := range []string{"election", "district", "primary", "ballot"} {
		if strings.Contains(lower, junk) {
			return false
		}
	}
	return true
}

// Senate contest pages name the staggered cohort in prose ("the Class II
// seat"). Longest alternative first so "Class III" is not read as "I".
var senateClassRe = regexp.MustCompile(`(?i)\bclass\s+(III|II|I|[1-3])\b`)

// parseSenateClass pulls the senate class from the contest page, when
// the page mentions one.
func parseSenateClass(page []byte) *int {
	m := senateClassRe.FindSubmatch(page)
	if m == nil {
		return nil
	}
	return normalize.SenateClass(string(m[1]))
}

// hintParty maps the parenthesized party hint to the canonical party.
// Pages use both single letters ("D") and spelled-out names
// ("Democratic Party").
func hintParty(hint string) model.Party {
	h := strings.ToUpper(strings.TrimSpace(hint))
	h = strings.TrimSpace(strings.TrimSuffix(h, " PARTY"))
	switch {
	case strings.HasPrefix(h, "DEMOCRAT"):
		return model.Democratic
	case strings.HasPrefix(h, "REPUBLICAN"):
		return model.Republican
	case strings.HasPrefix(h, "LIBERTARIAN"):
		return model.Libertarian
	case strings.HasPrefix(h, "GREEN"):
		return model.Green
	case strings.HasPrefix(h, "INDEPENDENT"), strings.HasPrefix(h, "NONPARTISAN"):
		return model.Independent
	}
	return normalize.Party(h)
}
