package ballotpedia

import (
	"fmt"
	"strings"

	"github.com/ballotwatch/candidate-sync/internal/model"
)

// ContestSlug builds the wiki page title for one contest. Titles follow
// the site's naming scheme with spaces replaced by underscores:
//
//	United_States_Senate_election_in_Arizona,_2026
//	Arizona's_7th_Congressional_District_election,_2026
//	Wyoming's_At-Large_Congressional_District_election,_2026
//	Arizona_gubernatorial_election,_2026
func ContestSlug(stateName string, office model.Office, district *int, year int) string {
	var title string
	switch office {
	case model.House:
		title = fmt.Sprintf("%s's %s Congressional District election, %d",
			stateName, districtLabel(district), year)
	case model.Governor:
		title = fmt.Sprintf("%s gubernatorial election, %d", stateName, year)
	default:
		title = fmt.Sprintf("United States Senate election in %s, %d", stateName, year)
	}
	return strings.ReplaceAll(title, " ", "_")
}

func districtLabel(district *int) string {
	if district == nil || *district == 0 {
		return "At-Large"
	}
	return ordinal(*district)
}

// ordinal renders 1 -> "1st", 2 -> "2nd", 11 -> "11th", 22 -> "22nd".
func ordinal(n int) string {
	suffix := "th"
	if n%100 < 11 || n%100 > 13 {
		switch n % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return fmt.Sprintf("%d%s", n, suffix)
}
