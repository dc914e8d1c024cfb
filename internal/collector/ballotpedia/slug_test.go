package ballotpedia

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ballotwatch/candidate-sync/internal/model"
)

func intPtr(n int) *int { return &n }

func TestContestSlug(t *testing.T) {
	tests := []struct {
		name     string
		state    string
		office   model.Office
		district *int
		year     int
		want     string
	}{
		{"senate", "Arizona", model.Senate, nil, 2026,
			"United_States_Senate_election_in_Arizona,_2026"},
		{"senate multiword state", "New Hampshire", model.Senate, nil, 2026,
			"United_States_Senate_election_in_New_Hampshire,_2026"},
		{"house numbered", "Arizona", model.House, intPtr(7), 2026,
			"Arizona's_7th_Congressional_District_election,_2026"},
		{"house at-large", "Wyoming", model.House, intPtr(0), 2026,
			"Wyoming's_At-Large_Congressional_District_election,_2026"},
		{"house nil district treated at-large", "Wyoming", model.House, nil, 2026,
			"Wyoming's_At-Large_Congressional_District_election,_2026"},
		{"governor", "Georgia", model.Governor, nil, 2026,
			"Georgia_gubernatorial_election,_2026"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ContestSlug(tt.state, tt.office, tt.district, tt.year))
		})
	}
}

func TestOrdinal(t *testing.T) {
	cases := map[int]string{
		1: "1st", 2: "2nd", 3: "3rd", 4: "4th",
		11: "11th", 12: "12th", 13: "13th",
		21: "21st", 22: "22nd", 23: "23rd", 52: "52nd",
	}
	for n, want := range cases {
		assert.Equal(t, want, ordinal(n))
	}
}
