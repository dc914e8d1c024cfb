package model

import "time"

// Party is the canonical party affiliation enumeration.
type Party string

const (
	Democratic  Party = "democratic"
	Republican  Party = "republican"
	Libertarian Party = "libertarian"
	Green       Party = "green"
	Independent Party = "independent"
	OtherParty  Party = "other"
)

// Office is the canonical office enumeration.
type Office string

const (
	Senate   Office = "senate"
	House    Office = "house"
	Governor Office = "governor"
)

// CandidateStatus tracks where a candidate is in the election cycle.
type CandidateStatus string

const (
	StatusDeclared    CandidateStatus = "declared"
	StatusFiled       CandidateStatus = "filed"
	StatusQualified   CandidateStatus = "qualified"
	StatusExploratory CandidateStatus = "exploratory"
	StatusWithdrawn   CandidateStatus = "withdrawn"
	StatusWon         CandidateStatus = "won"
	StatusLost        CandidateStatus = "lost"
	StatusRunoff      CandidateStatus = "runoff"
)

// Candidate is a normalized draft of one candidate's presence in one
// election, produced by a source normalizer and consumed by the merge
// engine. FilingID is the provider-issued stable identifier; it is empty
// for sources that have none, which selects the weaker natural-key merge
// policy.
type Candidate struct {
	FilingID     string
	FullName     string
	FirstName    string
	LastName     string
	Party        Party
	State        string
	Office       Office
	District     *int
	SenateClass  *int
	Incumbent    bool
	Status       CandidateStatus
	ElectionType ElectionType
	ElectionDate time.Time
	Confidence   float64
	Source       string
}
