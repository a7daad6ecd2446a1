package domain

// PlayerID identifies a player on the league roster site. It has no meaning on the ratings site.
type PlayerID = string

// UnknownRating is the neutral placeholder shown when no rating could be resolved.
const UnknownRating = "❔"

// RosterAttributes are the identifying attributes scraped from a roster player page.
// Empty fields mean the page did not carry the expected structure.
type RosterAttributes struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Location  string `json:"location,omitempty"`
}

// FullName joins first and last name the way the ratings site expects them.
func (a RosterAttributes) FullName() string {
	return a.FirstName + " " + a.LastName
}

// ProfileAttributes are the fields scraped from one ratings-site candidate page.
type ProfileAttributes struct {
	Location string `json:"location,omitempty"`
	Rating   string `json:"rating,omitempty"`
}

// CandidatePage is one probed ratings-site page.
type CandidatePage struct {
	URL  string `json:"url"`
	Body string `json:"body"`
}

// Match is the accepted candidate once its location equals the roster location.
type Match struct {
	URL    string
	Rating string
}

// Complete reports whether the match carries both a URL and a rating.
func (m Match) Complete() bool {
	return m.URL != "" && m.Rating != ""
}

// ResolvedRecord is the cached, terminal result for a player.
type ResolvedRecord struct {
	URL    string `json:"trURL"`
	Rating string `json:"rating"`
}

// Valid reports whether both fields are present.
func (r ResolvedRecord) Valid() bool {
	return r.URL != "" && r.Rating != ""
}

// Outcome describes how a resolution ended.
type Outcome string

const (
	OutcomeResolved   Outcome = "resolved"
	OutcomeUnresolved Outcome = "unresolved"
)

// Resolution is the result of resolving one player ID.
type Resolution struct {
	PlayerID  PlayerID
	Outcome   Outcome
	Record    ResolvedRecord
	Probes    int
	FromCache bool
}

// Resolved reports whether a rating record was found.
func (r Resolution) Resolved() bool {
	return r.Outcome == OutcomeResolved
}

// Display returns the rating, or the placeholder when unresolved.
func (r Resolution) Display() string {
	if r.Resolved() && r.Record.Rating != "" {
		return r.Record.Rating
	}
	return UnknownRating
}

// NewResolved builds a resolved outcome.
func NewResolved(id PlayerID, record ResolvedRecord, probes int, fromCache bool) Resolution {
	return Resolution{
		PlayerID:  id,
		Outcome:   OutcomeResolved,
		Record:    record,
		Probes:    probes,
		FromCache: fromCache,
	}
}

// NewUnresolved builds the "rating unknown" outcome.
func NewUnresolved(id PlayerID, probes int) Resolution {
	return Resolution{
		PlayerID: id,
		Outcome:  OutcomeUnresolved,
		Probes:   probes,
	}
}
