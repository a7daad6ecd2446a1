// Package sources builds page URLs for the league roster site and the ratings site.
// The templates must stay byte-for-byte compatible with what both sites accept.
package sources

import (
	"strconv"
	"strings"
)

const (
	DefaultRosterBaseURL  = "https://leagues.ustanorcal.com"
	DefaultRatingsBaseURL = "https://www.tennisrecord.com/adult"
)

// Names used in logs and metrics.
const (
	Roster  = "roster"
	Ratings = "ratings"
)

// URLs builds page URLs against configurable base URLs.
type URLs struct {
	rosterBase  string
	ratingsBase string
}

// New constructs URLs, falling back to the production hosts when a base is empty.
func New(rosterBase, ratingsBase string) URLs {
	return URLs{
		rosterBase:  normalizeBaseURL(rosterBase, DefaultRosterBaseURL),
		ratingsBase: normalizeBaseURL(ratingsBase, DefaultRatingsBaseURL),
	}
}

// RosterPage returns the roster player page for id.
func (u URLs) RosterPage(id string) string {
	return u.rosterBase + "/playermatches.asp?id=" + id
}

// ProfilePage returns the s-th same-named ratings profile for a player.
// Names are inserted verbatim; the ratings site expects the literal %20 separator.
func (u URLs) ProfilePage(firstName, lastName string, s int) string {
	return u.ratingsBase + "/profile.aspx?playername=" + firstName + "%20" + lastName + "&s=" + strconv.Itoa(s)
}

// SourceOf reports which site a URL belongs to, for labelling metrics.
func (u URLs) SourceOf(url string) string {
	switch {
	case strings.HasPrefix(url, u.rosterBase):
		return Roster
	case strings.HasPrefix(url, u.ratingsBase):
		return Ratings
	default:
		return "other"
	}
}

func normalizeBaseURL(raw, fallback string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		raw = fallback
	}
	return strings.TrimSuffix(raw, "/")
}
