package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/preston-bernstein/ntrp-rating-service/internal/domain"
)

// ParseRosterPage extracts the player's name and location from a roster player page.
//
// Every bold name cell overwrites the previous one, and every location candidate
// overwrites the previous location: the last qualifying cell wins.
func ParseRosterPage(body string) domain.RosterAttributes {
	var attrs domain.RosterAttributes
	doc := parseDocument(body)
	if doc == nil {
		return attrs
	}

	doc.FindMatcher(rosterNameMatcher).Each(func(_ int, s *goquery.Selection) {
		attrs.FirstName, attrs.LastName = splitName(cellText(s))
	})

	locationNext := false
	doc.FindMatcher(rosterInfoCellMatcher).Each(func(_ int, s *goquery.Selection) {
		text := cellText(s)
		if locationNext {
			locationNext = false
			attrs.Location = text
		}
		if ratingLabelPattern.MatchString(text) {
			locationNext = true
		}
	})

	return attrs
}

func splitName(text string) (string, string) {
	parts := strings.Fields(text)
	if len(parts) == 0 {
		return "", ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}
