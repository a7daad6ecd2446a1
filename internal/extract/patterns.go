package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
)

// Selectors are compiled once; goquery accepts them through FindMatcher.
var (
	rosterNameMatcher     = cascadia.MustCompile("table tbody tr td font b")
	rosterInfoCellMatcher = cascadia.MustCompile("table tbody tr.PlayerInfo td b")
	profileLinkMatcher    = cascadia.MustCompile("table tbody tr td a.link")
	profileRatingMatcher  = cascadia.MustCompile("span")
)

var (
	// ratingLabelPattern marks the cell right before the location cell ("4.5", "3.0C").
	ratingLabelPattern = regexp.MustCompile(`\d\.\d`)
	// dynamicRatingPattern matches an estimated dynamic rating such as "4.5000 S".
	dynamicRatingPattern = regexp.MustCompile(`^[0-9]\.[0-9]{4}(\s+[A-Z])?$`)
	locationPattern      = regexp.MustCompile(`\((.+)\)`)
)

func parseDocument(body string) *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil
	}
	return doc
}

func cellText(s *goquery.Selection) string {
	return strings.TrimSpace(s.Text())
}

// IsDynamicRating reports whether text looks like an estimated dynamic rating.
func IsDynamicRating(text string) bool {
	return dynamicRatingPattern.MatchString(strings.TrimSpace(text))
}
