package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/preston-bernstein/ntrp-rating-service/internal/domain"
)

// locationNodeIndex is the position of the "(City)" text node among the
// children of the cell holding the player link.
const locationNodeIndex = 2

// ParseProfilePage extracts the location listed next to the named player and the
// first dynamic rating on the page.
//
// The rating is taken from the first matching span anywhere in the document; it
// is not tied to the matched name, so a page listing several same-named players
// reports the first player's rating.
func ParseProfilePage(body, firstName, lastName string) domain.ProfileAttributes {
	var attrs domain.ProfileAttributes
	doc := parseDocument(body)
	if doc == nil {
		return attrs
	}

	name := strings.ToLower(firstName + " " + lastName)
	doc.FindMatcher(profileLinkMatcher).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if strings.ToLower(cellText(s)) != name {
			return true
		}
		attrs.Location = locationBeside(s)
		return false
	})

	doc.FindMatcher(profileRatingMatcher).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := cellText(s)
		if !dynamicRatingPattern.MatchString(text) {
			return true
		}
		attrs.Rating = text
		return false
	})

	return attrs
}

func locationBeside(link *goquery.Selection) string {
	parent := link.Parent()
	if parent.Length() == 0 {
		return ""
	}
	node := childAt(parent.Get(0), locationNodeIndex)
	if node == nil || node.Type != html.TextNode {
		return ""
	}
	parts := locationPattern.FindStringSubmatch(strings.TrimSpace(node.Data))
	if len(parts) != 2 {
		return ""
	}
	return parts[1]
}

func childAt(n *html.Node, index int) *html.Node {
	i := 0
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if i == index {
			return c
		}
		i++
	}
	return nil
}
