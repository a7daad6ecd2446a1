package testutil

import (
	"fmt"
	"strings"
)

// RosterPage renders a minimal roster player page with a bold name cell and a
// PlayerInfo row holding the rating label followed by the location.
func RosterPage(name, rating, location string) string {
	var b strings.Builder
	b.WriteString("<html><body>")
	fmt.Fprintf(&b, `<table><tr><td><font size="4"><b>%s</b></font></td></tr></table>`, name)
	b.WriteString(`<table><tr class="PlayerInfo">`)
	b.WriteString(`<td><b>Rating:</b></td>`)
	if rating != "" {
		fmt.Fprintf(&b, `<td><b>%s</b></td>`, rating)
	}
	if location != "" {
		fmt.Fprintf(&b, `<td><b>%s</b></td>`, location)
	}
	b.WriteString("</tr></table></body></html>")
	return b.String()
}

// ProfileEntry is one player listed on a ratings profile page.
type ProfileEntry struct {
	Name     string
	Location string
	Rating   string
}

// ProfilePage renders a ratings page listing the given players. Each entry gets a
// link cell ("Name<br>(Location)") and, when set, a rating span.
func ProfilePage(entries ...ProfileEntry) string {
	var b strings.Builder
	b.WriteString("<html><body><table>")
	for _, e := range entries {
		fmt.Fprintf(&b, `<tr><td><a class="link" href="#">%s</a><br>(%s)</td>`, e.Name, e.Location)
		if e.Rating != "" {
			fmt.Fprintf(&b, `<td><span>%s</span></td>`, e.Rating)
		}
		b.WriteString("</tr>")
	}
	b.WriteString("</table></body></html>")
	return b.String()
}
