package domain

import (
	"errors"
	"regexp"
	"strings"
)

// ErrInvalidPlayerLink is returned when a link does not point at a roster player page.
var ErrInvalidPlayerLink = errors.New("link is not a roster player page")

var (
	playerLinkPattern = regexp.MustCompile(`playermatches.asp\?id=(\d+)$`)
	playerIDPattern   = regexp.MustCompile(`^\d+$`)
)

// PlayerIDFromLink extracts the player ID from a roster link such as
// https://leagues.ustanorcal.com/playermatches.asp?id=12345.
func PlayerIDFromLink(link string) (PlayerID, error) {
	link = strings.TrimSpace(link)
	if link == "" {
		return "", ErrInvalidPlayerLink
	}
	matches := playerLinkPattern.FindStringSubmatch(link)
	if len(matches) != 2 {
		return "", ErrInvalidPlayerLink
	}
	return matches[1], nil
}

// ValidPlayerID reports whether id has the numeric shape roster links carry.
func ValidPlayerID(id string) bool {
	return playerIDPattern.MatchString(id)
}

// ParsePlayerRef accepts either a bare numeric ID or a roster link.
func ParsePlayerRef(ref string) (PlayerID, error) {
	ref = strings.TrimSpace(ref)
	if ValidPlayerID(ref) {
		return ref, nil
	}
	return PlayerIDFromLink(ref)
}
