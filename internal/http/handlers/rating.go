package handlers

import "github.com/preston-bernstein/ntrp-rating-service/internal/domain"

// Rating lookup states reported to clients.
const (
	StatusResolved   = "resolved"
	StatusUnresolved = "unresolved"
	StatusFailed     = "failed"
)

// RatingResponse is the JSON shape of one player lookup.
type RatingResponse struct {
	// Ref echoes the submitted reference in batch results.
	Ref      string `json:"ref,omitempty"`
	PlayerID string `json:"playerId"`
	Status   string `json:"status"`
	URL      string `json:"url,omitempty"`
	Rating   string `json:"rating,omitempty"`
	Display  string `json:"display"`
	Error    string `json:"error,omitempty"`
}

func newRatingResponse(res domain.Resolution) RatingResponse {
	resp := RatingResponse{
		PlayerID: res.PlayerID,
		Status:   StatusUnresolved,
		Display:  res.Display(),
	}
	if res.Resolved() {
		resp.Status = StatusResolved
		resp.URL = res.Record.URL
		resp.Rating = res.Record.Rating
	}
	return resp
}

func failedResponse(id domain.PlayerID, msg string) RatingResponse {
	return RatingResponse{
		PlayerID: id,
		Status:   StatusFailed,
		Display:  domain.UnknownRating,
		Error:    msg,
	}
}
