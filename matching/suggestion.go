package matching

import (
	"github.com/courtmate/matchmaking-system/models"
)

// Suggestion is the engine's ephemeral output: a proposed pairing or foursome
// with a concrete window, venue and score breakdown. It is recomputed on every
// query and never persisted.
type Suggestion struct {
	Players        []*models.Player   `json:"players"`
	Schedules      []*models.Schedule `json:"schedules"`
	SuggestedCourt *models.Court      `json:"suggested_court,omitempty"`
	SuggestedStart int64              `json:"suggested_start"`
	SuggestedEnd   int64              `json:"suggested_end"`
	OverallScore   float64            `json:"overall_score"`
	MatchType      models.MatchType   `json:"match_type"`
	Details        map[string]float64 `json:"compatibility_details"`
	Reasons        []string           `json:"reasons"`
}

// ParticipantIDs returns the user ids of the suggested players.
func (s *Suggestion) ParticipantIDs() []string {
	ids := make([]string, len(s.Players))
	for i, p := range s.Players {
		ids[i] = p.UserID
	}
	return ids
}
