package models

import "time"

type ScheduleStatus string

const (
	ScheduleStatusOpen      ScheduleStatus = "open"
	ScheduleStatusMatched   ScheduleStatus = "matched"
	ScheduleStatusCancelled ScheduleStatus = "cancelled"
)

// PreferenceOverrides позволяет переопределить предпочтения профиля для
// конкретного окна доступности. nil-срез означает "использовать профиль".
type PreferenceOverrides struct {
	Locations   []string `json:"locations,omitempty"`
	SkillLevels []string `json:"skill_levels,omitempty"`
	Genders     []string `json:"genders,omitempty"`
}

// Schedule is a player-declared availability window, half-open [StartTime, EndTime)
// in epoch seconds. Only open schedules participate in matching.
type Schedule struct {
	GuildID             string               `json:"guild_id"`
	ScheduleID          string               `json:"schedule_id"`
	UserID              string               `json:"user_id"`
	StartTime           int64                `json:"start_time"`
	EndTime             int64                `json:"end_time"`
	Status              ScheduleStatus       `json:"status"`
	PreferenceOverrides *PreferenceOverrides `json:"preference_overrides,omitempty"`
	MatchID             *string              `json:"match_id,omitempty"`
	CreatedAt           time.Time            `json:"created_at"`
	UpdatedAt           time.Time            `json:"updated_at"`
}

func (s *Schedule) Duration() int64 {
	return s.EndTime - s.StartTime
}

func (s *Schedule) OverlapsWith(other *Schedule) bool {
	return s.StartTime < other.EndTime && other.StartTime < s.EndTime
}

// OverlapWindow returns the intersection of the two windows. ok is false when
// the windows do not intersect.
func (s *Schedule) OverlapWindow(other *Schedule) (start, end int64, ok bool) {
	start = s.StartTime
	if other.StartTime > start {
		start = other.StartTime
	}
	end = s.EndTime
	if other.EndTime < end {
		end = other.EndTime
	}
	return start, end, start < end
}

// EffectivePreferences merges the owner's profile preferences with this
// schedule's overrides. A non-nil override slice shadows the profile field,
// including an explicit empty slice ("no constraint this time").
func (s *Schedule) EffectivePreferences(owner *Player) Preferences {
	prefs := owner.Preferences
	if s.PreferenceOverrides == nil {
		return prefs
	}
	if s.PreferenceOverrides.Locations != nil {
		prefs.Locations = s.PreferenceOverrides.Locations
	}
	if s.PreferenceOverrides.SkillLevels != nil {
		prefs.SkillLevels = s.PreferenceOverrides.SkillLevels
	}
	if s.PreferenceOverrides.Genders != nil {
		prefs.Genders = s.PreferenceOverrides.Genders
	}
	return prefs
}
