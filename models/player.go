package models

import "time"

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

// Skill level preference values a player may declare.
const (
	SkillLevelSimilar = "similar"
	SkillLevelAbove   = "above"
	SkillLevelBelow   = "below"
	SkillLevelAny     = "any"
)

const (
	RolePlayer    = "player"
	RoleOrganizer = "organizer"
)

// NTRP rating bounds used for profile validation.
const (
	NTRPMin = 1.0
	NTRPMax = 7.0
)

// Preferences описывает предпочтения игрока для подбора соперников.
// Пустой срез означает отсутствие ограничения по этому критерию.
type Preferences struct {
	Locations   []string `json:"locations"`    // court ids
	SkillLevels []string `json:"skill_levels"` // similar / above / below / any
	Genders     []string `json:"genders"`
}

func (p Preferences) WantsSkillLevel(level string) bool {
	for _, l := range p.SkillLevels {
		if l == level {
			return true
		}
	}
	return false
}

func (p Preferences) AcceptsGender(g Gender) bool {
	for _, accepted := range p.Genders {
		if Gender(accepted) == g {
			return true
		}
	}
	return false
}

type Player struct {
	GuildID         string      `json:"guild_id"`
	UserID          string      `json:"user_id"`
	Username        string      `json:"username"`
	Email           string      `json:"email"`
	PasswordHash    string      `json:"-"`
	Role            string      `json:"role"`
	Gender          Gender      `json:"gender"`
	NTRPRating      float64     `json:"ntrp_rating"`
	Preferences     Preferences `json:"preferences"`
	EngagementScore float64     `json:"engagement_score"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}
