package matching

import (
	"context"

	"github.com/courtmate/matchmaking-system/models"
)

// Read contracts the engine depends on. The repositories package satisfies
// them; tests substitute in-memory fakes. The engine never writes.

type PlayerSource interface {
	GetPlayer(ctx context.Context, guildID, userID string) (*models.Player, error)
}

type ScheduleSource interface {
	GetSchedule(ctx context.Context, guildID, scheduleID string) (*models.Schedule, error)
	ListUserSchedules(ctx context.Context, guildID, userID string) ([]*models.Schedule, error)
	// ListOverlapping returns open schedules intersecting [start, end),
	// excluding excludeUserID when non-empty.
	ListOverlapping(ctx context.Context, guildID string, start, end int64, excludeUserID string) ([]*models.Schedule, error)
}

type CourtSource interface {
	GetCourt(ctx context.Context, courtID string) (*models.Court, error)
	ListCourts(ctx context.Context) ([]*models.Court, error)
}

type MatchSource interface {
	// ListByParticipants returns matches whose participant set equals the given
	// set, order-independent.
	ListByParticipants(ctx context.Context, guildID string, participantIDs []string) ([]*models.Match, error)
	// ListCompletedForUser returns completed matches the user took part in.
	ListCompletedForUser(ctx context.Context, guildID, userID string) ([]*models.Match, error)
}
