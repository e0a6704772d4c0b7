package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/courtmate/matchmaking-system/matching"
	"github.com/courtmate/matchmaking-system/models"
	"github.com/courtmate/matchmaking-system/repositories"
)

const sweepGuildConcurrency = 4

type MatchmakingService interface {
	// SuggestionsForPlayer ranks candidate opponents across every open window
	// of the player inside the horizon. Always succeeds: failures degrade to
	// an empty list.
	SuggestionsForPlayer(ctx context.Context, guildID, userID string, hoursAhead, limit int) []*matching.Suggestion
	SuggestionsForSchedule(ctx context.Context, guildID, scheduleID string, limit int) []*matching.Suggestion
	// ProposeMatch turns a suggestion into a pending match invitation.
	// Duplicate active requests for the same players and window are rejected.
	ProposeMatch(ctx context.Context, input ProposeMatchInput) (*models.Match, error)
	// AutoMatchSweep recomputes suggestions for upcoming open schedules in
	// every active guild and pushes them to subscribed clients.
	AutoMatchSweep(ctx context.Context, horizon time.Duration) error
}

type ProposeMatchInput struct {
	GuildID     string           `json:"guild_id"`
	Players     []string         `json:"players"`
	MatchType   models.MatchType `json:"match_type"`
	StartTime   int64            `json:"start_time"`
	EndTime     int64            `json:"end_time"`
	CourtID     *string          `json:"court_id,omitempty"`
	ScheduleIDs []string         `json:"schedule_ids,omitempty"`
	Notes       *string          `json:"notes,omitempty"`
}

type matchmakingService struct {
	engine       *matching.Engine
	matchRepo    repositories.MatchRepository
	scheduleRepo repositories.ScheduleRepository
	db           *sql.DB
	hub          *matching.Hub
	log          *slog.Logger
}

// NewMatchmakingService builds the matching engine on top of the repositories
// and exposes the suggestion and proposal flows.
func NewMatchmakingService(
	cfg matching.Config,
	db *sql.DB,
	playerRepo repositories.PlayerRepository,
	scheduleRepo repositories.ScheduleRepository,
	courtRepo repositories.CourtRepository,
	matchRepo repositories.MatchRepository,
	hub *matching.Hub,
	log *slog.Logger,
) (MatchmakingService, error) {
	sources := engineSources{
		players:   playerRepo,
		schedules: scheduleRepo,
		courts:    courtRepo,
		matches:   matchRepo,
	}
	engine, err := matching.NewEngine(cfg, sources, sources, sources, sources, log)
	if err != nil {
		return nil, fmt.Errorf("failed to build matching engine: %w", err)
	}
	return &matchmakingService{
		engine:       engine,
		matchRepo:    matchRepo,
		scheduleRepo: scheduleRepo,
		db:           db,
		hub:          hub,
		log:          log,
	}, nil
}

func (s *matchmakingService) SuggestionsForPlayer(ctx context.Context, guildID, userID string, hoursAhead, limit int) []*matching.Suggestion {
	suggestions := s.engine.FindMatchesForPlayer(ctx, guildID, userID, hoursAhead)
	return truncateSuggestions(suggestions, limit)
}

func (s *matchmakingService) SuggestionsForSchedule(ctx context.Context, guildID, scheduleID string, limit int) []*matching.Suggestion {
	suggestions := s.engine.FindMatchesForSchedule(ctx, guildID, scheduleID)
	return truncateSuggestions(suggestions, limit)
}

func (s *matchmakingService) ProposeMatch(ctx context.Context, input ProposeMatchInput) (*models.Match, error) {
	match := &models.Match{
		GuildID:   input.GuildID,
		MatchID:   newID("match"),
		Players:   models.SortedParticipants(input.Players),
		MatchType: input.MatchType,
		Status:    models.MatchStatusPendingConfirmation,
		CourtID:   input.CourtID,
		StartTime: input.StartTime,
		EndTime:   input.EndTime,
		Notes:     input.Notes,
	}
	if err := match.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	// Мягкая проверка до записи: тот же ответ, что и атомарная защита ниже,
	// но без лишнего INSERT в типичном случае.
	if s.engine.Deduper().HasBlockingRequest(ctx, input.GuildID, match.Players, input.StartTime, input.EndTime) {
		return nil, ErrDuplicateMatchRequest
	}

	if err := s.matchRepo.CreateIfAbsent(ctx, match); err != nil {
		if errors.Is(err, repositories.ErrMatchAlreadyExists) {
			return nil, ErrDuplicateMatchRequest
		}
		return nil, fmt.Errorf("failed to create match: %w", err)
	}

	if len(input.ScheduleIDs) > 0 {
		if err := s.scheduleRepo.AttachMatch(ctx, s.db, input.GuildID, input.ScheduleIDs, match.MatchID); err != nil {
			// Матч уже создан, рассинхрон окон не фатален для приглашения.
			s.log.ErrorContext(ctx, "failed to attach schedules to match",
				slog.String("guild_id", input.GuildID), slog.String("match_id", match.MatchID), slog.Any("error", err))
		}
	}

	if s.hub != nil {
		s.hub.BroadcastToGuild(match.GuildID, matching.WebSocketMessage{
			Type:    matching.EventMatchProposed,
			Payload: match,
		})
	}
	return match, nil
}

func (s *matchmakingService) AutoMatchSweep(ctx context.Context, horizon time.Duration) error {
	now := time.Now().Unix()
	guilds, err := s.scheduleRepo.ListActiveGuilds(ctx, now)
	if err != nil {
		return fmt.Errorf("failed to list active guilds: %w", err)
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(sweepGuildConcurrency)
	for _, guildID := range guilds {
		guildID := guildID
		g.Go(func() error {
			s.sweepGuild(gCtx, guildID, now, now+int64(horizon.Seconds()))
			return nil
		})
	}
	return g.Wait()
}

func (s *matchmakingService) sweepGuild(ctx context.Context, guildID string, from, to int64) {
	schedules, err := s.scheduleRepo.ListUpcomingOpen(ctx, guildID, from, to)
	if err != nil {
		s.log.ErrorContext(ctx, "sweep: failed to list upcoming schedules",
			slog.String("guild_id", guildID), slog.Any("error", err))
		return
	}

	for _, schedule := range schedules {
		suggestions := s.engine.FindMatchesForSchedule(ctx, guildID, schedule.ScheduleID)
		if len(suggestions) == 0 {
			continue
		}
		if s.hub != nil {
			s.hub.BroadcastToGuild(guildID, matching.WebSocketMessage{
				Type: matching.EventSuggestionsReady,
				Payload: map[string]interface{}{
					"schedule_id": schedule.ScheduleID,
					"user_id":     schedule.UserID,
					"suggestions": suggestions,
				},
			})
		}
		s.log.InfoContext(ctx, "sweep: suggestions ready",
			slog.String("guild_id", guildID),
			slog.String("schedule_id", schedule.ScheduleID),
			slog.Int("count", len(suggestions)))
	}
}

func truncateSuggestions(suggestions []*matching.Suggestion, limit int) []*matching.Suggestion {
	if limit > 0 && len(suggestions) > limit {
		return suggestions[:limit]
	}
	return suggestions
}
