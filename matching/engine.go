package matching

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/courtmate/matchmaking-system/models"
)

const playerFetchConcurrency = 8

// Engine is the matchmaking core: it clusters overlapping availability,
// expands clusters into singles/doubles candidates, scores them, attaches a
// window and venue, applies dedup throttling and returns ranked suggestions.
// It is synchronous and stateless: every invocation recomputes from freshly
// fetched records and the engine itself never writes.
type Engine struct {
	cfg       Config
	players   PlayerSource
	schedules ScheduleSource
	courts    CourtSource
	matches   MatchSource
	dedup     *Deduper
	log       *slog.Logger
	now       func() time.Time
}

// Option настраивает движок при создании. Используется в тестах для
// подмены часов.
type Option func(*Engine)

func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

func NewEngine(cfg Config, players PlayerSource, schedules ScheduleSource,
	courts CourtSource, matches MatchSource, log *slog.Logger, opts ...Option) (*Engine, error) {

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	e := &Engine{
		cfg:       cfg,
		players:   players,
		schedules: schedules,
		courts:    courts,
		matches:   matches,
		log:       log,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.dedup = NewDeduper(matches, cfg.CancelRecency, e.now, log)
	return e, nil
}

// Deduper exposes the engine's dedup component so the proposal path can
// hard-block duplicate invitations with the same state the engine scores with.
func (e *Engine) Deduper() *Deduper {
	return e.dedup
}

// FindMatchesForPlayer evaluates every open schedule the player owns against
// the pool of open schedules within the horizon. Failures degrade to an empty
// result: unknown ids and internal errors are logged, never propagated.
func (e *Engine) FindMatchesForPlayer(ctx context.Context, guildID, userID string, hoursAhead int) []*Suggestion {
	player, err := e.players.GetPlayer(ctx, guildID, userID)
	if err != nil {
		e.log.ErrorContext(ctx, "player lookup failed",
			slog.String("guild_id", guildID), slog.String("user_id", userID), slog.Any("error", err))
		return []*Suggestion{}
	}
	if player == nil {
		e.log.WarnContext(ctx, "player not found",
			slog.String("guild_id", guildID), slog.String("user_id", userID))
		return []*Suggestion{}
	}

	playerSchedules, err := e.schedules.ListUserSchedules(ctx, guildID, userID)
	if err != nil {
		e.log.ErrorContext(ctx, "user schedule listing failed",
			slog.String("guild_id", guildID), slog.String("user_id", userID), slog.Any("error", err))
		return []*Suggestion{}
	}
	playerSchedules = openOnly(playerSchedules)
	if len(playerSchedules) == 0 {
		return []*Suggestion{}
	}

	now := e.now().Unix()
	horizon := now + int64(hoursAhead)*3600
	pool, err := e.schedules.ListOverlapping(ctx, guildID, now, horizon, userID)
	if err != nil {
		e.log.ErrorContext(ctx, "overlapping schedule listing failed",
			slog.String("guild_id", guildID), slog.Any("error", err))
		return []*Suggestion{}
	}
	pool = openOnly(pool)
	if len(pool) == 0 {
		return []*Suggestion{}
	}

	playersByUser := e.loadPlayers(ctx, guildID, pool)
	scorer := NewScorer(e.cfg, newHistoryCache(e.matches), e.log)

	var suggestions []*Suggestion
	for _, schedule := range playerSchedules {
		anchor := newScoredParticipant(player, schedule)
		suggestions = append(suggestions, e.findForAnchor(ctx, scorer, anchor, pool, playersByUser)...)
	}

	sortSuggestions(suggestions)
	if suggestions == nil {
		suggestions = []*Suggestion{}
	}
	return suggestions
}

// FindMatchesForSchedule evaluates one specific schedule against the open
// schedules overlapping its window.
func (e *Engine) FindMatchesForSchedule(ctx context.Context, guildID, scheduleID string) []*Suggestion {
	schedule, err := e.schedules.GetSchedule(ctx, guildID, scheduleID)
	if err != nil {
		e.log.ErrorContext(ctx, "schedule lookup failed",
			slog.String("guild_id", guildID), slog.String("schedule_id", scheduleID), slog.Any("error", err))
		return []*Suggestion{}
	}
	if schedule == nil || schedule.Status != models.ScheduleStatusOpen {
		return []*Suggestion{}
	}

	player, err := e.players.GetPlayer(ctx, guildID, schedule.UserID)
	if err != nil || player == nil {
		e.log.WarnContext(ctx, "schedule owner not resolvable",
			slog.String("guild_id", guildID), slog.String("user_id", schedule.UserID), slog.Any("error", err))
		return []*Suggestion{}
	}

	pool, err := e.schedules.ListOverlapping(ctx, guildID, schedule.StartTime, schedule.EndTime, schedule.UserID)
	if err != nil {
		e.log.ErrorContext(ctx, "overlapping schedule listing failed",
			slog.String("guild_id", guildID), slog.Any("error", err))
		return []*Suggestion{}
	}
	pool = openOnly(pool)
	if len(pool) == 0 {
		return []*Suggestion{}
	}

	playersByUser := e.loadPlayers(ctx, guildID, pool)
	scorer := NewScorer(e.cfg, newHistoryCache(e.matches), e.log)

	anchor := newScoredParticipant(player, schedule)
	suggestions := e.findForAnchor(ctx, scorer, anchor, pool, playersByUser)

	sortSuggestions(suggestions)
	if suggestions == nil {
		suggestions = []*Suggestion{}
	}
	return suggestions
}

// findForAnchor clusters the pool around the anchor schedule and expands every
// cluster into singles and (when at least three other players share the
// window) doubles candidates.
func (e *Engine) findForAnchor(ctx context.Context, scorer *Scorer, anchor scoredParticipant,
	pool []*models.Schedule, playersByUser map[string]*models.Player) []*Suggestion {

	var suggestions []*Suggestion
	for _, cluster := range ClusterByOverlap(anchor.schedule, pool) {
		suggestions = append(suggestions, e.singlesCandidates(ctx, scorer, anchor, cluster, playersByUser)...)
		if len(cluster) >= 3 {
			suggestions = append(suggestions, e.doublesCandidates(ctx, scorer, anchor, cluster, playersByUser)...)
		}
	}
	return suggestions
}

// loadPlayers fetches the owners of the pooled schedules. Individual lookup
// failures are logged and the schedule is simply skipped downstream.
func (e *Engine) loadPlayers(ctx context.Context, guildID string, schedules []*models.Schedule) map[string]*models.Player {
	userIDs := make([]string, 0, len(schedules))
	seen := make(map[string]struct{}, len(schedules))
	for _, s := range schedules {
		if _, dup := seen[s.UserID]; dup {
			continue
		}
		seen[s.UserID] = struct{}{}
		userIDs = append(userIDs, s.UserID)
	}

	players := make(map[string]*models.Player, len(userIDs))
	var mu sync.Mutex

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(playerFetchConcurrency)
	for _, userID := range userIDs {
		userID := userID
		g.Go(func() error {
			player, err := e.players.GetPlayer(gCtx, guildID, userID)
			if err != nil {
				e.log.WarnContext(gCtx, "player fetch failed, skipping schedules of this user",
					slog.String("guild_id", guildID), slog.String("user_id", userID), slog.Any("error", err))
				return nil
			}
			if player == nil {
				return nil
			}
			mu.Lock()
			players[userID] = player
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return players
}

func openOnly(schedules []*models.Schedule) []*models.Schedule {
	open := schedules[:0:0]
	for _, s := range schedules {
		if s.Status == models.ScheduleStatusOpen {
			open = append(open, s)
		}
	}
	return open
}

func sortSuggestions(suggestions []*Suggestion) {
	sort.SliceStable(suggestions, func(i, j int) bool {
		return suggestions[i].OverallScore > suggestions[j].OverallScore
	})
}

// historyCache memoizes completed-match lookups for the lifetime of a single
// engine invocation.
type historyCache struct {
	matches MatchSource
	mu      sync.Mutex
	memo    map[string][]*models.Match
	errs    map[string]error
}

func newHistoryCache(matches MatchSource) *historyCache {
	return &historyCache{
		matches: matches,
		memo:    make(map[string][]*models.Match),
		errs:    make(map[string]error),
	}
}

func (h *historyCache) CompletedMatches(ctx context.Context, guildID, userID string) ([]*models.Match, error) {
	key := guildID + "/" + userID
	h.mu.Lock()
	defer h.mu.Unlock()
	if err, ok := h.errs[key]; ok {
		return nil, err
	}
	if cached, ok := h.memo[key]; ok {
		return cached, nil
	}

	completed, err := h.matches.ListCompletedForUser(ctx, guildID, userID)
	if err != nil {
		h.errs[key] = err
		return nil, err
	}
	h.memo[key] = completed
	return completed, nil
}
