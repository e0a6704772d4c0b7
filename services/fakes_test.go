package services

import (
	"context"
	"io"
	"log/slog"

	"github.com/courtmate/matchmaking-system/models"
	"github.com/courtmate/matchmaking-system/repositories"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// In-memory repository fakes. Keyed maps instead of SQL; every mutating call
// is recorded so the tests can assert on side effects.

type fakePlayerRepo struct {
	players     map[string]*models.Player // by userID
	engagement  map[string]float64
	createErr   error
	getErr      error
	adjustCalls []string
}

func newFakePlayerRepo(players ...*models.Player) *fakePlayerRepo {
	r := &fakePlayerRepo{
		players:    map[string]*models.Player{},
		engagement: map[string]float64{},
	}
	for _, p := range players {
		r.players[p.UserID] = p
	}
	return r
}

func (r *fakePlayerRepo) Create(ctx context.Context, player *models.Player) error {
	if r.createErr != nil {
		return r.createErr
	}
	if _, exists := r.players[player.UserID]; exists {
		return repositories.ErrPlayerConflict
	}
	for _, p := range r.players {
		if p.Email == player.Email {
			return repositories.ErrPlayerEmailConflict
		}
	}
	// Копия: записи не делят память с вызывающим кодом, как и у настоящего
	// хранилища.
	stored := *player
	r.players[player.UserID] = &stored
	return nil
}

func (r *fakePlayerRepo) GetPlayer(ctx context.Context, guildID, userID string) (*models.Player, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	player, ok := r.players[userID]
	if !ok {
		return nil, repositories.ErrPlayerNotFound
	}
	found := *player
	return &found, nil
}

func (r *fakePlayerRepo) GetByEmail(ctx context.Context, guildID, email string) (*models.Player, error) {
	for _, p := range r.players {
		if p.Email == email {
			found := *p
			return &found, nil
		}
	}
	return nil, repositories.ErrPlayerNotFound
}

func (r *fakePlayerRepo) ListByGuild(ctx context.Context, guildID string) ([]*models.Player, error) {
	var out []*models.Player
	for _, p := range r.players {
		out = append(out, p)
	}
	return out, nil
}

func (r *fakePlayerRepo) UpdateProfile(ctx context.Context, player *models.Player) error {
	if _, ok := r.players[player.UserID]; !ok {
		return repositories.ErrPlayerNotFound
	}
	r.players[player.UserID] = player
	return nil
}

func (r *fakePlayerRepo) UpdatePreferences(ctx context.Context, guildID, userID string, prefs models.Preferences) error {
	player, ok := r.players[userID]
	if !ok {
		return repositories.ErrPlayerNotFound
	}
	player.Preferences = prefs
	return nil
}

func (r *fakePlayerRepo) AdjustEngagement(ctx context.Context, guildID, userID string, delta float64) (float64, error) {
	if _, ok := r.players[userID]; !ok {
		return 0, repositories.ErrPlayerNotFound
	}
	r.adjustCalls = append(r.adjustCalls, userID)
	next := r.engagement[userID] + delta
	if next < 0 {
		next = 0
	}
	r.engagement[userID] = next
	return next, nil
}

type fakeScheduleRepo struct {
	schedules     map[string]*models.Schedule // by scheduleID
	releasedMatch []string
	createErr     error
}

func newFakeScheduleRepo(schedules ...*models.Schedule) *fakeScheduleRepo {
	r := &fakeScheduleRepo{schedules: map[string]*models.Schedule{}}
	for _, s := range schedules {
		r.schedules[s.ScheduleID] = s
	}
	return r
}

func (r *fakeScheduleRepo) Create(ctx context.Context, schedule *models.Schedule) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.schedules[schedule.ScheduleID] = schedule
	return nil
}

func (r *fakeScheduleRepo) GetSchedule(ctx context.Context, guildID, scheduleID string) (*models.Schedule, error) {
	schedule, ok := r.schedules[scheduleID]
	if !ok {
		return nil, repositories.ErrScheduleNotFound
	}
	return schedule, nil
}

func (r *fakeScheduleRepo) ListUserSchedules(ctx context.Context, guildID, userID string) ([]*models.Schedule, error) {
	var out []*models.Schedule
	for _, s := range r.schedules {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeScheduleRepo) ListOverlapping(ctx context.Context, guildID string, start, end int64, excludeUserID string) ([]*models.Schedule, error) {
	var out []*models.Schedule
	for _, s := range r.schedules {
		if s.UserID == excludeUserID || s.Status != models.ScheduleStatusOpen {
			continue
		}
		if s.StartTime < end && s.EndTime > start {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeScheduleRepo) ListUpcomingOpen(ctx context.Context, guildID string, from, to int64) ([]*models.Schedule, error) {
	var out []*models.Schedule
	for _, s := range r.schedules {
		if s.Status == models.ScheduleStatusOpen && s.StartTime >= from && s.StartTime < to {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeScheduleRepo) ListActiveGuilds(ctx context.Context, from int64) ([]string, error) {
	seen := map[string]struct{}{}
	var out []string
	for _, s := range r.schedules {
		if s.Status != models.ScheduleStatusOpen || s.EndTime <= from {
			continue
		}
		if _, dup := seen[s.GuildID]; dup {
			continue
		}
		seen[s.GuildID] = struct{}{}
		out = append(out, s.GuildID)
	}
	return out, nil
}

func (r *fakeScheduleRepo) UpdateStatus(ctx context.Context, guildID, scheduleID string, status models.ScheduleStatus) error {
	schedule, ok := r.schedules[scheduleID]
	if !ok {
		return repositories.ErrScheduleNotFound
	}
	schedule.Status = status
	return nil
}

func (r *fakeScheduleRepo) AttachMatch(ctx context.Context, exec repositories.SQLExecutor, guildID string, scheduleIDs []string, matchID string) error {
	for _, id := range scheduleIDs {
		schedule, ok := r.schedules[id]
		if !ok {
			return repositories.ErrScheduleNotFound
		}
		schedule.Status = models.ScheduleStatusMatched
		schedule.MatchID = &matchID
	}
	return nil
}

func (r *fakeScheduleRepo) ReleaseMatch(ctx context.Context, guildID, matchID string) error {
	r.releasedMatch = append(r.releasedMatch, matchID)
	for _, s := range r.schedules {
		if s.MatchID != nil && *s.MatchID == matchID {
			s.Status = models.ScheduleStatusOpen
			s.MatchID = nil
		}
	}
	return nil
}

func (r *fakeScheduleRepo) CancelAllOpenForUser(ctx context.Context, guildID, userID string) (int64, error) {
	var cancelled int64
	for _, s := range r.schedules {
		if s.UserID == userID && s.Status == models.ScheduleStatusOpen {
			s.Status = models.ScheduleStatusCancelled
			cancelled++
		}
	}
	return cancelled, nil
}

type fakeCourtRepo struct {
	courts map[string]*models.Court
}

func newFakeCourtRepo(courts ...*models.Court) *fakeCourtRepo {
	r := &fakeCourtRepo{courts: map[string]*models.Court{}}
	for _, c := range courts {
		r.courts[c.CourtID] = c
	}
	return r
}

func (r *fakeCourtRepo) Create(ctx context.Context, court *models.Court) error {
	if _, exists := r.courts[court.CourtID]; exists {
		return repositories.ErrCourtConflict
	}
	r.courts[court.CourtID] = court
	return nil
}

func (r *fakeCourtRepo) GetCourt(ctx context.Context, courtID string) (*models.Court, error) {
	court, ok := r.courts[courtID]
	if !ok {
		return nil, repositories.ErrCourtNotFound
	}
	return court, nil
}

func (r *fakeCourtRepo) ListCourts(ctx context.Context) ([]*models.Court, error) {
	var out []*models.Court
	for _, c := range r.courts {
		out = append(out, c)
	}
	return out, nil
}

func (r *fakeCourtRepo) Update(ctx context.Context, court *models.Court) error {
	if _, ok := r.courts[court.CourtID]; !ok {
		return repositories.ErrCourtNotFound
	}
	r.courts[court.CourtID] = court
	return nil
}

func (r *fakeCourtRepo) SetPhoto(ctx context.Context, courtID, photoKey string) error {
	court, ok := r.courts[courtID]
	if !ok {
		return repositories.ErrCourtNotFound
	}
	court.PhotoKey = &photoKey
	return nil
}

func (r *fakeCourtRepo) Delete(ctx context.Context, courtID string) error {
	if _, ok := r.courts[courtID]; !ok {
		return repositories.ErrCourtNotFound
	}
	delete(r.courts, courtID)
	return nil
}

type fakeMatchRepo struct {
	matches   map[string]*models.Match // by matchID
	updateErr error
}

func newFakeMatchRepo(matches ...*models.Match) *fakeMatchRepo {
	r := &fakeMatchRepo{matches: map[string]*models.Match{}}
	for _, m := range matches {
		r.matches[m.MatchID] = m
	}
	return r
}

func (r *fakeMatchRepo) CreateIfAbsent(ctx context.Context, match *models.Match) error {
	for _, m := range r.matches {
		if !m.SameParticipants(match.Players) || !m.OverlapsWindow(match.StartTime, match.EndTime) {
			continue
		}
		if m.Status == models.MatchStatusPendingConfirmation || m.Status == models.MatchStatusScheduled {
			return repositories.ErrMatchAlreadyExists
		}
	}
	match.Players = models.SortedParticipants(match.Players)
	r.matches[match.MatchID] = match
	return nil
}

func (r *fakeMatchRepo) GetMatch(ctx context.Context, guildID, matchID string) (*models.Match, error) {
	match, ok := r.matches[matchID]
	if !ok {
		return nil, repositories.ErrMatchNotFound
	}
	return match, nil
}

func (r *fakeMatchRepo) ListByParticipants(ctx context.Context, guildID string, participantIDs []string) ([]*models.Match, error) {
	var out []*models.Match
	for _, m := range r.matches {
		if m.SameParticipants(participantIDs) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeMatchRepo) ListCompletedForUser(ctx context.Context, guildID, userID string) ([]*models.Match, error) {
	var out []*models.Match
	for _, m := range r.matches {
		if m.Status == models.MatchStatusCompleted && m.HasPlayer(userID) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeMatchRepo) ListForUser(ctx context.Context, guildID, userID string) ([]*models.Match, error) {
	var out []*models.Match
	for _, m := range r.matches {
		if m.HasPlayer(userID) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeMatchRepo) ListByGuild(ctx context.Context, guildID string, status models.MatchStatus) ([]*models.Match, error) {
	var out []*models.Match
	for _, m := range r.matches {
		if m.GuildID != guildID {
			continue
		}
		if status != "" && m.Status != status {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

func (r *fakeMatchRepo) UpdateStatus(ctx context.Context, match *models.Match) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	if _, ok := r.matches[match.MatchID]; !ok {
		return repositories.ErrMatchNotFound
	}
	r.matches[match.MatchID] = match
	return nil
}
