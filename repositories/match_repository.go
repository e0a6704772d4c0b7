package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/courtmate/matchmaking-system/models"
)

var (
	ErrMatchNotFound      = errors.New("match not found")
	ErrMatchAlreadyExists = errors.New("an active match between these players already exists")
)

type MatchRepository interface {
	// CreateIfAbsent inserts the match only if no pending or scheduled match
	// with the same participant set overlaps its window. The check and the
	// insert are one statement, so two concurrent proposals cannot both land.
	CreateIfAbsent(ctx context.Context, match *models.Match) error
	GetMatch(ctx context.Context, guildID, matchID string) (*models.Match, error)
	ListByParticipants(ctx context.Context, guildID string, participantIDs []string) ([]*models.Match, error)
	ListCompletedForUser(ctx context.Context, guildID, userID string) ([]*models.Match, error)
	ListForUser(ctx context.Context, guildID, userID string) ([]*models.Match, error)
	ListByGuild(ctx context.Context, guildID string, status models.MatchStatus) ([]*models.Match, error)
	UpdateStatus(ctx context.Context, match *models.Match) error
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

const matchColumns = `
	guild_id, match_id, players, match_type, status, court_id, start_time, end_time,
	score, winner, quality_score, cancelled_reason, notes, created_at, updated_at`

func (r *postgresMatchRepository) CreateIfAbsent(ctx context.Context, match *models.Match) error {
	// Участники хранятся отсортированными, чтобы сравнение множеств было
	// независимым от порядка.
	participants := models.SortedParticipants(match.Players)

	query := `
		INSERT INTO matches
			(guild_id, match_id, players, match_type, status, court_id, start_time, end_time, notes)
		SELECT $1, $2, $3, $4, $5, $6, $7, $8, $9
		WHERE NOT EXISTS (
			SELECT 1 FROM matches
			WHERE guild_id = $1
			  AND players = $3
			  AND status IN ($10, $11)
			  AND start_time < $8
			  AND end_time > $7
		)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		match.GuildID,
		match.MatchID,
		pq.Array(participants),
		match.MatchType,
		match.Status,
		match.CourtID,
		match.StartTime,
		match.EndTime,
		match.Notes,
		models.MatchStatusPendingConfirmation,
		models.MatchStatusScheduled,
	).Scan(&match.CreatedAt, &match.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrMatchAlreadyExists
		}
		return fmt.Errorf("failed to insert match %s: %w", match.MatchID, err)
	}
	match.Players = participants
	return nil
}

func (r *postgresMatchRepository) GetMatch(ctx context.Context, guildID, matchID string) (*models.Match, error) {
	query := `SELECT` + matchColumns + ` FROM matches WHERE guild_id = $1 AND match_id = $2`
	match, err := r.scanMatch(r.db.QueryRowContext(ctx, query, guildID, matchID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	return match, nil
}

func (r *postgresMatchRepository) ListByParticipants(ctx context.Context, guildID string, participantIDs []string) ([]*models.Match, error) {
	query := `SELECT` + matchColumns + `
		FROM matches
		WHERE guild_id = $1 AND players = $2
		ORDER BY created_at DESC`
	return r.queryMatches(ctx, query, guildID, pq.Array(models.SortedParticipants(participantIDs)))
}

func (r *postgresMatchRepository) ListCompletedForUser(ctx context.Context, guildID, userID string) ([]*models.Match, error) {
	query := `SELECT` + matchColumns + `
		FROM matches
		WHERE guild_id = $1 AND $2 = ANY(players) AND status = $3
		ORDER BY start_time DESC`
	return r.queryMatches(ctx, query, guildID, userID, models.MatchStatusCompleted)
}

func (r *postgresMatchRepository) ListForUser(ctx context.Context, guildID, userID string) ([]*models.Match, error) {
	query := `SELECT` + matchColumns + `
		FROM matches
		WHERE guild_id = $1 AND $2 = ANY(players)
		ORDER BY start_time DESC`
	return r.queryMatches(ctx, query, guildID, userID)
}

func (r *postgresMatchRepository) ListByGuild(ctx context.Context, guildID string, status models.MatchStatus) ([]*models.Match, error) {
	query := `SELECT` + matchColumns + ` FROM matches WHERE guild_id = $1`
	args := []interface{}{guildID}
	if status != "" {
		query += ` AND status = $2`
		args = append(args, status)
	}
	query += ` ORDER BY start_time DESC`
	return r.queryMatches(ctx, query, args...)
}

// UpdateStatus persists the mutable lifecycle fields of the match.
func (r *postgresMatchRepository) UpdateStatus(ctx context.Context, match *models.Match) error {
	query := `
		UPDATE matches
		SET status = $1, score = $2, winner = $3, quality_score = $4,
		    cancelled_reason = $5, updated_at = now()
		WHERE guild_id = $6 AND match_id = $7`

	result, err := r.db.ExecContext(ctx, query,
		match.Status,
		match.Score,
		match.Winner,
		match.QualityScore,
		match.CancelledReason,
		match.GuildID,
		match.MatchID,
	)
	if err != nil {
		return fmt.Errorf("failed to update match %s: %w", match.MatchID, err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) queryMatches(ctx context.Context, query string, args ...interface{}) ([]*models.Match, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches: %w", err)
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		match, scanErr := r.scanMatch(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		matches = append(matches, match)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during match rows iteration: %w", err)
	}
	return matches, nil
}

func (r *postgresMatchRepository) scanMatch(row rowScanner) (*models.Match, error) {
	match := &models.Match{}
	var players pq.StringArray
	err := row.Scan(
		&match.GuildID,
		&match.MatchID,
		&players,
		&match.MatchType,
		&match.Status,
		&match.CourtID,
		&match.StartTime,
		&match.EndTime,
		&match.Score,
		&match.Winner,
		&match.QualityScore,
		&match.CancelledReason,
		&match.Notes,
		&match.CreatedAt,
		&match.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan match row: %w", err)
	}
	match.Players = players
	return match, nil
}
