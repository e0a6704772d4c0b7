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
	ErrScheduleNotFound      = errors.New("schedule not found")
	ErrSchedulePlayerInvalid = errors.New("schedule references an unknown player")
)

type ScheduleRepository interface {
	Create(ctx context.Context, schedule *models.Schedule) error
	GetSchedule(ctx context.Context, guildID, scheduleID string) (*models.Schedule, error)
	ListUserSchedules(ctx context.Context, guildID, userID string) ([]*models.Schedule, error)
	ListOverlapping(ctx context.Context, guildID string, start, end int64, excludeUserID string) ([]*models.Schedule, error)
	// ListUpcomingOpen returns open schedules starting inside [from, to),
	// across the guild, for the automatic matchmaking sweep.
	ListUpcomingOpen(ctx context.Context, guildID string, from, to int64) ([]*models.Schedule, error)
	ListActiveGuilds(ctx context.Context, from int64) ([]string, error)
	UpdateStatus(ctx context.Context, guildID, scheduleID string, status models.ScheduleStatus) error
	// AttachMatch marks the schedules as matched and links them to the match.
	AttachMatch(ctx context.Context, exec SQLExecutor, guildID string, scheduleIDs []string, matchID string) error
	// ReleaseMatch reopens schedules that were linked to a cancelled match.
	ReleaseMatch(ctx context.Context, guildID, matchID string) error
	CancelAllOpenForUser(ctx context.Context, guildID, userID string) (int64, error)
}

type postgresScheduleRepository struct {
	db *sql.DB
}

func NewPostgresScheduleRepository(db *sql.DB) ScheduleRepository {
	return &postgresScheduleRepository{db: db}
}

const scheduleColumns = `
	guild_id, schedule_id, user_id, start_time, end_time, status,
	override_locations, override_skill_levels, override_genders, match_id,
	created_at, updated_at`

func (r *postgresScheduleRepository) Create(ctx context.Context, schedule *models.Schedule) error {
	var overrideLocations, overrideSkillLevels, overrideGenders interface{}
	if ov := schedule.PreferenceOverrides; ov != nil {
		if ov.Locations != nil {
			overrideLocations = pq.Array(ov.Locations)
		}
		if ov.SkillLevels != nil {
			overrideSkillLevels = pq.Array(ov.SkillLevels)
		}
		if ov.Genders != nil {
			overrideGenders = pq.Array(ov.Genders)
		}
	}

	query := `
		INSERT INTO schedules
			(guild_id, schedule_id, user_id, start_time, end_time, status,
			 override_locations, override_skill_levels, override_genders)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		schedule.GuildID,
		schedule.ScheduleID,
		schedule.UserID,
		schedule.StartTime,
		schedule.EndTime,
		schedule.Status,
		overrideLocations,
		overrideSkillLevels,
		overrideGenders,
	).Scan(&schedule.CreatedAt, &schedule.UpdatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Constraint == "schedules_player_fkey" {
			return ErrSchedulePlayerInvalid
		}
		return fmt.Errorf("failed to insert schedule %s: %w", schedule.ScheduleID, err)
	}
	return nil
}

func (r *postgresScheduleRepository) GetSchedule(ctx context.Context, guildID, scheduleID string) (*models.Schedule, error) {
	query := `SELECT` + scheduleColumns + ` FROM schedules WHERE guild_id = $1 AND schedule_id = $2`
	schedule, err := r.scanSchedule(r.db.QueryRowContext(ctx, query, guildID, scheduleID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrScheduleNotFound
		}
		return nil, err
	}
	return schedule, nil
}

func (r *postgresScheduleRepository) ListUserSchedules(ctx context.Context, guildID, userID string) ([]*models.Schedule, error) {
	query := `SELECT` + scheduleColumns + `
		FROM schedules
		WHERE guild_id = $1 AND user_id = $2
		ORDER BY start_time ASC`
	return r.querySchedules(ctx, query, guildID, userID)
}

// ListOverlapping returns open schedules intersecting the half-open window
// [start, end), optionally excluding one user.
func (r *postgresScheduleRepository) ListOverlapping(ctx context.Context, guildID string, start, end int64, excludeUserID string) ([]*models.Schedule, error) {
	query := `SELECT` + scheduleColumns + `
		FROM schedules
		WHERE guild_id = $1
		  AND status = $2
		  AND start_time < $3
		  AND end_time > $4`
	args := []interface{}{guildID, models.ScheduleStatusOpen, end, start}
	if excludeUserID != "" {
		query += ` AND user_id <> $5`
		args = append(args, excludeUserID)
	}
	query += ` ORDER BY start_time ASC, schedule_id ASC`
	return r.querySchedules(ctx, query, args...)
}

func (r *postgresScheduleRepository) ListUpcomingOpen(ctx context.Context, guildID string, from, to int64) ([]*models.Schedule, error) {
	query := `SELECT` + scheduleColumns + `
		FROM schedules
		WHERE guild_id = $1 AND status = $2 AND start_time >= $3 AND start_time < $4
		ORDER BY start_time ASC, schedule_id ASC`
	return r.querySchedules(ctx, query, guildID, models.ScheduleStatusOpen, from, to)
}

func (r *postgresScheduleRepository) ListActiveGuilds(ctx context.Context, from int64) ([]string, error) {
	query := `
		SELECT DISTINCT guild_id FROM schedules
		WHERE status = $1 AND end_time > $2
		ORDER BY guild_id`
	rows, err := r.db.QueryContext(ctx, query, models.ScheduleStatusOpen, from)
	if err != nil {
		return nil, fmt.Errorf("failed to query active guilds: %w", err)
	}
	defer rows.Close()

	guilds := make([]string, 0)
	for rows.Next() {
		var guildID string
		if scanErr := rows.Scan(&guildID); scanErr != nil {
			return nil, fmt.Errorf("failed to scan guild id: %w", scanErr)
		}
		guilds = append(guilds, guildID)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during guild rows iteration: %w", err)
	}
	return guilds, nil
}

func (r *postgresScheduleRepository) UpdateStatus(ctx context.Context, guildID, scheduleID string, status models.ScheduleStatus) error {
	query := `UPDATE schedules SET status = $1, updated_at = now() WHERE guild_id = $2 AND schedule_id = $3`
	result, err := r.db.ExecContext(ctx, query, status, guildID, scheduleID)
	if err != nil {
		return fmt.Errorf("failed to update status of schedule %s: %w", scheduleID, err)
	}
	return checkAffectedRows(result, ErrScheduleNotFound)
}

func (r *postgresScheduleRepository) AttachMatch(ctx context.Context, exec SQLExecutor, guildID string, scheduleIDs []string, matchID string) error {
	query := `
		UPDATE schedules
		SET status = $1, match_id = $2, updated_at = now()
		WHERE guild_id = $3 AND schedule_id = ANY($4)`
	result, err := exec.ExecContext(ctx, query,
		models.ScheduleStatusMatched, matchID, guildID, pq.Array(scheduleIDs))
	if err != nil {
		return fmt.Errorf("failed to attach match %s to schedules: %w", matchID, err)
	}
	return checkAffectedRows(result, ErrScheduleNotFound)
}

func (r *postgresScheduleRepository) ReleaseMatch(ctx context.Context, guildID, matchID string) error {
	query := `
		UPDATE schedules
		SET status = $1, match_id = NULL, updated_at = now()
		WHERE guild_id = $2 AND match_id = $3`
	_, err := r.db.ExecContext(ctx, query, models.ScheduleStatusOpen, guildID, matchID)
	if err != nil {
		return fmt.Errorf("failed to release schedules of match %s: %w", matchID, err)
	}
	return nil
}

func (r *postgresScheduleRepository) CancelAllOpenForUser(ctx context.Context, guildID, userID string) (int64, error) {
	query := `
		UPDATE schedules
		SET status = $1, updated_at = now()
		WHERE guild_id = $2 AND user_id = $3 AND status = $4`
	result, err := r.db.ExecContext(ctx, query,
		models.ScheduleStatusCancelled, guildID, userID, models.ScheduleStatusOpen)
	if err != nil {
		return 0, fmt.Errorf("failed to clear schedules for user %s: %w", userID, err)
	}
	cancelled, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check affected rows: %w", err)
	}
	return cancelled, nil
}

func (r *postgresScheduleRepository) querySchedules(ctx context.Context, query string, args ...interface{}) ([]*models.Schedule, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query schedules: %w", err)
	}
	defer rows.Close()

	schedules := make([]*models.Schedule, 0)
	for rows.Next() {
		schedule, scanErr := r.scanSchedule(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		schedules = append(schedules, schedule)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during schedule rows iteration: %w", err)
	}
	return schedules, nil
}

func (r *postgresScheduleRepository) scanSchedule(row rowScanner) (*models.Schedule, error) {
	schedule := &models.Schedule{}
	var overrideLocations, overrideSkillLevels, overrideGenders pq.StringArray
	var hasLocations, hasSkillLevels, hasGenders bool

	err := row.Scan(
		&schedule.GuildID,
		&schedule.ScheduleID,
		&schedule.UserID,
		&schedule.StartTime,
		&schedule.EndTime,
		&schedule.Status,
		&overrideLocations,
		&overrideSkillLevels,
		&overrideGenders,
		&schedule.MatchID,
		&schedule.CreatedAt,
		&schedule.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan schedule row: %w", err)
	}

	// pq leaves the slice nil for NULL columns, which is exactly the
	// "no override" marker the model expects.
	hasLocations = overrideLocations != nil
	hasSkillLevels = overrideSkillLevels != nil
	hasGenders = overrideGenders != nil
	if hasLocations || hasSkillLevels || hasGenders {
		schedule.PreferenceOverrides = &models.PreferenceOverrides{
			Locations:   overrideLocations,
			SkillLevels: overrideSkillLevels,
			Genders:     overrideGenders,
		}
	}
	return schedule, nil
}
