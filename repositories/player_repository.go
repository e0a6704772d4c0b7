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
	ErrPlayerNotFound      = errors.New("player not found")
	ErrPlayerConflict      = errors.New("player already registered in this guild")
	ErrPlayerEmailConflict = errors.New("email already in use in this guild")
)

type PlayerRepository interface {
	Create(ctx context.Context, player *models.Player) error
	GetPlayer(ctx context.Context, guildID, userID string) (*models.Player, error)
	GetByEmail(ctx context.Context, guildID, email string) (*models.Player, error)
	ListByGuild(ctx context.Context, guildID string) ([]*models.Player, error)
	UpdateProfile(ctx context.Context, player *models.Player) error
	UpdatePreferences(ctx context.Context, guildID, userID string, prefs models.Preferences) error
	AdjustEngagement(ctx context.Context, guildID, userID string, delta float64) (float64, error)
}

type postgresPlayerRepository struct {
	db *sql.DB
}

func NewPostgresPlayerRepository(db *sql.DB) PlayerRepository {
	return &postgresPlayerRepository{db: db}
}

const playerColumns = `
	guild_id, user_id, username, email, password_hash, role, gender, ntrp_rating,
	preferred_locations, skill_levels, preferred_genders, engagement_score,
	created_at, updated_at`

func (r *postgresPlayerRepository) Create(ctx context.Context, player *models.Player) error {
	query := `
		INSERT INTO players
			(guild_id, user_id, username, email, password_hash, role, gender, ntrp_rating,
			 preferred_locations, skill_levels, preferred_genders, engagement_score)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		player.GuildID,
		player.UserID,
		player.Username,
		player.Email,
		player.PasswordHash,
		player.Role,
		player.Gender,
		player.NTRPRating,
		pq.Array(player.Preferences.Locations),
		pq.Array(player.Preferences.SkillLevels),
		pq.Array(player.Preferences.Genders),
		player.EngagementScore,
	).Scan(&player.CreatedAt, &player.UpdatedAt)

	return r.handlePlayerError(err)
}

func (r *postgresPlayerRepository) GetPlayer(ctx context.Context, guildID, userID string) (*models.Player, error) {
	query := `SELECT` + playerColumns + ` FROM players WHERE guild_id = $1 AND user_id = $2`
	return r.scanPlayer(r.db.QueryRowContext(ctx, query, guildID, userID))
}

func (r *postgresPlayerRepository) GetByEmail(ctx context.Context, guildID, email string) (*models.Player, error) {
	query := `SELECT` + playerColumns + ` FROM players WHERE guild_id = $1 AND email = $2`
	return r.scanPlayer(r.db.QueryRowContext(ctx, query, guildID, email))
}

func (r *postgresPlayerRepository) ListByGuild(ctx context.Context, guildID string) ([]*models.Player, error) {
	query := `SELECT` + playerColumns + ` FROM players WHERE guild_id = $1 ORDER BY user_id`
	rows, err := r.db.QueryContext(ctx, query, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to query players for guild %s: %w", guildID, err)
	}
	defer rows.Close()

	players := make([]*models.Player, 0)
	for rows.Next() {
		player, scanErr := r.scanPlayerRow(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		players = append(players, player)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during player rows iteration: %w", err)
	}
	return players, nil
}

func (r *postgresPlayerRepository) UpdateProfile(ctx context.Context, player *models.Player) error {
	query := `
		UPDATE players
		SET username = $1, gender = $2, ntrp_rating = $3, updated_at = now()
		WHERE guild_id = $4 AND user_id = $5`

	result, err := r.db.ExecContext(ctx, query,
		player.Username, player.Gender, player.NTRPRating, player.GuildID, player.UserID)
	if err != nil {
		return r.handlePlayerError(err)
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}

func (r *postgresPlayerRepository) UpdatePreferences(ctx context.Context, guildID, userID string, prefs models.Preferences) error {
	query := `
		UPDATE players
		SET preferred_locations = $1, skill_levels = $2, preferred_genders = $3, updated_at = now()
		WHERE guild_id = $4 AND user_id = $5`

	result, err := r.db.ExecContext(ctx, query,
		pq.Array(prefs.Locations), pq.Array(prefs.SkillLevels), pq.Array(prefs.Genders),
		guildID, userID)
	if err != nil {
		return fmt.Errorf("failed to update preferences for player %s: %w", userID, err)
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}

// AdjustEngagement atomically adds delta to the engagement score, clamped at
// zero, and returns the new value.
func (r *postgresPlayerRepository) AdjustEngagement(ctx context.Context, guildID, userID string, delta float64) (float64, error) {
	query := `
		UPDATE players
		SET engagement_score = GREATEST(engagement_score + $1, 0), updated_at = now()
		WHERE guild_id = $2 AND user_id = $3
		RETURNING engagement_score`

	var score float64
	err := r.db.QueryRowContext(ctx, query, delta, guildID, userID).Scan(&score)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrPlayerNotFound
		}
		return 0, fmt.Errorf("failed to adjust engagement for player %s: %w", userID, err)
	}
	return score, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *postgresPlayerRepository) scanPlayer(row *sql.Row) (*models.Player, error) {
	player, err := r.scanPlayerRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, err
	}
	return player, nil
}

func (r *postgresPlayerRepository) scanPlayerRow(row rowScanner) (*models.Player, error) {
	player := &models.Player{}
	var locations, skillLevels, genders pq.StringArray
	err := row.Scan(
		&player.GuildID,
		&player.UserID,
		&player.Username,
		&player.Email,
		&player.PasswordHash,
		&player.Role,
		&player.Gender,
		&player.NTRPRating,
		&locations,
		&skillLevels,
		&genders,
		&player.EngagementScore,
		&player.CreatedAt,
		&player.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan player row: %w", err)
	}
	player.Preferences = models.Preferences{
		Locations:   locations,
		SkillLevels: skillLevels,
		Genders:     genders,
	}
	return player, nil
}

func (r *postgresPlayerRepository) handlePlayerError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Constraint {
		case "players_pkey":
			return ErrPlayerConflict
		case "players_guild_id_email_key":
			return ErrPlayerEmailConflict
		}
	}
	return err
}
