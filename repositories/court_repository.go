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
	ErrCourtNotFound = errors.New("court not found")
	ErrCourtConflict = errors.New("court with this id already exists")
)

// CourtRepository manages the shared court catalogue. Courts are keyed by a
// community-wide slug (the location preference lists reference the same ids).
type CourtRepository interface {
	Create(ctx context.Context, court *models.Court) error
	GetCourt(ctx context.Context, courtID string) (*models.Court, error)
	ListCourts(ctx context.Context) ([]*models.Court, error)
	Update(ctx context.Context, court *models.Court) error
	SetPhoto(ctx context.Context, courtID, photoKey string) error
	Delete(ctx context.Context, courtID string) error
}

type postgresCourtRepository struct {
	db *sql.DB
}

func NewPostgresCourtRepository(db *sql.DB) CourtRepository {
	return &postgresCourtRepository{db: db}
}

const courtColumns = `
	court_id, name, location, surface_type, number_of_courts, is_indoor,
	google_maps_link, cost_per_hour, photo_key, created_at, updated_at`

func (r *postgresCourtRepository) Create(ctx context.Context, court *models.Court) error {
	query := `
		INSERT INTO courts
			(court_id, name, location, surface_type, number_of_courts, is_indoor,
			 google_maps_link, cost_per_hour)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		court.CourtID,
		court.Name,
		court.Location,
		court.SurfaceType,
		court.NumberOfCourts,
		court.IsIndoor,
		court.GoogleMapsLink,
		court.CostPerHour,
	).Scan(&court.CreatedAt, &court.UpdatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Constraint == "courts_pkey" {
			return ErrCourtConflict
		}
		return fmt.Errorf("failed to insert court %s: %w", court.CourtID, err)
	}
	return nil
}

func (r *postgresCourtRepository) GetCourt(ctx context.Context, courtID string) (*models.Court, error) {
	query := `SELECT` + courtColumns + ` FROM courts WHERE court_id = $1`
	court, err := r.scanCourt(r.db.QueryRowContext(ctx, query, courtID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCourtNotFound
		}
		return nil, err
	}
	return court, nil
}

func (r *postgresCourtRepository) ListCourts(ctx context.Context) ([]*models.Court, error) {
	query := `SELECT` + courtColumns + ` FROM courts ORDER BY court_id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query courts: %w", err)
	}
	defer rows.Close()

	courts := make([]*models.Court, 0)
	for rows.Next() {
		court, scanErr := r.scanCourt(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		courts = append(courts, court)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during court rows iteration: %w", err)
	}
	return courts, nil
}

func (r *postgresCourtRepository) Update(ctx context.Context, court *models.Court) error {
	query := `
		UPDATE courts
		SET name = $1, location = $2, surface_type = $3, number_of_courts = $4,
		    is_indoor = $5, google_maps_link = $6, cost_per_hour = $7, updated_at = now()
		WHERE court_id = $8`

	result, err := r.db.ExecContext(ctx, query,
		court.Name,
		court.Location,
		court.SurfaceType,
		court.NumberOfCourts,
		court.IsIndoor,
		court.GoogleMapsLink,
		court.CostPerHour,
		court.CourtID,
	)
	if err != nil {
		return fmt.Errorf("failed to update court %s: %w", court.CourtID, err)
	}
	return checkAffectedRows(result, ErrCourtNotFound)
}

func (r *postgresCourtRepository) SetPhoto(ctx context.Context, courtID, photoKey string) error {
	query := `UPDATE courts SET photo_key = $1, updated_at = now() WHERE court_id = $2`
	result, err := r.db.ExecContext(ctx, query, photoKey, courtID)
	if err != nil {
		return fmt.Errorf("failed to set photo for court %s: %w", courtID, err)
	}
	return checkAffectedRows(result, ErrCourtNotFound)
}

func (r *postgresCourtRepository) Delete(ctx context.Context, courtID string) error {
	query := `DELETE FROM courts WHERE court_id = $1`
	result, err := r.db.ExecContext(ctx, query, courtID)
	if err != nil {
		return fmt.Errorf("failed to delete court %s: %w", courtID, err)
	}
	return checkAffectedRows(result, ErrCourtNotFound)
}

func (r *postgresCourtRepository) scanCourt(row rowScanner) (*models.Court, error) {
	court := &models.Court{}
	err := row.Scan(
		&court.CourtID,
		&court.Name,
		&court.Location,
		&court.SurfaceType,
		&court.NumberOfCourts,
		&court.IsIndoor,
		&court.GoogleMapsLink,
		&court.CostPerHour,
		&court.PhotoKey,
		&court.CreatedAt,
		&court.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan court row: %w", err)
	}
	return court, nil
}
