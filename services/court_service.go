package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/courtmate/matchmaking-system/models"
	"github.com/courtmate/matchmaking-system/repositories"
	"github.com/courtmate/matchmaking-system/storage"
)

type CourtService interface {
	Create(ctx context.Context, input CourtInput) (*models.Court, error)
	Get(ctx context.Context, courtID string) (*models.Court, error)
	List(ctx context.Context) ([]*models.Court, error)
	Update(ctx context.Context, courtID string, input CourtInput) (*models.Court, error)
	Delete(ctx context.Context, courtID string) error
	// UploadPhoto stores the image in object storage and records its key on
	// the court. Replaces (and removes) the previous photo when present.
	UploadPhoto(ctx context.Context, courtID, contentType string, reader io.Reader) (*models.Court, error)
}

type CourtInput struct {
	CourtID        string   `json:"court_id"`
	Name           string   `json:"name"`
	Location       string   `json:"location"`
	SurfaceType    string   `json:"surface_type"`
	NumberOfCourts int      `json:"number_of_courts"`
	IsIndoor       bool     `json:"is_indoor"`
	GoogleMapsLink *string  `json:"google_maps_link,omitempty"`
	CostPerHour    *float64 `json:"cost_per_hour,omitempty"`
}

type courtService struct {
	courtRepo repositories.CourtRepository
	uploader  storage.FileUploader // nil when R2 is not configured
	log       *slog.Logger
	now       func() time.Time
}

func NewCourtService(courtRepo repositories.CourtRepository, uploader storage.FileUploader, log *slog.Logger) CourtService {
	return &courtService{
		courtRepo: courtRepo,
		uploader:  uploader,
		log:       log,
		now:       time.Now,
	}
}

func (s *courtService) Create(ctx context.Context, input CourtInput) (*models.Court, error) {
	if err := validateCourtInput(input, true); err != nil {
		return nil, err
	}
	court := &models.Court{
		CourtID:        strings.TrimSpace(input.CourtID),
		Name:           strings.TrimSpace(input.Name),
		Location:       strings.TrimSpace(input.Location),
		SurfaceType:    input.SurfaceType,
		NumberOfCourts: input.NumberOfCourts,
		IsIndoor:       input.IsIndoor,
		GoogleMapsLink: input.GoogleMapsLink,
		CostPerHour:    input.CostPerHour,
	}
	if err := s.courtRepo.Create(ctx, court); err != nil {
		if errors.Is(err, repositories.ErrCourtConflict) {
			return nil, ErrCourtConflict
		}
		return nil, fmt.Errorf("failed to create court: %w", err)
	}
	return court, nil
}

func (s *courtService) Get(ctx context.Context, courtID string) (*models.Court, error) {
	court, err := s.courtRepo.GetCourt(ctx, courtID)
	if err != nil {
		if errors.Is(err, repositories.ErrCourtNotFound) {
			return nil, ErrCourtNotFound
		}
		return nil, fmt.Errorf("failed to get court %s: %w", courtID, err)
	}
	s.populatePhotoURL(court)
	return court, nil
}

func (s *courtService) List(ctx context.Context) ([]*models.Court, error) {
	courts, err := s.courtRepo.ListCourts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list courts: %w", err)
	}
	for _, court := range courts {
		s.populatePhotoURL(court)
	}
	return courts, nil
}

func (s *courtService) Update(ctx context.Context, courtID string, input CourtInput) (*models.Court, error) {
	if err := validateCourtInput(input, false); err != nil {
		return nil, err
	}
	court, err := s.Get(ctx, courtID)
	if err != nil {
		return nil, err
	}
	court.Name = strings.TrimSpace(input.Name)
	court.Location = strings.TrimSpace(input.Location)
	court.SurfaceType = input.SurfaceType
	court.NumberOfCourts = input.NumberOfCourts
	court.IsIndoor = input.IsIndoor
	court.GoogleMapsLink = input.GoogleMapsLink
	court.CostPerHour = input.CostPerHour

	if err := s.courtRepo.Update(ctx, court); err != nil {
		if errors.Is(err, repositories.ErrCourtNotFound) {
			return nil, ErrCourtNotFound
		}
		return nil, fmt.Errorf("failed to update court %s: %w", courtID, err)
	}
	return court, nil
}

func (s *courtService) Delete(ctx context.Context, courtID string) error {
	court, err := s.Get(ctx, courtID)
	if err != nil {
		return err
	}

	if err := s.courtRepo.Delete(ctx, courtID); err != nil {
		if errors.Is(err, repositories.ErrCourtNotFound) {
			return ErrCourtNotFound
		}
		return fmt.Errorf("failed to delete court %s: %w", courtID, err)
	}

	if s.uploader != nil && court.PhotoKey != nil && *court.PhotoKey != "" {
		if delErr := s.uploader.Delete(ctx, *court.PhotoKey); delErr != nil {
			// Запись уже удалена, осиротевший объект в хранилище не критичен.
			s.log.WarnContext(ctx, "failed to delete court photo from storage",
				slog.String("court_id", courtID), slog.Any("error", delErr))
		}
	}
	return nil
}

func (s *courtService) UploadPhoto(ctx context.Context, courtID, contentType string, reader io.Reader) (*models.Court, error) {
	if s.uploader == nil {
		return nil, ErrPhotoUploadUnavailable
	}

	court, err := s.Get(ctx, courtID)
	if err != nil {
		return nil, err
	}

	key, err := storage.CourtPhotoKey(courtID, contentType, s.now())
	if err != nil {
		if errors.Is(err, storage.ErrUnsupportedContentType) {
			return nil, fmt.Errorf("%w: %s", ErrValidationFailed, contentType)
		}
		return nil, err
	}

	result, err := s.uploader.Upload(ctx, key, contentType, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to upload court photo: %w", err)
	}

	oldKey := derefString(court.PhotoKey)
	if err := s.courtRepo.SetPhoto(ctx, courtID, result.Key); err != nil {
		return nil, fmt.Errorf("failed to record court photo: %w", err)
	}
	if oldKey != "" && oldKey != result.Key {
		if delErr := s.uploader.Delete(ctx, oldKey); delErr != nil {
			s.log.WarnContext(ctx, "failed to delete previous court photo",
				slog.String("court_id", courtID), slog.Any("error", delErr))
		}
	}

	court.PhotoKey = &result.Key
	court.PhotoURL = &result.Location
	return court, nil
}

func (s *courtService) populatePhotoURL(court *models.Court) {
	if s.uploader == nil || court == nil || court.PhotoKey == nil || *court.PhotoKey == "" {
		return
	}
	if url := s.uploader.GetPublicURL(*court.PhotoKey); url != "" {
		court.PhotoURL = &url
	}
}

func validateCourtInput(input CourtInput, requireID bool) error {
	if requireID && strings.TrimSpace(input.CourtID) == "" {
		return fmt.Errorf("%w: court_id is required", ErrValidationFailed)
	}
	if strings.TrimSpace(input.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrValidationFailed)
	}
	if strings.TrimSpace(input.Location) == "" {
		return fmt.Errorf("%w: location is required", ErrValidationFailed)
	}
	if input.NumberOfCourts <= 0 {
		return fmt.Errorf("%w: number_of_courts must be positive", ErrValidationFailed)
	}
	return nil
}
