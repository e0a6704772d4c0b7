package services

import "errors"

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	// Ресурс не найден (универсальная)
	ErrNotFound = errors.New("requested resource not found")

	// Ошибки валидации и бизнес-правил
	ErrValidationFailed       = errors.New("validation failed")
	ErrPasswordTooShort       = errors.New("password is too short")
	ErrInvalidCredentials     = errors.New("invalid email or password")
	ErrUsernameRequired       = errors.New("username is required")
	ErrInvalidNTRPRating      = errors.New("ntrp rating must be between 1.0 and 7.0")
	ErrScheduleInPast         = errors.New("schedule must start in the future")
	ErrInvalidTimeRange       = errors.New("end time must be after start time")
	ErrScheduleNotOpen        = errors.New("schedule is not open")
	ErrWinnerNotInMatch       = errors.New("winner must be one of the match players")
	ErrInvalidQualityScore    = errors.New("quality score must be between 0 and 10")
	ErrInvalidMatchTransition = errors.New("invalid match status transition")
	ErrPhotoUploadUnavailable = errors.New("photo storage is not configured")

	// Ошибки конфликтов
	ErrEmailConflict         = errors.New("email address is already in use in this guild")
	ErrPlayerConflict        = errors.New("player is already registered in this guild")
	ErrCourtConflict         = errors.New("court with this id already exists")
	ErrDuplicateMatchRequest = errors.New("an active match request between these players already exists")

	// Ошибки аутентификации и авторизации
	ErrForbiddenOperation = errors.New("operation not allowed for the current user")

	// Ошибки, специфичные для сущностей (дублируют ErrNotFound, но дают больше контекста)
	ErrPlayerNotFound   = errors.New("player not found")
	ErrScheduleNotFound = errors.New("schedule not found")
	ErrCourtNotFound    = errors.New("court not found")
	ErrMatchNotFound    = errors.New("match not found")
)
