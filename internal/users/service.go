package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MarcoPoloResearchLab/flavorai/backend/internal/auth"
	"github.com/MarcoPoloResearchLab/flavorai/backend/internal/identifier"
	"github.com/MarcoPoloResearchLab/flavorai/backend/internal/validation"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	errMissingDatabase   = errors.New("database handle is required")
	errMissingIDProvider = errors.New("id provider is required")
	noOpLogger           = zap.NewNop()
)

const (
	opServiceNew   = "users.service.new"
	opRegister     = "users.register"
	opAuthenticate = "users.authenticate"
	opFindByID     = "users.find_by_id"
)

// ServiceError wraps user service failures with an operation code.
type ServiceError struct {
	code string
	err  error
}

func (e *ServiceError) Error() string {
	if e.err == nil {
		return e.code
	}
	return fmt.Sprintf("%s: %v", e.code, e.err)
}

func (e *ServiceError) Unwrap() error {
	return e.err
}

func (e *ServiceError) Code() string {
	return e.code
}

func newServiceError(operation, reason string, cause error) error {
	code := fmt.Sprintf("%s.%s", operation, reason)
	return &ServiceError{code: code, err: cause}
}

// ServiceConfig describes the dependencies required for account management.
type ServiceConfig struct {
	Database   *gorm.DB
	Clock      func() time.Time
	IDProvider identifier.Provider
	Logger     *zap.Logger
}

// Service manages account registration and credential verification.
type Service struct {
	db         *gorm.DB
	clock      func() time.Time
	idProvider identifier.Provider
	logger     *zap.Logger
}

// NewService constructs the user service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Database == nil {
		return nil, newServiceError(opServiceNew, "missing_database", errMissingDatabase)
	}
	if cfg.IDProvider == nil {
		return nil, newServiceError(opServiceNew, "missing_id_provider", errMissingIDProvider)
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = noOpLogger
	}
	return &Service{
		db:         cfg.Database,
		clock:      clock,
		idProvider: cfg.IDProvider,
		logger:     logger,
	}, nil
}

// RegisterInput carries the already-validated registration fields.
type RegisterInput struct {
	Email    string
	Username string
	Password string
}

// Register creates a new account. Duplicate email or username surfaces as a
// field-scoped validation error so the boundary can render the standard
// envelope.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*User, error) {
	email := NormalizeEmail(input.Email)
	username := strings.TrimSpace(input.Username)

	var existing User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&existing).Error
	if err == nil {
		return nil, validation.NewFieldError("email", "An account with this email already exists")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logError(opRegister, "email_lookup_failed", err)
		return nil, newServiceError(opRegister, "email_lookup_failed", err)
	}

	err = s.db.WithContext(ctx).Where("username = ?", username).First(&existing).Error
	if err == nil {
		return nil, validation.NewFieldError("username", "This username is already taken")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logError(opRegister, "username_lookup_failed", err)
		return nil, newServiceError(opRegister, "username_lookup_failed", err)
	}

	hashed, err := auth.HashPassword(input.Password)
	if err != nil {
		s.logError(opRegister, "password_hash_failed", err)
		return nil, newServiceError(opRegister, "password_hash_failed", err)
	}

	userID, err := s.idProvider.NewID()
	if err != nil {
		s.logError(opRegister, "id_generation_failed", err)
		return nil, newServiceError(opRegister, "id_generation_failed", err)
	}

	now := s.clock().UTC()
	user := User{
		ID:           userID,
		Email:        email,
		Username:     username,
		PasswordHash: hashed,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		// A concurrent registration can slip past the pre-checks; the unique
		// indexes decide the winner and the loser gets the same field error.
		if isUniqueViolation(err) {
			if strings.Contains(err.Error(), "username") {
				return nil, validation.NewFieldError("username", "This username is already taken")
			}
			return nil, validation.NewFieldError("email", "An account with this email already exists")
		}
		s.logError(opRegister, "user_create_failed", err)
		return nil, newServiceError(opRegister, "user_create_failed", err)
	}

	return &user, nil
}

// Authenticate verifies credentials and returns the matching account.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	var user User
	err := s.db.WithContext(ctx).Where("email = ?", NormalizeEmail(email)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, validation.NewFieldError("email", "No account found with this email address")
	}
	if err != nil {
		s.logError(opAuthenticate, "email_lookup_failed", err)
		return nil, newServiceError(opAuthenticate, "email_lookup_failed", err)
	}

	if !auth.ComparePassword(user.PasswordHash, password) {
		return nil, validation.NewFieldError("password", "Incorrect password")
	}

	return &user, nil
}

// FindByID returns the account for the identifier, or nil when absent.
// Absence is not an error here; callers decide how to surface it.
func (s *Service) FindByID(ctx context.Context, userID string) (*User, error) {
	if userID == "" {
		return nil, nil
	}
	var user User
	err := s.db.WithContext(ctx).Where("id = ?", userID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		s.logError(opFindByID, "lookup_failed", err, zap.String("user_id", userID))
		return nil, newServiceError(opFindByID, "lookup_failed", err)
	}
	return &user, nil
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	message := strings.ToLower(err.Error())
	return strings.Contains(message, "unique constraint") || strings.Contains(message, "constraint failed")
}

func (s *Service) logError(operation, reason string, err error, fields ...zap.Field) {
	attrs := []zap.Field{
		zap.String("operation", operation),
		zap.String("reason", reason),
	}
	if err != nil {
		attrs = append(attrs, zap.Error(err))
	}
	attrs = append(attrs, fields...)
	s.logger.Error("users service error", attrs...)
}
