package users

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/MarcoPoloResearchLab/flavorai/backend/internal/identifier"
	"github.com/MarcoPoloResearchLab/flavorai/backend/internal/validation"
	sqlite "github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	databasePath := filepath.Join(t.TempDir(), "users.db")
	db, err := gorm.Open(sqlite.Open(databasePath), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&User{}); err != nil {
		t.Fatalf("failed to migrate schema: %v", err)
	}
	service, err := NewService(ServiceConfig{
		Database:   db,
		IDProvider: identifier.NewUUIDProvider(),
		Logger:     zap.NewNop(),
	})
	if err != nil {
		t.Fatalf("failed to build service: %v", err)
	}
	return service
}

func TestRegisterCreatesAccount(t *testing.T) {
	service := newTestService(t)

	user, err := service.Register(context.Background(), RegisterInput{
		Email:    "Cook@Example.com",
		Username: "chef_anna",
		Password: "secret-pass",
	})
	if err != nil {
		t.Fatalf("unexpected register error: %v", err)
	}
	if user.ID == "" {
		t.Fatalf("expected generated user id")
	}
	if user.Email != "cook@example.com" {
		t.Fatalf("expected lowercased email, got %q", user.Email)
	}
	if user.PasswordHash == "secret-pass" || user.PasswordHash == "" {
		t.Fatalf("expected hashed password, got %q", user.PasswordHash)
	}
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	service := newTestService(t)

	if _, err := service.Register(context.Background(), RegisterInput{
		Email:    "cook@example.com",
		Username: "chef_anna",
		Password: "secret-pass",
	}); err != nil {
		t.Fatalf("unexpected register error: %v", err)
	}

	_, err := service.Register(context.Background(), RegisterInput{
		Email:    "cook@example.com",
		Username: "chef_bertha",
		Password: "other-pass",
	})
	var validationErr *validation.Error
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(validationErr.Fields) != 1 || validationErr.Fields[0].Path != "email" {
		t.Fatalf("expected email-scoped error, got %+v", validationErr.Fields)
	}
	if validationErr.Fields[0].Message != "An account with this email already exists" {
		t.Fatalf("unexpected message %q", validationErr.Fields[0].Message)
	}
}

func TestRegisterRejectsDuplicateUsername(t *testing.T) {
	service := newTestService(t)

	if _, err := service.Register(context.Background(), RegisterInput{
		Email:    "cook@example.com",
		Username: "chef_anna",
		Password: "secret-pass",
	}); err != nil {
		t.Fatalf("unexpected register error: %v", err)
	}

	_, err := service.Register(context.Background(), RegisterInput{
		Email:    "other@example.com",
		Username: "chef_anna",
		Password: "other-pass",
	})
	var validationErr *validation.Error
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(validationErr.Fields) != 1 || validationErr.Fields[0].Path != "username" {
		t.Fatalf("expected username-scoped error, got %+v", validationErr.Fields)
	}
	if validationErr.Fields[0].Message != "This username is already taken" {
		t.Fatalf("unexpected message %q", validationErr.Fields[0].Message)
	}
}

func TestAuthenticateVerifiesCredentials(t *testing.T) {
	service := newTestService(t)

	registered, err := service.Register(context.Background(), RegisterInput{
		Email:    "cook@example.com",
		Username: "chef_anna",
		Password: "secret-pass",
	})
	if err != nil {
		t.Fatalf("unexpected register error: %v", err)
	}

	user, err := service.Authenticate(context.Background(), "cook@example.com", "secret-pass")
	if err != nil {
		t.Fatalf("unexpected authenticate error: %v", err)
	}
	if user.ID != registered.ID {
		t.Fatalf("expected account %s, got %s", registered.ID, user.ID)
	}
}

func TestAuthenticateRejectsUnknownEmail(t *testing.T) {
	service := newTestService(t)

	_, err := service.Authenticate(context.Background(), "nobody@example.com", "whatever")
	var validationErr *validation.Error
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(validationErr.Fields) != 1 || validationErr.Fields[0].Path != "email" {
		t.Fatalf("expected email-scoped error, got %+v", validationErr.Fields)
	}
}

func TestAuthenticateRejectsWrongPassword(t *testing.T) {
	service := newTestService(t)

	if _, err := service.Register(context.Background(), RegisterInput{
		Email:    "cook@example.com",
		Username: "chef_anna",
		Password: "secret-pass",
	}); err != nil {
		t.Fatalf("unexpected register error: %v", err)
	}

	_, err := service.Authenticate(context.Background(), "cook@example.com", "secret-pas")
	var validationErr *validation.Error
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(validationErr.Fields) != 1 || validationErr.Fields[0].Path != "password" {
		t.Fatalf("expected password-scoped error, got %+v", validationErr.Fields)
	}
	if validationErr.Fields[0].Message != "Incorrect password" {
		t.Fatalf("unexpected message %q", validationErr.Fields[0].Message)
	}
}

func TestFindByIDReturnsNilWhenAbsent(t *testing.T) {
	service := newTestService(t)

	user, err := service.FindByID(context.Background(), "missing-user")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user != nil {
		t.Fatalf("expected nil for absent user, got %+v", user)
	}
}
