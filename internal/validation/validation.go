package validation

import (
	"fmt"
	"net/mail"
	"net/url"
	"regexp"
	"strings"
)

// FieldError pinpoints a single invalid request field.
type FieldError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// Error aggregates field errors for a rejected request. It maps to the
// 400 "Validation failed" envelope at the HTTP boundary.
type Error struct {
	Fields []FieldError
}

// NewError builds a validation error from one or more field errors.
func NewError(fields ...FieldError) *Error {
	return &Error{Fields: fields}
}

// NewFieldError builds a single-field validation error.
func NewFieldError(path, message string) *Error {
	return &Error{Fields: []FieldError{{Path: path, Message: message}}}
}

func (e *Error) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(e.Fields))
	for _, field := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field.Path, field.Message))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// CheckEmail validates email format.
func CheckEmail(path, value string) *FieldError {
	if _, err := mail.ParseAddress(value); err != nil {
		return &FieldError{Path: path, Message: "Invalid email format"}
	}
	return nil
}

// CheckUsername validates username length and charset.
func CheckUsername(path, value string) *FieldError {
	if len(value) < 3 {
		return &FieldError{Path: path, Message: "Username must be at least 3 characters"}
	}
	if len(value) > 30 {
		return &FieldError{Path: path, Message: "Username cannot exceed 30 characters"}
	}
	if !usernamePattern.MatchString(value) {
		return &FieldError{Path: path, Message: "Username can only contain letters, numbers, underscores, and hyphens"}
	}
	return nil
}

// CheckPassword validates password length bounds.
func CheckPassword(path, value string) *FieldError {
	if len(value) < 6 {
		return &FieldError{Path: path, Message: "Password must be at least 6 characters"}
	}
	if len(value) > 128 {
		return &FieldError{Path: path, Message: "Password cannot exceed 128 characters"}
	}
	return nil
}

// CheckString validates string length against inclusive bounds.
func CheckString(path, value string, minLength, maxLength int) *FieldError {
	if len(value) < minLength {
		return &FieldError{Path: path, Message: fmt.Sprintf("Must be at least %d characters", minLength)}
	}
	if maxLength > 0 && len(value) > maxLength {
		return &FieldError{Path: path, Message: fmt.Sprintf("Cannot exceed %d characters", maxLength)}
	}
	return nil
}

// CheckURL validates URL format, accepting the empty string.
func CheckURL(path, value string) *FieldError {
	if value == "" {
		return nil
	}
	parsed, err := url.Parse(value)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return &FieldError{Path: path, Message: "Invalid URL format"}
	}
	return nil
}

// CheckRating validates the 1..5 rating range.
func CheckRating(path string, value int) *FieldError {
	if value < 1 {
		return &FieldError{Path: path, Message: "Rating must be at least 1"}
	}
	if value > 5 {
		return &FieldError{Path: path, Message: "Rating cannot exceed 5"}
	}
	return nil
}

// CheckPositiveInt validates an optional positive integer field.
func CheckPositiveInt(path string, value *int) *FieldError {
	if value != nil && *value <= 0 {
		return &FieldError{Path: path, Message: "Must be a positive integer"}
	}
	return nil
}
