package validation

import (
	"strings"
	"testing"
)

func TestCheckEmailAcceptsValidAddress(t *testing.T) {
	if fieldErr := CheckEmail("email", "cook@example.com"); fieldErr != nil {
		t.Fatalf("unexpected field error: %+v", fieldErr)
	}
}

func TestCheckEmailRejectsMalformedAddress(t *testing.T) {
	for _, value := range []string{"", "not-an-email", "missing@domain@twice"} {
		fieldErr := CheckEmail("email", value)
		if fieldErr == nil {
			t.Fatalf("expected field error for %q", value)
		}
		if fieldErr.Path != "email" || fieldErr.Message != "Invalid email format" {
			t.Fatalf("unexpected field error: %+v", fieldErr)
		}
	}
}

func TestCheckUsernameEnforcesBoundsAndCharset(t *testing.T) {
	if fieldErr := CheckUsername("username", "chef_luigi-99"); fieldErr != nil {
		t.Fatalf("unexpected field error: %+v", fieldErr)
	}
	if fieldErr := CheckUsername("username", "ab"); fieldErr == nil {
		t.Fatalf("expected error for short username")
	}
	if fieldErr := CheckUsername("username", strings.Repeat("a", 31)); fieldErr == nil {
		t.Fatalf("expected error for long username")
	}
	if fieldErr := CheckUsername("username", "bad name!"); fieldErr == nil {
		t.Fatalf("expected error for invalid characters")
	}
}

func TestCheckPasswordEnforcesBounds(t *testing.T) {
	if fieldErr := CheckPassword("password", "secret"); fieldErr != nil {
		t.Fatalf("unexpected field error: %+v", fieldErr)
	}
	if fieldErr := CheckPassword("password", "short"); fieldErr == nil {
		t.Fatalf("expected error for short password")
	}
	if fieldErr := CheckPassword("password", strings.Repeat("x", 129)); fieldErr == nil {
		t.Fatalf("expected error for long password")
	}
}

func TestCheckStringBounds(t *testing.T) {
	if fieldErr := CheckString("title", "Carbonara", 1, 200); fieldErr != nil {
		t.Fatalf("unexpected field error: %+v", fieldErr)
	}
	if fieldErr := CheckString("title", "", 1, 200); fieldErr == nil {
		t.Fatalf("expected error for empty title")
	}
	if fieldErr := CheckString("title", strings.Repeat("t", 201), 1, 200); fieldErr == nil {
		t.Fatalf("expected error for overlong title")
	}
}

func TestCheckURLAcceptsEmptyAndValid(t *testing.T) {
	if fieldErr := CheckURL("imageUrl", ""); fieldErr != nil {
		t.Fatalf("unexpected field error for empty url: %+v", fieldErr)
	}
	if fieldErr := CheckURL("imageUrl", "https://example.com/dish.jpg"); fieldErr != nil {
		t.Fatalf("unexpected field error for valid url: %+v", fieldErr)
	}
	if fieldErr := CheckURL("imageUrl", "not a url"); fieldErr == nil {
		t.Fatalf("expected error for malformed url")
	}
}

func TestCheckRatingRange(t *testing.T) {
	for value := 1; value <= 5; value++ {
		if fieldErr := CheckRating("rating", value); fieldErr != nil {
			t.Fatalf("unexpected field error for %d: %+v", value, fieldErr)
		}
	}
	if fieldErr := CheckRating("rating", 0); fieldErr == nil {
		t.Fatalf("expected error for rating below range")
	}
	if fieldErr := CheckRating("rating", 6); fieldErr == nil {
		t.Fatalf("expected error for rating above range")
	}
}

func TestErrorMessageListsFields(t *testing.T) {
	err := NewError(
		FieldError{Path: "email", Message: "Invalid email format"},
		FieldError{Path: "password", Message: "Password must be at least 6 characters"},
	)
	message := err.Error()
	if !strings.Contains(message, "email") || !strings.Contains(message, "password") {
		t.Fatalf("expected message to mention both fields, got %q", message)
	}
}
