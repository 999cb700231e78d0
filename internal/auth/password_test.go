package auth

import "testing"

func TestHashPasswordProducesVerifiableHash(t *testing.T) {
	hashed, err := HashPassword("s3cret-pass")
	if err != nil {
		t.Fatalf("unexpected hash error: %v", err)
	}
	if hashed == "s3cret-pass" {
		t.Fatalf("hash must not equal the plaintext password")
	}
	if !ComparePassword(hashed, "s3cret-pass") {
		t.Fatalf("expected matching password to verify")
	}
}

func TestComparePasswordRejectsMismatch(t *testing.T) {
	hashed, err := HashPassword("correct-password")
	if err != nil {
		t.Fatalf("unexpected hash error: %v", err)
	}
	if ComparePassword(hashed, "almost-correct-password") {
		t.Fatalf("expected mismatched password to fail verification")
	}
	if ComparePassword(hashed, "") {
		t.Fatalf("expected empty password to fail verification")
	}
}

func TestHashPasswordSaltsEachHash(t *testing.T) {
	first, err := HashPassword("same-password")
	if err != nil {
		t.Fatalf("unexpected hash error: %v", err)
	}
	second, err := HashPassword("same-password")
	if err != nil {
		t.Fatalf("unexpected hash error: %v", err)
	}
	if first == second {
		t.Fatalf("expected distinct salts to produce distinct hashes")
	}
}
