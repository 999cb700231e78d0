package auth

import "golang.org/x/crypto/bcrypt"

const passwordHashCost = 10

// HashPassword derives a salted one-way hash of the plaintext password.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), passwordHashCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// ComparePassword reports whether the plaintext password matches the stored
// hash. The comparison is constant-time inside bcrypt.
func ComparePassword(hashedPassword, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password)) == nil
}
