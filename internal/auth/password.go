package auth

import "golang.org/x/crypto/bcrypt"

// Operator passwords are stored as bcrypt hashes. The cost comes from
// AuthConfig; a non-positive value falls back to the bcrypt default so a
// missing setting never weakens hashing.

// HashPassword derives the stored hash for a plaintext password.
func HashPassword(password string, cost int) (string, error) {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// ComparePassword verifies a plaintext password against its stored hash,
// returning bcrypt's mismatch error when they differ.
func ComparePassword(hashed, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
}
