package auth

import (
	"errors"
	"fmt"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

const minNewPasswordLength = 8

// HashPassword produces a salted bcrypt digest of the plaintext. Two calls
// with the same input yield different digests.
func HashPassword(plain string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(digest), nil
}

// CheckPassword reports whether the plaintext re-hashes to the stored digest.
func CheckPassword(plain, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plain)) == nil
}

// ValidateNewPassword enforces the complexity policy applied on password
// changes: at least 8 characters, one uppercase letter and one digit.
func ValidateNewPassword(plain string) error {
	if len(plain) < minNewPasswordLength {
		return fmt.Errorf("password must be at least %d characters long", minNewPasswordLength)
	}
	var hasUpper, hasDigit bool
	for _, r := range plain {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasUpper {
		return errors.New("password must contain at least one uppercase letter")
	}
	if !hasDigit {
		return errors.New("password must contain at least one number")
	}
	return nil
}
