package routehandlers

import (
	"errors"
	"net/mail"
	"strings"
)

const minRegistrationPasswordLength = 6

// normalizeEmail canonicalizes a login identifier before any lookup or
// comparison.
func normalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}

// validateEmail checks the address syntax. The input must already be
// normalized; display-name forms like "Ann <a@x.com>" are rejected.
func validateEmail(email string) error {
	if email == "" {
		return errors.New("Email is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return errors.New("Invalid email address")
	}
	return nil
}

func validateFullName(fullName string) error {
	if strings.TrimSpace(fullName) == "" {
		return errors.New("Full name is required")
	}
	return nil
}

// validateRegistrationPassword applies the lighter rule used at signup; the
// stricter complexity policy only applies on password changes.
func validateRegistrationPassword(password string) error {
	if password == "" {
		return errors.New("Password is required")
	}
	if len(password) < minRegistrationPasswordLength {
		return errors.New("Password must be at least 6 characters long")
	}
	return nil
}
