package domain

import (
	"regexp"
	"strings"
	"time"
	"unicode"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidateEmail reports whether the string looks like an email address:
// a local part, an @, and a domain containing at least one dot.
func ValidateEmail(email string) bool {
	return emailPattern.MatchString(strings.ToLower(email))
}

// ValidatePassword requires at least 6 characters and at least one digit.
func ValidatePassword(password string) bool {
	if len(password) < 6 {
		return false
	}
	for _, r := range password {
		if unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

// ValidateTaskTitle requires a non-blank title of at most 200 characters.
func ValidateTaskTitle(title string) bool {
	return strings.TrimSpace(title) != "" && len(title) <= 200
}

// ValidateDueDate accepts an absent due date; a present one must be
// strictly in the future at the moment of validation.
func ValidateDueDate(due *time.Time) bool {
	if due == nil {
		return true
	}
	return due.After(time.Now())
}

// ValidateUsername requires at least 3 characters after trimming.
func ValidateUsername(username string) bool {
	return len(strings.TrimSpace(username)) >= 3
}
