package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

var slugRegex = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

const (
	MinPasswordLength = 8
	MinNameLength     = 2
	MinOptions        = 2
	MaxTermLength     = 200
)

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateEmail checks if an email address is valid
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return ValidationError{Field: "email", Message: "email is required"}
	}
	if !emailRegex.MatchString(email) {
		return ValidationError{Field: "email", Message: "invalid email format"}
	}
	return nil
}

// ValidatePassword checks if a password meets requirements
func ValidatePassword(password string) error {
	if password == "" {
		return ValidationError{Field: "password", Message: "password is required"}
	}
	if len(password) < MinPasswordLength {
		return ValidationError{Field: "password", Message: fmt.Sprintf("password must be at least %d characters", MinPasswordLength)}
	}
	return nil
}

// ValidateName checks if a name is valid. Length is counted in runes so
// Cyrillic names are measured the same as Latin ones.
func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ValidationError{Field: "name", Message: "name is required"}
	}
	if utf8.RuneCountInString(name) < MinNameLength {
		return ValidationError{Field: "name", Message: fmt.Sprintf("name must be at least %d characters", MinNameLength)}
	}
	return nil
}

// ValidateTopicID checks that a topic ID is a lowercase slug
func ValidateTopicID(id string) error {
	if id == "" {
		return ValidationError{Field: "topic_id", Message: "topic ID is required"}
	}
	if !slugRegex.MatchString(id) {
		return ValidationError{Field: "topic_id", Message: "topic ID must be a lowercase slug"}
	}
	return nil
}

func validateText(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return ValidationError{Field: field, Message: field + " is required"}
	}
	if utf8.RuneCountInString(value) > MaxTermLength {
		return ValidationError{Field: field, Message: fmt.Sprintf("%s must be at most %d characters", field, MaxTermLength)}
	}
	return nil
}

// ValidateCard checks a flashcard's term and translation
func ValidateCard(term, translation string) error {
	if err := validateText("term", term); err != nil {
		return err
	}
	return validateText("translation", translation)
}

// ValidateQuestion checks a translation question. Options are compared
// exactly, the same way answers are graded, and the correct answer must
// appear among them exactly once.
func ValidateQuestion(term, correctAnswer string, options []string) error {
	if err := validateText("term", term); err != nil {
		return err
	}
	if err := validateText("correct_answer", correctAnswer); err != nil {
		return err
	}
	if len(options) < MinOptions {
		return ValidationError{Field: "options", Message: fmt.Sprintf("at least %d options are required", MinOptions)}
	}

	seen := make(map[string]bool, len(options))
	for _, opt := range options {
		if strings.TrimSpace(opt) == "" {
			return ValidationError{Field: "options", Message: "options must not be empty"}
		}
		if seen[opt] {
			return ValidationError{Field: "options", Message: fmt.Sprintf("duplicate option %q", opt)}
		}
		seen[opt] = true
	}
	if !seen[correctAnswer] {
		return ValidationError{Field: "options", Message: "options must contain the correct answer"}
	}
	return nil
}
