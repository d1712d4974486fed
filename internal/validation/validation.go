package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

const (
	minPasswordLength = 8
	// bcrypt ignores everything past 72 bytes
	maxPasswordBytes = 72
	minNameLength    = 2
	maxNameLength    = 60
	maxEmailLength   = 254
)

// ValidationError names the offending field of a request
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// RegisterRequest is the JSON payload of a guardian sign-up
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// RegisterCommand is a validated sign-up. Email is trimmed and lower-cased.
type RegisterCommand struct {
	Email    string
	Password string
	Name     string
}

// ParseRegister validates a sign-up payload
func ParseRegister(req RegisterRequest) (RegisterCommand, error) {
	cmd := RegisterCommand{
		Email:    strings.ToLower(strings.TrimSpace(req.Email)),
		Password: req.Password,
		Name:     strings.TrimSpace(req.Name),
	}
	if err := ValidateEmail(cmd.Email); err != nil {
		return cmd, err
	}
	if err := ValidatePassword(cmd.Password); err != nil {
		return cmd, err
	}
	name, err := ParseName(cmd.Name)
	if err != nil {
		return cmd, err
	}
	cmd.Name = name
	return cmd, nil
}

// ValidateEmail checks a guardian's login address
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	switch {
	case email == "":
		return ValidationError{Field: "email", Message: "email is required"}
	case len(email) > maxEmailLength:
		return ValidationError{Field: "email", Message: "email is too long"}
	case !emailRegex.MatchString(email):
		return ValidationError{Field: "email", Message: "invalid email format"}
	}
	return nil
}

// ValidatePassword checks a guardian password. Student passwords are
// generated and never pass through here.
func ValidatePassword(password string) error {
	switch {
	case password == "":
		return ValidationError{Field: "password", Message: "password is required"}
	case len(password) < minPasswordLength:
		return ValidationError{Field: "password", Message: fmt.Sprintf("password must be at least %d characters", minPasswordLength)}
	case len(password) > maxPasswordBytes:
		return ValidationError{Field: "password", Message: fmt.Sprintf("password must be at most %d bytes", maxPasswordBytes)}
	}
	return nil
}

// ParseName trims a display name for a guardian or student and checks its length
func ParseName(name string) (string, error) {
	name = strings.TrimSpace(name)
	n := utf8.RuneCountInString(name)
	switch {
	case n == 0:
		return "", ValidationError{Field: "name", Message: "name is required"}
	case n < minNameLength:
		return "", ValidationError{Field: "name", Message: fmt.Sprintf("name must be at least %d characters", minNameLength)}
	case n > maxNameLength:
		return "", ValidationError{Field: "name", Message: "name is too long"}
	}
	return name, nil
}
