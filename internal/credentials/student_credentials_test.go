package credentials

import (
	"regexp"
	"strings"
	"testing"
)

func TestGenerateStudentPassword(t *testing.T) {
	tests := []struct {
		name        string
		iterations  int
		checkUnique bool
	}{
		{
			name:       "generates password of correct length",
			iterations: 100,
		},
		{
			name:        "generates unique passwords",
			iterations:  10,
			checkUnique: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			passwords := make(map[string]bool)
			for i := 0; i < tt.iterations; i++ {
				password, err := GenerateStudentPassword()
				if err != nil {
					t.Fatalf("GenerateStudentPassword() error = %v", err)
				}

				if len(password) != StudentPasswordLength {
					t.Errorf("password length = %d, want %d", len(password), StudentPasswordLength)
				}
				if strings.ContainsAny(password, "0O1lI") {
					t.Errorf("password %q contains an ambiguous character", password)
				}

				if tt.checkUnique {
					if passwords[password] {
						t.Errorf("duplicate password generated: %s", password)
					}
					passwords[password] = true
				}
			}
		})
	}
}

func TestGenerateStudentUsername(t *testing.T) {
	pattern := regexp.MustCompile(`^[a-z]+-[a-z]+-\d{2}$`)

	for i := 0; i < 50; i++ {
		username, err := GenerateStudentUsername()
		if err != nil {
			t.Fatalf("GenerateStudentUsername() error = %v", err)
		}
		if !pattern.MatchString(username) {
			t.Errorf("GenerateStudentUsername() = %q, want adjective-noun-NN", username)
		}
	}
}
