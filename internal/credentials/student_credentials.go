package credentials

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// Word lists for generating student usernames
var adjectives = []string{
	"bright", "brave", "clever", "curious", "eager", "keen", "quick", "sharp",
	"steady", "swift", "wise", "bold", "calm", "cosmic", "daring", "epic",
	"focused", "gentle", "jolly", "lucky", "mighty", "noble", "patient", "sunny",
}

var nouns = []string{
	"owl", "fox", "otter", "falcon", "panda", "tiger", "dolphin", "comet",
	"rocket", "atlas", "scholar", "explorer", "ranger", "pilot", "sage", "wizard",
	"quill", "compass", "beacon", "summit", "nova", "orbit", "prism", "voyager",
}

// Excludes characters that read alike: 0/O, 1/l/I
const passwordChars = "abcdefghijkmnpqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// StudentPasswordLength is the length of generated student passwords
const StudentPasswordLength = 6

// GenerateStudentUsername returns a username like "clever-otter-42"
func GenerateStudentUsername() (string, error) {
	adjective, err := randomElement(adjectives)
	if err != nil {
		return "", err
	}

	noun, err := randomElement(nouns)
	if err != nil {
		return "", err
	}

	n, err := rand.Int(rand.Reader, big.NewInt(100))
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%s-%s-%02d", adjective, noun, n.Int64()), nil
}

// GenerateStudentPassword generates a short random password a child can type
func GenerateStudentPassword() (string, error) {
	password := make([]byte, StudentPasswordLength)

	for i := range password {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(passwordChars))))
		if err != nil {
			return "", err
		}
		password[i] = passwordChars[num.Int64()]
	}

	return string(password), nil
}

// randomElement picks a random element from a string slice
func randomElement(slice []string) (string, error) {
	if len(slice) == 0 {
		return "", nil
	}

	num, err := rand.Int(rand.Reader, big.NewInt(int64(len(slice))))
	if err != nil {
		return "", err
	}

	return slice[num.Int64()], nil
}
