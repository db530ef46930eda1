package tool

import (
	"strings"

	"github.com/google/uuid"
)

func GenerateUUIDV7() string {
	return uuid.Must(uuid.NewV7()).String()
}

// RandomSuffix returns n uppercase hex characters for human-readable IDs.
func RandomSuffix(n int) string {
	s := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", ""))
	if n > len(s) {
		n = len(s)
	}
	return s[:n]
}
