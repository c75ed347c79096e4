package uid

import (
	"strings"

	"github.com/google/uuid"
)

// GenerateGameID returns a random identifier for a hosted game.
func GenerateGameID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// IsGameID reports whether s could have come from GenerateGameID.
func IsGameID(s string) bool {
	if len(s) != 32 {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}
