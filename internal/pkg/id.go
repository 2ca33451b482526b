package pkg

import "github.com/google/uuid"

// GenerateGameID - allocates a unique id for a new game actor.
func GenerateGameID() string {
	return uuid.NewString()
}
