package entity

// Player - the persisted record of one player actor: identity, profile
// and the running totals across all games played.
type Player struct {
	ID           string   `json:"id"`
	Username     string   `json:"username,omitempty"`
	GamesStarted int      `json:"games_started"`
	Wins         int      `json:"wins"`
	Losses       int      `json:"losses"`
	ActiveGames  []string `json:"active_games"`
	PastGames    []string `json:"past_games"`
}

// NewPlayer - a fresh player record with empty game lists.
func NewPlayer(id string) *Player {
	return &Player{
		ID:          id,
		ActiveGames: []string{},
		PastGames:   []string{},
	}
}

// HasActiveGame - reports whether the game id is in the active set.
func (that *Player) HasActiveGame(gameID string) bool {
	for _, id := range that.ActiveGames {
		if id == gameID {
			return true
		}
	}
	return false
}

// AddActiveGame - adds a game id to the active set; adding an id that is
// already present is a no-op, so a retried join cannot duplicate it.
func (that *Player) AddActiveGame(gameID string) {
	if that.HasActiveGame(gameID) {
		return
	}
	that.ActiveGames = append(that.ActiveGames, gameID)
}

// RetireGame - moves a game id from the active set to the past set.
// Returns false when the id is not active, which makes a duplicate
// completion delivery detectable: an id moves from active to past
// exactly once.
func (that *Player) RetireGame(gameID string) bool {
	for i, id := range that.ActiveGames {
		if id != gameID {
			continue
		}

		that.ActiveGames = append(that.ActiveGames[:i], that.ActiveGames[i+1:]...)
		that.PastGames = append(that.PastGames, gameID)

		return true
	}

	return false
}
