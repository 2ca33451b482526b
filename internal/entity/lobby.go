package entity

// LobbyEntry - one game awaiting a second player, as listed to clients.
type LobbyEntry struct {
	GameID string `json:"game_id"`
	Name   string `json:"name"`
}

// Lobby - the persisted record of the singleton lobby actor: a mapping
// from game id to display name, holding exactly the games that are still
// awaiting players.
type Lobby struct {
	Games map[string]string `json:"games"`
}

// NewLobby - an empty lobby record.
func NewLobby() *Lobby {
	return &Lobby{
		Games: map[string]string{},
	}
}

// Add - upserts a lobby entry.
func (that *Lobby) Add(gameID, name string) {
	that.Games[gameID] = name
}

// Remove - deletes a lobby entry; removing an absent id is a no-op.
func (that *Lobby) Remove(gameID string) {
	delete(that.Games, gameID)
}

// Entries - a snapshot of all open games, in no particular order.
func (that *Lobby) Entries() []LobbyEntry {
	entries := make([]LobbyEntry, 0, len(that.Games))
	for id, name := range that.Games {
		entries = append(entries, LobbyEntry{GameID: id, Name: name})
	}
	return entries
}
