package actor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/playsmith/tictactoe-actors/internal/entity"
	"github.com/playsmith/tictactoe-actors/internal/repository"
)

// LobbyActor - the singleton registry of games awaiting a second player.
// It makes no outgoing calls, so its turns never suspend.
type LobbyActor struct {
	system *System
	logger *slog.Logger

	mu     sync.Mutex
	loaded bool
	state  *entity.Lobby
}

// ensureLoaded - loads the record on the first turn; an empty lobby is
// created if nothing was persisted yet. Must be called with mu held.
func (that *LobbyActor) ensureLoaded(ctx context.Context) error {
	if that.loaded {
		return nil
	}

	lobby, err := that.system.lobbyRepo.Get(ctx)
	if errors.Is(err, repository.ErrLobbyNotFound) {
		lobby = entity.NewLobby()
	} else if err != nil {
		return fmt.Errorf("failed to load lobby state: %w", err)
	}

	that.state = lobby
	that.loaded = true

	return nil
}

// persist - writes the full record before the turn reports success. Must
// be called with mu held.
func (that *LobbyActor) persist(ctx context.Context) error {
	if err := that.system.lobbyRepo.CreateOrUpdate(ctx, that.state); err != nil {
		that.loaded = false
		return fmt.Errorf("failed to persist lobby state: %w", err)
	}

	return nil
}

// AddGame - lists a game as open, upserting its display name.
func (that *LobbyActor) AddGame(ctx context.Context, gameID, name string) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if err := that.ensureLoaded(ctx); err != nil {
		return err
	}

	that.state.Add(gameID, name)

	if err := that.persist(ctx); err != nil {
		return err
	}

	that.logger.Debug("game listed", "game_id", gameID, "name", name)

	return nil
}

// RemoveGame - delists a game. Removing an id that is not listed is a
// no-op, not an error.
func (that *LobbyActor) RemoveGame(ctx context.Context, gameID string) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if err := that.ensureLoaded(ctx); err != nil {
		return err
	}

	that.state.Remove(gameID)

	if err := that.persist(ctx); err != nil {
		return err
	}

	that.logger.Debug("game delisted", "game_id", gameID)

	return nil
}

// GetGames - a snapshot of all open games, in no particular order.
func (that *LobbyActor) GetGames(ctx context.Context) ([]entity.LobbyEntry, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if err := that.ensureLoaded(ctx); err != nil {
		return nil, err
	}

	return that.state.Entries(), nil
}
