package actor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/playsmith/tictactoe-actors/internal/entity"
	"github.com/playsmith/tictactoe-actors/internal/pkg"
	"github.com/playsmith/tictactoe-actors/internal/repository"
)

// PlayerActor - one instance per player id. It tracks the player's
// profile, active and past games, and win/loss totals, and coordinates
// game creation and matchmaking against the game and lobby actors.
//
// The same turn discipline as GameActor applies: mu is released across
// every outbound actor call, and anything resumed after such a call
// re-validates against the current record instead of trusting values
// read before it.
type PlayerActor struct {
	id     string
	system *System
	logger *slog.Logger

	mu     sync.Mutex
	loaded bool
	state  *entity.Player
}

// ID - the stable identity this actor is addressed by.
func (that *PlayerActor) ID() string {
	return that.id
}

// ensureLoaded - loads the record on the instance's first turn; a player
// never persisted before starts with an empty record. Must be called
// with mu held.
func (that *PlayerActor) ensureLoaded(ctx context.Context) error {
	if that.loaded {
		return nil
	}

	player, err := that.system.playerRepo.GetByID(ctx, that.id)
	if errors.Is(err, repository.ErrPlayerNotFound) {
		player = entity.NewPlayer(that.id)
	} else if err != nil {
		return fmt.Errorf("failed to load player state: %w", err)
	}

	that.state = player
	that.loaded = true

	return nil
}

// persist - writes the full record before the turn reports success. Must
// be called with mu held.
func (that *PlayerActor) persist(ctx context.Context) error {
	if err := that.system.playerRepo.CreateOrUpdate(ctx, that.state); err != nil {
		that.loaded = false
		return fmt.Errorf("failed to persist player state: %w", err)
	}

	return nil
}

// GetAvailableGames - the lobby's open games minus those this player is
// already part of.
func (that *PlayerActor) GetAvailableGames(ctx context.Context) ([]entity.LobbyEntry, error) {
	that.mu.Lock()

	if err := that.ensureLoaded(ctx); err != nil {
		that.mu.Unlock()
		return nil, err
	}

	active := make(map[string]struct{}, len(that.state.ActiveGames))
	for _, id := range that.state.ActiveGames {
		active[id] = struct{}{}
	}

	that.mu.Unlock()

	// suspension point: query the lobby outside the turn.
	entries, err := that.system.Lobby().GetGames(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list open games: %w", err)
	}

	available := make([]entity.LobbyEntry, 0, len(entries))
	for _, entry := range entries {
		if _, ok := active[entry.GameID]; !ok {
			available = append(available, entry)
		}
	}

	return available, nil
}

// CreateGame - allocates a new game, seats this player in it, names it
// "<username>'s <n>th game" and registers it with the lobby so a second
// player can find it. Returns the new game's id.
func (that *PlayerActor) CreateGame(ctx context.Context) (string, error) {
	that.mu.Lock()

	if err := that.ensureLoaded(ctx); err != nil {
		that.mu.Unlock()
		return "", err
	}

	that.state.GamesStarted++
	started := that.state.GamesStarted
	username := that.state.Username

	that.mu.Unlock()

	gameID := pkg.GenerateGameID()
	game := that.system.Game(gameID)

	// suspension point: seat ourselves in the new game.
	if _, err := game.AddPlayer(ctx, that.id); err != nil {
		return "", fmt.Errorf("failed to join created game: %w", err)
	}

	that.mu.Lock()
	// the record may have taken other turns while we were suspended;
	// AddActiveGame tolerates that by refusing duplicates.
	that.state.AddActiveGame(gameID)
	err := that.persist(ctx)
	that.mu.Unlock()

	if err != nil {
		return "", err
	}

	name := fmt.Sprintf("%s's %s game", username, pkg.Ordinal(started))

	if err = game.SetName(ctx, name); err != nil {
		return "", fmt.Errorf("failed to name game: %w", err)
	}

	if err = that.system.Lobby().AddGame(ctx, gameID, name); err != nil {
		return "", fmt.Errorf("failed to register game with lobby: %w", err)
	}

	that.logger.Info("game created", "game_id", gameID, "name", name)

	return gameID, nil
}

// JoinGame - joins a game another player opened. The game actor enforces
// its own lifecycle, so joining an in-play or finished game fails there
// without touching this player's record.
func (that *PlayerActor) JoinGame(ctx context.Context, gameID string) (string, error) {
	game := that.system.Game(gameID)

	// suspension point: ask the game to seat us.
	status, err := game.AddPlayer(ctx, that.id)
	if err != nil {
		return "", err
	}

	that.mu.Lock()

	if err = that.ensureLoaded(ctx); err != nil {
		that.mu.Unlock()
		return "", err
	}

	that.state.AddActiveGame(gameID)
	err = that.persist(ctx)

	that.mu.Unlock()

	if err != nil {
		return "", err
	}

	// the game has its players now; take it off the open list.
	if err = that.system.Lobby().RemoveGame(ctx, gameID); err != nil {
		return "", fmt.Errorf("failed to remove game from lobby: %w", err)
	}

	return status, nil
}

// LeaveGame - called by a game actor once that game is over. Moves the
// game from the active to the past list and bumps the win or loss total.
//
// An id moves from active to past exactly once: a duplicate delivery
// finds the game already retired and changes nothing, so outcomes are
// never double-counted.
func (that *PlayerActor) LeaveGame(ctx context.Context, gameID, outcome string) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if err := that.ensureLoaded(ctx); err != nil {
		return err
	}

	if !that.state.RetireGame(gameID) {
		that.logger.Warn("duplicate game completion ignored", "game_id", gameID)
		return nil
	}

	switch outcome {
	case entity.OutcomeWin:
		that.state.Wins++
	case entity.OutcomeLose:
		that.state.Losses++
	}

	return that.persist(ctx)
}

// GetGameSummaries - fetches this player's view of every active game,
// concurrently. Result order carries no relation to the active list.
func (that *PlayerActor) GetGameSummaries(ctx context.Context) ([]entity.GameSummary, error) {
	that.mu.Lock()

	if err := that.ensureLoaded(ctx); err != nil {
		that.mu.Unlock()
		return nil, err
	}

	ids := make([]string, len(that.state.ActiveGames))
	copy(ids, that.state.ActiveGames)

	that.mu.Unlock()

	// suspension point: summaries are gathered outside the turn, and the
	// game actors call back into other player actors for usernames.
	summaries := make([]entity.GameSummary, len(ids))
	errs := make([]error, len(ids))

	var wg sync.WaitGroup
	for i, id := range ids {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			summaries[i], errs[i] = that.system.Game(id).GetSummary(ctx, that.id)
		}(i, id)
	}
	wg.Wait()

	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("failed to gather game summaries: %w", err)
	}

	return summaries, nil
}

// SetUsername - sets the display name used when naming created games.
func (that *PlayerActor) SetUsername(ctx context.Context, username string) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if err := that.ensureLoaded(ctx); err != nil {
		return err
	}

	that.state.Username = username

	return that.persist(ctx)
}

// GetUsername - the player's current display name.
func (that *PlayerActor) GetUsername(ctx context.Context) (string, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if err := that.ensureLoaded(ctx); err != nil {
		return "", err
	}

	return that.state.Username, nil
}
