package actor

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/playsmith/tictactoe-actors/internal/entity"
	"github.com/playsmith/tictactoe-actors/internal/repository"
)

// In-memory snapshot stores for actor tests. Records round-trip through
// JSON exactly like the redis repositories, so a loaded record never
// aliases live actor state.

var errWritesDisabled = errors.New("writes disabled")

type memGameRepo struct {
	mu    sync.Mutex
	games map[string][]byte
}

func newMemGameRepo() *memGameRepo {
	return &memGameRepo{games: make(map[string][]byte)}
}

func (that *memGameRepo) CreateOrUpdate(_ context.Context, game *entity.Game) error {
	raw, err := json.Marshal(game)
	if err != nil {
		return err
	}

	that.mu.Lock()
	defer that.mu.Unlock()
	that.games[game.ID] = raw

	return nil
}

func (that *memGameRepo) GetByID(_ context.Context, id string) (*entity.Game, error) {
	that.mu.Lock()
	raw, ok := that.games[id]
	that.mu.Unlock()

	if !ok {
		return nil, repository.ErrGameNotFound
	}

	var game entity.Game
	if err := json.Unmarshal(raw, &game); err != nil {
		return nil, err
	}

	return &game, nil
}

type memPlayerRepo struct {
	mu         sync.Mutex
	players    map[string][]byte
	failWrites bool
}

func newMemPlayerRepo() *memPlayerRepo {
	return &memPlayerRepo{players: make(map[string][]byte)}
}

func (that *memPlayerRepo) setFailWrites(fail bool) {
	that.mu.Lock()
	defer that.mu.Unlock()
	that.failWrites = fail
}

func (that *memPlayerRepo) CreateOrUpdate(_ context.Context, player *entity.Player) error {
	raw, err := json.Marshal(player)
	if err != nil {
		return err
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	if that.failWrites {
		return errWritesDisabled
	}

	that.players[player.ID] = raw

	return nil
}

func (that *memPlayerRepo) GetByID(_ context.Context, id string) (*entity.Player, error) {
	that.mu.Lock()
	raw, ok := that.players[id]
	that.mu.Unlock()

	if !ok {
		return nil, repository.ErrPlayerNotFound
	}

	var player entity.Player
	if err := json.Unmarshal(raw, &player); err != nil {
		return nil, err
	}

	return &player, nil
}

type memLobbyRepo struct {
	mu    sync.Mutex
	lobby []byte
}

func newMemLobbyRepo() *memLobbyRepo {
	return &memLobbyRepo{}
}

func (that *memLobbyRepo) CreateOrUpdate(_ context.Context, lobby *entity.Lobby) error {
	raw, err := json.Marshal(lobby)
	if err != nil {
		return err
	}

	that.mu.Lock()
	defer that.mu.Unlock()
	that.lobby = raw

	return nil
}

func (that *memLobbyRepo) Get(_ context.Context) (*entity.Lobby, error) {
	that.mu.Lock()
	raw := that.lobby
	that.mu.Unlock()

	if raw == nil {
		return nil, repository.ErrLobbyNotFound
	}

	var lobby entity.Lobby
	if err := json.Unmarshal(raw, &lobby); err != nil {
		return nil, err
	}

	return &lobby, nil
}

type testEnv struct {
	system  *System
	games   *memGameRepo
	players *memPlayerRepo
	lobby   *memLobbyRepo
}

// newTestEnv - an actor system over in-memory stores. The first mover is
// pinned to seat 0 (the creator) so turn order is predictable; tests that
// care about randomness inject their own source.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		games:   newMemGameRepo(),
		players: newMemPlayerRepo(),
		lobby:   newMemLobbyRepo(),
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	env.system = NewSystem(logger, env.games, env.players, env.lobby)
	env.system.pickFirstMover = func(int) int { return 0 }

	return env
}
