// Package actor hosts the three actor kinds the backend is built from:
// one game actor per game id, one player actor per player id, and a
// singleton lobby actor.
//
// Every actor instance owns a private persisted record and processes one
// call at a time. Calls between actors form a cycle (a game notifies its
// players, players create and join games), so instances are reentrant:
// an actor releases its turn whenever it awaits an outbound call, and
// other calls may interleave there. Any precondition that spans such a
// suspension point is re-checked after resuming.
package actor

import (
	"context"
	"log/slog"
	"math/rand"
	"sync"

	"github.com/playsmith/tictactoe-actors/internal/entity"
)

type gameRepo interface {
	CreateOrUpdate(ctx context.Context, game *entity.Game) error
	GetByID(ctx context.Context, id string) (*entity.Game, error)
}

type playerRepo interface {
	CreateOrUpdate(ctx context.Context, player *entity.Player) error
	GetByID(ctx context.Context, id string) (*entity.Player, error)
}

type lobbyRepo interface {
	CreateOrUpdate(ctx context.Context, lobby *entity.Lobby) error
	Get(ctx context.Context) (*entity.Lobby, error)
}

// System - resolves actor instances by identity. Instances are activated
// lazily on first reference and kept for the lifetime of the process;
// their records are loaded from the repositories on their first turn.
//
// Actors never hold references to each other. Every cross-actor call
// goes through the system by id, so the Game<->Player call cycle never
// becomes an ownership cycle.
type System struct {
	logger *slog.Logger

	gameRepo   gameRepo
	playerRepo playerRepo
	lobbyRepo  lobbyRepo

	// pickFirstMover draws the index of the first mover once a game is
	// full. Production uses math/rand; tests inject a seeded source.
	pickFirstMover func(n int) int

	mu      sync.Mutex
	games   map[string]*GameActor
	players map[string]*PlayerActor
	lobby   *LobbyActor
}

// NewSystem - creates an actor system over the given repositories.
func NewSystem(logger *slog.Logger, games gameRepo, players playerRepo, lobby lobbyRepo) *System {
	return &System{
		logger: logger.With("component", "actor-system"),

		gameRepo:   games,
		playerRepo: players,
		lobbyRepo:  lobby,

		pickFirstMover: rand.Intn, //nolint:gosec // first-mover choice needs no crypto strength

		games:   make(map[string]*GameActor),
		players: make(map[string]*PlayerActor),
	}
}

// Game - resolves the game actor for the given id, activating it on
// first reference.
func (that *System) Game(id string) *GameActor {
	that.mu.Lock()
	defer that.mu.Unlock()

	if game, ok := that.games[id]; ok {
		return game
	}

	game := &GameActor{
		id:     id,
		system: that,
		logger: that.logger.With("actor", "game", "game_id", id),
	}
	that.games[id] = game

	return game
}

// Player - resolves the player actor for the given id, activating it on
// first reference.
func (that *System) Player(id string) *PlayerActor {
	that.mu.Lock()
	defer that.mu.Unlock()

	if player, ok := that.players[id]; ok {
		return player
	}

	player := &PlayerActor{
		id:     id,
		system: that,
		logger: that.logger.With("actor", "player", "player_id", id),
	}
	that.players[id] = player

	return player
}

// Lobby - resolves the singleton lobby actor, activating it on first
// reference.
func (that *System) Lobby() *LobbyActor {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.lobby == nil {
		that.lobby = &LobbyActor{
			system: that,
			logger: that.logger.With("actor", "lobby"),
		}
	}

	return that.lobby
}
