package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/playsmith/tictactoe-actors/internal/entity"
	"github.com/redis/go-redis/v9"
)

var ErrLobbyNotFound = errors.New("lobby not found")

// lobbyKey - the lobby is a singleton actor, so its snapshot lives under
// one well-known key rather than a per-identity one.
const lobbyKey = "lobby"

// LobbyRepository - snapshot persistence for the singleton lobby record.
type LobbyRepository interface {
	CreateOrUpdate(ctx context.Context, lobby *entity.Lobby) error
	Get(ctx context.Context) (*entity.Lobby, error)
}

type dbLobby struct {
	client *redis.Client
}

func NewLobbyRepository(client *redis.Client) LobbyRepository {
	return &dbLobby{
		client: client,
	}
}

func (that *dbLobby) CreateOrUpdate(ctx context.Context, lobby *entity.Lobby) error {
	lobbyJSON, err := json.Marshal(lobby)
	if err != nil {
		return fmt.Errorf("failed to marshal lobby: %w", err)
	}

	if err = that.client.Set(ctx, lobbyKey, lobbyJSON, 0).Err(); err != nil {
		return fmt.Errorf("failed to set lobby: %w", err)
	}

	return nil
}

func (that *dbLobby) Get(ctx context.Context) (*entity.Lobby, error) {
	response, err := that.client.Get(ctx, lobbyKey).Result()

	if errors.Is(err, redis.Nil) {
		return nil, ErrLobbyNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get lobby: %w", err)
	}

	var existingLobby entity.Lobby
	if err = json.Unmarshal([]byte(response), &existingLobby); err != nil {
		return nil, fmt.Errorf("failed to unmarshal lobby: %w", err)
	}

	return &existingLobby, nil
}
