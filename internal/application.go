package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/playsmith/tictactoe-actors/internal/actor"
	"github.com/playsmith/tictactoe-actors/internal/config"
	"github.com/playsmith/tictactoe-actors/internal/repository"
	"github.com/playsmith/tictactoe-actors/internal/repository/storage"
)

var ErrAddrNotFound = errors.New("redis address string is empty")

// RunApp - hosts the actor system: connects the durable store, wires the
// repositories, activates the lobby and then blocks until the process is
// signalled to stop.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		log.Info("Received signal, shutting down", "signal", sig)
		cancel()
	}()

	redisAddrString := conf.Redis.GetRedisAddr()
	if redisAddrString == "" {
		return ErrAddrNotFound
	}

	redisClient, err := storage.New(ctx, redisAddrString)
	if err != nil {
		return fmt.Errorf("could not connect to redis storage: %w", err)
	}

	defer func() {
		if err = redisClient.Close(); err != nil {
			log.Error("could not close redis storage", "error", err)
		}
	}()

	gameRepo := repository.NewGameRepository(redisClient)
	playerRepo := repository.NewPlayerRepository(redisClient)
	lobbyRepo := repository.NewLobbyRepository(redisClient)

	system := actor.NewSystem(logger, gameRepo, playerRepo, lobbyRepo)

	// touch the lobby singleton so its state is loaded up front and a
	// broken store fails the boot instead of the first matchmaking call
	openGames, err := system.Lobby().GetGames(ctx)
	if err != nil {
		return fmt.Errorf("could not activate lobby: %w", err)
	}

	log.Info("Actor system ready", "open_games", len(openGames))

	<-ctx.Done()
	log.Info("Application context canceled, shutting down")

	return nil
}
