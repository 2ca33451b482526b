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

// GameActor - one instance per game id. It owns the board state machine:
// waiting -> ongoing once the second player is seated, ongoing ->
// finished on a completed line or a full board.
//
// mu serializes turns on the instance. It is deliberately released
// across every outbound actor call; state read before such a suspension
// point cannot be assumed unchanged after it.
type GameActor struct {
	id     string
	system *System
	logger *slog.Logger

	mu     sync.Mutex
	loaded bool
	state  *entity.Game
}

// ID - the stable identity this actor is addressed by.
func (that *GameActor) ID() string {
	return that.id
}

// ensureLoaded - loads the record on the instance's first turn. A game
// that has never been persisted starts out fresh and awaiting players.
// Must be called with mu held.
func (that *GameActor) ensureLoaded(ctx context.Context) error {
	if that.loaded {
		return nil
	}

	game, err := that.system.gameRepo.GetByID(ctx, that.id)
	if errors.Is(err, repository.ErrGameNotFound) {
		game = entity.NewGame(that.id)
	} else if err != nil {
		return fmt.Errorf("failed to load game state: %w", err)
	}

	that.state = game
	that.loaded = true

	return nil
}

// persist - writes the full record before the turn reports success. On a
// write failure the cached record is dropped so the next turn starts
// from the durable snapshot. Must be called with mu held.
func (that *GameActor) persist(ctx context.Context) error {
	if err := that.system.gameRepo.CreateOrUpdate(ctx, that.state); err != nil {
		that.loaded = false
		return fmt.Errorf("failed to persist game state: %w", err)
	}

	return nil
}

// AddPlayer - seats a player, rejecting the call once the game is in
// play or finished. When the second player arrives the game begins and
// the first mover is drawn at random between the two seats.
func (that *GameActor) AddPlayer(ctx context.Context, playerID string) (string, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if err := that.ensureLoaded(ctx); err != nil {
		return "", err
	}

	if err := that.state.AddPlayer(playerID); err != nil {
		return "", err
	}

	if that.state.IsFull() {
		that.state.Begin(that.system.pickFirstMover(2))
		that.logger.Info("game started", "first_mover", that.state.CurrentPlayer())
	}

	if err := that.persist(ctx); err != nil {
		return "", err
	}

	return that.state.Status, nil
}

type outcomeNotice struct {
	playerID string
	outcome  string
}

// MakeMove - validates and applies a move, then evaluates termination.
//
// A terminal move persists the finished record first and only then fans
// out completion notices to both players, awaiting both. The two are
// separate units of work: a notification failure is surfaced to the
// caller but never rolls back the already durable terminal state.
func (that *GameActor) MakeMove(ctx context.Context, playerID string, x, y int) (string, error) {
	that.mu.Lock()

	if err := that.ensureLoaded(ctx); err != nil {
		that.mu.Unlock()
		return "", err
	}

	if err := that.state.ApplyMove(playerID, x, y); err != nil {
		that.mu.Unlock()
		return "", err
	}

	win := that.state.HasWinningLine()
	if !win && !that.state.IsDraw() {
		that.state.AdvanceTurn()
		err := that.persist(ctx)
		status := that.state.Status
		that.mu.Unlock()

		if err != nil {
			return "", err
		}

		return status, nil
	}

	var notices []outcomeNotice
	if win {
		that.state.FinishWithWin()
		notices = []outcomeNotice{
			{playerID: that.state.WinnerID, outcome: entity.OutcomeWin},
			{playerID: that.state.LoserID, outcome: entity.OutcomeLose},
		}
	} else {
		that.state.FinishInDraw()
		notices = []outcomeNotice{
			{playerID: that.state.CurrentPlayer(), outcome: entity.OutcomeDraw},
			{playerID: that.state.NextPlayer(), outcome: entity.OutcomeDraw},
		}
	}

	if err := that.persist(ctx); err != nil {
		that.mu.Unlock()
		return "", err
	}

	status := that.state.Status
	that.logger.Info("game finished", "winner", that.state.WinnerID, "moves", len(that.state.Moves))
	that.mu.Unlock()

	// suspension point: the turn is released while both players are
	// notified concurrently.
	if err := that.notifyPlayers(ctx, notices); err != nil {
		return status, fmt.Errorf("game finished but failed to notify players: %w", err)
	}

	return status, nil
}

// notifyPlayers - fans out completion notices and awaits all of them.
// Must be called without mu held: LeaveGame re-enters player actors that
// may themselves have calls outstanding against this game.
func (that *GameActor) notifyPlayers(ctx context.Context, notices []outcomeNotice) error {
	var wg sync.WaitGroup
	errs := make([]error, len(notices))

	for i, notice := range notices {
		wg.Add(1)
		go func(i int, notice outcomeNotice) {
			defer wg.Done()
			errs[i] = that.system.Player(notice.playerID).LeaveGame(ctx, that.id, notice.outcome)
		}(i, notice)
	}

	wg.Wait()

	return errors.Join(errs...)
}

// GetState - the current lifecycle state. Pure read, no persistence.
func (that *GameActor) GetState(ctx context.Context) (string, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if err := that.ensureLoaded(ctx); err != nil {
		return "", err
	}

	return that.state.Status, nil
}

// GetMoves - the full move history in acceptance order. The returned
// slice is a copy; callers may keep it across turns.
func (that *GameActor) GetMoves(ctx context.Context) ([]entity.Move, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if err := that.ensureLoaded(ctx); err != nil {
		return nil, err
	}

	moves := make([]entity.Move, len(that.state.Moves))
	copy(moves, that.state.Moves)

	return moves, nil
}

// GetSummary - assembles the per-player view of this game, fetching the
// usernames of every other participant from their player actors
// concurrently.
func (that *GameActor) GetSummary(ctx context.Context, forPlayerID string) (entity.GameSummary, error) {
	that.mu.Lock()

	if err := that.ensureLoaded(ctx); err != nil {
		that.mu.Unlock()
		return entity.GameSummary{}, err
	}

	summary := entity.GameSummary{
		GameID:      that.id,
		Name:        that.state.Name,
		Status:      that.state.Status,
		NumMoves:    len(that.state.Moves),
		NumPlayers:  len(that.state.Players),
		YourMove:    that.state.IsOngoing() && forPlayerID == that.state.CurrentPlayer(),
		GameStarter: len(that.state.Players) > 0 && that.state.Players[0] == forPlayerID,
	}

	others := make([]string, 0, len(that.state.Players))
	for _, id := range that.state.Players {
		if id != forPlayerID {
			others = append(others, id)
		}
	}

	that.mu.Unlock()

	// suspension point: username fetches run outside the turn.
	usernames := make([]string, len(others))
	errs := make([]error, len(others))

	var wg sync.WaitGroup
	for i, id := range others {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			usernames[i], errs[i] = that.system.Player(id).GetUsername(ctx)
		}(i, id)
	}
	wg.Wait()

	if err := errors.Join(errs...); err != nil {
		return entity.GameSummary{}, fmt.Errorf("failed to fetch usernames: %w", err)
	}

	summary.Usernames = usernames

	return summary, nil
}

// SetName - sets the display name shown in the lobby.
func (that *GameActor) SetName(ctx context.Context, name string) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if err := that.ensureLoaded(ctx); err != nil {
		return err
	}

	that.state.Name = name

	return that.persist(ctx)
}
