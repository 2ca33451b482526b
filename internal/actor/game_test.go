package actor

import (
	"context"
	"fmt"
	"math/rand"
	"testing"

	"github.com/playsmith/tictactoe-actors/internal/apperror"
	"github.com/playsmith/tictactoe-actors/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGameActor_AddPlayer(t *testing.T) {
	t.Run("Second player starts the game, third is rejected", func(t *testing.T) {
		ctx := context.Background()
		env := newTestEnv(t)
		game := env.system.Game("g1")

		// When: two players are seated
		status, err := game.AddPlayer(ctx, "p1")
		require.NoError(t, err)
		assert.Equal(t, entity.StatusWaiting, status)

		status, err = game.AddPlayer(ctx, "p2")
		require.NoError(t, err)
		assert.Equal(t, entity.StatusOngoing, status)

		// Then: a third player is always rejected
		_, err = game.AddPlayer(ctx, "p3")
		assert.ErrorIs(t, err, apperror.ErrGameInPlay)
	})

	t.Run("Seated players survive a restart of the actor", func(t *testing.T) {
		ctx := context.Background()
		env := newTestEnv(t)

		_, err := env.system.Game("g1").AddPlayer(ctx, "p1")
		require.NoError(t, err)

		// When: a fresh system loads the same identity from the store
		fresh := NewSystem(env.system.logger, env.games, env.players, env.lobby)
		status, err := fresh.Game("g1").GetState(ctx)

		// Then: the persisted seat is visible
		require.NoError(t, err)
		assert.Equal(t, entity.StatusWaiting, status)

		persisted, err := env.games.GetByID(ctx, "g1")
		require.NoError(t, err)
		assert.Equal(t, []string{"p1"}, persisted.Players)
	})
}

func TestGameActor_FirstMoverDistribution(t *testing.T) {
	// Given: a seeded source so the trial sequence is reproducible
	ctx := context.Background()
	env := newTestEnv(t)
	rng := rand.New(rand.NewSource(1))
	env.system.pickFirstMover = rng.Intn

	const trials = 1000

	firstSeatStarts := 0
	for i := 0; i < trials; i++ {
		game := env.system.Game(fmt.Sprintf("game-%d", i))

		_, err := game.AddPlayer(ctx, "p1")
		require.NoError(t, err)
		_, err = game.AddPlayer(ctx, "p2")
		require.NoError(t, err)

		summary, err := game.GetSummary(ctx, "p1")
		require.NoError(t, err)
		if summary.YourMove {
			firstSeatStarts++
		}
	}

	// Then: across many independent games the first mover is drawn
	// roughly uniformly between the two seats
	assert.InDelta(t, trials/2, firstSeatStarts, trials/10)
}

func TestGameActor_MakeMove_Rejections(t *testing.T) {
	ctx := context.Background()

	t.Run("Rejected before the game starts", func(t *testing.T) {
		env := newTestEnv(t)
		game := env.system.Game("g1")
		_, err := game.AddPlayer(ctx, "p1")
		require.NoError(t, err)

		_, err = game.MakeMove(ctx, "p1", 0, 0)

		assert.ErrorIs(t, err, apperror.ErrGameIsNotStarted)
		assertNoMoves(ctx, t, game)
	})

	t.Run("Rejected for a player unknown to the game", func(t *testing.T) {
		env := newTestEnv(t)
		game := startedGame(ctx, t, env, "g1")

		_, err := game.MakeMove(ctx, "stranger", 0, 0)

		assert.ErrorIs(t, err, apperror.ErrUnknownPlayer)
		assertNoMoves(ctx, t, game)
	})

	t.Run("Rejected out of turn", func(t *testing.T) {
		env := newTestEnv(t)
		game := startedGame(ctx, t, env, "g1")

		// p1 has the first move, so p2 is rejected
		_, err := game.MakeMove(ctx, "p2", 0, 0)

		assert.ErrorIs(t, err, apperror.ErrNotYourTurn)
		assertNoMoves(ctx, t, game)
	})

	t.Run("Rejected outside the board", func(t *testing.T) {
		env := newTestEnv(t)
		game := startedGame(ctx, t, env, "g1")

		for _, coords := range [][2]int{{-1, 0}, {0, -1}, {3, 0}, {0, 3}} {
			_, err := game.MakeMove(ctx, "p1", coords[0], coords[1])
			assert.ErrorIs(t, err, apperror.ErrInvalidCell)
		}

		assertNoMoves(ctx, t, game)
	})

	t.Run("Rejected on an occupied cell and turn is kept", func(t *testing.T) {
		env := newTestEnv(t)
		game := startedGame(ctx, t, env, "g1")

		_, err := game.MakeMove(ctx, "p1", 1, 1)
		require.NoError(t, err)

		_, err = game.MakeMove(ctx, "p2", 1, 1)
		assert.ErrorIs(t, err, apperror.ErrCellOccupied)

		// the rejected move did not consume p2's turn
		_, err = game.MakeMove(ctx, "p2", 0, 0)
		require.NoError(t, err)
	})
}

func TestGameActor_MakeMove_WinNotifiesPlayers(t *testing.T) {
	// Given: a game created and joined through the player actors;
	// the pinned first mover makes the creator p1 move first
	ctx := context.Background()
	env := newTestEnv(t)
	gameID := matchedGame(ctx, t, env, "p1", "p2")
	game := env.system.Game(gameID)

	// When: p1 completes a line through x=0
	playSequence(ctx, t, game, []entity.Move{
		{PlayerID: "p1", X: 0, Y: 0},
		{PlayerID: "p2", X: 1, Y: 0},
		{PlayerID: "p1", X: 0, Y: 1},
		{PlayerID: "p2", X: 1, Y: 1},
	})

	status, err := game.MakeMove(ctx, "p1", 0, 2)
	require.NoError(t, err)

	// Then: the game is finished with p1 as winner, p2 as loser
	assert.Equal(t, entity.StatusFinished, status)

	persisted, err := env.games.GetByID(ctx, gameID)
	require.NoError(t, err)
	assert.Equal(t, "p1", persisted.WinnerID)
	assert.Equal(t, "p2", persisted.LoserID)

	// and both players were notified: totals bumped, game retired
	winner, err := env.players.GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 1, winner.Wins)
	assert.Equal(t, 0, winner.Losses)
	assert.Empty(t, winner.ActiveGames)
	assert.Equal(t, []string{gameID}, winner.PastGames)

	loser, err := env.players.GetByID(ctx, "p2")
	require.NoError(t, err)
	assert.Equal(t, 0, loser.Wins)
	assert.Equal(t, 1, loser.Losses)
	assert.Equal(t, []string{gameID}, loser.PastGames)
}

func TestGameActor_MakeMove_DrawNotifiesPlayers(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	gameID := matchedGame(ctx, t, env, "p1", "p2")
	game := env.system.Game(gameID)

	// When: the board fills with no line
	playSequence(ctx, t, game, []entity.Move{
		{PlayerID: "p1", X: 0, Y: 0},
		{PlayerID: "p2", X: 0, Y: 1},
		{PlayerID: "p1", X: 0, Y: 2},
		{PlayerID: "p2", X: 1, Y: 1},
		{PlayerID: "p1", X: 1, Y: 0},
		{PlayerID: "p2", X: 1, Y: 2},
		{PlayerID: "p1", X: 2, Y: 1},
		{PlayerID: "p2", X: 2, Y: 0},
	})

	status, err := game.MakeMove(ctx, "p1", 2, 2)
	require.NoError(t, err)

	// Then: finished as a draw, neither counter moves, the game is
	// retired for both players
	assert.Equal(t, entity.StatusFinished, status)

	persisted, err := env.games.GetByID(ctx, gameID)
	require.NoError(t, err)
	assert.Empty(t, persisted.WinnerID)
	assert.Empty(t, persisted.LoserID)

	for _, id := range []string{"p1", "p2"} {
		player, err := env.players.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, 0, player.Wins)
		assert.Equal(t, 0, player.Losses)
		assert.Equal(t, []string{gameID}, player.PastGames)
	}
}

func TestGameActor_MakeMove_NotificationFailureIsSurfaced(t *testing.T) {
	// Given: a matched game one move from a win, with player writes broken
	ctx := context.Background()
	env := newTestEnv(t)
	gameID := matchedGame(ctx, t, env, "p1", "p2")
	game := env.system.Game(gameID)

	playSequence(ctx, t, game, []entity.Move{
		{PlayerID: "p1", X: 0, Y: 0},
		{PlayerID: "p2", X: 1, Y: 0},
		{PlayerID: "p1", X: 0, Y: 1},
		{PlayerID: "p2", X: 1, Y: 1},
	})

	env.players.setFailWrites(true)

	// When: the terminal move is made
	status, err := game.MakeMove(ctx, "p1", 0, 2)

	// Then: the notification failure is surfaced, but the terminal state
	// is already durable and is not rolled back
	require.Error(t, err)
	assert.ErrorIs(t, err, errWritesDisabled)
	assert.Equal(t, entity.StatusFinished, status)

	persisted, getErr := env.games.GetByID(ctx, gameID)
	require.NoError(t, getErr)
	assert.Equal(t, entity.StatusFinished, persisted.Status)
	assert.Equal(t, "p1", persisted.WinnerID)
}

func TestGameActor_GetMoves(t *testing.T) {
	// Given: a started game with four accepted and one rejected move
	ctx := context.Background()
	env := newTestEnv(t)
	game := startedGame(ctx, t, env, "g1")

	accepted := []entity.Move{
		{PlayerID: "p1", X: 0, Y: 0},
		{PlayerID: "p2", X: 1, Y: 0},
		{PlayerID: "p1", X: 0, Y: 1},
		{PlayerID: "p2", X: 1, Y: 1},
	}
	playSequence(ctx, t, game, accepted)

	_, err := game.MakeMove(ctx, "p1", 1, 1)
	require.ErrorIs(t, err, apperror.ErrCellOccupied)

	// When: the history is read
	moves, err := game.GetMoves(ctx)

	// Then: exactly the accepted moves come back, in acceptance order
	require.NoError(t, err)
	assert.Equal(t, accepted, moves)
}

func TestGameActor_GetSummary(t *testing.T) {
	// Given: a started game between two named players
	ctx := context.Background()
	env := newTestEnv(t)
	require.NoError(t, env.system.Player("p1").SetUsername(ctx, "alice"))
	require.NoError(t, env.system.Player("p2").SetUsername(ctx, "bob"))

	game := startedGame(ctx, t, env, "g1")
	require.NoError(t, game.SetName(ctx, "alice's 1st game"))

	// When: each player asks for their view
	forCreator, err := game.GetSummary(ctx, "p1")
	require.NoError(t, err)
	forJoiner, err := game.GetSummary(ctx, "p2")
	require.NoError(t, err)

	// Then: the creator sees the joiner's username and their own turn
	assert.Equal(t, "g1", forCreator.GameID)
	assert.Equal(t, "alice's 1st game", forCreator.Name)
	assert.Equal(t, entity.StatusOngoing, forCreator.Status)
	assert.Equal(t, 2, forCreator.NumPlayers)
	assert.Equal(t, 0, forCreator.NumMoves)
	assert.True(t, forCreator.YourMove)
	assert.True(t, forCreator.GameStarter)
	assert.Equal(t, []string{"bob"}, forCreator.Usernames)

	// and the joiner sees the mirror image
	assert.False(t, forJoiner.YourMove)
	assert.False(t, forJoiner.GameStarter)
	assert.Equal(t, []string{"alice"}, forJoiner.Usernames)
}

// startedGame - seats p1 and p2 directly in the given game; with the
// test env's pinned first mover, p1 moves first.
func startedGame(ctx context.Context, t *testing.T, env *testEnv, id string) *GameActor {
	t.Helper()

	game := env.system.Game(id)

	_, err := game.AddPlayer(ctx, "p1")
	require.NoError(t, err)

	status, err := game.AddPlayer(ctx, "p2")
	require.NoError(t, err)
	require.Equal(t, entity.StatusOngoing, status)

	return game
}

// matchedGame - runs the real matchmaking flow: creator opens a game,
// joiner picks it up. Both players end up with the game on their active
// lists, so completion notices have something to retire.
func matchedGame(ctx context.Context, t *testing.T, env *testEnv, creator, joiner string) string {
	t.Helper()

	gameID, err := env.system.Player(creator).CreateGame(ctx)
	require.NoError(t, err)

	status, err := env.system.Player(joiner).JoinGame(ctx, gameID)
	require.NoError(t, err)
	require.Equal(t, entity.StatusOngoing, status)

	return gameID
}

func playSequence(ctx context.Context, t *testing.T, game *GameActor, moves []entity.Move) {
	t.Helper()

	for _, move := range moves {
		status, err := game.MakeMove(ctx, move.PlayerID, move.X, move.Y)
		require.NoError(t, err)
		require.Equal(t, entity.StatusOngoing, status)
	}
}

func assertNoMoves(ctx context.Context, t *testing.T, game *GameActor) {
	t.Helper()

	moves, err := game.GetMoves(ctx)
	require.NoError(t, err)
	assert.Empty(t, moves)
}
