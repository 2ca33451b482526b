package entity

import (
	"github.com/playsmith/tictactoe-actors/internal/apperror"
)

const (
	StatusWaiting  = "waiting"
	StatusOngoing  = "ongoing"
	StatusFinished = "finished"

	MarkO = "O"
	MarkX = "X"

	EmptyCell = ""

	// BoardSize - the board is BoardSize x BoardSize, and a full board holds
	// BoardSize*BoardSize accepted moves.
	BoardSize = 3

	maxPlayers = 2
)

const (
	OutcomeWin  = "win"
	OutcomeLose = "lose"
	OutcomeDraw = "draw"
)

// Move - a single accepted move, kept in acceptance order so the whole
// sequence of play can be reconstructed.
type Move struct {
	PlayerID string `json:"player_id"`
	X        int    `json:"x"`
	Y        int    `json:"y"`
}

// Game - the persisted record of one game instance.
//
// Players holds at most two ids; the player at index 0 always plays "O"
// and the player at index 1 plays "X". Who moves first is decided at
// random once the second player is seated, via TurnIndex.
type Game struct {
	ID        string                       `json:"id"`
	Name      string                       `json:"name,omitempty"`
	Status    string                       `json:"status"`
	Players   []string                     `json:"players"`
	TurnIndex int                          `json:"turn_index"`
	Board     [BoardSize][BoardSize]string `json:"board"`
	Moves     []Move                       `json:"moves"`
	WinnerID  string                       `json:"winner_id,omitempty"`
	LoserID   string                       `json:"loser_id,omitempty"`
}

// NewGame - a fresh game awaiting its players. TurnIndex stays -1 until
// the game begins.
func NewGame(id string) *Game {
	return &Game{
		ID:        id,
		Status:    StatusWaiting,
		Players:   []string{},
		Moves:     []Move{},
		TurnIndex: -1,
	}
}

func (that *Game) IsWaiting() bool {
	return that.Status == StatusWaiting
}

func (that *Game) IsOngoing() bool {
	return that.Status == StatusOngoing
}

func (that *Game) IsFinished() bool {
	return that.Status == StatusFinished
}

// CurrentPlayer - the id of the player whose move it is. Only meaningful
// while the game is ongoing.
func (that *Game) CurrentPlayer() string {
	return that.Players[that.TurnIndex]
}

// NextPlayer - the id of the other seated player.
func (that *Game) NextPlayer() string {
	return that.Players[(that.TurnIndex+1)%maxPlayers]
}

// MarkFor - the mark played by the player seated at the given index.
func MarkFor(index int) string {
	if index == 0 {
		return MarkO
	}
	return MarkX
}

// AddPlayer - seats a player. Rejected once the game is in play or
// finished; both rejections leave the record untouched.
func (that *Game) AddPlayer(playerID string) error {
	switch that.Status {
	case StatusOngoing:
		return apperror.ErrGameInPlay
	case StatusFinished:
		return apperror.ErrGameFinished
	}

	that.Players = append(that.Players, playerID)

	return nil
}

// IsFull - true once both seats are taken.
func (that *Game) IsFull() bool {
	return len(that.Players) == maxPlayers
}

// Begin - transitions the game into play with the given first mover index.
func (that *Game) Begin(firstMover int) {
	that.Status = StatusOngoing
	that.TurnIndex = firstMover
}

// ApplyMove - validates a move fully and only then mutates: the move is
// appended to the history and the target cell is marked with the mover's
// mark. Termination is evaluated separately by the caller.
func (that *Game) ApplyMove(playerID string, x, y int) error {
	if that.IsWaiting() {
		return apperror.ErrGameIsNotStarted
	}

	if that.IsFinished() {
		return apperror.ErrGameFinished
	}

	if !that.hasPlayer(playerID) {
		return apperror.ErrUnknownPlayer
	}

	if playerID != that.CurrentPlayer() {
		return apperror.ErrNotYourTurn
	}

	if x < 0 || x >= BoardSize || y < 0 || y >= BoardSize {
		return apperror.ErrInvalidCell
	}

	if that.Board[x][y] != EmptyCell {
		return apperror.ErrCellOccupied
	}

	that.Moves = append(that.Moves, Move{PlayerID: playerID, X: x, Y: y})
	that.Board[x][y] = MarkFor(that.TurnIndex)

	return nil
}

// HasWinningLine - reports whether any of the 3 rows, 3 columns or
// 2 diagonals holds three equal non-empty marks.
func (that *Game) HasWinningLine() bool {
	for i := 0; i < BoardSize; i++ {
		if that.isWinningLine(that.Board[i][0], that.Board[i][1], that.Board[i][2]) {
			return true
		}
		if that.isWinningLine(that.Board[0][i], that.Board[1][i], that.Board[2][i]) {
			return true
		}
	}

	if that.isWinningLine(that.Board[0][0], that.Board[1][1], that.Board[2][2]) {
		return true
	}

	return that.isWinningLine(that.Board[0][2], that.Board[1][1], that.Board[2][0])
}

// IsDraw - a full board with no winning line.
func (that *Game) IsDraw() bool {
	return len(that.Moves) == BoardSize*BoardSize && !that.HasWinningLine()
}

// FinishWithWin - the current mover has completed a line; the game ends
// with them as the winner. The turn index is left pointing at the winner.
func (that *Game) FinishWithWin() {
	that.Status = StatusFinished
	that.WinnerID = that.CurrentPlayer()
	that.LoserID = that.NextPlayer()
}

// FinishInDraw - the board is full with no line; neither winner nor loser
// is set.
func (that *Game) FinishInDraw() {
	that.Status = StatusFinished
}

// AdvanceTurn - hands the move to the other player.
func (that *Game) AdvanceTurn() {
	that.TurnIndex = (that.TurnIndex + 1) % maxPlayers
}

func (that *Game) hasPlayer(playerID string) bool {
	for _, id := range that.Players {
		if id == playerID {
			return true
		}
	}
	return false
}

func (that *Game) isWinningLine(a, b, c string) bool {
	return a != EmptyCell && a == b && b == c
}

// GameSummary - a per-player view of a game, assembled by the game actor
// with the other participants' usernames fetched from their player actors.
type GameSummary struct {
	GameID      string   `json:"game_id"`
	Name        string   `json:"name,omitempty"`
	Status      string   `json:"status"`
	NumMoves    int      `json:"num_moves"`
	NumPlayers  int      `json:"num_players"`
	YourMove    bool     `json:"your_move"`
	Usernames   []string `json:"usernames"`
	GameStarter bool     `json:"game_starter"`
}
