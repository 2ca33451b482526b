package apperror

import "errors"

var (
	ErrGameInPlay       = errors.New("game is already in play")
	ErrGameFinished     = errors.New("game is already finished")
	ErrGameIsNotStarted = errors.New("game is not started")
	ErrNotYourTurn      = errors.New("it's not your turn")
	ErrUnknownPlayer    = errors.New("player is not part of this game")
	ErrInvalidCell      = errors.New("cell coordinates are out of range")
	ErrCellOccupied     = errors.New("cell is already occupied")
)
