package room

import (
	"errors"

	"github.com/wfunc/wordimpostor/words"
)

var (
	ErrRoomNotFound        = errors.New("room not found")
	ErrDuplicateName       = errors.New("name already taken in this room")
	ErrRoomFull            = errors.New("room is full")
	ErrInsufficientPlayers = errors.New("not enough players to start a round")
	ErrUnauthorizedHost    = errors.New("only the host can do that")
	ErrRoundAlreadyActive  = errors.New("a round is already in progress")
	ErrAlreadyInRoom       = errors.New("already in this room")
	ErrNotInRoom           = errors.New("not in this room")
	ErrInvalidName         = errors.New("invalid display name")
)

// Reason returns the wire reason code for err.
func Reason(err error) string {
	switch {
	case errors.Is(err, ErrRoomNotFound):
		return "RoomNotFound"
	case errors.Is(err, ErrDuplicateName):
		return "DuplicateName"
	case errors.Is(err, ErrRoomFull):
		return "RoomFull"
	case errors.Is(err, ErrInsufficientPlayers):
		return "InsufficientPlayers"
	case errors.Is(err, ErrUnauthorizedHost):
		return "UnauthorizedHost"
	case errors.Is(err, ErrRoundAlreadyActive):
		return "RoundAlreadyActive"
	case errors.Is(err, ErrAlreadyInRoom):
		return "AlreadyInRoom"
	case errors.Is(err, ErrNotInRoom):
		return "NotInRoom"
	case errors.Is(err, ErrInvalidName):
		return "InvalidName"
	case errors.Is(err, words.ErrUnknownCategory):
		return "UnknownCategory"
	case errors.Is(err, words.ErrEmptyCategory):
		return "EmptyCategory"
	case errors.Is(err, words.ErrUnknownMode):
		return "UnknownMode"
	}
	return "InvalidRequest"
}
