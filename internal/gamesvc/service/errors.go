package service

import (
	"errors"

	"github.com/promptfighter/game-services/internal/gamesvc/store"
)

// Error taxonomy surfaced to callers. All of these are recoverable at the
// call site; handlers translate them to HTTP statuses and socket clients
// get a short message. Match with errors.Is.
var (
	ErrValidation      = errors.New("invalid input")
	ErrNotOwner        = errors.New("only the room owner may do this")
	ErrWrongPhase      = errors.New("action not allowed in current phase")
	ErrStaleState      = errors.New("state changed underneath, refetch and retry")
	ErrRoomFull        = errors.New("room is full")
	ErrRoomNotJoinable = errors.New("room is not accepting players")
	ErrInvalidVote     = errors.New("invalid vote")
	ErrNotFound        = errors.New("not found")
)

func isAlreadyMember(err error) bool {
	return errors.Is(err, store.ErrAlreadyMember)
}

func isRoomAtCapacity(err error) bool {
	return errors.Is(err, store.ErrRoomAtCapacity)
}
