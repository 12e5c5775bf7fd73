package game

import (
	"errors"
	"fmt"
)

// Kind partitions service failures for the transport layer. Every error the
// service returns for a caller mistake is an *Error carrying one of these.
type Kind string

const (
	KindInvalidInput     Kind = "invalid_input"
	KindNotFound         Kind = "not_found"
	KindAlreadyFull      Kind = "already_full"
	KindColorUnavailable Kind = "color_unavailable"
	KindNotInProgress    Kind = "not_in_progress"
	KindWrongPlayer      Kind = "wrong_player"
	KindIllegalMove      Kind = "illegal_move"
	KindConflict         Kind = "conflict"
)

// Error is a terminal, request-local failure with a user-visible message.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return string(e.Kind)
}

// KindOf extracts the failure kind, or "" for non-service errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// The wrong-player text deliberately covers both "not your turn" and "no piece
// of yours at that square"; callers cannot distinguish the two.
const wrongPlayerMessage = "You can't move a piece at that square"

func errInvalidInput(format string, args ...any) *Error {
	return &Error{Kind: KindInvalidInput, Message: fmt.Sprintf(format, args...)}
}

func errNotFound(id string) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf("game %s not found", id)}
}

func errAlreadyFull() *Error {
	return &Error{Kind: KindAlreadyFull, Message: "this game already has two players"}
}

func errColorUnavailable(color string) *Error {
	return &Error{Kind: KindColorUnavailable, Message: fmt.Sprintf("the %s pieces are already taken", color)}
}

func errNotInProgress() *Error {
	return &Error{Kind: KindNotInProgress, Message: "this game is not accepting moves"}
}

func errWrongPlayer() *Error {
	return &Error{Kind: KindWrongPlayer, Message: wrongPlayerMessage}
}

func errIllegalMove(from, to string) *Error {
	return &Error{Kind: KindIllegalMove, Message: fmt.Sprintf("%s%s is not a valid move.", from, to)}
}

func errConflict(id string) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf("game %s was updated concurrently, try again", id)}
}
