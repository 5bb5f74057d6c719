package domain

import "errors"

var (
	// ErrRoomNotFound is returned when no room exists for a code.
	ErrRoomNotFound = errors.New("room not found")
	// ErrRoomFull is returned when a room already holds MaxPlayers players.
	ErrRoomFull = errors.New("room is full")
	// ErrRoomStarted is returned when joining a room that left the waiting state.
	ErrRoomStarted = errors.New("game already started")
	// ErrRoomNotPlaying is returned for in-game actions outside the playing state.
	ErrRoomNotPlaying = errors.New("room is not playing")
	// ErrRoomFinished is returned when a mutation targets a finished room.
	ErrRoomFinished = errors.New("room is finished")
	// ErrPlayerNotFound is returned when a connection is not a player of the room.
	ErrPlayerNotFound = errors.New("player not found in room")
	// ErrAlreadyAnswered is returned for a second submission on the same question.
	ErrAlreadyAnswered = errors.New("question already answered")
	// ErrInvalidPlayerName is returned for blank player names.
	ErrInvalidPlayerName = errors.New("player name is required")
	// ErrRoomCodeTaken is returned by stores when a live room already owns the code.
	ErrRoomCodeTaken = errors.New("room code already in use")
	// ErrCodeSpaceExhausted is returned when every room code is held by a live room.
	ErrCodeSpaceExhausted = errors.New("room code space exhausted")
	// ErrNotEnoughQuestions indicates the question bank cannot fill a game.
	ErrNotEnoughQuestions = errors.New("not enough questions in bank")
)

// ClientMessage maps an error to the text sent in an `error` event.
// Errors outside the validation set collapse to fallback.
func ClientMessage(err error, fallback string) string {
	switch {
	case errors.Is(err, ErrRoomNotFound):
		return "Room not found"
	case errors.Is(err, ErrRoomStarted):
		return "Game already started"
	case errors.Is(err, ErrRoomFull):
		return "Room is full"
	case errors.Is(err, ErrInvalidPlayerName):
		return "Player name is required"
	default:
		return fallback
	}
}
