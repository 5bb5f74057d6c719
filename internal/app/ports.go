package app

import (
	"context"
	"time"

	"quizduel-service/internal/domain"
)

// RoomRepository abstracts how rooms are stored (in-memory, Redis, etc).
// Implementations hand out copies; the only way to change a stored room is Update.
type RoomRepository interface {
	// Create inserts a room. It fails with domain.ErrRoomCodeTaken when a non-finished room
	// already uses the code; a finished room with the same code is replaced.
	Create(ctx context.Context, room *domain.Room) error
	Get(ctx context.Context, code string) (*domain.Room, error)
	// Update applies fn to the stored room and persists the result atomically with respect
	// to other updates of the same room. If fn returns an error nothing is written.
	Update(ctx context.Context, code string, fn func(*domain.Room) error) (*domain.Room, error)
	// FindActiveByConnection returns every non-finished room with a player on connectionID.
	FindActiveByConnection(ctx context.Context, connectionID string) ([]*domain.Room, error)
	CountActive(ctx context.Context) (int, error)
	// DeleteFinishedBefore removes rooms that finished before cutoff.
	DeleteFinishedBefore(ctx context.Context, cutoff time.Time) (int, error)
}

// QuestionProvider supplies question samples for new games.
type QuestionProvider interface {
	Sample(ctx context.Context, n int) ([]domain.Question, error)
	Count(ctx context.Context) (int, error)
}

// EventChannel delivers outbound events. Implementations must not block.
type EventChannel interface {
	// Join adds a connection to a room's broadcast group.
	Join(connectionID, roomCode string)
	Broadcast(roomCode, event string, payload any)
	Send(connectionID, event string, payload any)
	// Leave drops the room's broadcast group. Called once the room is finished so a reused
	// code starts with an empty group.
	Leave(roomCode string)
}
