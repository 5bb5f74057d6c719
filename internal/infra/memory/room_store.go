package memory

import (
	"context"
	"sync"
	"time"

	"quizduel-service/internal/domain"
)

// RoomStore is an in-memory implementation of app.RoomRepository.
// Rooms are copied on the way in and out, so callers never alias stored state.
type RoomStore struct {
	mu    sync.RWMutex
	rooms map[string]*domain.Room
}

func NewRoomStore() *RoomStore {
	return &RoomStore{
		rooms: make(map[string]*domain.Room),
	}
}

func (s *RoomStore) Create(_ context.Context, room *domain.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.rooms[room.Code]; ok && !existing.IsFinished() {
		return domain.ErrRoomCodeTaken
	}
	s.rooms[room.Code] = room.Clone()
	return nil
}

func (s *RoomStore) Get(_ context.Context, code string) (*domain.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	room, ok := s.rooms[code]
	if !ok {
		return nil, domain.ErrRoomNotFound
	}
	return room.Clone(), nil
}

func (s *RoomStore) Update(_ context.Context, code string, fn func(*domain.Room) error) (*domain.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.rooms[code]
	if !ok {
		return nil, domain.ErrRoomNotFound
	}
	if stored.IsFinished() {
		// finished rooms are read-only; fn still decides how to report it
		if err := fn(stored.Clone()); err != nil {
			return nil, err
		}
		return nil, domain.ErrRoomFinished
	}
	working := stored.Clone()
	if err := fn(working); err != nil {
		return nil, err
	}
	s.rooms[code] = working
	return working.Clone(), nil
}

func (s *RoomStore) FindActiveByConnection(_ context.Context, connectionID string) ([]*domain.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*domain.Room
	for _, room := range s.rooms {
		if room.IsFinished() {
			continue
		}
		if _, ok := room.PlayerByConnection(connectionID); ok {
			out = append(out, room.Clone())
		}
	}
	return out, nil
}

func (s *RoomStore) CountActive(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, room := range s.rooms {
		if !room.IsFinished() {
			n++
		}
	}
	return n, nil
}

func (s *RoomStore) DeleteFinishedBefore(_ context.Context, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for code, room := range s.rooms {
		if room.IsFinished() && room.FinishedAt.Before(cutoff) {
			delete(s.rooms, code)
			n++
		}
	}
	return n, nil
}
