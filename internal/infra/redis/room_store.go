package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"quizduel-service/internal/domain"

	"github.com/redis/go-redis/v9"
)

// ErrConflict is returned when an optimistic transaction kept losing to concurrent writers.
var ErrConflict = errors.New("redis: room update conflict")

const maxTxRetries = 10

// RoomStore is a Redis implementation of app.RoomRepository.
// Layout:
//
//	quizduel:room:{code}        JSON document of the room
//	quizduel:rooms:active       SET of non-finished room codes
//	quizduel:rooms:finished     ZSET of finished codes scored by finish time (unix ms)
//	quizduel:conn:{id}:rooms    SET of live room codes the connection plays in
//
// Writes to a room run in WATCH/MULTI transactions on its document key, so concurrent
// updates to the same room never interleave; different rooms do not contend.
type RoomStore struct {
	client *redis.Client
}

func NewRoomStore(client *redis.Client) *RoomStore {
	return &RoomStore{client: client}
}

func (s *RoomStore) Create(ctx context.Context, room *domain.Room) error {
	key := s.roomKey(room.Code)
	data, err := json.Marshal(room)
	if err != nil {
		return fmt.Errorf("marshal room: %w", err)
	}

	return s.watch(ctx, key, func(tx *redis.Tx) error {
		existing, err := s.load(ctx, tx, room.Code)
		switch {
		case errors.Is(err, domain.ErrRoomNotFound):
		case err != nil:
			return err
		case !existing.IsFinished():
			return domain.ErrRoomCodeTaken
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			pipe.SAdd(ctx, activeKey, room.Code)
			pipe.ZRem(ctx, finishedKey, room.Code)
			s.indexConnections(ctx, pipe, room)
			return nil
		})
		return err
	})
}

func (s *RoomStore) Get(ctx context.Context, code string) (*domain.Room, error) {
	return s.load(ctx, s.client, code)
}

func (s *RoomStore) Update(ctx context.Context, code string, fn func(*domain.Room) error) (*domain.Room, error) {
	key := s.roomKey(code)
	var updated *domain.Room

	err := s.watch(ctx, key, func(tx *redis.Tx) error {
		room, err := s.load(ctx, tx, code)
		if err != nil {
			return err
		}
		wasFinished := room.IsFinished()
		if err := fn(room); err != nil {
			return err
		}
		if wasFinished {
			return domain.ErrRoomFinished
		}

		data, err := json.Marshal(room)
		if err != nil {
			return fmt.Errorf("marshal room: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			s.indexConnections(ctx, pipe, room)
			if room.IsFinished() {
				pipe.SRem(ctx, activeKey, code)
				pipe.ZAdd(ctx, finishedKey, redis.Z{
					Score:  float64(room.FinishedAt.UnixMilli()),
					Member: code,
				})
			}
			return nil
		})
		if err != nil {
			return err
		}
		updated = room
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *RoomStore) FindActiveByConnection(ctx context.Context, connectionID string) ([]*domain.Room, error) {
	codes, err := s.client.SMembers(ctx, s.connKey(connectionID)).Result()
	if err != nil {
		return nil, fmt.Errorf("connection rooms: %w", err)
	}
	var out []*domain.Room
	for _, code := range codes {
		room, err := s.load(ctx, s.client, code)
		if errors.Is(err, domain.ErrRoomNotFound) {
			continue
		}
		if err != nil {
			return out, err
		}
		if room.IsFinished() {
			continue
		}
		if _, ok := room.PlayerByConnection(connectionID); ok {
			out = append(out, room)
		}
	}
	return out, nil
}

func (s *RoomStore) CountActive(ctx context.Context) (int, error) {
	n, err := s.client.SCard(ctx, activeKey).Result()
	if err != nil {
		return 0, fmt.Errorf("count active rooms: %w", err)
	}
	return int(n), nil
}

func (s *RoomStore) DeleteFinishedBefore(ctx context.Context, cutoff time.Time) (int, error) {
	codes, err := s.client.ZRangeByScore(ctx, finishedKey, &redis.ZRangeBy{
		Min: "-inf",
		Max: "(" + strconv.FormatInt(cutoff.UnixMilli(), 10),
	}).Result()
	if err != nil {
		return 0, fmt.Errorf("list finished rooms: %w", err)
	}

	deleted := 0
	for _, code := range codes {
		key := s.roomKey(code)
		err := s.watch(ctx, key, func(tx *redis.Tx) error {
			room, err := s.load(ctx, tx, code)
			if errors.Is(err, domain.ErrRoomNotFound) {
				return tx.ZRem(ctx, finishedKey, code).Err()
			}
			if err != nil {
				return err
			}
			// the code may have been reused by a live room since it was indexed
			if !room.IsFinished() || !room.FinishedAt.Before(cutoff) {
				return nil
			}
			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Del(ctx, key)
				pipe.ZRem(ctx, finishedKey, code)
				for _, p := range room.Players {
					pipe.SRem(ctx, s.connKey(p.ConnectionID), code)
				}
				return nil
			})
			if err == nil {
				deleted++
			}
			return err
		})
		if err != nil {
			return deleted, err
		}
	}
	return deleted, nil
}

// indexConnections adds a live room to its players' connection sets and removes a finished
// one. The sets never expire, so a room stays reachable from its connections for as long
// as it is live; Redis drops a set once its last code is removed.
func (s *RoomStore) indexConnections(ctx context.Context, pipe redis.Pipeliner, room *domain.Room) {
	for _, p := range room.Players {
		key := s.connKey(p.ConnectionID)
		if room.IsFinished() {
			pipe.SRem(ctx, key, room.Code)
		} else {
			pipe.SAdd(ctx, key, room.Code)
		}
	}
}

func (s *RoomStore) load(ctx context.Context, c getter, code string) (*domain.Room, error) {
	raw, err := c.Get(ctx, s.roomKey(code)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrRoomNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get room %s: %w", code, err)
	}
	var room domain.Room
	if err := json.Unmarshal(raw, &room); err != nil {
		return nil, fmt.Errorf("unmarshal room %s: %w", code, err)
	}
	return &room, nil
}

func (s *RoomStore) watch(ctx context.Context, key string, fn func(*redis.Tx) error) error {
	for i := 0; i < maxTxRetries; i++ {
		err := s.client.Watch(ctx, fn, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return ErrConflict
}

// getter is satisfied by both *redis.Client and *redis.Tx.
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

const (
	activeKey   = "quizduel:rooms:active"
	finishedKey = "quizduel:rooms:finished"
)

func (s *RoomStore) roomKey(code string) string {
	return "quizduel:room:" + code
}

func (s *RoomStore) connKey(connectionID string) string {
	return "quizduel:conn:" + connectionID + ":rooms"
}
