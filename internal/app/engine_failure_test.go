package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"quizduel-service/internal/domain"
	"quizduel-service/internal/infra/memory"
	"quizduel-service/internal/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

var errStoreDown = errors.New("store down")

// faultyRooms wraps the in-memory store and injects write failures per room.
type faultyRooms struct {
	*memory.RoomStore

	mu        sync.Mutex
	createErr error
	updateErr map[string]error
	// rerun makes Update call fn once on a throwaway copy first, the way an optimistic
	// store does when its transaction is retried.
	rerun bool
}

func newFaultyRooms() *faultyRooms {
	return &faultyRooms{RoomStore: memory.NewRoomStore(), updateErr: make(map[string]error)}
}

func (f *faultyRooms) failCreates(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createErr = err
}

func (f *faultyRooms) failUpdates(code string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updateErr[code] = err
}

func (f *faultyRooms) Create(ctx context.Context, room *domain.Room) error {
	f.mu.Lock()
	err := f.createErr
	f.mu.Unlock()
	if err != nil {
		return err
	}
	return f.RoomStore.Create(ctx, room)
}

func (f *faultyRooms) Update(ctx context.Context, code string, fn func(*domain.Room) error) (*domain.Room, error) {
	f.mu.Lock()
	err, rerun := f.updateErr[code], f.rerun
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	if rerun {
		if scratch, err := f.RoomStore.Get(ctx, code); err == nil {
			_ = fn(scratch)
		}
	}
	return f.RoomStore.Update(ctx, code, fn)
}

func newEngineWithRooms(t *testing.T, rooms RoomRepository, opts Options, logger *zap.Logger, m *metrics.Metrics) (*Engine, *recordingChannel) {
	t.Helper()
	events := newRecordingChannel()
	engine := NewEngine(rooms, fixedQuestions{questions: memory.SeedQuestions()}, events, opts, logger, m)
	t.Cleanup(engine.Shutdown)
	return engine, events
}

func TestCreateRoomStoreFailure(t *testing.T) {
	rooms := newFaultyRooms()
	rooms.failCreates(errStoreDown)
	engine, events := newEngineWithRooms(t, rooms, testOptions(), zap.NewNop(), nil)

	if _, err := engine.CreateRoom(context.Background(), "alice", "Alice"); !errors.Is(err, errStoreDown) {
		t.Fatalf("expected store error, got %v", err)
	}
	e, ok := events.last("alice", domain.EventError)
	if !ok {
		t.Fatalf("expected an error notice")
	}
	if msg := e.payload.(domain.ErrorNotice).Message; msg != "Failed to create room" {
		t.Fatalf("unexpected message %q", msg)
	}
	if n := events.count(domain.EventRoomCreated); n != 0 {
		t.Fatalf("expected no room_created, got %d", n)
	}
	if n, _ := rooms.CountActive(context.Background()); n != 0 {
		t.Fatalf("expected no rooms stored, got %d", n)
	}
}

func TestJoinRoomStoreFailure(t *testing.T) {
	rooms := newFaultyRooms()
	engine, events := newEngineWithRooms(t, rooms, testOptions(), zap.NewNop(), nil)
	ctx := context.Background()

	room, err := engine.CreateRoom(ctx, "alice", "Alice")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	rooms.failUpdates(room.Code, errStoreDown)

	if _, err := engine.JoinRoom(ctx, "bob", room.Code, "Bob"); !errors.Is(err, errStoreDown) {
		t.Fatalf("expected store error, got %v", err)
	}
	e, _ := events.last("bob", domain.EventError)
	if msg := e.payload.(domain.ErrorNotice).Message; msg != "Failed to join room" {
		t.Fatalf("unexpected message %q", msg)
	}
	if n := events.count(domain.EventPlayerJoined); n != 0 {
		t.Fatalf("expected no player_joined, got %d", n)
	}
	stored, _ := rooms.Get(ctx, room.Code)
	if len(stored.Players) != 1 || stored.Status != domain.StatusWaiting {
		t.Fatalf("expected room unchanged, got %+v", stored)
	}
	if engine.Timers().Pending(room.Code) {
		t.Fatalf("expected no start scheduled")
	}
	if got := events.members(room.Code); len(got) != 1 {
		t.Fatalf("expected bob kept out of the group, got %v", got)
	}
}

func TestTimerStoreFailureOnlyStallsThatRoom(t *testing.T) {
	rooms := newFaultyRooms()
	core, logs := observer.New(zap.ErrorLevel)
	opts := testOptions()
	opts.Second = 10 * time.Millisecond
	engine, events := newEngineWithRooms(t, rooms, opts, zap.New(core), nil)
	ctx := context.Background()

	broken, _ := engine.CreateRoom(ctx, "alice", "Alice")
	healthy, _ := engine.CreateRoom(ctx, "carol", "Carol")
	if _, err := engine.JoinRoom(ctx, "bob", broken.Code, "Bob"); err != nil {
		t.Fatalf("join: %v", err)
	}
	if _, err := engine.JoinRoom(ctx, "dave", healthy.Code, "Dave"); err != nil {
		t.Fatalf("join: %v", err)
	}
	events.waitFor(t, domain.EventNextQuestion, 2)
	rooms.failUpdates(broken.Code, errStoreDown)

	// Nobody answers: the healthy room runs to the end on timeouts alone.
	events.waitFor(t, domain.EventGameOver, 1)

	if n := events.countIn(healthy.Code, domain.EventTimeUp); n != 3 {
		t.Fatalf("expected 3 time_up in the healthy room, got %d", n)
	}
	if n := events.countIn(broken.Code, domain.EventTimeUp); n != 0 {
		t.Fatalf("expected the failing room to stall, got %d time_up", n)
	}
	if n := events.countIn(broken.Code, domain.EventGameOver); n != 0 {
		t.Fatalf("expected no game_over for the failing room")
	}
	failures := logs.FilterMessage("time up").FilterField(zap.String("room", broken.Code))
	if failures.Len() == 0 {
		t.Fatalf("expected the failed time up to be logged, got %v", logs.All())
	}
}

func TestDisconnectStoreFailureStillEndsGame(t *testing.T) {
	rooms := newFaultyRooms()
	m := metrics.New("test", prometheus.NewRegistry())
	opts := testOptions()
	opts.StartGrace = time.Minute
	engine, events := newEngineWithRooms(t, rooms, opts, zap.NewNop(), m)
	ctx := context.Background()

	room, _ := engine.CreateRoom(ctx, "alice", "Alice")
	if _, err := engine.JoinRoom(ctx, "bob", room.Code, "Bob"); err != nil {
		t.Fatalf("join: %v", err)
	}
	rooms.failUpdates(room.Code, errStoreDown)

	engine.Disconnect(ctx, "bob")

	if n := events.countIn(room.Code, domain.EventPlayerDisconnected); n != 1 {
		t.Fatalf("expected player_disconnected despite the store failure, got %d", n)
	}
	if engine.Timers().Pending(room.Code) {
		t.Fatalf("expected the pending start cancelled")
	}
	if got := testutil.ToFloat64(m.ActiveRooms); got != 0 {
		t.Fatalf("expected active rooms gauge back to 0, got %v", got)
	}
	if got := testutil.ToFloat64(m.GamesFinished.WithLabelValues("disconnected")); got != 1 {
		t.Fatalf("expected one disconnected game, got %v", got)
	}
}

func TestTimeoutAnswersCountedOncePerPlaceholder(t *testing.T) {
	rooms := newFaultyRooms()
	rooms.rerun = true
	m := metrics.New("test", prometheus.NewRegistry())
	opts := testOptions()
	opts.Second = 10 * time.Millisecond
	engine, events := newEngineWithRooms(t, rooms, opts, zap.NewNop(), m)
	ctx := context.Background()

	room, _ := engine.CreateRoom(ctx, "alice", "Alice")
	if _, err := engine.JoinRoom(ctx, "bob", room.Code, "Bob"); err != nil {
		t.Fatalf("join: %v", err)
	}
	events.waitFor(t, domain.EventNextQuestion, 1)
	q := currentQuestion(t, rooms.RoomStore, room.Code)
	if err := engine.SubmitAnswer(ctx, "alice", room.Code, q.CorrectAnswer, seconds(1)); err != nil {
		t.Fatalf("submit: %v", err)
	}
	events.waitFor(t, domain.EventGameOver, 1)

	// Bob misses all three questions, Alice the last two.
	if got := testutil.ToFloat64(m.Answers.WithLabelValues("timeout")); got != 5 {
		t.Fatalf("expected 5 timeout answers, got %v", got)
	}
	if got := testutil.ToFloat64(m.Answers.WithLabelValues("correct")); got != 1 {
		t.Fatalf("expected 1 correct answer, got %v", got)
	}
}
