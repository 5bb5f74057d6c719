package app

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"quizduel-service/internal/domain"
	"quizduel-service/internal/metrics"

	"go.uber.org/zap"
)

const (
	msgCreateFailed = "Failed to create room"
	msgJoinFailed   = "Failed to join room"
	msgOpponentLeft = "Opponent disconnected. Game ended."
)

// errSkip marks a deferred transition whose precondition no longer holds.
var errSkip = errors.New("transition precondition not met")

// Options configures game rules and pacing.
type Options struct {
	QuestionsPerGame int
	TimePerQuestion  int // seconds
	MaxNameLength    int
	CodeDigits       int

	StartGrace    time.Duration // full room -> start_quiz
	QuestionDelay time.Duration // start_quiz -> first question
	RevealDelay   time.Duration // all answered / time up -> advance
	// Second is the wall-clock length of one question-timer second. Only tests change it.
	Second time.Duration
	// OpTimeout bounds store calls made from timer callbacks.
	OpTimeout time.Duration
}

func DefaultOptions() Options {
	return Options{
		QuestionsPerGame: 5,
		TimePerQuestion:  15,
		MaxNameLength:    20,
		CodeDigits:       4,
		StartGrace:       3 * time.Second,
		QuestionDelay:    time.Second,
		RevealDelay:      2 * time.Second,
		Second:           time.Second,
		OpTimeout:        5 * time.Second,
	}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.QuestionsPerGame <= 0 {
		o.QuestionsPerGame = def.QuestionsPerGame
	}
	if o.TimePerQuestion <= 0 {
		o.TimePerQuestion = def.TimePerQuestion
	}
	if o.MaxNameLength <= 0 {
		o.MaxNameLength = def.MaxNameLength
	}
	if o.CodeDigits <= 0 {
		o.CodeDigits = def.CodeDigits
	}
	if o.Second <= 0 {
		o.Second = def.Second
	}
	if o.OpTimeout <= 0 {
		o.OpTimeout = def.OpTimeout
	}
	return o
}

// Engine owns the room lifecycle: waiting -> playing -> finished.
//
// Every transition runs under the room's lock and performs one atomic store update before
// emitting events, so handlers for the same room never interleave. Deferred transitions go
// through the TimerRegistry, which keeps a single pending callback per room.
type Engine struct {
	rooms     RoomRepository
	questions QuestionProvider
	events    EventChannel

	locks  *KeyedMutex
	timers *TimerRegistry
	codes  *CodeGenerator

	opts    Options
	log     *zap.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewEngine(rooms RoomRepository, questions QuestionProvider, events EventChannel, opts Options, logger *zap.Logger, m *metrics.Metrics) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	opts = opts.withDefaults()
	locks := NewKeyedMutex()
	return &Engine{
		rooms:     rooms,
		questions: questions,
		events:    events,
		locks:     locks,
		timers:    NewTimerRegistry(locks),
		codes:     NewCodeGenerator(opts.CodeDigits),
		opts:      opts,
		log:       logger,
		metrics:   m,
		now:       time.Now,
	}
}

// Timers exposes the registry for diagnostics and tests.
func (e *Engine) Timers() *TimerRegistry {
	return e.timers
}

// Shutdown cancels every pending deferred transition.
func (e *Engine) Shutdown() {
	e.timers.Stop()
}

// CreateRoom opens a waiting room with the caller as its first player.
func (e *Engine) CreateRoom(ctx context.Context, connID, playerName string) (*domain.Room, error) {
	name, err := e.normalizeName(playerName)
	if err != nil {
		e.sendError(connID, domain.ClientMessage(err, msgCreateFailed))
		return nil, err
	}

	questions, err := e.questions.Sample(ctx, e.opts.QuestionsPerGame)
	if err == nil && len(questions) < e.opts.QuestionsPerGame {
		err = domain.ErrNotEnoughQuestions
	}
	if err != nil {
		e.log.Error("sample questions", zap.String("conn", connID), zap.Error(err))
		e.sendError(connID, msgCreateFailed)
		return nil, err
	}

	now := e.now()
	room := &domain.Room{
		Players:   []domain.Player{{ConnectionID: connID, Name: name}},
		Status:    domain.StatusWaiting,
		Questions: questions,
		Settings: domain.Settings{
			QuestionsPerGame: e.opts.QuestionsPerGame,
			TimePerQuestion:  e.opts.TimePerQuestion,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	// The lock on a claimed code is kept until room_created is out, so a fast join cannot
	// broadcast to a group the creator has not entered yet.
	code, err := e.codes.Generate(ctx, func(ctx context.Context, code string) error {
		e.locks.Lock(code)
		room.Code = code
		if err := e.rooms.Create(ctx, room); err != nil {
			e.locks.Unlock(code)
			return err
		}
		return nil
	})
	if err != nil {
		e.log.Error("create room", zap.String("conn", connID), zap.Error(err))
		e.sendError(connID, msgCreateFailed)
		return nil, err
	}
	defer e.locks.Unlock(code)

	e.events.Join(connID, code)
	e.events.Send(connID, domain.EventRoomCreated, domain.RoomCreated{
		RoomCode: code,
		Player:   domain.PlayerSummary{Name: name, Score: 0},
	})
	e.metrics.RoomCreated()
	e.log.Info("room created", zap.String("room", code), zap.String("player", name))
	return room.Clone(), nil
}

// JoinRoom adds a second player to a waiting room. A full room schedules the game start
// after the grace delay.
func (e *Engine) JoinRoom(ctx context.Context, connID, roomCode, playerName string) (*domain.Room, error) {
	code := strings.TrimSpace(roomCode)
	name, err := e.normalizeName(playerName)
	if err != nil {
		e.sendError(connID, domain.ClientMessage(err, msgJoinFailed))
		return nil, err
	}

	e.locks.Lock(code)
	defer e.locks.Unlock(code)

	room, err := e.rooms.Update(ctx, code, func(r *domain.Room) error {
		switch {
		case len(r.Players) >= domain.MaxPlayers:
			return domain.ErrRoomFull
		case r.Status == domain.StatusFinished:
			return domain.ErrRoomNotFound
		case r.Status != domain.StatusWaiting:
			return domain.ErrRoomStarted
		}
		if _, ok := r.PlayerByConnection(connID); ok {
			return domain.ErrRoomFull
		}
		r.Players = append(r.Players, domain.Player{ConnectionID: connID, Name: name})
		r.UpdatedAt = e.now()
		return nil
	})
	if err != nil {
		if isValidation(err) {
			e.log.Debug("join rejected", zap.String("room", code), zap.Error(err))
		} else {
			e.log.Error("join room", zap.String("room", code), zap.Error(err))
		}
		e.sendError(connID, domain.ClientMessage(err, msgJoinFailed))
		return nil, err
	}

	e.events.Join(connID, code)
	ready := len(room.Players) == domain.MaxPlayers
	e.events.Broadcast(code, domain.EventPlayerJoined, domain.PlayerJoined{
		RoomCode: code,
		Players:  domain.Summaries(room.Players),
		IsReady:  ready,
	})
	e.log.Info("player joined", zap.String("room", code), zap.String("player", name))

	if ready {
		e.timers.Schedule(code, e.opts.StartGrace, func() {
			e.metrics.TimerFired("start_game")
			e.startGame(code)
		})
	}
	return room, nil
}

// SubmitAnswer records a player's answer for the current question. Invalid or duplicate
// submissions are ignored without notifying anyone; the returned error says why.
func (e *Engine) SubmitAnswer(ctx context.Context, connID, roomCode, answer string, timeSpent *float64) error {
	code := strings.TrimSpace(roomCode)

	e.locks.Lock(code)
	defer e.locks.Unlock(code)

	var (
		result domain.AnswerResult
		index  int
	)
	room, err := e.rooms.Update(ctx, code, func(r *domain.Room) error {
		if r.Status != domain.StatusPlaying {
			return domain.ErrRoomNotPlaying
		}
		player, ok := r.PlayerByConnection(connID)
		if !ok {
			return domain.ErrPlayerNotFound
		}
		index = r.CurrentQuestionIndex
		if player.HasAnswered(index) {
			return domain.ErrAlreadyAnswered
		}
		question, ok := r.CurrentQuestion()
		if !ok {
			return domain.ErrRoomNotPlaying
		}

		limit := r.Settings.TimePerQuestion
		spent := e.elapsedSeconds(r)
		if timeSpent != nil {
			spent = *timeSpent
		}
		spent = clampTimeSpent(spent, limit)
		correct, points := scoreAnswer(question, answer, spent, limit)

		player.Answers = append(player.Answers, domain.AnswerRecord{
			QuestionIndex: index,
			Answer:        answer,
			Answered:      true,
			Correct:       correct,
			TimeSpent:     spent,
		})
		player.Score += points
		r.UpdatedAt = e.now()

		result = domain.AnswerResult{
			Correct:       correct,
			CorrectAnswer: question.CorrectAnswer,
			PointsEarned:  points,
		}
		return nil
	})
	if err != nil {
		if isValidation(err) {
			e.log.Debug("answer ignored", zap.String("room", code), zap.String("conn", connID), zap.Error(err))
		} else {
			e.log.Error("submit answer", zap.String("room", code), zap.Error(err))
		}
		return err
	}

	if result.Correct {
		e.metrics.AnswerRecorded("correct")
	} else {
		e.metrics.AnswerRecorded("incorrect")
	}

	entries := make([]domain.ScoreEntry, 0, len(room.Players))
	for i := range room.Players {
		entries = append(entries, domain.ScoreEntry{
			Name:     room.Players[i].Name,
			Score:    room.Players[i].Score,
			Answered: room.Players[i].HasAnswered(index),
		})
	}
	e.events.Broadcast(code, domain.EventScoreUpdate, domain.ScoreUpdate{Players: entries})
	e.events.Send(connID, domain.EventAnswerResult, result)

	if room.AllAnswered() {
		e.timers.Cancel(code)
		e.scheduleAdvance(code, index)
	}
	return nil
}

// Disconnect ends every live room the connection plays in. It is best effort: failures are
// logged and the remaining rooms are still processed.
func (e *Engine) Disconnect(ctx context.Context, connID string) {
	rooms, err := e.rooms.FindActiveByConnection(ctx, connID)
	if err != nil {
		e.log.Error("find rooms for connection", zap.String("conn", connID), zap.Error(err))
		return
	}
	for _, r := range rooms {
		e.endOnDisconnect(ctx, r.Code, connID)
	}
}

func (e *Engine) endOnDisconnect(ctx context.Context, code, connID string) {
	e.locks.Lock(code)
	defer e.locks.Unlock(code)

	_, err := e.rooms.Update(ctx, code, func(r *domain.Room) error {
		if r.IsFinished() {
			return errSkip
		}
		if _, ok := r.PlayerByConnection(connID); !ok {
			return errSkip
		}
		now := e.now()
		r.Finish(now)
		r.UpdatedAt = now
		return nil
	})
	if errors.Is(err, errSkip) || errors.Is(err, domain.ErrRoomNotFound) {
		return
	}

	e.timers.Cancel(code)
	if err != nil {
		// The game is over for the players even if the store still shows it live.
		e.log.Error("finish room on disconnect", zap.String("room", code), zap.Error(err))
	}
	e.metrics.GameFinished("disconnected")
	e.events.Broadcast(code, domain.EventPlayerDisconnected, domain.PlayerDisconnected{Message: msgOpponentLeft})
	e.events.Leave(code)
	e.log.Info("room ended by disconnect", zap.String("room", code), zap.String("conn", connID))
}

// startGame runs under the room lock once the grace delay elapsed. If a player left in the
// meantime the room is left untouched.
func (e *Engine) startGame(code string) {
	ctx, cancel := context.WithTimeout(context.Background(), e.opts.OpTimeout)
	defer cancel()

	room, err := e.rooms.Update(ctx, code, func(r *domain.Room) error {
		if r.Status != domain.StatusWaiting || len(r.Players) != domain.MaxPlayers {
			return errSkip
		}
		now := e.now()
		r.Status = domain.StatusPlaying
		r.CurrentQuestionIndex = 0
		r.QuestionStartTime = now
		r.UpdatedAt = now
		return nil
	})
	if err != nil {
		e.logTransitionError("start game", code, err)
		return
	}

	e.events.Broadcast(code, domain.EventStartQuiz, domain.StartQuiz{
		TotalQuestions:  len(room.Questions),
		TimePerQuestion: room.Settings.TimePerQuestion,
	})
	e.log.Info("game started", zap.String("room", code))

	e.timers.Schedule(code, e.opts.QuestionDelay, func() {
		e.metrics.TimerFired("send_question")
		e.sendQuestion(code)
	})
}

// sendQuestion broadcasts the current question and arms its timeout. Caller holds the lock.
func (e *Engine) sendQuestion(code string) {
	ctx, cancel := context.WithTimeout(context.Background(), e.opts.OpTimeout)
	defer cancel()

	room, err := e.rooms.Update(ctx, code, func(r *domain.Room) error {
		if r.Status != domain.StatusPlaying {
			return errSkip
		}
		if _, ok := r.CurrentQuestion(); !ok {
			return errSkip
		}
		now := e.now()
		r.QuestionStartTime = now
		r.UpdatedAt = now
		return nil
	})
	if err != nil {
		e.logTransitionError("send question", code, err)
		return
	}

	question, _ := room.CurrentQuestion()
	index := room.CurrentQuestionIndex
	e.events.Broadcast(code, domain.EventNextQuestion, domain.NextQuestion{
		QuestionIndex:  index,
		TotalQuestions: len(room.Questions),
		Question:       question.Text,
		Options:        append([]string(nil), question.Options...),
		TimeLimit:      room.Settings.TimePerQuestion,
	})

	timeout := time.Duration(room.Settings.TimePerQuestion) * e.opts.Second
	e.timers.Schedule(code, timeout, func() {
		e.metrics.TimerFired("time_up")
		e.expireQuestion(code, index)
	})
}

// expireQuestion fills in placeholder answers for players who ran out of time.
func (e *Engine) expireQuestion(code string, index int) {
	ctx, cancel := context.WithTimeout(context.Background(), e.opts.OpTimeout)
	defer cancel()

	var missed int
	room, err := e.rooms.Update(ctx, code, func(r *domain.Room) error {
		// Stores may run fn more than once.
		missed = 0
		if r.Status != domain.StatusPlaying || r.CurrentQuestionIndex != index {
			return errSkip
		}
		for i := range r.Players {
			if r.Players[i].HasAnswered(index) {
				continue
			}
			r.Players[i].Answers = append(r.Players[i].Answers, domain.AnswerRecord{
				QuestionIndex: index,
				Answer:        domain.NoAnswer,
				TimeSpent:     float64(r.Settings.TimePerQuestion),
			})
			missed++
		}
		r.UpdatedAt = e.now()
		return nil
	})
	if err != nil {
		e.logTransitionError("time up", code, err)
		return
	}
	for i := 0; i < missed; i++ {
		e.metrics.AnswerRecorded("timeout")
	}

	question, _ := room.CurrentQuestion()
	e.events.Broadcast(code, domain.EventTimeUp, domain.TimeUp{
		CorrectAnswer: question.CorrectAnswer,
		Players:       domain.Summaries(room.Players),
	})
	e.scheduleAdvance(code, index)
}

func (e *Engine) scheduleAdvance(code string, index int) {
	e.timers.Schedule(code, e.opts.RevealDelay, func() {
		e.metrics.TimerFired("advance")
		e.advance(code, index)
	})
}

// advance moves past question index, finishing the game after the last one.
func (e *Engine) advance(code string, index int) {
	ctx, cancel := context.WithTimeout(context.Background(), e.opts.OpTimeout)
	defer cancel()

	room, err := e.rooms.Update(ctx, code, func(r *domain.Room) error {
		if r.Status != domain.StatusPlaying || r.CurrentQuestionIndex != index {
			return errSkip
		}
		now := e.now()
		r.CurrentQuestionIndex++
		if r.CurrentQuestionIndex >= len(r.Questions) {
			r.Finish(now)
		}
		r.UpdatedAt = now
		return nil
	})
	if err != nil {
		e.logTransitionError("advance", code, err)
		return
	}

	if !room.IsFinished() {
		e.sendQuestion(code)
		return
	}

	e.timers.Cancel(code)
	e.events.Broadcast(code, domain.EventGameOver, gameOver(room))
	e.events.Leave(code)
	e.metrics.GameFinished("completed")
	e.log.Info("game over", zap.String("room", code))
}

func gameOver(room *domain.Room) domain.GameOver {
	out := domain.GameOver{Players: make([]domain.FinalScore, 0, len(room.Players))}
	if name, ok := room.Winner(); ok {
		out.Winner = &name
	} else {
		out.IsDraw = true
	}
	for i := range room.Players {
		out.Players = append(out.Players, domain.FinalScore{
			Name:           room.Players[i].Name,
			Score:          room.Players[i].Score,
			CorrectAnswers: room.Players[i].CorrectAnswers(),
			TotalQuestions: len(room.Questions),
		})
	}
	return out
}

func (e *Engine) normalizeName(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "", domain.ErrInvalidPlayerName
	}
	if utf8.RuneCountInString(name) > e.opts.MaxNameLength {
		name = string([]rune(name)[:e.opts.MaxNameLength])
	}
	return name, nil
}

// elapsedSeconds is the server-side fallback when a client omits timeSpent.
func (e *Engine) elapsedSeconds(r *domain.Room) float64 {
	if r.QuestionStartTime.IsZero() {
		return float64(r.Settings.TimePerQuestion)
	}
	return float64(e.now().Sub(r.QuestionStartTime)) / float64(e.opts.Second)
}

func (e *Engine) sendError(connID, message string) {
	e.events.Send(connID, domain.EventError, domain.ErrorNotice{Message: message})
}

func (e *Engine) logTransitionError(step, code string, err error) {
	if errors.Is(err, errSkip) {
		e.log.Debug(step+" skipped", zap.String("room", code))
		return
	}
	e.log.Error(step, zap.String("room", code), zap.Error(err))
}

func isValidation(err error) bool {
	for _, target := range []error{
		domain.ErrRoomNotFound,
		domain.ErrRoomFull,
		domain.ErrRoomStarted,
		domain.ErrRoomNotPlaying,
		domain.ErrRoomFinished,
		domain.ErrPlayerNotFound,
		domain.ErrAlreadyAnswered,
		domain.ErrInvalidPlayerName,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
