package domain

// Inbound event names.
const (
	EventCreateRoom   = "create_room"
	EventJoinRoom     = "join_room"
	EventSubmitAnswer = "submit_answer"
)

// Outbound event names.
const (
	EventRoomCreated        = "room_created"
	EventPlayerJoined       = "player_joined"
	EventStartQuiz          = "start_quiz"
	EventNextQuestion       = "next_question"
	EventScoreUpdate        = "score_update"
	EventAnswerResult       = "answer_result"
	EventTimeUp             = "time_up"
	EventGameOver           = "game_over"
	EventPlayerDisconnected = "player_disconnected"
	EventError              = "error"
)

// PlayerSummary is the public view of a player in lobby payloads.
type PlayerSummary struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

type RoomCreated struct {
	RoomCode string        `json:"roomCode"`
	Player   PlayerSummary `json:"player"`
}

type PlayerJoined struct {
	RoomCode string          `json:"roomCode"`
	Players  []PlayerSummary `json:"players"`
	IsReady  bool            `json:"isReady"`
}

type StartQuiz struct {
	TotalQuestions  int `json:"totalQuestions"`
	TimePerQuestion int `json:"timePerQuestion"`
}

// NextQuestion never carries the correct answer.
type NextQuestion struct {
	QuestionIndex  int      `json:"questionIndex"`
	TotalQuestions int      `json:"totalQuestions"`
	Question       string   `json:"question"`
	Options        []string `json:"options"`
	TimeLimit      int      `json:"timeLimit"`
}

type ScoreEntry struct {
	Name     string `json:"name"`
	Score    int    `json:"score"`
	Answered bool   `json:"answered"`
}

type ScoreUpdate struct {
	Players []ScoreEntry `json:"players"`
}

type AnswerResult struct {
	Correct       bool   `json:"correct"`
	CorrectAnswer string `json:"correctAnswer"`
	PointsEarned  int    `json:"pointsEarned"`
}

type TimeUp struct {
	CorrectAnswer string          `json:"correctAnswer"`
	Players       []PlayerSummary `json:"players"`
}

type FinalScore struct {
	Name           string `json:"name"`
	Score          int    `json:"score"`
	CorrectAnswers int    `json:"correctAnswers"`
	TotalQuestions int    `json:"totalQuestions"`
}

// GameOver has a nil Winner on a draw.
type GameOver struct {
	Winner  *string      `json:"winner"`
	IsDraw  bool         `json:"isDraw"`
	Players []FinalScore `json:"players"`
}

type PlayerDisconnected struct {
	Message string `json:"message"`
}

type ErrorNotice struct {
	Message string `json:"message"`
}

// Summaries projects players into lobby entries.
func Summaries(players []Player) []PlayerSummary {
	out := make([]PlayerSummary, 0, len(players))
	for _, p := range players {
		out = append(out, PlayerSummary{Name: p.Name, Score: p.Score})
	}
	return out
}
