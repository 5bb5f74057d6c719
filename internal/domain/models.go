package domain

import "time"

// RoomStatus is the lifecycle state of a room. Transitions only move forward:
// waiting -> playing -> finished.
type RoomStatus string

const (
	StatusWaiting  RoomStatus = "waiting"
	StatusPlaying  RoomStatus = "playing"
	StatusFinished RoomStatus = "finished"
)

// MaxPlayers is the room capacity.
const MaxPlayers = 2

// NoAnswer is recorded for a player who did not respond before the question timer expired.
const NoAnswer = ""

// Question models an MCQ question where CorrectAnswer equals exactly one option.
type Question struct {
	ID            string   `json:"id"`
	Text          string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
	Subject       string   `json:"subject"`
	Difficulty    string   `json:"difficulty"`
}

// Settings are fixed per room at creation time.
type Settings struct {
	QuestionsPerGame int `json:"questionsPerGame"`
	TimePerQuestion  int `json:"timePerQuestion"` // seconds
}

// AnswerRecord is one player's response to one question.
type AnswerRecord struct {
	QuestionIndex int     `json:"questionIndex"`
	Answer        string  `json:"answer"`
	Answered      bool    `json:"answered"` // false for the timeout placeholder
	Correct       bool    `json:"correct"`
	TimeSpent     float64 `json:"timeSpent"`
}

// Player is a connected participant embedded in a Room.
type Player struct {
	ConnectionID string         `json:"connectionId"`
	Name         string         `json:"name"`
	Score        int            `json:"score"`
	Answers      []AnswerRecord `json:"answers"`
}

// HasAnswered reports whether the player has a record for the question index.
func (p *Player) HasAnswered(index int) bool {
	for _, a := range p.Answers {
		if a.QuestionIndex == index {
			return true
		}
	}
	return false
}

// CorrectAnswers counts the player's correct records.
func (p *Player) CorrectAnswers() int {
	n := 0
	for _, a := range p.Answers {
		if a.Correct {
			n++
		}
	}
	return n
}

// Room is the aggregate root of a single match.
type Room struct {
	Code                 string     `json:"code"`
	Players              []Player   `json:"players"`
	Status               RoomStatus `json:"status"`
	Questions            []Question `json:"questions"`
	CurrentQuestionIndex int        `json:"currentQuestionIndex"`
	QuestionStartTime    time.Time  `json:"questionStartTime"`
	Settings             Settings   `json:"settings"`
	CreatedAt            time.Time  `json:"createdAt"`
	UpdatedAt            time.Time  `json:"updatedAt"`
	FinishedAt           time.Time  `json:"finishedAt"`
}

// IsFinished reports whether the room reached its terminal state.
func (r *Room) IsFinished() bool {
	return r.Status == StatusFinished
}

// PlayerByConnection returns the player bound to a connection id.
func (r *Room) PlayerByConnection(connectionID string) (*Player, bool) {
	for i := range r.Players {
		if r.Players[i].ConnectionID == connectionID {
			return &r.Players[i], true
		}
	}
	return nil, false
}

// CurrentQuestion returns the question at CurrentQuestionIndex.
func (r *Room) CurrentQuestion() (Question, bool) {
	if r.CurrentQuestionIndex < 0 || r.CurrentQuestionIndex >= len(r.Questions) {
		return Question{}, false
	}
	return r.Questions[r.CurrentQuestionIndex], true
}

// AllAnswered reports whether every player has a record for the current question.
func (r *Room) AllAnswered() bool {
	if len(r.Players) == 0 {
		return false
	}
	for i := range r.Players {
		if !r.Players[i].HasAnswered(r.CurrentQuestionIndex) {
			return false
		}
	}
	return true
}

// Winner returns the name of the player with a strictly higher score than everyone else.
// A tie at the top yields ok=false.
func (r *Room) Winner() (name string, ok bool) {
	best := -1
	for i := range r.Players {
		switch {
		case r.Players[i].Score > best:
			best = r.Players[i].Score
			name, ok = r.Players[i].Name, true
		case r.Players[i].Score == best:
			ok = false
		}
	}
	if !ok {
		return "", false
	}
	return name, true
}

// Finish moves the room into its terminal state.
func (r *Room) Finish(now time.Time) {
	r.Status = StatusFinished
	r.FinishedAt = now
}

// Clone returns a deep copy so stores never share mutable state with callers.
func (r *Room) Clone() *Room {
	if r == nil {
		return nil
	}
	out := *r
	out.Players = make([]Player, len(r.Players))
	for i, p := range r.Players {
		p.Answers = append([]AnswerRecord(nil), p.Answers...)
		out.Players[i] = p
	}
	out.Questions = make([]Question, len(r.Questions))
	for i, q := range r.Questions {
		q.Options = append([]string(nil), q.Options...)
		out.Questions[i] = q
	}
	return &out
}
