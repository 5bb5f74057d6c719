package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"quizduel-service/internal/app"
	"quizduel-service/internal/domain"
	"quizduel-service/internal/infra/memory"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

func TestWebSocketGameFlow(t *testing.T) {
	server := newTestServer(t, 2)

	alice := dial(t, server)
	send(t, alice, domain.EventCreateRoom, map[string]any{"playerName": "Alice"})
	created := waitFor(t, alice, domain.EventRoomCreated)
	code, _ := created["roomCode"].(string)
	if len(code) != 4 {
		t.Fatalf("expected 4 digit room code, got %q", code)
	}

	bob := dial(t, server)
	send(t, bob, domain.EventJoinRoom, map[string]any{"roomCode": code, "playerName": "Bob"})
	joined := waitFor(t, bob, domain.EventPlayerJoined)
	if ready, _ := joined["isReady"].(bool); !ready {
		t.Fatalf("expected room to be ready, got %v", joined)
	}
	waitFor(t, alice, domain.EventPlayerJoined)

	start := waitFor(t, alice, domain.EventStartQuiz)
	if total, _ := start["totalQuestions"].(float64); total != 2 {
		t.Fatalf("expected 2 questions, got %v", start["totalQuestions"])
	}

	q := waitFor(t, alice, domain.EventNextQuestion)
	waitFor(t, bob, domain.EventNextQuestion)
	if _, leaked := q["correctAnswer"]; leaked {
		t.Fatalf("next_question must not carry the correct answer")
	}
	correct := correctAnswerFor(t, q["question"].(string))

	send(t, alice, domain.EventSubmitAnswer, map[string]any{"roomCode": code, "answer": correct, "timeSpent": 5})
	result := waitFor(t, alice, domain.EventAnswerResult)
	if ok, _ := result["correct"].(bool); !ok {
		t.Fatalf("expected correct answer result, got %v", result)
	}
	if pts, _ := result["pointsEarned"].(float64); pts != 200 {
		t.Fatalf("expected 200 points, got %v", result["pointsEarned"])
	}

	send(t, bob, domain.EventSubmitAnswer, map[string]any{"roomCode": code, "answer": "definitely wrong", "timeSpent": 3})
	result = waitFor(t, bob, domain.EventAnswerResult)
	if pts, _ := result["pointsEarned"].(float64); pts != 0 {
		t.Fatalf("expected 0 points for wrong answer, got %v", result["pointsEarned"])
	}

	// Nobody answers the second question; the timer ends it.
	q2 := waitFor(t, alice, domain.EventNextQuestion)
	if idx, _ := q2["questionIndex"].(float64); idx != 1 {
		t.Fatalf("expected question index 1, got %v", q2["questionIndex"])
	}
	waitFor(t, alice, domain.EventTimeUp)

	over := waitFor(t, bob, domain.EventGameOver)
	if winner, _ := over["winner"].(string); winner != "Alice" {
		t.Fatalf("expected Alice to win, got %v", over)
	}
	if draw, _ := over["isDraw"].(bool); draw {
		t.Fatalf("expected no draw")
	}
}

func TestWebSocketJoinUnknownRoom(t *testing.T) {
	server := newTestServer(t, 2)

	conn := dial(t, server)
	send(t, conn, domain.EventJoinRoom, map[string]any{"roomCode": "0000", "playerName": "Bob"})
	notice := waitFor(t, conn, domain.EventError)
	if msg, _ := notice["message"].(string); msg != "Room not found" {
		t.Fatalf("expected Room not found, got %q", msg)
	}
}

func TestWebSocketDisconnectEndsGame(t *testing.T) {
	server := newTestServer(t, 2)

	alice := dial(t, server)
	send(t, alice, domain.EventCreateRoom, map[string]any{"playerName": "Alice"})
	code := waitFor(t, alice, domain.EventRoomCreated)["roomCode"].(string)

	bob := dial(t, server)
	send(t, bob, domain.EventJoinRoom, map[string]any{"roomCode": code, "playerName": "Bob"})
	waitFor(t, alice, domain.EventStartQuiz)

	_ = bob.Close()

	notice := waitFor(t, alice, domain.EventPlayerDisconnected)
	if msg, _ := notice["message"].(string); msg != "Opponent disconnected. Game ended." {
		t.Fatalf("unexpected disconnect message %q", msg)
	}
}

func TestWebSocketUnknownMessageType(t *testing.T) {
	server := newTestServer(t, 2)

	conn := dial(t, server)
	send(t, conn, "dance", nil)
	notice := waitFor(t, conn, domain.EventError)
	if msg, _ := notice["message"].(string); msg != "Unsupported message type" {
		t.Fatalf("unexpected error message %q", msg)
	}
}

func newTestServer(t *testing.T, questionsPerGame int) *httptest.Server {
	t.Helper()
	// Connection goroutines may outlive the test, so no zaptest logger here.
	logger := zap.NewNop()
	hub := NewHub(64, logger)
	questions := memory.NewQuestionCache(memory.NewStaticQuestionLoader(memory.SeedQuestions()), time.Minute)
	engine := app.NewEngine(memory.NewRoomStore(), questions, hub, app.Options{
		QuestionsPerGame: questionsPerGame,
		TimePerQuestion:  15,
		StartGrace:       20 * time.Millisecond,
		QuestionDelay:    10 * time.Millisecond,
		RevealDelay:      10 * time.Millisecond,
		Second:           20 * time.Millisecond,
	}, logger, nil)
	t.Cleanup(engine.Shutdown)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", NewWSHandler(engine, hub, logger, nil).ServeWS)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func dial(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()
	u := "ws" + server.URL[len("http"):] + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, typ string, payload any) {
	t.Helper()
	if err := conn.WriteJSON(map[string]any{"type": typ, "payload": payload}); err != nil {
		t.Fatalf("write %s: %v", typ, err)
	}
}

// waitFor reads frames until one of the given type arrives and returns its payload.
func waitFor(t *testing.T, conn *websocket.Conn, typ string) map[string]any {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for {
		var msg struct {
			Type    string         `json:"type"`
			Payload map[string]any `json:"payload"`
		}
		_ = conn.SetReadDeadline(deadline)
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("waiting for %s: %v", typ, err)
		}
		if msg.Type == typ {
			return msg.Payload
		}
	}
}

func correctAnswerFor(t *testing.T, text string) string {
	t.Helper()
	for _, q := range memory.SeedQuestions() {
		if q.Text == text {
			return q.CorrectAnswer
		}
	}
	t.Fatalf("question %q not in seed bank", text)
	return ""
}
