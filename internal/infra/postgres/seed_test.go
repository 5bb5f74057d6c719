package postgres

import (
	"testing"

	"quizduel-service/internal/domain"
	"quizduel-service/internal/infra/memory"
)

func TestValidateQuestion(t *testing.T) {
	for _, q := range memory.SeedQuestions() {
		if err := validateQuestion(q); err != nil {
			t.Fatalf("seed question rejected: %v", err)
		}
	}

	cases := []domain.Question{
		{ID: "no-text", Options: []string{"a", "b"}, CorrectAnswer: "a"},
		{ID: "one-option", Text: "Q?", Options: []string{"a"}, CorrectAnswer: "a"},
		{ID: "bad-answer", Text: "Q?", Options: []string{"a", "b"}, CorrectAnswer: "c"},
	}
	for _, q := range cases {
		if err := validateQuestion(q); err == nil {
			t.Fatalf("expected %s to be rejected", q.ID)
		}
	}
}
