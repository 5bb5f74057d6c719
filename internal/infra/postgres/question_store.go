package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"quizduel-service/internal/domain"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// QuestionStore reads the question bank from Postgres.
type QuestionStore struct {
	pool *pgxpool.Pool
}

func NewQuestionStore(pool *pgxpool.Pool) *QuestionStore {
	return &QuestionStore{pool: pool}
}

const selectQuestions = `SELECT id, question, options, correct_answer, subject, difficulty FROM questions`

// LoadQuestions returns the whole bank ordered by id.
func (s *QuestionStore) LoadQuestions(ctx context.Context) ([]domain.Question, error) {
	rows, err := s.pool.Query(ctx, selectQuestions+` ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	return scanQuestions(rows)
}

// Sample draws up to n distinct random questions.
func (s *QuestionStore) Sample(ctx context.Context, n int) ([]domain.Question, error) {
	rows, err := s.pool.Query(ctx, selectQuestions+` ORDER BY random() LIMIT $1`, n)
	if err != nil {
		return nil, fmt.Errorf("sample questions: %w", err)
	}
	return scanQuestions(rows)
}

func (s *QuestionStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM questions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count questions: %w", err)
	}
	return n, nil
}

func scanQuestions(rows pgx.Rows) ([]domain.Question, error) {
	defer rows.Close()

	var out []domain.Question
	for rows.Next() {
		var (
			id  int64
			raw []byte
			q   domain.Question
		)
		if err := rows.Scan(&id, &q.Text, &raw, &q.CorrectAnswer, &q.Subject, &q.Difficulty); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		if err := json.Unmarshal(raw, &q.Options); err != nil {
			return nil, fmt.Errorf("unmarshal options for question %d: %w", id, err)
		}
		q.ID = strconv.FormatInt(id, 10)
		out = append(out, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate questions: %w", err)
	}
	return out, nil
}
