package postgres

import (
	"context"
	"fmt"
	"time"

	"quizduel-service/internal/domain"

	"github.com/uptrace/bun"
)

// questionRow is the bun model for the questions table.
type questionRow struct {
	bun.BaseModel `bun:"table:questions"`

	ID            int64     `bun:"id,pk,autoincrement"`
	Question      string    `bun:"question,notnull"`
	Options       []string  `bun:"options,type:jsonb,notnull"`
	CorrectAnswer string    `bun:"correct_answer,notnull"`
	Subject       string    `bun:"subject,notnull"`
	Difficulty    string    `bun:"difficulty,notnull"`
	CreatedAt     time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

// Seed inserts questions, skipping texts already present. With reset the table is
// truncated first. It returns the number of rows inserted.
func Seed(ctx context.Context, db *bun.DB, questions []domain.Question, reset bool) (int, error) {
	rows := make([]questionRow, 0, len(questions))
	for _, q := range questions {
		if err := validateQuestion(q); err != nil {
			return 0, err
		}
		rows = append(rows, questionRow{
			Question:      q.Text,
			Options:       q.Options,
			CorrectAnswer: q.CorrectAnswer,
			Subject:       q.Subject,
			Difficulty:    q.Difficulty,
		})
	}

	var inserted int
	err := db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if reset {
			if _, err := tx.NewTruncateTable().Model((*questionRow)(nil)).Exec(ctx); err != nil {
				return fmt.Errorf("truncate questions: %w", err)
			}
		}
		if len(rows) == 0 {
			return nil
		}
		res, err := tx.NewInsert().Model(&rows).On("CONFLICT (question) DO NOTHING").Returning("NULL").Exec(ctx)
		if err != nil {
			return fmt.Errorf("insert questions: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		inserted = int(n)
		return nil
	})
	return inserted, err
}

func validateQuestion(q domain.Question) error {
	if q.Text == "" || len(q.Options) < 2 {
		return fmt.Errorf("question %q: need text and at least two options", q.ID)
	}
	for _, o := range q.Options {
		if o == q.CorrectAnswer {
			return nil
		}
	}
	return fmt.Errorf("question %q: correct answer is not one of the options", q.ID)
}
