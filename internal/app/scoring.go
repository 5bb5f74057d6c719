package app

import (
	"math"

	"quizduel-service/internal/domain"
)

const (
	// BasePoints is awarded for any correct answer.
	BasePoints = 100
	// BonusPerSecond is awarded for each second left on the question timer.
	BonusPerSecond = 10
)

// scoreAnswer compares the submission with the stored correct option using exact string
// equality (no trimming or case folding) and returns (correct, points).
func scoreAnswer(question domain.Question, answer string, timeSpent float64, timeLimit int) (bool, int) {
	if answer != question.CorrectAnswer {
		return false, 0
	}
	remaining := math.Max(0, float64(timeLimit)-timeSpent)
	return true, BasePoints + int(math.Round(BonusPerSecond*remaining))
}

// clampTimeSpent bounds a reported duration to [0, timeLimit]. Non-finite values count as
// the full limit.
func clampTimeSpent(spent float64, timeLimit int) float64 {
	limit := float64(timeLimit)
	switch {
	case math.IsNaN(spent) || math.IsInf(spent, 0):
		return limit
	case spent < 0:
		return 0
	case spent > limit:
		return limit
	}
	return spent
}
