package app

import (
	"math"
	"testing"

	"quizduel-service/internal/domain"
)

func TestScoreAnswer(t *testing.T) {
	q := domain.Question{Options: []string{"Newton", "Joule", "Watt"}, CorrectAnswer: "Newton"}

	cases := []struct {
		name    string
		answer  string
		spent   float64
		correct bool
		points  int
	}{
		{"fast", "Newton", 0, true, 250},
		{"five seconds", "Newton", 5, true, 200},
		{"at the limit", "Newton", 15, true, 100},
		{"fractional", "Newton", 2.26, true, 227},
		{"wrong", "Joule", 1, false, 0},
		{"case differs", "newton", 1, false, 0},
		{"whitespace differs", " Newton", 1, false, 0},
		{"no answer", domain.NoAnswer, 15, false, 0},
	}
	for _, tc := range cases {
		correct, points := scoreAnswer(q, tc.answer, tc.spent, 15)
		if correct != tc.correct || points != tc.points {
			t.Fatalf("%s: got (%v, %d), want (%v, %d)", tc.name, correct, points, tc.correct, tc.points)
		}
	}
}

func TestClampTimeSpent(t *testing.T) {
	cases := map[float64]float64{
		-3:          0,
		0:           0,
		7.5:         7.5,
		15:          15,
		40:          15,
		math.Inf(1): 15,
	}
	for in, want := range cases {
		if got := clampTimeSpent(in, 15); got != want {
			t.Fatalf("clamp(%v) = %v, want %v", in, got, want)
		}
	}
	if got := clampTimeSpent(math.NaN(), 15); got != 15 {
		t.Fatalf("clamp(NaN) = %v, want 15", got)
	}
}
