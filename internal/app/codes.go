package app

import (
	"context"
	"errors"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"quizduel-service/internal/domain"
)

// ClaimFunc tries to take ownership of a code. It returns domain.ErrRoomCodeTaken when a
// live room already holds it; any other error aborts generation.
type ClaimFunc func(ctx context.Context, code string) error

// CodeGenerator hands out fixed-width numeric room codes. Uniqueness among live rooms is
// enforced by the claim (the store's conditional create), not by the generator itself.
type CodeGenerator struct {
	min      int
	size     int
	attempts int

	mu  sync.Mutex
	rnd *rand.Rand
}

// NewCodeGenerator returns a generator for codes of the given width, e.g. 4 digits gives
// 1000..9999.
func NewCodeGenerator(digits int) *CodeGenerator {
	if digits < 1 {
		digits = 4
	}
	low := 1
	for i := 1; i < digits; i++ {
		low *= 10
	}
	size := low * 9
	if digits == 1 {
		low, size = 0, 10
	}
	return &CodeGenerator{
		min:      low,
		size:     size,
		attempts: 32,
		rnd:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Size is the number of distinct codes.
func (g *CodeGenerator) Size() int {
	return g.size
}

// Generate claims a free code. Random candidates are tried first; after that the whole
// space is swept once from a random offset so exhaustion is detected deterministically.
func (g *CodeGenerator) Generate(ctx context.Context, claim ClaimFunc) (string, error) {
	for i := 0; i < g.attempts; i++ {
		code, done, err := g.try(ctx, claim, g.intn(g.size))
		if done {
			return code, err
		}
	}

	start := g.intn(g.size)
	for i := 0; i < g.size; i++ {
		code, done, err := g.try(ctx, claim, (start+i)%g.size)
		if done {
			return code, err
		}
	}
	return "", domain.ErrCodeSpaceExhausted
}

func (g *CodeGenerator) try(ctx context.Context, claim ClaimFunc, n int) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", true, err
	}
	code := strconv.Itoa(g.min + n)
	err := claim(ctx, code)
	switch {
	case err == nil:
		return code, true, nil
	case errors.Is(err, domain.ErrRoomCodeTaken):
		return "", false, nil
	default:
		return "", true, err
	}
}

func (g *CodeGenerator) intn(n int) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rnd.Intn(n)
}
