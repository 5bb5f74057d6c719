package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"quizduel-service/internal/domain"

	"golang.org/x/sync/singleflight"
)

// QuestionLoader fetches the full question bank from a backing store.
type QuestionLoader interface {
	LoadQuestions(ctx context.Context) ([]domain.Question, error)
}

// QuestionCache keeps the question bank in process with a TTL and samples from it, so
// room creation does not hit the database.
type QuestionCache struct {
	loader QuestionLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group

	rndMu sync.Mutex
	rnd   *rand.Rand

	mu        sync.RWMutex
	bank      []domain.Question
	expiresAt time.Time
}

const bankKey = "bank"

func NewQuestionCache(loader QuestionLoader, ttl time.Duration) *QuestionCache {
	return &QuestionCache{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Sample returns up to n distinct questions in random order.
func (c *QuestionCache) Sample(ctx context.Context, n int) ([]domain.Question, error) {
	bank, err := c.questions(ctx)
	if err != nil {
		return nil, err
	}
	if n > len(bank) {
		n = len(bank)
	}

	c.rndMu.Lock()
	perm := c.rnd.Perm(len(bank))[:n]
	c.rndMu.Unlock()

	out := make([]domain.Question, 0, n)
	for _, i := range perm {
		q := bank[i]
		q.Options = append([]string(nil), q.Options...)
		out = append(out, q)
	}
	return out, nil
}

// Count returns the question bank size.
func (c *QuestionCache) Count(ctx context.Context) (int, error) {
	bank, err := c.questions(ctx)
	if err != nil {
		return 0, err
	}
	return len(bank), nil
}

func (c *QuestionCache) questions(ctx context.Context) ([]domain.Question, error) {
	now := c.clock()

	c.mu.RLock()
	if c.bank != nil && c.expiresAt.After(now) {
		bank := c.bank
		c.mu.RUnlock()
		return bank, nil
	}
	c.mu.RUnlock()

	result, err, _ := c.sf.Do(bankKey, func() (interface{}, error) {
		now := c.clock()
		c.mu.RLock()
		if c.bank != nil && c.expiresAt.After(now) {
			bank := c.bank
			c.mu.RUnlock()
			return bank, nil
		}
		c.mu.RUnlock()

		bank, err := c.loader.LoadQuestions(ctx)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.bank = bank
		c.expiresAt = now.Add(c.ttlWithJitter())
		c.mu.Unlock()
		return bank, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Question), nil
}

func (c *QuestionCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	c.rndMu.Lock()
	defer c.rndMu.Unlock()
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}

// StaticQuestionLoader serves a fixed bank (useful for tests/demos).
type StaticQuestionLoader struct {
	questions []domain.Question
}

func NewStaticQuestionLoader(questions []domain.Question) *StaticQuestionLoader {
	return &StaticQuestionLoader{questions: questions}
}

func (l *StaticQuestionLoader) LoadQuestions(_ context.Context) ([]domain.Question, error) {
	return l.questions, nil
}
