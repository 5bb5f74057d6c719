package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"quizduel-service/internal/domain"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// QuestionLoader fetches the full question bank from a backing store (e.g., Postgres).
type QuestionLoader interface {
	LoadQuestions(ctx context.Context) ([]domain.Question, error)
}

// QuestionCache keeps the question bank in a Redis set (one JSON member per question) and
// falls back to the loader on a cache miss. Samples come from SRANDMEMBER, which returns
// distinct members for a positive count.
type QuestionCache struct {
	client *redis.Client
	loader QuestionLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

const questionsKey = "quizduel:questions"

func NewQuestionCache(client *redis.Client, loader QuestionLoader, ttl time.Duration) *QuestionCache {
	return &QuestionCache{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *QuestionCache) Sample(ctx context.Context, n int) ([]domain.Question, error) {
	if err := c.ensure(ctx); err != nil {
		return nil, err
	}
	members, err := c.client.SRandMemberN(ctx, questionsKey, int64(n)).Result()
	if err != nil {
		return nil, fmt.Errorf("sample questions: %w", err)
	}
	out := make([]domain.Question, 0, len(members))
	for _, m := range members {
		var q domain.Question
		if err := json.Unmarshal([]byte(m), &q); err != nil {
			return nil, fmt.Errorf("unmarshal question: %w", err)
		}
		out = append(out, q)
	}
	return out, nil
}

func (c *QuestionCache) Count(ctx context.Context) (int, error) {
	if err := c.ensure(ctx); err != nil {
		return 0, err
	}
	n, err := c.client.SCard(ctx, questionsKey).Result()
	if err != nil {
		return 0, fmt.Errorf("count questions: %w", err)
	}
	return int(n), nil
}

// ensure fills the cache from the loader when the set is missing.
func (c *QuestionCache) ensure(ctx context.Context) error {
	n, err := c.client.Exists(ctx, questionsKey).Result()
	if err == nil && n > 0 {
		return nil
	}

	_, err, _ = c.sf.Do(questionsKey, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if n, err := c.client.Exists(ctx, questionsKey).Result(); err == nil && n > 0 {
			return nil, nil
		}

		questions, err := c.loader.LoadQuestions(ctx)
		if err != nil {
			return nil, err
		}
		if len(questions) == 0 {
			return nil, nil
		}

		members := make([]interface{}, 0, len(questions))
		for _, q := range questions {
			data, err := json.Marshal(q)
			if err != nil {
				return nil, fmt.Errorf("marshal question: %w", err)
			}
			members = append(members, string(data))
		}

		pipe := c.client.TxPipeline()
		pipe.Del(ctx, questionsKey)
		pipe.SAdd(ctx, questionsKey, members...)
		if ttl := c.ttlWithJitter(); ttl > 0 {
			pipe.Expire(ctx, questionsKey, ttl)
		}
		_, err = pipe.Exec(ctx)
		return nil, err
	})
	return err
}

func (c *QuestionCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
