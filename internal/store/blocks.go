package store

import (
	"context"
	"errors"
	"sync"

	"github.com/redis/go-redis/v9"

	"mentorhub/internal/models"
)

var ErrNotFound = errors.New("code block not found")

const (
	blockKeyPrefix = "block:"
	indexKey       = "blocks:index"
)

// Store serves the read-only exercise templates. Lookups hit the in-memory
// cache first and fall back to redis, so operator-provisioned blocks show up
// without a restart while the seeded set survives redis being unavailable.
type Store struct {
	rdb *redis.Client

	mu    sync.RWMutex
	cache map[string]models.CodeBlock
	order []string
}

func New(redisAddr string) *Store {
	return NewWithClient(redis.NewClient(&redis.Options{Addr: redisAddr}))
}

func NewWithClient(rdb *redis.Client) *Store {
	return &Store{
		rdb:   rdb,
		cache: make(map[string]models.CodeBlock),
	}
}

// Seed warms the cache with the default exercise set and writes it to redis
// if no blocks exist there yet. A redis error leaves the cache intact, so the
// service still serves the defaults.
func (s *Store) Seed(ctx context.Context) error {
	s.mu.Lock()
	s.cache = make(map[string]models.CodeBlock, len(defaultBlocks))
	s.order = s.order[:0]
	for _, b := range defaultBlocks {
		s.cache[b.ID] = b
		s.order = append(s.order, b.ID)
	}
	s.mu.Unlock()

	exists, err := s.rdb.Exists(ctx, indexKey).Result()
	if err != nil {
		return err
	}
	if exists > 0 {
		return s.refresh(ctx)
	}
	for _, b := range defaultBlocks {
		if err := s.rdb.HSet(ctx, blockKeyPrefix+b.ID, map[string]interface{}{
			"id":       b.ID,
			"title":    b.Title,
			"template": b.Template,
			"solution": b.Solution,
		}).Err(); err != nil {
			return err
		}
		if err := s.rdb.RPush(ctx, indexKey, b.ID).Err(); err != nil {
			return err
		}
	}
	return nil
}

// refresh replaces the cache with whatever redis holds.
func (s *Store) refresh(ctx context.Context) error {
	ids, err := s.rdb.LRange(ctx, indexKey, 0, -1).Result()
	if err != nil {
		return err
	}
	cache := make(map[string]models.CodeBlock, len(ids))
	order := make([]string, 0, len(ids))
	for _, id := range ids {
		block, err := s.fetch(ctx, id)
		if err != nil {
			continue
		}
		cache[id] = *block
		order = append(order, id)
	}
	s.mu.Lock()
	s.cache = cache
	s.order = order
	s.mu.Unlock()
	return nil
}

func (s *Store) List(ctx context.Context) ([]models.CodeBlock, error) {
	s.mu.RLock()
	if len(s.order) > 0 {
		out := make([]models.CodeBlock, 0, len(s.order))
		for _, id := range s.order {
			out = append(out, s.cache[id])
		}
		s.mu.RUnlock()
		return out, nil
	}
	s.mu.RUnlock()

	if err := s.refresh(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.CodeBlock, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.cache[id])
	}
	return out, nil
}

func (s *Store) Get(ctx context.Context, id string) (*models.CodeBlock, error) {
	s.mu.RLock()
	if block, ok := s.cache[id]; ok {
		s.mu.RUnlock()
		return &block, nil
	}
	s.mu.RUnlock()

	block, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.cache[id] = *block
	s.order = append(s.order, id)
	s.mu.Unlock()
	return block, nil
}

func (s *Store) fetch(ctx context.Context, id string) (*models.CodeBlock, error) {
	fields, err := s.rdb.HGetAll(ctx, blockKeyPrefix+id).Result()
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, ErrNotFound
	}
	return &models.CodeBlock{
		ID:       fields["id"],
		Title:    fields["title"],
		Template: fields["template"],
		Solution: fields["solution"],
	}, nil
}
