package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/PartyProtect/revive-your-hair-website/internal/domain"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "analytics:"

// DocumentStore keeps the analytics document as one JSON string value.
type DocumentStore struct {
	client *redis.Client
	key    string
}

func NewDocumentStore(client *redis.Client, name string) *DocumentStore {
	return &DocumentStore{client: client, key: keyPrefix + name}
}

func (s *DocumentStore) Load(ctx context.Context) (*domain.Document, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrDocumentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", s.key, err)
	}

	var doc domain.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.key, err)
	}

	return &doc, nil
}

// Save overwrites the stored document. No TTL is set.
func (s *DocumentStore) Save(ctx context.Context, doc *domain.Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode %s: %w", s.key, err)
	}

	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", s.key, err)
	}
	return nil
}

func (s *DocumentStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *DocumentStore) Key() string {
	return s.key
}
