package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/PartyProtect/revive-your-hair-website/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
	CREATE TABLE IF NOT EXISTS analytics_documents (
		name       VARCHAR(128) PRIMARY KEY,
		body       JSONB        NOT NULL,
		updated_at TIMESTAMPTZ  NOT NULL DEFAULT NOW()
	)
`

// DocumentStore keeps each named analytics document in one JSONB row.
type DocumentStore struct {
	db   *pgxpool.Pool
	name string
}

func NewDocumentStore(db *pgxpool.Pool, name string) *DocumentStore {
	return &DocumentStore{db: db, name: name}
}

// EnsureSchema creates the documents table when migrations were not run.
func (s *DocumentStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, schema)
	return err
}

func (s *DocumentStore) Load(ctx context.Context) (*domain.Document, error) {
	query := `
		SELECT body
		FROM analytics_documents
		WHERE name = $1
	`

	var body []byte
	err := s.db.QueryRow(ctx, query, s.name).Scan(&body)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrDocumentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select document %s: %w", s.name, err)
	}

	var doc domain.Document
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("decode document %s: %w", s.name, err)
	}

	return &doc, nil
}

func (s *DocumentStore) Save(ctx context.Context, doc *domain.Document) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document %s: %w", s.name, err)
	}

	query := `
		INSERT INTO analytics_documents (name, body, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (name) DO UPDATE
		SET body = EXCLUDED.body, updated_at = EXCLUDED.updated_at
	`

	if _, err := s.db.Exec(ctx, query, s.name, body); err != nil {
		return fmt.Errorf("upsert document %s: %w", s.name, err)
	}
	return nil
}

func (s *DocumentStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}
