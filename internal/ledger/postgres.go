package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/michelKingmaLord/cpeq-infolettre-automatique/internal/logger"
)

// PostgresStore keeps the run ledger in PostgreSQL.
type PostgresStore struct {
	db        *sql.DB
	retention time.Duration
}

func NewPostgresStore(connectionString string, retention time.Duration) (*PostgresStore, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &PostgresStore{db: db, retention: retention}
	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Info("postgres ledger connected")
	return store, nil
}

func (s *PostgresStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS processed_articles (
		id SERIAL PRIMARY KEY,
		content_hash VARCHAR(64) UNIQUE NOT NULL,
		run_id VARCHAR(64) NOT NULL,
		outcome VARCHAR(16) NOT NULL,
		seen_at TIMESTAMP NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_processed_articles_hash ON processed_articles(content_hash);
	CREATE INDEX IF NOT EXISTS idx_processed_articles_seen_at ON processed_articles(seen_at);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Lookup(ctx context.Context, contentHash string) (Outcome, bool, error) {
	cutoff := time.Now().Add(-s.retention)

	var outcome string
	query := `SELECT outcome FROM processed_articles WHERE content_hash = $1 AND seen_at > $2`
	err := s.db.QueryRowContext(ctx, query, contentHash, cutoff).Scan(&outcome)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("ledger lookup: %w", err)
	}
	return Outcome(outcome), true, nil
}

// Upsert relies on ON CONFLICT so concurrent writers never race.
func (s *PostgresStore) Upsert(ctx context.Context, entry Entry) error {
	query := `
		INSERT INTO processed_articles (content_hash, run_id, outcome, seen_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (content_hash) DO UPDATE SET
			run_id = EXCLUDED.run_id,
			outcome = EXCLUDED.outcome,
			seen_at = NOW()
	`

	if _, err := s.db.ExecContext(ctx, query, entry.ContentHash, entry.RunID, string(entry.Outcome)); err != nil {
		return fmt.Errorf("ledger upsert: %w", err)
	}
	return nil
}

func (s *PostgresStore) Cleanup(ctx context.Context) error {
	cutoff := time.Now().Add(-s.retention)

	result, err := s.db.ExecContext(ctx, `DELETE FROM processed_articles WHERE seen_at < $1`, cutoff)
	if err != nil {
		return fmt.Errorf("ledger cleanup: %w", err)
	}

	if rows, _ := result.RowsAffected(); rows > 0 {
		logger.Info("cleaned up expired ledger entries", "count", rows)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
