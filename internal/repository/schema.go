package repository

import (
	"context"
	"fmt"
)

// schema keeps the DDL next to the queries that depend on it
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS flights (
		id TEXT NOT NULL,
		airport_code TEXT NOT NULL,
		flight_number TEXT NOT NULL,
		airline TEXT NOT NULL DEFAULT '',
		direction TEXT NOT NULL,
		origin_city TEXT NOT NULL DEFAULT '',
		destination_city TEXT NOT NULL DEFAULT '',
		scheduled_time_local TEXT NOT NULL DEFAULT '',
		estimated_time_local TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT '',
		gate TEXT NOT NULL DEFAULT '',
		baggage TEXT NOT NULL DEFAULT '',
		fetched_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_flights_airport ON flights (airport_code)`,
	`CREATE TABLE IF NOT EXISTS query_logs (
		id BIGSERIAL PRIMARY KEY,
		query TEXT NOT NULL,
		lang TEXT NOT NULL DEFAULT 'tr',
		nlu_provider TEXT NOT NULL DEFAULT '',
		answer TEXT NOT NULL DEFAULT '',
		match_count INT NOT NULL DEFAULT 0,
		response_time_ms INT NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
}

const faqSchemaWithVector = `CREATE TABLE IF NOT EXISTS faq_entries (
	id BIGSERIAL PRIMARY KEY,
	question TEXT NOT NULL,
	answer TEXT NOT NULL,
	question_en TEXT,
	answer_en TEXT,
	embedding vector(1536),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

const faqSchemaPlain = `CREATE TABLE IF NOT EXISTS faq_entries (
	id BIGSERIAL PRIMARY KEY,
	question TEXT NOT NULL,
	answer TEXT NOT NULL,
	question_en TEXT,
	answer_en TEXT,
	embedding TEXT,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// EnsureSchema creates missing tables. The pgvector extension needs
// superuser on some hosts, so its absence is tolerated: the FAQ table
// falls back to a plain column and NearestFAQ simply returns nothing.
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	for i, stmt := range schemaStatements {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema statement %d: %w", i, err)
		}
	}

	if _, err := r.db.ExecContext(ctx, `CREATE EXTENSION IF NOT EXISTS vector`); err == nil {
		if _, err := r.db.ExecContext(ctx, faqSchemaWithVector); err != nil {
			return fmt.Errorf("failed to create faq table: %w", err)
		}
		return nil
	}
	if _, err := r.db.ExecContext(ctx, faqSchemaPlain); err != nil {
		return fmt.Errorf("failed to create faq table: %w", err)
	}
	return nil
}
