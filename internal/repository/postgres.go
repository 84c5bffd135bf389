package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pgvector/pgvector-go"

	"flightassist/internal/model"
)

// PostgresRepository handles database operations
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(dsn string, maxConn, maxIdleConn int) (*PostgresRepository, error) {
	// Disable prepared statement caching to avoid "unnamed prepared statement does not exist" errors
	if !strings.Contains(dsn, "?") {
		dsn += "?prefer_simple_protocol=true"
	} else {
		dsn += "&prefer_simple_protocol=true"
	}

	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(maxConn)
	db.SetMaxIdleConns(maxIdleConn)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(2 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresRepository{db: db}, nil
}

// Close closes the database connection
func (r *PostgresRepository) Close() error {
	return r.db.Close()
}

// ReplaceFlights swaps the flight snapshot for an airport in one
// transaction. The board is small (a few hundred rows), so a full
// replace is simpler and faster than row-level reconciliation.
func (r *PostgresRepository) ReplaceFlights(ctx context.Context, airportCode string, flights []model.Flight) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM flights WHERE airport_code = $1`, airportCode); err != nil {
		return fmt.Errorf("failed to clear flight snapshot: %w", err)
	}

	stmt, err := tx.PreparexContext(ctx, `
		INSERT INTO flights (
			id, airport_code, flight_number, airline, direction,
			origin_city, destination_city, scheduled_time_local,
			estimated_time_local, status, gate, baggage, fetched_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW())
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, f := range flights {
		if _, err := stmt.ExecContext(ctx,
			f.ID, airportCode, f.FlightNumber, f.Airline, f.Direction,
			f.OriginCity, f.DestinationCity, f.ScheduledTimeLocal,
			f.EstimatedTimeLocal, f.Status, f.Gate, f.Baggage,
		); err != nil {
			return fmt.Errorf("failed to insert flight %s: %w", f.FlightNumber, err)
		}
	}

	return tx.Commit()
}

// GetFlights returns the stored snapshot for an airport
func (r *PostgresRepository) GetFlights(ctx context.Context, airportCode string) ([]model.Flight, error) {
	var flights []model.Flight
	query := `
		SELECT
			id, airport_code, flight_number, airline, direction,
			origin_city, destination_city, scheduled_time_local,
			estimated_time_local, status, gate, baggage
		FROM flights
		WHERE airport_code = $1
		ORDER BY scheduled_time_local
	`
	if err := r.db.SelectContext(ctx, &flights, query, airportCode); err != nil {
		return nil, fmt.Errorf("failed to fetch flights: %w", err)
	}
	return flights, nil
}

// LogQuery records one assistant query for later analysis
func (r *PostgresRepository) LogQuery(ctx context.Context, query, lang, provider, answer string, matchCount, responseTimeMs int) error {
	logQuery := `
		INSERT INTO query_logs (query, lang, nlu_provider, answer, match_count, response_time_ms)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	if _, err := r.db.ExecContext(ctx, logQuery, query, lang, provider, answer, matchCount, responseTimeMs); err != nil {
		return fmt.Errorf("failed to log query: %w", err)
	}
	return nil
}

// FAQRow is one stored FAQ entry with its optional embedding distance
type FAQRow struct {
	ID         int64           `db:"id"`
	Question   string          `db:"question"`
	Answer     string          `db:"answer"`
	QuestionEN sql.NullString  `db:"question_en"`
	AnswerEN   sql.NullString  `db:"answer_en"`
	Distance   sql.NullFloat64 `db:"distance"`
}

func (r FAQRow) Item() model.FAQItem {
	return model.FAQItem{
		Question:   r.Question,
		Answer:     r.Answer,
		QuestionEN: r.QuestionEN.String,
		AnswerEN:   r.AnswerEN.String,
	}
}

// ReplaceFAQ swaps the stored FAQ set. Embeddings are optional and
// positional: embeddings[i] belongs to items[i] when present.
func (r *PostgresRepository) ReplaceFAQ(ctx context.Context, items []model.FAQItem, embeddings [][]float32) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM faq_entries`); err != nil {
		return fmt.Errorf("failed to clear faq entries: %w", err)
	}

	stmt, err := tx.PreparexContext(ctx, `
		INSERT INTO faq_entries (question, answer, question_en, answer_en, embedding, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for i, item := range items {
		var vec interface{}
		if i < len(embeddings) && len(embeddings[i]) > 0 {
			vec = pgvector.NewVector(embeddings[i])
		}
		if _, err := stmt.ExecContext(ctx,
			item.Question, item.Answer,
			nullable(item.QuestionEN), nullable(item.AnswerEN), vec,
		); err != nil {
			return fmt.Errorf("failed to insert faq entry %d: %w", i, err)
		}
	}

	return tx.Commit()
}

// NearestFAQ performs cosine-distance search over stored embeddings
func (r *PostgresRepository) NearestFAQ(ctx context.Context, queryEmbedding []float32, limit int) ([]FAQRow, error) {
	vec := pgvector.NewVector(queryEmbedding)
	query := `
		SELECT id, question, answer, question_en, answer_en,
			embedding <=> $1 AS distance
		FROM faq_entries
		WHERE embedding IS NOT NULL
		ORDER BY embedding <=> $1
		LIMIT $2
	`
	var rows []FAQRow
	if err := r.db.SelectContext(ctx, &rows, query, vec, limit); err != nil {
		return nil, fmt.Errorf("failed to search faq embeddings: %w", err)
	}
	return rows, nil
}

// NearestFAQEmbedding returns the single closest FAQ entry and its
// cosine distance. found is false when no embeddings are stored.
func (r *PostgresRepository) NearestFAQEmbedding(ctx context.Context, queryEmbedding []float32) (model.FAQItem, float64, bool, error) {
	rows, err := r.NearestFAQ(ctx, queryEmbedding, 1)
	if err != nil {
		return model.FAQItem{}, 0, false, err
	}
	if len(rows) == 0 {
		return model.FAQItem{}, 0, false, nil
	}
	return rows[0].Item(), rows[0].Distance.Float64, true, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
