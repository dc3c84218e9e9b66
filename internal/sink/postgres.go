package sink

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"

	"github.com/Adithya-Monish-Kumar-K/Keyphrase-Extraction-Engine/internal/pipeline"
	"github.com/Adithya-Monish-Kumar-K/Keyphrase-Extraction-Engine/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/Keyphrase-Extraction-Engine/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/Keyphrase-Extraction-Engine/pkg/resilience"
)

// ResultsSchema creates the table the Postgres sink writes to.
const ResultsSchema = `CREATE TABLE IF NOT EXISTS keyphrase_results (
	name         TEXT NOT NULL,
	method       TEXT NOT NULL,
	lang         TEXT NOT NULL,
	keyphrases   TEXT[] NOT NULL,
	scores       DOUBLE PRECISION[] NOT NULL,
	extracted_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (name, method)
)`

const upsertResult = `INSERT INTO keyphrase_results (name, method, lang, keyphrases, scores, extracted_at)
VALUES ($1, $2, $3, $4, $5, NOW())
ON CONFLICT (name, method) DO UPDATE
SET lang = EXCLUDED.lang, keyphrases = EXCLUDED.keyphrases, scores = EXCLUDED.scores, extracted_at = NOW()`

// Execer is satisfied by *sql.DB and *sql.Tx.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Postgres upserts one row per (document, method). Failed writes are
// retried with backoff; each attempt is bounded by the write timeout.
type Postgres struct {
	db      Execer
	method  pipeline.Method
	timeout time.Duration
	retry   resilience.RetryConfig
	metrics *metrics.Metrics
}

func NewPostgres(db Execer, method pipeline.Method, cfg config.SinkConfig, m *metrics.Metrics) *Postgres {
	return &Postgres{
		db:      db,
		method:  method,
		timeout: cfg.WriteTimeout,
		retry: resilience.RetryConfig{
			MaxAttempts: cfg.RetryAttempts,
			Retryable:   transient,
		},
		metrics: m,
	}
}

func (p *Postgres) Write(ctx context.Context, r *pipeline.Result) error {
	texts := r.Texts()
	scores := make([]float64, len(r.Keyphrases))
	for i, kp := range r.Keyphrases {
		scores[i] = kp.Score
	}
	err := resilience.Retry(ctx, "postgres result upsert", p.retry, func() error {
		return resilience.WithTimeout(ctx, p.timeout, "postgres result upsert", func(ctx context.Context) error {
			_, err := p.db.ExecContext(ctx, upsertResult,
				r.Name, string(p.method), r.Language, pq.Array(texts), pq.Array(scores),
			)
			return err
		})
	})
	p.metrics.SinkWrite("postgres", err)
	return err
}

// Close is a no-op; the connection pool belongs to the caller.
func (p *Postgres) Close() error { return nil }

// transient rejects errors that a retry cannot fix: cancellation and
// Postgres errors outside the connection and resource classes.
func transient(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code.Class() {
		case "08", "53", "57", "40":
			return true
		default:
			return false
		}
	}
	return true
}
