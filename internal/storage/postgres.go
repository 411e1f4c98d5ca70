package storage

import (
	"context"
	"errors"

	"github.com/2beens/gymcoach/internal/telemetry/tracing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// the whole user database lives in a single row
const documentRowID = 1

var _ Backend = (*PostgresBackend)(nil)

type PostgresBackend struct {
	db *pgxpool.Pool
}

func NewPostgresBackend(db *pgxpool.Pool) *PostgresBackend {
	return &PostgresBackend{
		db: db,
	}
}

func (b *PostgresBackend) Name() string {
	return "postgres"
}

func (b *PostgresBackend) EnsureSchema(ctx context.Context) error {
	_, err := b.db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS gymcoach_document (
			id         INT PRIMARY KEY,
			body       JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);
	`)
	return err
}

func (b *PostgresBackend) Load(ctx context.Context) (_ []byte, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "storage.postgres.load")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var body string
	err = b.db.
		QueryRow(ctx, `SELECT body::text FROM gymcoach_document WHERE id = $1`, documentRowID).
		Scan(&body)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return []byte(body), nil
}

func (b *PostgresBackend) Save(ctx context.Context, doc []byte) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "storage.postgres.save")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	_, err = b.db.Exec(ctx, `
		INSERT INTO gymcoach_document (id, body, updated_at)
		VALUES ($1, $2::jsonb, now())
		ON CONFLICT (id) DO UPDATE
		SET body = EXCLUDED.body, updated_at = EXCLUDED.updated_at
	`, documentRowID, string(doc))
	return err
}
