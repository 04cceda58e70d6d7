package storage

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/luxebeauty/salonbook/libs/db"
	"github.com/luxebeauty/salonbook/services/booking-service/internal/booking"
)

// PostgresStore keeps ledger snapshots as JSON rows, newest row wins.
type PostgresStore struct {
	pool *db.Pool
}

func NewPostgresStore(pool *db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS ledger_snapshots (
			id BIGSERIAL PRIMARY KEY,
			taken_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			payload JSONB NOT NULL
		)
	`)
	return err
}

func (s *PostgresStore) Save(ctx context.Context, appts []booking.Appointment) error {
	payload, err := json.Marshal(appts)
	if err != nil {
		return err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `INSERT INTO ledger_snapshots (payload) VALUES ($1)`, payload); err != nil {
		return err
	}
	// Retain a short history for manual recovery.
	if _, err := tx.Exec(ctx, `
		DELETE FROM ledger_snapshots
		WHERE id NOT IN (SELECT id FROM ledger_snapshots ORDER BY id DESC LIMIT 10)
	`); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *PostgresStore) Load(ctx context.Context) ([]booking.Appointment, error) {
	var payload []byte
	err := s.pool.QueryRow(ctx, `
		SELECT payload FROM ledger_snapshots ORDER BY id DESC LIMIT 1
	`).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var appts []booking.Appointment
	if err := json.Unmarshal(payload, &appts); err != nil {
		return nil, err
	}
	return appts, nil
}
