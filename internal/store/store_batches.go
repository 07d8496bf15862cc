package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const batchColumns = "id, obituary_id, status, error_message, persons_created, facts_committed, families_created, started_at, finished_at, created_at"

// NewBatch creates a pending commit batch for an obituary.
func (s *Store) NewBatch(ctx context.Context, obituaryID string) (*CommitBatch, error) {
	id := uuid.NewString()
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)

	if _, err := s.execWithRetry(
		ctx,
		`INSERT INTO commit_batches (id, obituary_id, status, created_at) VALUES (?, ?, ?, ?)`,
		id,
		obituaryID,
		BatchPending,
		timestamp,
	); err != nil {
		return nil, fmt.Errorf("insert batch: %w", err)
	}
	return s.GetBatch(ctx, id)
}

// UpdateBatch persists changes to a commit batch.
func (s *Store) UpdateBatch(ctx context.Context, batch *CommitBatch) error {
	if batch == nil {
		return errors.New("batch is nil")
	}
	if err := s.execWithoutResultRetry(
		ctx,
		`UPDATE commit_batches
         SET status = ?, error_message = ?, persons_created = ?, facts_committed = ?,
             families_created = ?, started_at = ?, finished_at = ?
         WHERE id = ?`,
		batch.Status,
		nullableString(batch.ErrorMessage),
		batch.PersonsCreated,
		batch.FactsCommitted,
		batch.FamiliesCreated,
		nullableTime(batch.StartedAt),
		nullableTime(batch.FinishedAt),
		batch.ID,
	); err != nil {
		return fmt.Errorf("update batch: %w", err)
	}
	return nil
}

// GetBatch fetches a commit batch by identifier.
func (s *Store) GetBatch(ctx context.Context, id string) (*CommitBatch, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+batchColumns+` FROM commit_batches WHERE id = ?`, id)
	batch, err := scanBatch(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get batch: %w", err)
	}
	return batch, nil
}

// LatestBatchForObituary returns the most recent commit batch, or nil.
func (s *Store) LatestBatchForObituary(ctx context.Context, obituaryID string) (*CommitBatch, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT `+batchColumns+` FROM commit_batches WHERE obituary_id = ? ORDER BY created_at DESC LIMIT 1`,
		obituaryID,
	)
	batch, err := scanBatch(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest batch: %w", err)
	}
	return batch, nil
}

// BatchesForObituary lists commit batches oldest first.
func (s *Store) BatchesForObituary(ctx context.Context, obituaryID string) ([]*CommitBatch, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+batchColumns+` FROM commit_batches WHERE obituary_id = ? ORDER BY created_at`,
		obituaryID,
	)
	if err != nil {
		return nil, fmt.Errorf("query batches: %w", err)
	}
	defer rows.Close()

	var out []*CommitBatch
	for rows.Next() {
		batch, err := scanBatch(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, batch)
	}
	return out, rows.Err()
}

func scanBatch(scanner interface{ Scan(dest ...any) error }) (*CommitBatch, error) {
	var (
		id           string
		obituaryID   string
		status       string
		errorMessage sql.NullString
		persons      sql.NullInt64
		factsCount   sql.NullInt64
		families     sql.NullInt64
		startedRaw   sql.NullString
		finishedRaw  sql.NullString
		createdRaw   sql.NullString
	)
	if err := scanner.Scan(
		&id,
		&obituaryID,
		&status,
		&errorMessage,
		&persons,
		&factsCount,
		&families,
		&startedRaw,
		&finishedRaw,
		&createdRaw,
	); err != nil {
		return nil, err
	}

	batch := &CommitBatch{
		ID:              id,
		ObituaryID:      obituaryID,
		Status:          BatchStatus(status),
		ErrorMessage:    errorMessage.String,
		PersonsCreated:  int(persons.Int64),
		FactsCommitted:  int(factsCount.Int64),
		FamiliesCreated: int(families.Int64),
	}
	if startedRaw.Valid {
		if started, err := parseTimeString(startedRaw.String); err == nil {
			batch.StartedAt = &started
		}
	}
	if finishedRaw.Valid {
		if finished, err := parseTimeString(finishedRaw.String); err == nil {
			batch.FinishedAt = &finished
		}
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		batch.CreatedAt = created
	}
	return batch, nil
}
