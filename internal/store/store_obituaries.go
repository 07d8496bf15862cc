package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const obituaryColumns = "id, source, subject_name, text, created_at"

// NewObituary inserts an obituary and returns the stored row. A blank ID
// is assigned a fresh UUID.
func (s *Store) NewObituary(ctx context.Context, source, subjectName, text string) (*Obituary, error) {
	subjectName = strings.TrimSpace(subjectName)
	if subjectName == "" {
		return nil, errors.New("subject name is required")
	}
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("obituary text is required")
	}

	id := uuid.NewString()
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)

	if _, err := s.execWithRetry(
		ctx,
		`INSERT INTO obituaries (id, source, subject_name, text, created_at) VALUES (?, ?, ?, ?, ?)`,
		id,
		nullableString(strings.TrimSpace(source)),
		subjectName,
		text,
		timestamp,
	); err != nil {
		return nil, fmt.Errorf("insert obituary: %w", err)
	}

	return s.GetObituary(ctx, id)
}

// GetObituary fetches an obituary by identifier.
func (s *Store) GetObituary(ctx context.Context, id string) (*Obituary, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+obituaryColumns+` FROM obituaries WHERE id = ?`, id)
	obit, err := scanObituary(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get obituary: %w", err)
	}
	return obit, nil
}

// ListObituaries returns all obituaries ordered by creation time.
func (s *Store) ListObituaries(ctx context.Context) ([]*Obituary, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+obituaryColumns+` FROM obituaries ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list obituaries: %w", err)
	}
	defer rows.Close()

	var obits []*Obituary
	for rows.Next() {
		obit, err := scanObituary(rows)
		if err != nil {
			return nil, err
		}
		obits = append(obits, obit)
	}
	return obits, rows.Err()
}

// RemoveObituary deletes an obituary and, through foreign keys, all of its
// facts, resolutions, batches, and mappings.
func (s *Store) RemoveObituary(ctx context.Context, id string) (bool, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM obituaries WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete obituary: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

func scanObituary(scanner interface{ Scan(dest ...any) error }) (*Obituary, error) {
	var (
		id         string
		source     sql.NullString
		subject    string
		text       string
		createdRaw sql.NullString
	)
	if err := scanner.Scan(&id, &source, &subject, &text, &createdRaw); err != nil {
		return nil, err
	}
	obit := &Obituary{
		ID:          id,
		Source:      source.String,
		SubjectName: subject,
		Text:        text,
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		obit.CreatedAt = created
	}
	return obit, nil
}
