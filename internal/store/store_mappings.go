package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

const mappingColumns = "id, record_type, record_id, obituary_id, created_at"

// RecordExternal records that an external record was produced for an
// obituary. The insert is idempotent: an existing mapping is left alone
// and reported via the bool return.
func (s *Store) RecordExternal(ctx context.Context, recordType RecordType, recordID, obituaryID string) (bool, error) {
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.execWithRetry(
		ctx,
		`INSERT OR IGNORE INTO record_mappings (record_type, record_id, obituary_id, created_at)
         VALUES (?, ?, ?, ?)`,
		recordType,
		recordID,
		obituaryID,
		timestamp,
	)
	if err != nil {
		return false, fmt.Errorf("insert mapping: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// HasExternal reports whether a mapping exists for the given record.
func (s *Store) HasExternal(ctx context.Context, recordType RecordType, recordID, obituaryID string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(
		ctx,
		`SELECT COUNT(1) FROM record_mappings WHERE record_type = ? AND record_id = ? AND obituary_id = ?`,
		recordType,
		recordID,
		obituaryID,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check mapping: %w", err)
	}
	return count > 0, nil
}

// MappingsForObituary lists the external records created for an obituary,
// optionally filtered by record type.
func (s *Store) MappingsForObituary(ctx context.Context, obituaryID string, types ...RecordType) ([]*RecordMapping, error) {
	query := `SELECT ` + mappingColumns + ` FROM record_mappings WHERE obituary_id = ?`
	args := []any{obituaryID}
	if len(types) > 0 {
		query += ` AND record_type IN (` + makePlaceholders(len(types)) + `)`
		for _, t := range types {
			args = append(args, t)
		}
	}
	query += ` ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query mappings: %w", err)
	}
	defer rows.Close()

	var out []*RecordMapping
	for rows.Next() {
		mapping, err := scanMapping(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, mapping)
	}
	return out, rows.Err()
}

func scanMapping(scanner interface{ Scan(dest ...any) error }) (*RecordMapping, error) {
	var (
		id         int64
		recordType string
		recordID   string
		obituaryID string
		createdRaw sql.NullString
	)
	if err := scanner.Scan(&id, &recordType, &recordID, &obituaryID, &createdRaw); err != nil {
		return nil, err
	}
	mapping := &RecordMapping{
		ID:         id,
		RecordType: RecordType(recordType),
		RecordID:   recordID,
		ObituaryID: obituaryID,
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		mapping.CreatedAt = created
	}
	return mapping, nil
}
