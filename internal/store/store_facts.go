package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"lineage/internal/facts"
)

const factColumns = "id, obituary_id, fact_type, person_name, role, fact_value, related_name, relationship, confidence, normalized, is_inferred, inference_basis, resolution_status, created_at"

// InsertFacts stores a batch of facts for one obituary inside a
// transaction. Fact IDs are filled in on return.
func (s *Store) InsertFacts(ctx context.Context, obituaryID string, items []facts.Fact) ([]facts.Fact, error) {
	ctx = ensureContext(ctx)
	timestamp := time.Now().UTC()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin facts tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stored := make([]facts.Fact, 0, len(items))
	for _, fact := range items {
		fact.ObituaryID = obituaryID
		fact.CreatedAt = timestamp
		fact.Resolution = resolutionOrDefault(fact.Resolution)
		res, err := tx.ExecContext(
			ctx,
			`INSERT INTO facts (
                obituary_id, fact_type, person_name, role, fact_value,
                related_name, relationship, confidence, normalized,
                is_inferred, inference_basis, resolution_status, created_at
            ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			obituaryID,
			fact.Type,
			nullableString(fact.PersonName),
			nullableString(string(fact.Role)),
			nullableString(fact.Value),
			nullableString(fact.RelatedName),
			nullableString(fact.Relationship),
			fact.Confidence,
			boolToInt(fact.Normalized),
			boolToInt(fact.Inferred),
			nullableString(fact.InferenceBasis),
			string(resolutionOrDefault(fact.Resolution)),
			timestamp.Format(time.RFC3339Nano),
		)
		if err != nil {
			return nil, fmt.Errorf("insert fact: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("last insert id: %w", err)
		}
		fact.ID = id
		stored = append(stored, fact)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit facts: %w", err)
	}
	return stored, nil
}

// ReplaceFacts swaps an obituary's fact set atomically. The normalizer
// writes its output through this so reruns never duplicate facts.
func (s *Store) ReplaceFacts(ctx context.Context, obituaryID string, items []facts.Fact) ([]facts.Fact, error) {
	ctx = ensureContext(ctx)
	timestamp := time.Now().UTC()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin replace tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM facts WHERE obituary_id = ?`, obituaryID); err != nil {
		return nil, fmt.Errorf("clear facts: %w", err)
	}

	stored := make([]facts.Fact, 0, len(items))
	for _, fact := range items {
		fact.ObituaryID = obituaryID
		fact.CreatedAt = timestamp
		fact.Resolution = resolutionOrDefault(fact.Resolution)
		res, err := tx.ExecContext(
			ctx,
			`INSERT INTO facts (
                obituary_id, fact_type, person_name, role, fact_value,
                related_name, relationship, confidence, normalized,
                is_inferred, inference_basis, resolution_status, created_at
            ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			obituaryID,
			fact.Type,
			nullableString(fact.PersonName),
			nullableString(string(fact.Role)),
			nullableString(fact.Value),
			nullableString(fact.RelatedName),
			nullableString(fact.Relationship),
			fact.Confidence,
			boolToInt(fact.Normalized),
			boolToInt(fact.Inferred),
			nullableString(fact.InferenceBasis),
			string(resolutionOrDefault(fact.Resolution)),
			timestamp.Format(time.RFC3339Nano),
		)
		if err != nil {
			return nil, fmt.Errorf("insert fact: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("last insert id: %w", err)
		}
		fact.ID = id
		stored = append(stored, fact)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit replace: %w", err)
	}
	return stored, nil
}

// FactsForObituary returns an obituary's facts in insertion order.
func (s *Store) FactsForObituary(ctx context.Context, obituaryID string) ([]facts.Fact, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+factColumns+` FROM facts WHERE obituary_id = ? ORDER BY id`, obituaryID)
	if err != nil {
		return nil, fmt.Errorf("query facts: %w", err)
	}
	defer rows.Close()

	var items []facts.Fact
	for rows.Next() {
		fact, err := scanFact(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, fact)
	}
	return items, rows.Err()
}

// GetFact fetches a single fact by identifier.
func (s *Store) GetFact(ctx context.Context, id int64) (*facts.Fact, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+factColumns+` FROM facts WHERE id = ?`, id)
	fact, err := scanFact(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get fact: %w", err)
	}
	return &fact, nil
}

// SetFactResolutionStatus stamps the reconciliation outcome on a fact.
func (s *Store) SetFactResolutionStatus(ctx context.Context, factID int64, status facts.ResolutionStatus) error {
	if err := s.execWithoutResultRetry(
		ctx,
		`UPDATE facts SET resolution_status = ? WHERE id = ?`,
		string(resolutionOrDefault(status)),
		factID,
	); err != nil {
		return fmt.Errorf("set fact resolution status: %w", err)
	}
	return nil
}

func resolutionOrDefault(status facts.ResolutionStatus) facts.ResolutionStatus {
	if status == "" {
		return facts.Unresolved
	}
	return status
}

func scanFact(scanner interface{ Scan(dest ...any) error }) (facts.Fact, error) {
	var (
		id             int64
		obituaryID     string
		factType       string
		personName     sql.NullString
		role           sql.NullString
		value          sql.NullString
		relatedName    sql.NullString
		relationship   sql.NullString
		confidence     sql.NullFloat64
		normalized     sql.NullInt64
		inferred       sql.NullInt64
		inferenceBasis sql.NullString
		resolutionRaw  sql.NullString
		createdRaw     sql.NullString
	)
	if err := scanner.Scan(
		&id,
		&obituaryID,
		&factType,
		&personName,
		&role,
		&value,
		&relatedName,
		&relationship,
		&confidence,
		&normalized,
		&inferred,
		&inferenceBasis,
		&resolutionRaw,
		&createdRaw,
	); err != nil {
		return facts.Fact{}, err
	}

	fact := facts.Fact{
		ID:             id,
		ObituaryID:     obituaryID,
		Type:           facts.Type(factType),
		PersonName:     personName.String,
		Role:           facts.Role(role.String),
		Value:          value.String,
		RelatedName:    relatedName.String,
		Relationship:   relationship.String,
		Confidence:     confidence.Float64,
		Normalized:     normalized.Valid && normalized.Int64 != 0,
		Inferred:       inferred.Valid && inferred.Int64 != 0,
		InferenceBasis: inferenceBasis.String,
		Resolution:     facts.ParseResolutionStatus(resolutionRaw.String),
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		fact.CreatedAt = created
	}
	return fact, nil
}
