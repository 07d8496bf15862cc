package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"lineage/internal/facts"
)

const personResolutionColumns = "id, obituary_id, person_name, role, status, gramps_handle, match_score, match_method, matched_maiden_name, candidates, first_name_override, surname_override, gender_override, error_message, created_at, updated_at"

const factResolutionColumns = "id, obituary_id, fact_id, person_resolution_id, status, action, is_conflict, external_value, value_override, error_message, created_at, updated_at"

// InsertPersonResolution stores a new person resolution and returns it
// with its identifier and timestamps filled in.
func (s *Store) InsertPersonResolution(ctx context.Context, res *PersonResolution) (*PersonResolution, error) {
	if res == nil {
		return nil, errors.New("person resolution is nil")
	}
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)

	candidatesJSON, err := marshalCandidates(res.Candidates)
	if err != nil {
		return nil, err
	}

	result, err := s.execWithRetry(
		ctx,
		`INSERT INTO person_resolutions (
            obituary_id, person_name, role, status, gramps_handle, match_score,
            match_method, matched_maiden_name, candidates, first_name_override,
            surname_override, gender_override, error_message,
            created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		res.ObituaryID,
		res.PersonName,
		res.Role,
		res.Status,
		nullableString(res.GrampsHandle),
		res.MatchScore,
		nullableString(string(res.MatchMethod)),
		boolToInt(res.MatchedMaidenName),
		nullableString(candidatesJSON),
		nullableString(res.FirstNameOverride),
		nullableString(res.SurnameOverride),
		nullableString(res.GenderOverride),
		nullableString(res.ErrorMessage),
		timestamp,
		timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert person resolution: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetPersonResolution(ctx, id)
}

// UpdatePersonResolution persists changes to an existing person resolution.
func (s *Store) UpdatePersonResolution(ctx context.Context, res *PersonResolution) error {
	if res == nil {
		return errors.New("person resolution is nil")
	}
	res.UpdatedAt = time.Now().UTC()

	candidatesJSON, err := marshalCandidates(res.Candidates)
	if err != nil {
		return err
	}

	if err := s.execWithoutResultRetry(
		ctx,
		`UPDATE person_resolutions
         SET person_name = ?, role = ?, status = ?, gramps_handle = ?, match_score = ?,
             match_method = ?, matched_maiden_name = ?, candidates = ?,
             first_name_override = ?, surname_override = ?, gender_override = ?,
             error_message = ?, updated_at = ?
         WHERE id = ?`,
		res.PersonName,
		res.Role,
		res.Status,
		nullableString(res.GrampsHandle),
		res.MatchScore,
		nullableString(string(res.MatchMethod)),
		boolToInt(res.MatchedMaidenName),
		nullableString(candidatesJSON),
		nullableString(res.FirstNameOverride),
		nullableString(res.SurnameOverride),
		nullableString(res.GenderOverride),
		nullableString(res.ErrorMessage),
		res.UpdatedAt.Format(time.RFC3339Nano),
		res.ID,
	); err != nil {
		return fmt.Errorf("update person resolution: %w", err)
	}
	return nil
}

// GetPersonResolution fetches a person resolution by identifier.
func (s *Store) GetPersonResolution(ctx context.Context, id int64) (*PersonResolution, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+personResolutionColumns+` FROM person_resolutions WHERE id = ?`, id)
	res, err := scanPersonResolution(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get person resolution: %w", err)
	}
	return res, nil
}

// PersonResolutionByName returns the resolution for a named person within
// an obituary, or nil when none exists.
func (s *Store) PersonResolutionByName(ctx context.Context, obituaryID, personName string) (*PersonResolution, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT `+personResolutionColumns+` FROM person_resolutions WHERE obituary_id = ? AND person_name = ?`,
		obituaryID,
		personName,
	)
	res, err := scanPersonResolution(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("person resolution by name: %w", err)
	}
	return res, nil
}

// PersonResolutionsForObituary lists person resolutions, optionally
// filtered by status.
func (s *Store) PersonResolutionsForObituary(ctx context.Context, obituaryID string, statuses ...ResolutionStatus) ([]*PersonResolution, error) {
	query := `SELECT ` + personResolutionColumns + ` FROM person_resolutions WHERE obituary_id = ?`
	args := []any{obituaryID}
	if len(statuses) > 0 {
		query += ` AND status IN (` + makePlaceholders(len(statuses)) + `)`
		for _, status := range statuses {
			args = append(args, status)
		}
	}
	query += ` ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query person resolutions: %w", err)
	}
	defer rows.Close()

	var out []*PersonResolution
	for rows.Next() {
		res, err := scanPersonResolution(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

// InsertFactResolution stores a new fact resolution.
func (s *Store) InsertFactResolution(ctx context.Context, res *FactResolution) (*FactResolution, error) {
	if res == nil {
		return nil, errors.New("fact resolution is nil")
	}
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)

	result, err := s.execWithRetry(
		ctx,
		`INSERT INTO fact_resolutions (
            obituary_id, fact_id, person_resolution_id, status, action,
            is_conflict, external_value, value_override, error_message,
            created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		res.ObituaryID,
		res.FactID,
		res.PersonResolutionID,
		res.Status,
		res.Action,
		boolToInt(res.IsConflict),
		nullableString(res.ExternalValue),
		nullableString(res.ValueOverride),
		nullableString(res.ErrorMessage),
		timestamp,
		timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert fact resolution: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetFactResolution(ctx, id)
}

// UpdateFactResolution persists changes to an existing fact resolution.
func (s *Store) UpdateFactResolution(ctx context.Context, res *FactResolution) error {
	if res == nil {
		return errors.New("fact resolution is nil")
	}
	res.UpdatedAt = time.Now().UTC()

	if err := s.execWithoutResultRetry(
		ctx,
		`UPDATE fact_resolutions
         SET status = ?, action = ?, is_conflict = ?, external_value = ?,
             value_override = ?, error_message = ?, updated_at = ?
         WHERE id = ?`,
		res.Status,
		res.Action,
		boolToInt(res.IsConflict),
		nullableString(res.ExternalValue),
		nullableString(res.ValueOverride),
		nullableString(res.ErrorMessage),
		res.UpdatedAt.Format(time.RFC3339Nano),
		res.ID,
	); err != nil {
		return fmt.Errorf("update fact resolution: %w", err)
	}
	return nil
}

// GetFactResolution fetches a fact resolution by identifier.
func (s *Store) GetFactResolution(ctx context.Context, id int64) (*FactResolution, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+factResolutionColumns+` FROM fact_resolutions WHERE id = ?`, id)
	res, err := scanFactResolution(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get fact resolution: %w", err)
	}
	return res, nil
}

// FactResolutionForFact returns the resolution attached to a fact, if any.
func (s *Store) FactResolutionForFact(ctx context.Context, factID int64) (*FactResolution, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+factResolutionColumns+` FROM fact_resolutions WHERE fact_id = ?`, factID)
	res, err := scanFactResolution(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fact resolution for fact: %w", err)
	}
	return res, nil
}

// FactResolutionsForObituary lists fact resolutions, optionally filtered
// by status.
func (s *Store) FactResolutionsForObituary(ctx context.Context, obituaryID string, statuses ...FactStatus) ([]*FactResolution, error) {
	query := `SELECT ` + factResolutionColumns + ` FROM fact_resolutions WHERE obituary_id = ?`
	args := []any{obituaryID}
	if len(statuses) > 0 {
		query += ` AND status IN (` + makePlaceholders(len(statuses)) + `)`
		for _, status := range statuses {
			args = append(args, status)
		}
	}
	query += ` ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query fact resolutions: %w", err)
	}
	defer rows.Close()

	var out []*FactResolution
	for rows.Next() {
		res, err := scanFactResolution(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

// ApproveAllPending flips pending fact resolutions with an add or update
// action to approved. Skip actions and conflict-free matches are left
// untouched. Returns the number of rows changed.
func (s *Store) ApproveAllPending(ctx context.Context, obituaryID string) (int64, error) {
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.execWithRetry(
		ctx,
		`UPDATE fact_resolutions
         SET status = ?, updated_at = ?
         WHERE obituary_id = ? AND status = ? AND action IN (?, ?)`,
		FactApproved,
		timestamp,
		obituaryID,
		FactPending,
		ActionAdd,
		ActionUpdate,
	)
	if err != nil {
		return 0, fmt.Errorf("approve all pending: %w", err)
	}
	return res.RowsAffected()
}

func marshalCandidates(candidates []Candidate) (string, error) {
	if len(candidates) == 0 {
		return "", nil
	}
	raw, err := json.Marshal(candidates)
	if err != nil {
		return "", fmt.Errorf("marshal candidates: %w", err)
	}
	return string(raw), nil
}

func scanPersonResolution(scanner interface{ Scan(dest ...any) error }) (*PersonResolution, error) {
	var (
		id            int64
		obituaryID    string
		personName    string
		role          sql.NullString
		status        string
		handle        sql.NullString
		score         sql.NullFloat64
		method        sql.NullString
		matchedMaiden sql.NullInt64
		candidatesRaw sql.NullString
		firstOverride sql.NullString
		surnOverride  sql.NullString
		gendOverride  sql.NullString
		errorMessage  sql.NullString
		createdRaw    sql.NullString
		updatedRaw    sql.NullString
	)
	if err := scanner.Scan(
		&id,
		&obituaryID,
		&personName,
		&role,
		&status,
		&handle,
		&score,
		&method,
		&matchedMaiden,
		&candidatesRaw,
		&firstOverride,
		&surnOverride,
		&gendOverride,
		&errorMessage,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	res := &PersonResolution{
		ID:                id,
		ObituaryID:        obituaryID,
		PersonName:        personName,
		Role:              facts.Role(role.String),
		Status:            ResolutionStatus(status),
		GrampsHandle:      handle.String,
		MatchScore:        score.Float64,
		MatchMethod:       MatchMethod(method.String),
		MatchedMaidenName: matchedMaiden.Valid && matchedMaiden.Int64 != 0,
		FirstNameOverride: firstOverride.String,
		SurnameOverride:   surnOverride.String,
		GenderOverride:    gendOverride.String,
		ErrorMessage:      errorMessage.String,
	}
	if candidatesRaw.Valid && candidatesRaw.String != "" {
		if err := json.Unmarshal([]byte(candidatesRaw.String), &res.Candidates); err != nil {
			return nil, fmt.Errorf("unmarshal candidates: %w", err)
		}
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		res.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		res.UpdatedAt = updated
	}
	return res, nil
}

func scanFactResolution(scanner interface{ Scan(dest ...any) error }) (*FactResolution, error) {
	var (
		id            int64
		obituaryID    string
		factID        int64
		personResID   int64
		status        string
		action        sql.NullString
		isConflict    sql.NullInt64
		externalValue sql.NullString
		valueOverride sql.NullString
		errorMessage  sql.NullString
		createdRaw    sql.NullString
		updatedRaw    sql.NullString
	)
	if err := scanner.Scan(
		&id,
		&obituaryID,
		&factID,
		&personResID,
		&status,
		&action,
		&isConflict,
		&externalValue,
		&valueOverride,
		&errorMessage,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	res := &FactResolution{
		ID:                 id,
		ObituaryID:         obituaryID,
		FactID:             factID,
		PersonResolutionID: personResID,
		Status:             FactStatus(status),
		Action:             Action(action.String),
		IsConflict:         isConflict.Valid && isConflict.Int64 != 0,
		ExternalValue:      externalValue.String,
		ValueOverride:      valueOverride.String,
		ErrorMessage:       errorMessage.String,
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		res.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		res.UpdatedAt = updated
	}
	return res, nil
}
