// Package postgres implements the record store over PostgreSQL for self-hosted
// events. It keeps the same read-then-write contract as the Bitable store.
package postgres

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"regdesk/internal/checkin/models"
	"regdesk/pkg/platform/sentinel"
)

//go:embed schema.sql
var schema string

// PostgresStore persists participant and team rows. Pure I/O.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// EnsureSchema creates the tables if they do not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// SearchParticipants matches any populated field exactly, oldest rows first.
func (s *PostgresStore) SearchParticipants(ctx context.Context, q models.Query, limit int) ([]models.Participant, error) {
	query := `
		SELECT record_id, name, phone, school, team_name, team_ordinal, checked_in_at
		FROM participants
		WHERE ($1 <> '' AND record_id = $1)
		   OR ($2 <> '' AND name = $2)
		   OR ($3 <> '' AND phone = $3)
		ORDER BY created_at, record_id
		LIMIT $4
	`
	rows, err := s.pool.Query(ctx, query, q.ID, q.Name, q.Phone, limit)
	if err != nil {
		return nil, fmt.Errorf("search participants: %w", err)
	}
	defer rows.Close()

	var out []models.Participant
	for rows.Next() {
		var p models.Participant
		if err := rows.Scan(&p.ID, &p.Name, &p.Phone, &p.School, &p.Team, &p.TeamOrdinal, &p.CheckedInAt); err != nil {
			return nil, fmt.Errorf("scan participant: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("search participants: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) SetParticipantCheckIn(ctx context.Context, recordID string, at time.Time) error {
	tag, err := s.pool.Exec(ctx, `UPDATE participants SET checked_in_at = $2 WHERE record_id = $1`, recordID, at)
	if err != nil {
		return fmt.Errorf("set participant check-in: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("participant %s: %w", recordID, sentinel.ErrNotFound)
	}
	return nil
}

func (s *PostgresStore) FindTeam(ctx context.Context, ordinal int) (*models.Team, error) {
	query := `
		SELECT record_id, ordinal, name, assets_issued_at
		FROM teams
		WHERE ordinal = $1
	`
	var t models.Team
	err := s.pool.QueryRow(ctx, query, ordinal).Scan(&t.RecordID, &t.Ordinal, &t.Name, &t.AssetsIssuedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("team %d: %w", ordinal, sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find team: %w", err)
	}
	return &t, nil
}

func (s *PostgresStore) SetTeamCheckIn(ctx context.Context, recordID string, at time.Time) error {
	tag, err := s.pool.Exec(ctx, `UPDATE teams SET assets_issued_at = $2 WHERE record_id = $1`, recordID, at)
	if err != nil {
		return fmt.Errorf("set team check-in: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("team record %s: %w", recordID, sentinel.ErrNotFound)
	}
	return nil
}

// UpsertParticipant inserts or replaces a participant row. Used for imports and tests.
func (s *PostgresStore) UpsertParticipant(ctx context.Context, p models.Participant) error {
	query := `
		INSERT INTO participants (record_id, name, phone, school, team_name, team_ordinal, checked_in_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (record_id) DO UPDATE SET
			name = EXCLUDED.name,
			phone = EXCLUDED.phone,
			school = EXCLUDED.school,
			team_name = EXCLUDED.team_name,
			team_ordinal = EXCLUDED.team_ordinal,
			checked_in_at = EXCLUDED.checked_in_at
	`
	_, err := s.pool.Exec(ctx, query, p.ID, p.Name, p.Phone, p.School, p.Team, p.TeamOrdinal, p.CheckedInAt)
	if err != nil {
		return fmt.Errorf("upsert participant: %w", err)
	}
	return nil
}

// UpsertTeam inserts or replaces a team row. Used for imports and tests.
func (s *PostgresStore) UpsertTeam(ctx context.Context, t models.Team) error {
	query := `
		INSERT INTO teams (record_id, ordinal, name, assets_issued_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (record_id) DO UPDATE SET
			ordinal = EXCLUDED.ordinal,
			name = EXCLUDED.name,
			assets_issued_at = EXCLUDED.assets_issued_at
	`
	_, err := s.pool.Exec(ctx, query, t.RecordID, t.Ordinal, t.Name, t.AssetsIssuedAt)
	if err != nil {
		return fmt.Errorf("upsert team: %w", err)
	}
	return nil
}
