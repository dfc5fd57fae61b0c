package subject

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"vigil/internal/screening"
	id "vigil/pkg/domain"
)

// PostgresStore persists subjects in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed subject store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Get(ctx context.Context, subjectID id.SubjectID) (*screening.Subject, error) {
	const query = `
		SELECT id, kind, full_name, name_parts, legal_id, active, created_at, updated_at
		FROM subjects
		WHERE id = $1`

	sub, err := scanSubject(s.db.QueryRowContext(ctx, query, uuid.UUID(subjectID)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get subject: %w", err)
	}
	return sub, nil
}

func (s *PostgresStore) Upsert(ctx context.Context, subject *screening.Subject) error {
	if subject == nil {
		return fmt.Errorf("subject is required")
	}
	const query = `
		INSERT INTO subjects (id, kind, full_name, name_parts, legal_id, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, now(), now())
		ON CONFLICT (id) DO UPDATE SET
			kind = EXCLUDED.kind,
			full_name = EXCLUDED.full_name,
			name_parts = EXCLUDED.name_parts,
			legal_id = EXCLUDED.legal_id,
			active = EXCLUDED.active,
			updated_at = now()`

	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(subject.ID), string(subject.Identity.Kind), subject.Identity.FullName,
		pq.Array(subject.Identity.NameParts), subject.Identity.LegalID, subject.Active,
	)
	if err != nil {
		return fmt.Errorf("upsert subject: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListActive(ctx context.Context) ([]*screening.Subject, error) {
	const query = `
		SELECT id, kind, full_name, name_parts, legal_id, active, created_at, updated_at
		FROM subjects
		WHERE active
		ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list active subjects: %w", err)
	}
	defer rows.Close()

	var subjects []*screening.Subject
	for rows.Next() {
		sub, err := scanSubject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan subject: %w", err)
		}
		subjects = append(subjects, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list active subjects: %w", err)
	}
	return subjects, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSubject(row rowScanner) (*screening.Subject, error) {
	var (
		sub   screening.Subject
		rawID uuid.UUID
		parts pq.StringArray
	)
	err := row.Scan(&rawID, &sub.Identity.Kind, &sub.Identity.FullName, &parts,
		&sub.Identity.LegalID, &sub.Active, &sub.CreatedAt, &sub.UpdatedAt)
	if err != nil {
		return nil, err
	}
	sub.ID = id.SubjectID(rawID)
	sub.Identity.NameParts = []string(parts)
	return &sub, nil
}
