package disposition

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"vigil/internal/screening"
	id "vigil/pkg/domain"
)

// PostgresStore persists dispositions in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed disposition store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Get(ctx context.Context, subjectID id.SubjectID) (*Disposition, error) {
	const query = `
		SELECT subject_id, tier, decision, score, source_hits, alert_active, last_screened_at, updated_at
		FROM dispositions
		WHERE subject_id = $1`

	var (
		d       Disposition
		rawID   uuid.UUID
		rawHits []byte
	)
	err := s.db.QueryRowContext(ctx, query, uuid.UUID(subjectID)).Scan(
		&rawID, &d.Tier, &d.Decision, &d.Score, &rawHits, &d.AlertActive, &d.LastScreenedAt, &d.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get disposition: %w", err)
	}
	d.SubjectID = id.SubjectID(rawID)
	if err := json.Unmarshal(rawHits, &d.SourceHits); err != nil {
		return nil, fmt.Errorf("decode source hits: %w", err)
	}
	return &d, nil
}

func (s *PostgresStore) Upsert(ctx context.Context, d *Disposition) error {
	if d == nil {
		return fmt.Errorf("disposition is required")
	}
	hits, err := json.Marshal(normalizedHits(d.SourceHits))
	if err != nil {
		return fmt.Errorf("encode source hits: %w", err)
	}

	const query = `
		INSERT INTO dispositions (subject_id, tier, decision, score, source_hits, alert_active, last_screened_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (subject_id) DO UPDATE SET
			tier = EXCLUDED.tier,
			decision = EXCLUDED.decision,
			score = EXCLUDED.score,
			source_hits = EXCLUDED.source_hits,
			alert_active = EXCLUDED.alert_active,
			last_screened_at = EXCLUDED.last_screened_at,
			updated_at = EXCLUDED.updated_at`

	_, err = s.db.ExecContext(ctx, query,
		uuid.UUID(d.SubjectID), string(d.Tier), string(d.Decision), d.Score,
		hits, d.AlertActive, d.LastScreenedAt, d.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert disposition: %w", err)
	}
	return nil
}

// normalizedHits pins every known source into the stored flags so older rows
// stay comparable when a flag was absent at write time.
func normalizedHits(hits map[screening.Source]bool) map[screening.Source]bool {
	out := make(map[screening.Source]bool, len(screening.Sources()))
	for _, source := range screening.Sources() {
		out[source] = hits[source]
	}
	return out
}
