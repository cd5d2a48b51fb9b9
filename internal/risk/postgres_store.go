package risk

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

// PostgresStore persists the assessment audit trail in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a PostgreSQL-backed assessment audit store.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Record(ctx context.Context, rec *Record) error {
	reasonsJSON, err := json.Marshal(rec.ReasonCodes)
	if err != nil {
		return fmt.Errorf("failed to marshal reason codes: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO risk_assessments (id, user_hash, score, level, reason_codes, model_source, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`,
		rec.ID,
		rec.UserHash,
		rec.Score,
		string(rec.Level),
		reasonsJSON,
		rec.ModelSource,
		rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record assessment: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByUser(ctx context.Context, userHash string, limit int) ([]*Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_hash, score, level, reason_codes, model_source, created_at
		FROM risk_assessments
		WHERE user_hash = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, userHash, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list assessments: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var result []*Record
	for rows.Next() {
		var rec Record
		var reasonsJSON []byte

		if err := rows.Scan(&rec.ID, &rec.UserHash, &rec.Score, &rec.Level, &reasonsJSON, &rec.ModelSource, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan assessment: %w", err)
		}
		_ = json.Unmarshal(reasonsJSON, &rec.ReasonCodes)
		result = append(result, &rec)
	}
	return result, rows.Err()
}
