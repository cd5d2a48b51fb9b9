package checkout

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/aashu2252/Fraud-Gaurd-AI/internal/cart"
)

// PostgresOrderStore archives placed orders in PostgreSQL.
type PostgresOrderStore struct {
	db *sql.DB
}

// NewPostgresOrderStore creates a PostgreSQL-backed order archive.
func NewPostgresOrderStore(db *sql.DB) *PostgresOrderStore {
	return &PostgresOrderStore{db: db}
}

func (s *PostgresOrderStore) Create(ctx context.Context, order *Order) error {
	linesJSON, err := json.Marshal(order.Lines)
	if err != nil {
		return fmt.Errorf("failed to marshal order lines: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO orders (id, user_hash, method_id, lines, subtotal, shipping, total, risk_score, risk_level, model_source, placed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`,
		order.ID,
		order.UserHash,
		order.MethodID,
		linesJSON,
		order.Totals.Subtotal,
		order.Totals.Shipping,
		order.Totals.Total,
		order.RiskScore,
		string(order.RiskLevel),
		order.ModelSource,
		order.PlacedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to archive order: %w", err)
	}
	return nil
}

func (s *PostgresOrderStore) ListByUser(ctx context.Context, userHash string, limit int) ([]*Order, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_hash, method_id, lines, subtotal, shipping, total, risk_score, risk_level, model_source, placed_at
		FROM orders
		WHERE user_hash = $1
		ORDER BY placed_at DESC
		LIMIT $2
	`, userHash, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var result []*Order
	for rows.Next() {
		var o Order
		var linesJSON []byte

		if err := rows.Scan(&o.ID, &o.UserHash, &o.MethodID, &linesJSON, &o.Totals.Subtotal, &o.Totals.Shipping, &o.Totals.Total, &o.RiskScore, &o.RiskLevel, &o.ModelSource, &o.PlacedAt); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		if len(linesJSON) > 0 {
			var lines []cart.LineItem
			_ = json.Unmarshal(linesJSON, &lines)
			o.Lines = lines
		}
		result = append(result, &o)
	}
	return result, rows.Err()
}
