package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jayai/growth-hub/internal/domain/catalog"
	"github.com/jayai/growth-hub/internal/domain/insight"
)

// InsightRepository implements insight.Repository for PostgreSQL.
type InsightRepository struct {
	conn *Connection
}

// NewInsightRepository creates a new InsightRepository.
func NewInsightRepository(conn *Connection) *InsightRepository {
	return &InsightRepository{conn: conn}
}

// Append persists new insights in one transaction.
func (r *InsightRepository) Append(ctx context.Context, insights ...*insight.Insight) error {
	if len(insights) == 0 {
		return nil
	}
	return r.conn.WithTx(ctx, func(tx pgx.Tx) error {
		for _, ins := range insights {
			domains, err := json.Marshal(ins.Domains)
			if err != nil {
				return fmt.Errorf("failed to marshal insight domains: %w", err)
			}
			_, err = tx.Exec(ctx, `
				INSERT INTO insights (id, user_id, category, text, domains, viewed, created_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7)
				ON CONFLICT (id) DO NOTHING
			`, ins.ID, ins.UserID, string(ins.Category), ins.Text, domains, ins.Viewed, ins.CreatedAt)
			if err != nil {
				return fmt.Errorf("failed to insert insight: %w", err)
			}
		}
		return nil
	})
}

// List returns a user's insights, newest first.
func (r *InsightRepository) List(ctx context.Context, userID string) ([]*insight.Insight, error) {
	return r.list(ctx, `
		SELECT id, user_id, category, text, domains, viewed, created_at
		FROM insights
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
	`, userID)
}

// ListUnviewed returns the user's unviewed insights, newest first.
func (r *InsightRepository) ListUnviewed(ctx context.Context, userID string) ([]*insight.Insight, error) {
	return r.list(ctx, `
		SELECT id, user_id, category, text, domains, viewed, created_at
		FROM insights
		WHERE user_id = $1 AND NOT viewed
		ORDER BY created_at DESC, id DESC
	`, userID)
}

// MarkViewed marks the given insight ids as viewed.
func (r *InsightRepository) MarkViewed(ctx context.Context, userID string, insightIDs ...string) error {
	if len(insightIDs) == 0 {
		return nil
	}
	_, err := r.conn.Exec(ctx, `
		UPDATE insights
		SET viewed = TRUE
		WHERE user_id = $1 AND id = ANY($2)
	`, userID, insightIDs)
	if err != nil {
		return fmt.Errorf("failed to mark insights viewed: %w", err)
	}
	return nil
}

func (r *InsightRepository) list(ctx context.Context, query, userID string) ([]*insight.Insight, error) {
	rows, err := r.conn.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list insights: %w", err)
	}
	defer rows.Close()

	var insights []*insight.Insight
	for rows.Next() {
		var ins insight.Insight
		var category string
		var domains []byte
		if err := rows.Scan(&ins.ID, &ins.UserID, &category, &ins.Text, &domains, &ins.Viewed, &ins.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan insight: %w", err)
		}
		ins.Category = insight.Category(category)
		if len(domains) > 0 {
			var names []string
			if err := json.Unmarshal(domains, &names); err != nil {
				return nil, fmt.Errorf("failed to unmarshal insight domains: %w", err)
			}
			for _, name := range names {
				ins.Domains = append(ins.Domains, catalog.Domain(name))
			}
		}
		insights = append(insights, &ins)
	}
	return insights, rows.Err()
}
