package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jayai/growth-hub/internal/domain/catalog"
	"github.com/jayai/growth-hub/internal/domain/goal"
	"github.com/jayai/growth-hub/internal/domain/shared"
)

// GoalRepository implements goal.Repository for PostgreSQL.
type GoalRepository struct {
	conn *Connection
}

// NewGoalRepository creates a new GoalRepository.
func NewGoalRepository(conn *Connection) *GoalRepository {
	return &GoalRepository{conn: conn}
}

// Create inserts a new goal.
func (r *GoalRepository) Create(ctx context.Context, g *goal.Goal) error {
	milestones, err := json.Marshal(g.Milestones)
	if err != nil {
		return fmt.Errorf("failed to marshal milestones: %w", err)
	}

	_, err = r.conn.Exec(ctx, `
		INSERT INTO goals (id, user_id, domain, title, description, target_metric, target_date, milestones, progress, status, created_at, updated_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`,
		g.ID, g.UserID, string(g.Domain), g.Title, g.Description, g.TargetMetric,
		nullableTime(g.TargetDate), milestones, g.Progress, string(g.Status),
		g.CreatedAt, g.UpdatedAt, g.CompletedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return fmt.Errorf("%w: goal %s", shared.ErrAlreadyExists, g.ID)
		}
		return fmt.Errorf("failed to insert goal: %w", err)
	}
	return nil
}

// Get loads a single goal owned by the user.
func (r *GoalRepository) Get(ctx context.Context, userID, goalID string) (*goal.Goal, error) {
	g, err := r.scanGoal(r.conn.QueryRow(ctx, `
		SELECT id, user_id, domain, title, description, target_metric, target_date, milestones, progress, status, created_at, updated_at, completed_at
		FROM goals
		WHERE user_id = $1 AND id = $2
	`, userID, goalID))
	if err != nil {
		if IsNoRows(err) {
			return nil, goal.ErrGoalNotFound
		}
		return nil, fmt.Errorf("failed to load goal: %w", err)
	}
	return g, nil
}

// Update rewrites a goal's mutable state.
func (r *GoalRepository) Update(ctx context.Context, g *goal.Goal) error {
	milestones, err := json.Marshal(g.Milestones)
	if err != nil {
		return fmt.Errorf("failed to marshal milestones: %w", err)
	}

	tag, err := r.conn.Exec(ctx, `
		UPDATE goals
		SET title = $3, description = $4, target_metric = $5, target_date = $6,
		    milestones = $7, progress = $8, status = $9, updated_at = $10, completed_at = $11
		WHERE user_id = $1 AND id = $2
	`,
		g.UserID, g.ID, g.Title, g.Description, g.TargetMetric, nullableTime(g.TargetDate),
		milestones, g.Progress, string(g.Status), g.UpdatedAt, g.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update goal: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return goal.ErrGoalNotFound
	}
	return nil
}

// List returns the user's goals, newest first. A non-nil status filters.
func (r *GoalRepository) List(ctx context.Context, userID string, status *goal.Status) ([]*goal.Goal, error) {
	query := `
		SELECT id, user_id, domain, title, description, target_metric, target_date, milestones, progress, status, created_at, updated_at, completed_at
		FROM goals
		WHERE user_id = $1`
	args := []any{userID}
	if status != nil {
		query += ` AND status = $2`
		args = append(args, string(*status))
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list goals: %w", err)
	}
	defer rows.Close()

	var goals []*goal.Goal
	for rows.Next() {
		g, err := r.scanGoal(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan goal: %w", err)
		}
		goals = append(goals, g)
	}
	return goals, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *GoalRepository) scanGoal(row rowScanner) (*goal.Goal, error) {
	var g goal.Goal
	var domain, status string
	var milestones []byte
	var targetDate *time.Time

	err := row.Scan(
		&g.ID, &g.UserID, &domain, &g.Title, &g.Description, &g.TargetMetric,
		&targetDate, &milestones, &g.Progress, &status,
		&g.CreatedAt, &g.UpdatedAt, &g.CompletedAt,
	)
	if err != nil {
		return nil, err
	}

	g.Domain = catalog.Domain(domain)
	g.Status = goal.Status(status)
	if targetDate != nil {
		g.TargetDate = targetDate.UTC()
	}
	if len(milestones) > 0 {
		if err := json.Unmarshal(milestones, &g.Milestones); err != nil {
			return nil, fmt.Errorf("failed to unmarshal milestones: %w", err)
		}
	}
	return &g, nil
}

// nullableTime maps the zero time to NULL.
func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
