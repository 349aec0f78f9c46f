package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jayai/growth-hub/internal/domain/catalog"
	"github.com/jayai/growth-hub/internal/domain/growth"
)

// GrowthRepository implements growth.Repository for PostgreSQL.
type GrowthRepository struct {
	conn *Connection
}

// NewGrowthRepository creates a new GrowthRepository.
func NewGrowthRepository(conn *Connection) *GrowthRepository {
	return &GrowthRepository{conn: conn}
}

// Get loads the full growth record for a user: streak row, domain states,
// and the activity log in insertion order.
func (r *GrowthRepository) Get(ctx context.Context, userID string) (*growth.UserGrowthRecord, error) {
	record := &growth.UserGrowthRecord{
		UserID:  userID,
		Domains: make(map[catalog.Domain]growth.DomainState),
	}

	var lastActivity *time.Time
	err := r.conn.QueryRow(ctx, `
		SELECT streak_current, streak_longest, streak_last_activity, created_at, updated_at
		FROM growth_records
		WHERE user_id = $1
	`, userID).Scan(
		&record.Streak.Current,
		&record.Streak.Longest,
		&lastActivity,
		&record.CreatedAt,
		&record.UpdatedAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, growth.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to load growth record: %w", err)
	}
	if lastActivity != nil {
		record.Streak.LastActivityDate = lastActivity.UTC()
	}

	if err := r.loadDomainStates(ctx, record); err != nil {
		return nil, err
	}
	if err := r.loadActivityLog(ctx, record); err != nil {
		return nil, err
	}

	return record, nil
}

func (r *GrowthRepository) loadDomainStates(ctx context.Context, record *growth.UserGrowthRecord) error {
	rows, err := r.conn.Query(ctx, `
		SELECT domain, level, xp, challenges_completed
		FROM domain_states
		WHERE user_id = $1
	`, record.UserID)
	if err != nil {
		return fmt.Errorf("failed to load domain states: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var domain string
		var state growth.DomainState
		if err := rows.Scan(&domain, &state.Level, &state.XP, &state.ChallengesCompleted); err != nil {
			return fmt.Errorf("failed to scan domain state: %w", err)
		}
		record.Domains[catalog.Domain(domain)] = state
	}
	return rows.Err()
}

func (r *GrowthRepository) loadActivityLog(ctx context.Context, record *growth.UserGrowthRecord) error {
	rows, err := r.conn.Query(ctx, `
		SELECT occurred_at, domain, xp_awarded, description
		FROM activity_log
		WHERE user_id = $1
		ORDER BY entry_index
	`, record.UserID)
	if err != nil {
		return fmt.Errorf("failed to load activity log: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var entry growth.ActivityEntry
		var domain string
		if err := rows.Scan(&entry.Timestamp, &domain, &entry.XPAwarded, &entry.Description); err != nil {
			return fmt.Errorf("failed to scan activity entry: %w", err)
		}
		entry.Timestamp = entry.Timestamp.UTC()
		entry.Domain = catalog.Domain(domain)
		record.ActivityLog = append(record.ActivityLog, entry)
	}
	return rows.Err()
}

// Save flushes the full record in one transaction: streak row and domain
// states are upserted, and only the not-yet-stored suffix of the activity
// log is appended. The log itself is never rewritten.
func (r *GrowthRepository) Save(ctx context.Context, record *growth.UserGrowthRecord) error {
	return r.conn.WithTx(ctx, func(tx pgx.Tx) error {
		var lastActivity *time.Time
		if !record.Streak.LastActivityDate.IsZero() {
			d := record.Streak.LastActivityDate
			lastActivity = &d
		}

		_, err := tx.Exec(ctx, `
			INSERT INTO growth_records (user_id, streak_current, streak_longest, streak_last_activity, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (user_id) DO UPDATE SET
				streak_current = EXCLUDED.streak_current,
				streak_longest = EXCLUDED.streak_longest,
				streak_last_activity = EXCLUDED.streak_last_activity,
				updated_at = EXCLUDED.updated_at
		`,
			record.UserID,
			record.Streak.Current,
			record.Streak.Longest,
			lastActivity,
			record.CreatedAt,
			record.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert growth record: %w", err)
		}

		for domain, state := range record.Domains {
			_, err := tx.Exec(ctx, `
				INSERT INTO domain_states (user_id, domain, level, xp, challenges_completed)
				VALUES ($1, $2, $3, $4, $5)
				ON CONFLICT (user_id, domain) DO UPDATE SET
					level = EXCLUDED.level,
					xp = EXCLUDED.xp,
					challenges_completed = EXCLUDED.challenges_completed
			`, record.UserID, string(domain), state.Level, state.XP, state.ChallengesCompleted)
			if err != nil {
				return fmt.Errorf("failed to upsert domain state %q: %w", domain, err)
			}
		}

		var stored int
		if err := tx.QueryRow(ctx,
			`SELECT COUNT(*) FROM activity_log WHERE user_id = $1`, record.UserID,
		).Scan(&stored); err != nil {
			return fmt.Errorf("failed to count activity log: %w", err)
		}

		for i := stored; i < len(record.ActivityLog); i++ {
			entry := record.ActivityLog[i]
			_, err := tx.Exec(ctx, `
				INSERT INTO activity_log (user_id, entry_index, occurred_at, domain, xp_awarded, description)
				VALUES ($1, $2, $3, $4, $5, $6)
				ON CONFLICT (user_id, entry_index) DO NOTHING
			`, record.UserID, i, entry.Timestamp, string(entry.Domain), entry.XPAwarded, entry.Description)
			if err != nil {
				return fmt.Errorf("failed to append activity entry %d: %w", i, err)
			}
		}

		return nil
	})
}

// Exists reports whether a growth record is stored for the user.
func (r *GrowthRepository) Exists(ctx context.Context, userID string) (bool, error) {
	var exists bool
	err := r.conn.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM growth_records WHERE user_id = $1)`, userID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check growth record existence: %w", err)
	}
	return exists, nil
}
