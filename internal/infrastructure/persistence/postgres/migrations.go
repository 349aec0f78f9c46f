package postgres

import (
	"context"
	"fmt"
)

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 001: GROWTH RECORDS
// ══════════════════════════════════════════════════════════════════════════════

const migration001Up = `
-- Migration: Create growth record tables
-- Version: 001

-- One row per user: streak counters and record timestamps.
CREATE TABLE IF NOT EXISTS growth_records (
    user_id VARCHAR(100) PRIMARY KEY,
    streak_current INTEGER NOT NULL DEFAULT 0,
    streak_longest INTEGER NOT NULL DEFAULT 0,
    streak_last_activity DATE,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT valid_streak CHECK (streak_current >= 0 AND streak_current <= streak_longest)
);

-- Per-domain level and XP state.
CREATE TABLE IF NOT EXISTS domain_states (
    user_id VARCHAR(100) NOT NULL REFERENCES growth_records(user_id) ON DELETE CASCADE,
    domain VARCHAR(20) NOT NULL,
    level INTEGER NOT NULL DEFAULT 1,
    xp INTEGER NOT NULL DEFAULT 0,
    challenges_completed INTEGER NOT NULL DEFAULT 0,

    PRIMARY KEY (user_id, domain),
    CONSTRAINT valid_domain CHECK (domain IN (
        'cognitive', 'creative', 'physical', 'emotional',
        'social', 'professional', 'financial', 'spiritual'
    )),
    CONSTRAINT valid_level CHECK (level >= 1),
    CONSTRAINT valid_xp CHECK (xp >= 0)
);

-- Append-only activity log. entry_index preserves insertion order per user
-- and makes suffix appends idempotent.
CREATE TABLE IF NOT EXISTS activity_log (
    user_id VARCHAR(100) NOT NULL REFERENCES growth_records(user_id) ON DELETE CASCADE,
    entry_index INTEGER NOT NULL,
    occurred_at TIMESTAMP WITH TIME ZONE NOT NULL,
    domain VARCHAR(20) NOT NULL,
    xp_awarded INTEGER NOT NULL,
    description TEXT NOT NULL DEFAULT '',

    PRIMARY KEY (user_id, entry_index),
    CONSTRAINT valid_xp_awarded CHECK (xp_awarded >= 0)
);

CREATE INDEX IF NOT EXISTS idx_activity_log_user_time ON activity_log(user_id, occurred_at DESC);
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 002: GOALS
// ══════════════════════════════════════════════════════════════════════════════

const migration002Up = `
-- Migration: Create goals table
-- Version: 002

CREATE TABLE IF NOT EXISTS goals (
    id UUID PRIMARY KEY,
    user_id VARCHAR(100) NOT NULL,
    domain VARCHAR(20) NOT NULL,
    title VARCHAR(200) NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    target_metric TEXT NOT NULL DEFAULT '',
    target_date DATE,
    milestones JSONB NOT NULL DEFAULT '[]'::jsonb,
    progress INTEGER NOT NULL DEFAULT 0,
    status VARCHAR(20) NOT NULL DEFAULT 'active',
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    completed_at TIMESTAMP WITH TIME ZONE,

    CONSTRAINT valid_status CHECK (status IN ('active', 'completed', 'abandoned')),
    CONSTRAINT valid_progress CHECK (progress >= 0 AND progress <= 100),
    CONSTRAINT completed_stamp CHECK ((status = 'completed') = (completed_at IS NOT NULL))
);

CREATE INDEX IF NOT EXISTS idx_goals_user_created ON goals(user_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_goals_user_status ON goals(user_id, status);
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 003: INSIGHTS
// ══════════════════════════════════════════════════════════════════════════════

const migration003Up = `
-- Migration: Create insights table
-- Version: 003

CREATE TABLE IF NOT EXISTS insights (
    id UUID PRIMARY KEY,
    user_id VARCHAR(100) NOT NULL,
    category VARCHAR(20) NOT NULL,
    text TEXT NOT NULL,
    domains JSONB NOT NULL DEFAULT '[]'::jsonb,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    viewed BOOLEAN NOT NULL DEFAULT FALSE,

    CONSTRAINT valid_category CHECK (category IN ('pattern', 'achievement', 'recommendation'))
);

CREATE INDEX IF NOT EXISTS idx_insights_user_created ON insights(user_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_insights_user_unviewed ON insights(user_id) WHERE NOT viewed;
`

// migrations in execution order.
var migrations = []struct {
	version int
	up      string
}{
	{1, migration001Up},
	{2, migration002Up},
	{3, migration003Up},
}

// Migrate applies all pending migrations. A schema_migrations table tracks
// the applied versions.
func Migrate(ctx context.Context, conn *Connection) error {
	const trackingTable = `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
		)
	`
	if _, err := conn.Exec(ctx, trackingTable); err != nil {
		return fmt.Errorf("postgres: failed to create migrations table: %w", err)
	}

	for _, m := range migrations {
		var exists bool
		err := conn.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE version = $1)`, m.version,
		).Scan(&exists)
		if err != nil {
			return fmt.Errorf("postgres: failed to check migration %d: %w", m.version, err)
		}
		if exists {
			continue
		}

		if _, err := conn.Exec(ctx, m.up); err != nil {
			return fmt.Errorf("postgres: migration %d failed: %w", m.version, err)
		}
		if _, err := conn.Exec(ctx,
			`INSERT INTO schema_migrations (version) VALUES ($1)`, m.version,
		); err != nil {
			return fmt.Errorf("postgres: failed to record migration %d: %w", m.version, err)
		}
	}

	return nil
}
