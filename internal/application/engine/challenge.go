package engine

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jayai/growth-hub/internal/domain/catalog"
	"github.com/jayai/growth-hub/internal/domain/growth"
	"github.com/jayai/growth-hub/internal/domain/shared"
	"github.com/jayai/growth-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// CHALLENGES
// Challenges are suggestions, not stored entities: completing one records an
// activity in the challenged domain and bumps that domain's completion
// counter. Generation is deterministic for a given growth state, and biased
// toward the user's weakest domains.
// ══════════════════════════════════════════════════════════════════════════════

// ChallengeKind distinguishes domain work from streak keeping.
type ChallengeKind string

const (
	// ChallengeKindDomain targets XP in one growth domain.
	ChallengeKindDomain ChallengeKind = "domain"

	// ChallengeKindStreak targets keeping the daily streak alive.
	ChallengeKindStreak ChallengeKind = "streak"
)

// Challenge is one generated suggestion.
type Challenge struct {
	// Kind is the challenge kind.
	Kind ChallengeKind `json:"kind"`

	// Domain is set for domain challenges.
	Domain catalog.Domain `json:"domain,omitempty"`

	// Description is the human-readable challenge text.
	Description string `json:"description"`

	// TargetXP is the XP on offer, scaled with the domain's level.
	TargetXP int `json:"target_xp"`
}

// GenerateChallenge builds one challenge for a specific domain, scaled to
// the user's current level there.
func (e *Engine) GenerateChallenge(ctx context.Context, userID string, domain catalog.Domain) (*Challenge, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: user id", shared.ErrEmptyValue)
	}
	if !e.catalog.Contains(domain) {
		return nil, fmt.Errorf("%w: %q", shared.ErrUnknownDomain, domain)
	}

	unlock := e.locks.lock(userID)
	record, _, err := e.loadOrInit(ctx, userID)
	if err != nil {
		unlock()
		return nil, err
	}
	state := record.Domains[domain]
	unlock()

	challenge, err := e.domainChallenge(domain, state.Level)
	if err != nil {
		return nil, err
	}
	return challenge, nil
}

// GenerateChallenges builds up to count challenges biased toward the user's
// lowest-level domains. When a streak is running and a milestone is still
// ahead, the last slot becomes a keep-the-streak challenge.
func (e *Engine) GenerateChallenges(ctx context.Context, userID string, count int) ([]Challenge, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: user id", shared.ErrEmptyValue)
	}
	if count < 1 {
		return nil, fmt.Errorf("%w: challenge count %d", shared.ErrValueOutOfRange, count)
	}
	if max := len(e.catalog.Domains()); count > max {
		count = max
	}

	unlock := e.locks.lock(userID)
	record, _, err := e.loadOrInit(ctx, userID)
	if err != nil {
		unlock()
		return nil, err
	}
	snapshot := record.Clone()
	unlock()

	streak := e.streakChallenge(snapshot)

	domainSlots := count
	if streak != nil && count > 1 {
		domainSlots--
	}

	challenges := make([]Challenge, 0, count)
	for _, d := range weakestDomains(snapshot, domainSlots) {
		c, err := e.domainChallenge(d, snapshot.Domains[d].Level)
		if err != nil {
			return nil, err
		}
		challenges = append(challenges, *c)
	}
	if streak != nil && count > 1 {
		challenges = append(challenges, *streak)
	}
	return challenges, nil
}

// CompleteChallenge awards a finished challenge: its target XP lands as an
// activity in the domain and the domain's completion counter goes up.
func (e *Engine) CompleteChallenge(ctx context.Context, userID string, domain catalog.Domain, targetXP int) (*growth.ActivityResult, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: user id", shared.ErrEmptyValue)
	}
	if targetXP < 1 {
		return nil, fmt.Errorf("%w: challenge target xp %d", shared.ErrValueOutOfRange, targetXP)
	}
	desc, err := e.catalog.Descriptor(domain)
	if err != nil {
		return nil, err
	}
	description := fmt.Sprintf("Completed a %s challenge", desc.Title)

	unlock := e.locks.lock(userID)
	result, err := e.completeChallengeLocked(ctx, userID, domain, targetXP, description)
	unlock()
	if err != nil {
		return nil, err
	}

	e.afterMutation(ctx, userID)
	e.publishActivityEvents(ctx, userID, domain, targetXP, description, result)

	e.log.Info("challenge completed",
		logger.UserID(userID),
		logger.Domain(string(domain)),
		logger.XPDelta(targetXP),
		logger.Int("challenges_completed", result.ChallengesCompleted),
	)
	return result, nil
}

func (e *Engine) completeChallengeLocked(ctx context.Context, userID string, domain catalog.Domain, targetXP int, description string) (*growth.ActivityResult, error) {
	record, _, err := e.loadOrInit(ctx, userID)
	if err != nil {
		return nil, err
	}

	work := record.Clone()
	result, err := work.CompleteChallenge(e.catalog, domain, targetXP, description, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	if err := e.records.Save(ctx, work); err != nil {
		return nil, fmt.Errorf("failed to save growth record: %w", err)
	}
	return result, nil
}

func (e *Engine) domainChallenge(domain catalog.Domain, level int) (*Challenge, error) {
	desc, err := e.catalog.Descriptor(domain)
	if err != nil {
		return nil, err
	}
	targetXP := e.cfg.ChallengeBaseXP + level*e.cfg.ChallengeXPPerLevel
	return &Challenge{
		Kind:   ChallengeKindDomain,
		Domain: domain,
		Description: fmt.Sprintf("Today's %s challenge: spend focused time %s. Complete it to earn %d XP.",
			desc.Title, desc.Theme, targetXP),
		TargetXP: targetXP,
	}, nil
}

func (e *Engine) streakChallenge(record *growth.UserGrowthRecord) *Challenge {
	current := record.Streak.Current
	if current == 0 {
		return nil
	}
	next, ok := growth.NextMilestone(current)
	if !ok {
		return nil
	}
	return &Challenge{
		Kind: ChallengeKindStreak,
		Description: fmt.Sprintf("Keep your %d-day streak alive: any activity today counts. %d more days to %s status.",
			current, next.Days-current, next.Tier),
		TargetXP: e.cfg.ChallengeBaseXP,
	}
}

// weakestDomains returns up to n domains ordered by ascending level, ties
// broken by canonical domain order.
func weakestDomains(record *growth.UserGrowthRecord, n int) []catalog.Domain {
	domains := catalog.All()
	sort.SliceStable(domains, func(i, j int) bool {
		return record.Domains[domains[i]].Level < record.Domains[domains[j]].Level
	})
	if n > len(domains) {
		n = len(domains)
	}
	return domains[:n]
}
