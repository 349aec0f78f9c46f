package config

import (
	"hash/fnv"
	"os"
	"strconv"
	"strings"
	"sync"
)

// FeatureFlags manages feature toggles with optional gradual rollout.
// Users are bucketed by a hash of their id, so a user's assignment is
// stable across requests and restarts.
type FeatureFlags struct {
	mu sync.RWMutex

	features map[string]*Feature

	// Override rules (for testing/debugging)
	userOverrides map[string]map[string]bool // userID -> feature -> enabled
}

// Feature represents a single feature flag.
type Feature struct {
	Name        string
	Description string
	Enabled     bool

	// Rollout percentage (0-100). 100 means everyone.
	RolloutPercent int
}

// Predefined feature flag names.
const (
	// === Insight Features ===
	FeatureInsightOnMilestone = "insight.on_milestone" // achievement insights from events

	// === Challenge Features ===
	FeatureChallengeScaling = "challenge.level_scaling" // scale target XP with level

	// === Caching Features ===
	FeatureProfileCache = "cache.profile" // Redis profile snapshot cache
)

// defaultFeatures holds the shipped flag set.
var defaultFeatures = []*Feature{
	{Name: FeatureInsightOnMilestone, Description: "Persist achievement insights from events", Enabled: true, RolloutPercent: 100},
	{Name: FeatureChallengeScaling, Description: "Scale challenge XP with domain level", Enabled: true, RolloutPercent: 100},
	{Name: FeatureProfileCache, Description: "Cache assembled profiles in Redis", Enabled: true, RolloutPercent: 100},
}

// LoadFeatureFlags builds the flag set, applying FEATURE_<NAME>=true/false
// environment overrides (dots replaced with underscores, upper-cased).
func LoadFeatureFlags() *FeatureFlags {
	ff := &FeatureFlags{
		features:      make(map[string]*Feature, len(defaultFeatures)),
		userOverrides: make(map[string]map[string]bool),
	}

	for _, f := range defaultFeatures {
		feature := *f
		envKey := "FEATURE_" + strings.ToUpper(strings.ReplaceAll(f.Name, ".", "_"))
		if val := os.Getenv(envKey); val != "" {
			if enabled, err := strconv.ParseBool(val); err == nil {
				feature.Enabled = enabled
			}
		}
		ff.features[f.Name] = &feature
	}
	return ff
}

// IsEnabled reports whether a feature is on globally (full rollout).
func (ff *FeatureFlags) IsEnabled(name string) bool {
	ff.mu.RLock()
	defer ff.mu.RUnlock()

	f, ok := ff.features[name]
	return ok && f.Enabled && f.RolloutPercent >= 100
}

// IsEnabledFor reports whether a feature is on for a specific user,
// honoring user overrides and rollout bucketing.
func (ff *FeatureFlags) IsEnabledFor(name, userID string) bool {
	ff.mu.RLock()
	defer ff.mu.RUnlock()

	if overrides, ok := ff.userOverrides[userID]; ok {
		if enabled, ok := overrides[name]; ok {
			return enabled
		}
	}

	f, ok := ff.features[name]
	if !ok || !f.Enabled {
		return false
	}
	if f.RolloutPercent >= 100 {
		return true
	}
	if f.RolloutPercent <= 0 {
		return false
	}
	return userBucket(userID, name) < f.RolloutPercent
}

// SetEnabled flips a feature globally.
func (ff *FeatureFlags) SetEnabled(name string, enabled bool) {
	ff.mu.Lock()
	defer ff.mu.Unlock()
	if f, ok := ff.features[name]; ok {
		f.Enabled = enabled
	}
}

// SetRollout sets a feature's rollout percentage.
func (ff *FeatureFlags) SetRollout(name string, percent int) {
	ff.mu.Lock()
	defer ff.mu.Unlock()
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	if f, ok := ff.features[name]; ok {
		f.RolloutPercent = percent
	}
}

// OverrideForUser pins a feature on or off for one user.
func (ff *FeatureFlags) OverrideForUser(userID, name string, enabled bool) {
	ff.mu.Lock()
	defer ff.mu.Unlock()
	if ff.userOverrides[userID] == nil {
		ff.userOverrides[userID] = make(map[string]bool)
	}
	ff.userOverrides[userID][name] = enabled
}

// userBucket maps (userID, feature) onto a stable 0-99 bucket.
func userBucket(userID, feature string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(feature))
	_, _ = h.Write([]byte(userID))
	return int(h.Sum32() % 100)
}
