// Package catalog defines the fixed set of growth domains and their
// leveling curves. The eight domains are defined at process start and
// never change; the XP curve per domain is a configuration point.
package catalog

import (
	"fmt"

	"github.com/jayai/growth-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// DOMAINS
// ══════════════════════════════════════════════════════════════════════════════

// Domain identifies one of the eight life areas tracked per user.
type Domain string

const (
	// DomainCognitive - mental abilities, learning, problem-solving.
	DomainCognitive Domain = "cognitive"
	// DomainCreative - artistic expression, innovation, imagination.
	DomainCreative Domain = "creative"
	// DomainPhysical - health, fitness, physical well-being.
	DomainPhysical Domain = "physical"
	// DomainEmotional - emotional intelligence, regulation, awareness.
	DomainEmotional Domain = "emotional"
	// DomainSocial - relationships, communication, social skills.
	DomainSocial Domain = "social"
	// DomainProfessional - career growth, skills, achievements.
	DomainProfessional Domain = "professional"
	// DomainFinancial - money management, investments, financial health.
	DomainFinancial Domain = "financial"
	// DomainSpiritual - purpose, meaning, values alignment.
	DomainSpiritual Domain = "spiritual"
)

// All returns the eight domains in their canonical order.
func All() []Domain {
	return []Domain{
		DomainCognitive,
		DomainCreative,
		DomainPhysical,
		DomainEmotional,
		DomainSocial,
		DomainProfessional,
		DomainFinancial,
		DomainSpiritual,
	}
}

// IsValid reports whether d is one of the eight known domains.
func (d Domain) IsValid() bool {
	switch d {
	case DomainCognitive, DomainCreative, DomainPhysical, DomainEmotional,
		DomainSocial, DomainProfessional, DomainFinancial, DomainSpiritual:
		return true
	default:
		return false
	}
}

// String returns the domain name.
func (d Domain) String() string { return string(d) }

// Parse converts a string into a Domain.
// Returns shared.ErrUnknownDomain for anything outside the fixed set.
func Parse(s string) (Domain, error) {
	d := Domain(s)
	if !d.IsValid() {
		return "", fmt.Errorf("%w: %q", shared.ErrUnknownDomain, s)
	}
	return d, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// XP CURVES
// ══════════════════════════════════════════════════════════════════════════════

// XPCurve defines the XP required to clear each level.
// Threshold(level) = Base + Growth*(level-1): a flat Base at every level
// when Growth is zero, and a linear ramp otherwise. Thresholds are
// monotonically non-decreasing in level.
type XPCurve struct {
	// Base is the XP required to clear level 1.
	Base int

	// Growth is the extra XP added to the threshold per level gained.
	Growth int
}

// DefaultCurve is the flat schedule: every level requires 100 XP.
func DefaultCurve() XPCurve {
	return XPCurve{Base: 100, Growth: 0}
}

// Threshold returns the XP required to clear the given level.
// Levels below 1 are treated as level 1.
func (c XPCurve) Threshold(level int) int {
	if level < 1 {
		level = 1
	}
	return c.Base + c.Growth*(level-1)
}

// Validate checks that the curve produces positive, non-decreasing thresholds.
func (c XPCurve) Validate() error {
	if c.Base < 1 {
		return fmt.Errorf("%w: curve base must be at least 1", shared.ErrValueOutOfRange)
	}
	if c.Growth < 0 {
		return fmt.Errorf("%w: curve growth cannot be negative", shared.ErrNegativeValue)
	}
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// CATALOG
// ══════════════════════════════════════════════════════════════════════════════

// Descriptor is the immutable definition of one growth domain.
type Descriptor struct {
	// Domain is the domain name.
	Domain Domain

	// Title is the human-readable name used in challenge and insight text.
	Title string

	// Theme is a short phrase describing what activity in this domain
	// looks like, used to phrase generated challenges.
	Theme string

	// Curve is the leveling schedule for this domain.
	Curve XPCurve
}

// descriptorDefaults holds title and theme per domain; curves come from
// configuration.
var descriptorDefaults = map[Domain]struct {
	title string
	theme string
}{
	DomainCognitive:    {"Cognitive", "learning something new or solving a hard problem"},
	DomainCreative:     {"Creative", "making, writing, or designing something original"},
	DomainPhysical:     {"Physical", "moving your body and caring for your health"},
	DomainEmotional:    {"Emotional", "reflecting on and regulating how you feel"},
	DomainSocial:       {"Social", "connecting with and supporting other people"},
	DomainProfessional: {"Professional", "building career skills and shipping work"},
	DomainFinancial:    {"Financial", "budgeting, saving, or growing your money"},
	DomainSpiritual:    {"Spiritual", "aligning your actions with purpose and values"},
}

// Catalog is the fixed set of domain descriptors. Built once at startup,
// read-only afterwards.
type Catalog struct {
	descriptors map[Domain]Descriptor
}

// Default returns a catalog with the default curve for every domain.
func Default() *Catalog {
	c, _ := New(nil) // nil overrides cannot fail validation
	return c
}

// New builds a catalog applying per-domain curve overrides on top of the
// default curve. Unknown domains in overrides and invalid curves are
// rejected.
func New(curves map[Domain]XPCurve) (*Catalog, error) {
	for d := range curves {
		if !d.IsValid() {
			return nil, fmt.Errorf("%w: %q", shared.ErrUnknownDomain, d)
		}
	}

	descriptors := make(map[Domain]Descriptor, len(descriptorDefaults))
	for _, d := range All() {
		curve := DefaultCurve()
		if override, ok := curves[d]; ok {
			if err := override.Validate(); err != nil {
				return nil, fmt.Errorf("domain %q: %w", d, err)
			}
			curve = override
		}
		defaults := descriptorDefaults[d]
		descriptors[d] = Descriptor{
			Domain: d,
			Title:  defaults.title,
			Theme:  defaults.theme,
			Curve:  curve,
		}
	}

	return &Catalog{descriptors: descriptors}, nil
}

// Contains reports whether the catalog tracks the given domain.
func (c *Catalog) Contains(d Domain) bool {
	_, ok := c.descriptors[d]
	return ok
}

// Descriptor returns the descriptor for a domain.
func (c *Catalog) Descriptor(d Domain) (Descriptor, error) {
	desc, ok := c.descriptors[d]
	if !ok {
		return Descriptor{}, fmt.Errorf("%w: %q", shared.ErrUnknownDomain, d)
	}
	return desc, nil
}

// Curve returns the XP curve for a domain.
func (c *Catalog) Curve(d Domain) (XPCurve, error) {
	desc, err := c.Descriptor(d)
	if err != nil {
		return XPCurve{}, err
	}
	return desc.Curve, nil
}

// Threshold returns the XP needed to clear the given level in a domain.
func (c *Catalog) Threshold(d Domain, level int) (int, error) {
	curve, err := c.Curve(d)
	if err != nil {
		return 0, err
	}
	return curve.Threshold(level), nil
}

// Domains returns the tracked domains in canonical order.
func (c *Catalog) Domains() []Domain {
	return All()
}
