package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jayai/growth-hub/internal/domain/shared"
)

func TestParse(t *testing.T) {
	for _, d := range All() {
		parsed, err := Parse(string(d))
		assert.NoError(t, err)
		assert.Equal(t, d, parsed)
	}

	_, err := Parse("astral")
	assert.ErrorIs(t, err, shared.ErrUnknownDomain)
	assert.ErrorIs(t, err, shared.ErrValidation)

	_, err = Parse("Cognitive") // names are lowercase
	assert.Error(t, err)
}

func TestAll_HasEightDomains(t *testing.T) {
	domains := All()
	assert.Len(t, domains, 8)

	seen := make(map[Domain]bool)
	for _, d := range domains {
		assert.True(t, d.IsValid())
		assert.False(t, seen[d], "domain %q repeated", d)
		seen[d] = true
	}
}

func TestXPCurve_Threshold(t *testing.T) {
	tests := []struct {
		name  string
		curve XPCurve
		level int
		want  int
	}{
		{"default level 1", DefaultCurve(), 1, 100},
		{"default level 5", DefaultCurve(), 5, 100},
		{"ramped level 1", XPCurve{Base: 100, Growth: 50}, 1, 100},
		{"ramped level 2", XPCurve{Base: 100, Growth: 50}, 2, 150},
		{"ramped level 4", XPCurve{Base: 100, Growth: 50}, 4, 250},
		{"level below 1 clamps", DefaultCurve(), 0, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.curve.Threshold(tt.level))
		})
	}
}

func TestXPCurve_Monotone(t *testing.T) {
	curve := XPCurve{Base: 100, Growth: 25}
	prev := 0
	for level := 1; level <= 50; level++ {
		th := curve.Threshold(level)
		assert.GreaterOrEqual(t, th, prev)
		prev = th
	}
}

func TestXPCurve_Validate(t *testing.T) {
	assert.NoError(t, DefaultCurve().Validate())
	assert.ErrorIs(t, XPCurve{Base: 0}.Validate(), shared.ErrValidation)
	assert.ErrorIs(t, XPCurve{Base: 100, Growth: -1}.Validate(), shared.ErrValidation)
}

func TestNew_CurveOverrides(t *testing.T) {
	c, err := New(map[Domain]XPCurve{
		DomainPhysical: {Base: 200, Growth: 10},
	})
	require.NoError(t, err)

	th, err := c.Threshold(DomainPhysical, 2)
	require.NoError(t, err)
	assert.Equal(t, 210, th)

	// Domains without an override keep the default schedule.
	th, err = c.Threshold(DomainCognitive, 2)
	require.NoError(t, err)
	assert.Equal(t, 100, th)
}

func TestNew_RejectsBadInput(t *testing.T) {
	_, err := New(map[Domain]XPCurve{Domain("astral"): DefaultCurve()})
	assert.ErrorIs(t, err, shared.ErrUnknownDomain)

	_, err = New(map[Domain]XPCurve{DomainSocial: {Base: -5}})
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestDefault_DescribesEveryDomain(t *testing.T) {
	c := Default()
	for _, d := range All() {
		require.True(t, c.Contains(d))
		desc, err := c.Descriptor(d)
		require.NoError(t, err)
		assert.NotEmpty(t, desc.Title)
		assert.NotEmpty(t, desc.Theme)
	}
	assert.False(t, c.Contains(Domain("astral")))
}
