package compliance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyPriority(t *testing.T) {
	t.Parallel()

	tests := []struct {
		priority int
		want     PriorityClass
	}{
		{0, PriorityStatutory},
		{10, PriorityStatutory},
		{19, PriorityStatutory},
		{20, PriorityFederalRule},
		{29, PriorityFederalRule},
		{30, PriorityAdministrative},
		{40, PriorityLocal},
		{49, PriorityLocal},
		{50, PriorityStandingOrder},
		{99, PriorityStandingOrder},
		{-5, PriorityStatutory},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ClassifyPriority(tt.priority), "priority %d", tt.priority)
	}
}

func TestResolvePriority(t *testing.T) {
	t.Parallel()

	rules := []Rule{
		makeRule("statute", func(r *Rule) { r.Priority = 10 }),
		makeRule("standing order", func(r *Rule) { r.Priority = 55 }),
		makeRule("federal rule", func(r *Rule) { r.Priority = 20 }),
		makeRule("local rule", func(r *Rule) { r.Priority = 40 }),
	}

	ordered := ResolvePriority(rules)

	require.Len(t, ordered, 4)
	assert.Equal(t, "standing order", ordered[0].Name)
	assert.Equal(t, "local rule", ordered[1].Name)
	assert.Equal(t, "federal rule", ordered[2].Name)
	assert.Equal(t, "statute", ordered[3].Name)

	// Input untouched.
	assert.Equal(t, "statute", rules[0].Name)
}

func TestResolvePriority_StableWithinClass(t *testing.T) {
	t.Parallel()

	// Same class, different raw priorities: query order must survive.
	rules := []Rule{
		makeRule("local a", func(r *Rule) { r.Priority = 42 }),
		makeRule("local b", func(r *Rule) { r.Priority = 40 }),
		makeRule("local c", func(r *Rule) { r.Priority = 45 }),
	}

	ordered := ResolvePriority(rules)

	require.Len(t, ordered, 3)
	assert.Equal(t, "local a", ordered[0].Name)
	assert.Equal(t, "local b", ordered[1].Name)
	assert.Equal(t, "local c", ordered[2].Name)
}
