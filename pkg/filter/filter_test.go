package filter

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIncludesEverything(t *testing.T) {
	c := New()
	require.True(t, c.DoesIncludeType("Movie"))
	require.True(t, c.DoesIncludeField("Movie", "title"))
}

func TestExcludeTypeImpliesExcludeField(t *testing.T) {
	c := New().ExcludeType("Movie").IncludeField("Movie", "title")
	require.False(t, c.DoesIncludeType("Movie"))
	require.False(t, c.DoesIncludeField("Movie", "title"),
		"a field override cannot resurrect an excluded type")
}

func TestFieldLevelExclusion(t *testing.T) {
	c := New().ExcludeField("Movie", "synopsis")
	require.True(t, c.DoesIncludeType("Movie"))
	require.True(t, c.DoesIncludeField("Movie", "title"))
	require.False(t, c.DoesIncludeField("Movie", "synopsis"))
}

func TestIncludeTypeOverridesNothingByDefault(t *testing.T) {
	c := New().IncludeType("Movie")
	require.True(t, c.DoesIncludeType("Movie"))
	require.True(t, c.DoesIncludeType("Actor"))
}
