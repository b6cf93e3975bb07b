package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEveryPageRenders(t *testing.T) {
	for _, p := range Pages {
		for _, style := range []string{"dark", "light", "notty"} {
			out, err := Render(p, 60, style)
			require.NoError(t, err, "%s/%s", p, style)
			assert.NotEmpty(t, out)
		}
	}
}

func TestRenderIncludesHeadline(t *testing.T) {
	out, err := Render(Work, 80, "notty")
	require.NoError(t, err)
	assert.Contains(t, out, "Our Work")
	assert.Contains(t, out, "Discovery")
}

func TestUnknownPage(t *testing.T) {
	_, err := Render(Page("pricing"), 80, "notty")
	assert.Error(t, err)
}

func TestActions(t *testing.T) {
	a, ok := Solutions.Action("d")
	require.True(t, ok)
	assert.Equal(t, "Demo Requested!", a.Title)

	_, ok = Home.Action("d")
	assert.False(t, ok)
	assert.Len(t, Work.Actions(), 1)
	assert.Equal(t, "Our Work", Work.Title())
}
