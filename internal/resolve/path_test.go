package resolve_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solanumlabs/codelens/internal/apperr"
	"github.com/solanumlabs/codelens/internal/resolve"
)

func sampleFiles() []resolve.FileRef {
	return []resolve.FileRef{
		{Absolute: "/proj/src/a.ts", Relative: "src/a.ts"},
		{Absolute: "/proj/src/nested/a.ts", Relative: "src/nested/a.ts"},
		{Absolute: "/proj/src/b.ts", Relative: "src/b.ts"},
	}
}

func TestResolvePath_ExactAbsolute(t *testing.T) {
	got, err := resolve.ResolvePath(sampleFiles(), "/proj/src/b.ts")
	require.NoError(t, err)
	assert.Equal(t, "/proj/src/b.ts", got)
}

func TestResolvePath_ExactRelative(t *testing.T) {
	got, err := resolve.ResolvePath(sampleFiles(), "src/b.ts")
	require.NoError(t, err)
	assert.Equal(t, "src/b.ts", got)
}

func TestResolvePath_UnambiguousSuffix(t *testing.T) {
	got, err := resolve.ResolvePath(sampleFiles(), "nested/a.ts")
	require.NoError(t, err)
	assert.Equal(t, "src/nested/a.ts", got)
}

func TestResolvePath_AmbiguousBasename(t *testing.T) {
	_, err := resolve.ResolvePath(sampleFiles(), "a.ts")
	require.Error(t, err)
	var ambErr *apperr.ResolverError
	require.ErrorAs(t, err, &ambErr)
	assert.Len(t, ambErr.Candidates, 2)
}

func TestResolvePath_UniqueBasename(t *testing.T) {
	got, err := resolve.ResolvePath(sampleFiles(), "b.ts")
	require.NoError(t, err)
	assert.Equal(t, "src/b.ts", got)
}

func TestResolvePath_NotFound(t *testing.T) {
	_, err := resolve.ResolvePath(sampleFiles(), "nope.ts")
	require.Error(t, err)
	var nf *apperr.NotFound
	require.ErrorAs(t, err, &nf)
}
