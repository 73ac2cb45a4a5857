package chunks

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkBelowThreshold(t *testing.T) {
	s, err := NewStore(10, "")
	require.NoError(t, err)

	out, err := s.Chunk("short")
	require.NoError(t, err)
	assert.Equal(t, "short", out)
	assert.Equal(t, 0, s.Len())
}

func TestSendResolvesNestedTokens(t *testing.T) {
	for _, backing := range []string{"memory", "disk"} {
		t.Run(backing, func(t *testing.T) {
			dir := ""
			if backing == "disk" {
				dir = t.TempDir()
			}
			s, err := NewStore(8, dir)
			require.NoError(t, err)
			defer s.Cleanup()

			inner, err := s.Chunk("<b>inner text</b>")
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(inner, "@@@"))

			outer, err := s.Chunk("<div>" + inner + "</div>")
			require.NoError(t, err)

			var b strings.Builder
			require.NoError(t, s.Send(&b, "start "+outer+" end"))
			assert.Equal(t, "start <div><b>inner text</b></div> end", b.String())
			assert.Equal(t, 2, s.Len())
		})
	}
}

func TestSendPassesForeignTokens(t *testing.T) {
	s, err := NewStore(8, "")
	require.NoError(t, err)

	foreign := "@@@00000000-0000-0000-0000-000000000000@@@"
	var b strings.Builder
	require.NoError(t, s.Send(&b, "a"+foreign+"b"))
	assert.Equal(t, "a"+foreign+"b", b.String())
}

func TestCleanupRemovesDirectory(t *testing.T) {
	s, err := NewStore(1, t.TempDir())
	require.NoError(t, err)

	_, err = s.Chunk("some content")
	require.NoError(t, err)
	dir := s.dir

	require.NoError(t, s.Cleanup())
	_, err = os.Stat(dir)
	assert.True(t, os.IsNotExist(err))
	assert.Equal(t, 0, s.Len())
}
