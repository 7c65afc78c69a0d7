package inode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oldphoenix/umsftpd/vfs/flags"
)

func TestAddAutoCreatesAncestors(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Add("/this/is/deeply/nested", "", 0, 0))
	require.NoError(t, s.Freeze())

	for _, p := range []string{"/", "/this", "/this/is", "/this/is/deeply", "/this/is/deeply/nested"} {
		n, err := s.Find(p)
		require.NoError(t, err)
		require.NotNilf(t, n, "expected inode at %s", p)
	}

	this, _ := s.Find("/this")
	assert.Contains(t, this.VirtualChildren(), "is")
	leaf, _ := s.Find("/this/is/deeply/nested")
	assert.False(t, leaf.HasTarget())
}

func TestAddAncestorTieBreak(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Add("/a/b", "/host/ab", flags.ReadOnly, 0))
	require.NoError(t, s.Add("/a/b/c", "/host/abc", 0, 0))
	require.NoError(t, s.Freeze())

	ab, _ := s.Find("/a/b")
	require.NotNil(t, ab)
	assert.Equal(t, "/host/ab", ab.TargetPath)
	assert.Equal(t, flags.ReadOnly, ab.FlagsSet)

	abc, _ := s.Find("/a/b/c")
	require.NotNil(t, abc)
	assert.Equal(t, "/host/abc", abc.TargetPath)
}

func TestAddDuplicateExactPath(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Add("/pics", "/home/joe/pics", 0, 0))
	err := s.Add("/pics", "/somewhere/else", 0, 0)
	assert.ErrorIs(t, err, ErrAlreadyExists)
}

func TestAddRejectsRelativePaths(t *testing.T) {
	s := NewStore()
	assert.ErrorIs(t, s.Add("relative", "", 0, 0), ErrParameter)
	assert.ErrorIs(t, s.Add("/ok", "relative-target", 0, 0), ErrParameter)
}

func TestFreezeIdempotentError(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Freeze())
	assert.ErrorIs(t, s.Freeze(), ErrFinalization)
}

func TestFindBeforeFreeze(t *testing.T) {
	s := NewStore()
	_, err := s.Find("/")
	assert.ErrorIs(t, err, ErrNotFrozen)
}

func TestAddAfterFreeze(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Freeze())
	assert.ErrorIs(t, s.Add("/x", "", 0, 0), ErrFinalization)
}

func TestFrozenSortedLexicographically(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Add("/zeug", "", 0, 0))
	require.NoError(t, s.Add("/incoming", "/tmp/write", 0, 0))
	require.NoError(t, s.Add("/pics", "/home/joe/pics", 0, 0))
	require.NoError(t, s.Freeze())

	all := s.All()
	for i := 1; i < len(all); i++ {
		assert.LessOrEqual(t, all[i-1].VirtualPath, all[i].VirtualPath)
	}
}

func TestParentPrefixInvariant(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Add("/this/is/deeply/nested", "", 0, 0))
	require.NoError(t, s.Freeze())

	for _, n := range s.All() {
		p := s.Parent(n)
		if p == nil {
			assert.Equal(t, "/", n.VirtualPath)
			continue
		}
		if p.VirtualPath == "/" {
			continue
		}
		assert.Contains(t, n.VirtualPath, p.VirtualPath+"/")
	}
}
