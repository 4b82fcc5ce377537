package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tempStore(t *testing.T) *Store {
	t.Helper()
	return New(filepath.Join(t.TempDir(), "pinning.json"))
}

func TestRoundTrip(t *testing.T) {
	s := tempStore(t)

	in := PinningMap{
		"web01": {0, 1, 16},
		"db01":  {2, 3},
	}
	require.NoError(t, s.Save(in))
	assert.Equal(t, in, s.Load())
}

func TestRoundTripEmpty(t *testing.T) {
	s := tempStore(t)
	require.NoError(t, s.Save(PinningMap{}))
	assert.Equal(t, PinningMap{}, s.Load())
}

func TestLoadMissingFile(t *testing.T) {
	s := tempStore(t)
	assert.Equal(t, PinningMap{}, s.Load())
}

func TestLoadCorruptFile(t *testing.T) {
	s := tempStore(t)
	require.NoError(t, os.WriteFile(s.Path(), []byte("{not json"), 0o644))
	assert.Equal(t, PinningMap{}, s.Load())
}

func TestCorruptWriteKeepsPreviousState(t *testing.T) {
	s := tempStore(t)
	require.NoError(t, s.Save(PinningMap{"vm1": {0, 1}}))

	// A stray temp file from an interrupted write must not disturb what
	// the next load sees.
	require.NoError(t, os.WriteFile(s.Path()+".tmp-stray", []byte("partial"), 0o644))
	assert.Equal(t, PinningMap{"vm1": {0, 1}}, s.Load())
}

func TestSaveCreatesParentDir(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "nested", "dir", "pinning.json"))
	require.NoError(t, s.Save(PinningMap{"vm1": {4}}))
	assert.Equal(t, PinningMap{"vm1": {4}}, s.Load())
}

func TestSaveFailure(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	// Parent "directory" is a regular file, so the write cannot happen.
	s := New(filepath.Join(blocker, "pinning.json"))
	err := s.Save(PinningMap{"vm1": {0}})
	assert.ErrorIs(t, err, ErrWriteFailed)
}

func TestUsedCPUs(t *testing.T) {
	pinned := PinningMap{
		"vmA": {0, 1},
		"vmB": {4, 5},
	}
	assert.Equal(t, map[int]bool{0: true, 1: true, 4: true, 5: true}, pinned.UsedCPUs())
	assert.Empty(t, PinningMap{}.UsedCPUs())
}

func TestLock(t *testing.T) {
	s := tempStore(t)

	release, err := s.Lock()
	require.NoError(t, err)
	release()

	// Reacquirable after release.
	release, err = s.Lock()
	require.NoError(t, err)
	release()
}
