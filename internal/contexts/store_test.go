package contexts

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_CreateLoadList(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "contexts"))

	names, err := s.List()
	require.NoError(t, err)
	assert.Empty(t, names, "missing directory lists nothing")

	created, err := s.Create("leadership")
	require.NoError(t, err)
	assert.Equal(t, "leadership", created.Name)

	_, err = s.Create("leadership")
	assert.ErrorIs(t, err, ErrExists)

	_, err = s.Create("ai")
	require.NoError(t, err)

	names, err = s.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"ai", "leadership"}, names)

	loaded, err := s.Load("leadership")
	require.NoError(t, err)
	assert.Equal(t, created, loaded)
}

func TestStore_LoadLegacyAndMissingName(t *testing.T) {
	dir := t.TempDir()
	doc := "topic: Remote work\nthemes:\n  - async\nrecent_angles_covered:\n  - \"2025-01-02: async standups\"\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "remote.yaml"), []byte(doc), 0o644))

	c, err := NewStore(dir).Load("remote")
	require.NoError(t, err)
	assert.Equal(t, "remote", c.Name)
	assert.Equal(t, []string{"2025-01-02: async standups"}, c.CoveredAngles)
}

func TestStore_Errors(t *testing.T) {
	s := NewStore(t.TempDir())

	_, err := s.Load("ghost")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, s.Delete("ghost"), ErrNotFound)

	for _, name := range []string{"", "..", "a/b"} {
		_, err := s.Create(name)
		assert.ErrorIs(t, err, ErrInvalidName, name)
	}
}

func TestStore_Cover(t *testing.T) {
	s := NewStore(t.TempDir())
	_, err := s.Create("ai")
	require.NoError(t, err)

	day := time.Date(2025, 10, 1, 12, 0, 0, 0, time.UTC)
	_, err = s.Cover("ai", day, "first angle")
	require.NoError(t, err)
	updated, err := s.Cover("ai", day.AddDate(0, 0, 1), "  second angle ")
	require.NoError(t, err)

	want := []string{"2025-10-01: first angle", "2025-10-02: second angle"}
	assert.Equal(t, want, updated.CoveredAngles)

	reloaded, err := s.Load("ai")
	require.NoError(t, err)
	assert.Equal(t, want, reloaded.CoveredAngles, "angles are appended and persisted")

	_, err = s.Cover("ai", day, " ")
	assert.Error(t, err)
}

func TestStore_Delete(t *testing.T) {
	s := NewStore(t.TempDir())
	_, err := s.Create("gone")
	require.NoError(t, err)

	require.NoError(t, s.Delete("gone"))
	_, err = os.Stat(s.Path("gone"))
	assert.True(t, os.IsNotExist(err))
}
