package skills

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSkill(t *testing.T, root, name, frontBody string) {
	t.Helper()
	dir := filepath.Join(root, name)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, Filename), []byte(frontBody), 0o644))
}

func TestStore_LoadDiscoversSkillsWithFrontmatterStripped(t *testing.T) {
	root := t.TempDir()
	writeSkill(t, root, "greeter", "---\nname: greeter\ndescription: says hello\n---\nBody text here.")

	s := New(root, nil)
	require.NoError(t, s.Load(context.Background()))

	entry, ok := s.Get("greeter")
	require.True(t, ok)
	assert.Equal(t, "says hello", entry.Description)
	assert.Equal(t, "Body text here.", entry.Body)
}

func TestStore_LoadSkipsInvalidSkillsWithoutFailing(t *testing.T) {
	root := t.TempDir()
	writeSkill(t, root, "good", "---\nname: good\ndescription: fine\n---\nok")
	writeSkill(t, root, "bad", "---\nname: bad\n---\nmissing description")

	s := New(root, nil)
	require.NoError(t, s.Load(context.Background()))

	all := s.All()
	require.Len(t, all, 1)
	assert.Equal(t, "good", all[0].Name)
}

func TestStore_LoadMissingDirIsNotAnError(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "does-not-exist"), nil)
	require.NoError(t, s.Load(context.Background()))
	assert.Empty(t, s.All())
}

func TestStore_AllIsSortedByName(t *testing.T) {
	root := t.TempDir()
	writeSkill(t, root, "zeta", "---\nname: zeta\ndescription: z\n---\n")
	writeSkill(t, root, "alpha", "---\nname: alpha\ndescription: a\n---\n")

	s := New(root, nil)
	require.NoError(t, s.Load(context.Background()))

	all := s.All()
	require.Len(t, all, 2)
	assert.Equal(t, "alpha", all[0].Name)
	assert.Equal(t, "zeta", all[1].Name)
}

func TestStore_WatchReloadsOnFileChange(t *testing.T) {
	root := t.TempDir()
	writeSkill(t, root, "greeter", "---\nname: greeter\ndescription: v1\n---\n")

	s := New(root, nil)
	require.NoError(t, s.Load(context.Background()))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, s.Watch(ctx))
	defer s.Close()

	writeSkill(t, root, "added", "---\nname: added\ndescription: new\n---\n")

	require.Eventually(t, func() bool {
		_, ok := s.Get("added")
		return ok
	}, 2*time.Second, 20*time.Millisecond)
}
