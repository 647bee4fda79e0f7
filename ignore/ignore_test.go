package ignore

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileIsNotAnError(t *testing.T) {
	dir := t.TempDir()

	m, err := Load(dir)
	require.NoError(t, err)
	assert.Nil(t, m)
}

func TestLoad_ReadsIgnoreFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, IgnoreFile), []byte("secret.txt\nbuild/\n"), 0644))

	m, err := Load(dir)
	require.NoError(t, err)
	require.NotNil(t, m)

	assert.Equal(t, dir, m.Root())
	assert.True(t, m.IsFileIgnored(filepath.Join(dir, "secret.txt")))
	assert.False(t, m.IsFileIgnored(filepath.Join(dir, "visible.txt")))
	assert.True(t, m.IsDirIgnored(filepath.Join(dir, "build")))
}

func TestLoad_MalformedPatternFails(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, IgnoreFile), []byte("fine.txt\nbroken[\n"), 0644))

	m, err := Load(dir)
	require.Error(t, err)
	assert.Nil(t, m)
}

func TestLoadFS_MemoryFilesystem(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/repo/"+IgnoreFile, []byte("*.log\n"), 0644))

	m, err := LoadFS(fsys, "/repo")
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.True(t, m.IsFileIgnored("/repo/debug.log"))

	m, err = LoadFS(fsys, "/empty")
	require.NoError(t, err)
	assert.Nil(t, m)
}

func TestRelativePath(t *testing.T) {
	m, err := Compile("/project", nil)
	require.NoError(t, err)

	rel, ok := m.RelativePath("/project/nested/file.txt")
	require.True(t, ok)
	assert.Equal(t, filepath.Join("nested", "file.txt"), rel)

	// Relative inputs resolve against the root.
	rel, ok = m.RelativePath("nested/file.txt")
	require.True(t, ok)
	assert.Equal(t, filepath.Join("nested", "file.txt"), rel)

	// Round trip: joining the root with the relative form reconstructs
	// the canonical path.
	assert.Equal(t, "/project/nested/file.txt", filepath.Join(m.Root(), rel))

	_, ok = m.RelativePath("/outside/file.txt")
	assert.False(t, ok)
	_, ok = m.RelativePath("/project-sibling/file.txt")
	assert.False(t, ok)
	_, ok = m.RelativePath("../escape.txt")
	assert.False(t, ok)
}

func TestRelativePath_RootItself(t *testing.T) {
	m, err := Compile("/project", []byte("build/\n"))
	require.NoError(t, err)

	rel, ok := m.RelativePath("/project")
	require.True(t, ok)
	assert.Equal(t, ".", rel)

	// Querying the root is deterministic and does not crash.
	assert.False(t, m.IsDirIgnored("/project"))
	assert.False(t, m.IsFileIgnored("/project"))
}

func TestQueries_Idempotent(t *testing.T) {
	m, err := Compile("/project", []byte("*.log\n!keep.log\n"))
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		assert.True(t, m.IsFileIgnored("/project/a.log"))
		assert.False(t, m.IsFileIgnored("/project/keep.log"))
	}
}

func TestMatcher_ConcurrentQueries(t *testing.T) {
	m, err := Compile("/project", []byte("*.log\n!keep.log\nbuild/\n"))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				assert.True(t, m.IsFileIgnored("/project/x/debug.log"))
				assert.False(t, m.IsFileIgnored("/project/keep.log"))
				assert.True(t, m.IsFileIgnored("/project/build/obj.o"))
			}
		}()
	}
	wg.Wait()
}
