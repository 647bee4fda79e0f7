package scan

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pathsift/ignore"
)

func writeTree(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		full := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0644))
	}
}

func TestScanTree_BasicTree(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"Documents/readme.txt": "hello",
		"photo.jpg":            "fake-jpg",
	})

	result, err := ScanTree(dir, nil)
	require.NoError(t, err)

	assert.Len(t, result, 3) // Documents/, Documents/readme.txt, photo.jpg

	docStat, ok := result["Documents"]
	require.True(t, ok)
	assert.True(t, docStat.IsDir)
	assert.Equal(t, "Documents", docStat.Name)
	assert.Nil(t, docStat.Size)

	readmeStat, ok := result["Documents/readme.txt"]
	require.True(t, ok)
	assert.False(t, readmeStat.IsDir)
	assert.Equal(t, "readme.txt", readmeStat.Name)
	require.NotNil(t, readmeStat.Size)
	assert.Equal(t, int64(5), *readmeStat.Size) // "hello"

	photoStat, ok := result["photo.jpg"]
	require.True(t, ok)
	assert.False(t, photoStat.IsDir)
	assert.Equal(t, "image", photoStat.Type)
}

func TestScanTree_SkipsIgnoredFiles(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		ignore.IgnoreFile: "*.log\n!keep.log\n",
		"app.txt":         "ok",
		"debug.log":       "nope",
		"keep.log":        "rescued",
	})

	m, err := ignore.Load(dir)
	require.NoError(t, err)
	require.NotNil(t, m)

	result, err := ScanTree(dir, m)
	require.NoError(t, err)

	_, ok := result["app.txt"]
	assert.True(t, ok)
	_, ok = result["keep.log"]
	assert.True(t, ok)
	_, ok = result["debug.log"]
	assert.False(t, ok)

	// The ignore file itself is never indexed, matching the watch path.
	_, ok = result[ignore.IgnoreFile]
	assert.False(t, ok)
}

func TestScanTree_PrunesIgnoredDirs(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		ignore.IgnoreFile:  "build/\n",
		"src/main.go":      "package main",
		"build/out.bin":    "binary",
		"build/deep/x.txt": "nested",
	})

	m, err := ignore.Load(dir)
	require.NoError(t, err)

	result, err := ScanTree(dir, m)
	require.NoError(t, err)

	_, ok := result["src"]
	assert.True(t, ok)
	_, ok = result["src/main.go"]
	assert.True(t, ok)
	_, ok = result["build"]
	assert.False(t, ok)
	_, ok = result["build/out.bin"]
	assert.False(t, ok)
	_, ok = result["build/deep/x.txt"]
	assert.False(t, ok)
}

func TestScanTree_NilMatcherKeepsEverything(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"a.log": "x",
		"b.tmp": "y",
	})

	result, err := ScanTree(dir, nil)
	require.NoError(t, err)
	assert.Len(t, result, 2)
}

func TestScanTree_EmptyDir(t *testing.T) {
	dir := t.TempDir()

	result, err := ScanTree(dir, nil)
	require.NoError(t, err)
	assert.Empty(t, result)
}

func TestClassifyType(t *testing.T) {
	tests := []struct {
		name     string
		isDir    bool
		expected string
	}{
		{"folder", true, "dir"},
		{"movie.mp4", false, "video"},
		{"movie.mkv", false, "video"},
		{"song.mp3", false, "audio"},
		{"song.flac", false, "audio"},
		{"photo.jpg", false, "image"},
		{"photo.png", false, "image"},
		{"doc.pdf", false, "pdf"},
		{"readme.txt", false, "text"},
		{"code.go", false, "text"},
		{"data.json", false, "text"},
		{"unknown.xyz", false, "blob"},
		{"noext", false, "blob"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ClassifyType(tt.name, tt.isDir)
			assert.Equal(t, tt.expected, result)
		})
	}
}
