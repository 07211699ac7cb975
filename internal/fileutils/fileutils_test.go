package fileutils_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"fleetops/fleet-ledger/internal/fileutils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileExists(t *testing.T) {
	tmpDir := t.TempDir()

	testFile := filepath.Join(tmpDir, "june.csv")
	require.NoError(t, os.WriteFile(testFile, []byte("날짜,금액"), 0600))

	assert.True(t, fileutils.FileExists(testFile))
	assert.False(t, fileutils.FileExists(filepath.Join(tmpDir, "nonexistent.csv")))
	assert.False(t, fileutils.FileExists(tmpDir))
}

func TestDirectoryExists(t *testing.T) {
	tmpDir := t.TempDir()

	assert.True(t, fileutils.DirectoryExists(tmpDir))
	assert.False(t, fileutils.DirectoryExists(filepath.Join(tmpDir, "nonexistent")))

	testFile := filepath.Join(tmpDir, "test.txt")
	require.NoError(t, os.WriteFile(testFile, []byte("test"), 0600))
	assert.False(t, fileutils.DirectoryExists(testFile))
}

func TestEnsureDirectoryExists(t *testing.T) {
	tmpDir := t.TempDir()

	newDir := filepath.Join(tmpDir, "new", "nested", "dir")
	require.NoError(t, fileutils.EnsureDirectoryExists(newDir))
	assert.True(t, fileutils.DirectoryExists(newDir))

	assert.NoError(t, fileutils.EnsureDirectoryExists(tmpDir))
}

func TestReadFile(t *testing.T) {
	tmpDir := t.TempDir()

	testFile := filepath.Join(tmpDir, "receipt.png")
	content := []byte{0x89, 'P', 'N', 'G'}
	require.NoError(t, os.WriteFile(testFile, content, 0600))

	data, err := fileutils.ReadFile(testFile)
	require.NoError(t, err)
	assert.Equal(t, content, data)

	_, err = fileutils.ReadFile(filepath.Join(tmpDir, "missing.png"))
	assert.ErrorContains(t, err, "file does not exist")
}

func TestCreateFile(t *testing.T) {
	tmpDir := t.TempDir()

	path := filepath.Join(tmpDir, "exports", "2025-06.csv")
	f, err := fileutils.CreateFile(path)
	require.NoError(t, err)
	_, err = f.WriteString("id\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	assert.True(t, fileutils.FileExists(path))
}

func TestCollectFiles(t *testing.T) {
	tmpDir := t.TempDir()
	for _, name := range []string{"b.csv", "a.xlsx", "notes.txt", filepath.Join("sub", "c.png")} {
		path := filepath.Join(tmpDir, "in", name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte("x"), 0600))
	}
	explicit := filepath.Join(tmpDir, "explicit.txt")
	require.NoError(t, os.WriteFile(explicit, []byte("x"), 0600))

	accept := func(name string) bool { return !strings.HasSuffix(name, ".txt") }
	files, err := fileutils.CollectFiles([]string{explicit, filepath.Join(tmpDir, "in")}, accept)
	require.NoError(t, err)

	assert.Equal(t, []string{
		explicit,
		filepath.Join(tmpDir, "in", "a.xlsx"),
		filepath.Join(tmpDir, "in", "b.csv"),
		filepath.Join(tmpDir, "in", "sub", "c.png"),
	}, files)

	_, err = fileutils.CollectFiles([]string{filepath.Join(tmpDir, "missing.csv")}, accept)
	assert.Error(t, err)
}
