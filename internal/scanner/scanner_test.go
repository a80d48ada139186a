package scanner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ryabkov82/table-merger/internal/format"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestScanGroupsAndFilters(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.csv", "a,b\n")
	writeFile(t, dir, "a.csv", "a,b\n")
	writeFile(t, dir, "notes.txt", "x\n")
	writeFile(t, dir, "book.xlsx", "")
	writeFile(t, dir, "~$book.xlsx", "")
	writeFile(t, dir, ".hidden.csv", "")
	writeFile(t, dir, "readme.md", "")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.csv"), 0o755))

	l, err := Scan(dir)
	require.NoError(t, err)

	g, ok := l.Group(format.TypeCSV)
	require.True(t, ok)
	// отсортированы, служебные и скрытые файлы пропущены
	assert.Equal(t, []string{"a.csv", "b.csv"}, g.Files)

	g, ok = l.Group(format.TypeXLSX)
	require.True(t, ok)
	assert.Equal(t, []string{"book.xlsx"}, g.Files)

	_, ok = l.Group(format.TypeJSON)
	assert.False(t, ok)

	assert.Equal(t, []format.FileType{format.TypeCSV, format.TypeTXT, format.TypeXLSX}, l.Types())

	paths := g.Paths(dir)
	assert.Equal(t, []string{filepath.Join(dir, "book.xlsx")}, paths)
}

func TestScanMissingDir(t *testing.T) {
	_, err := Scan(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
}

func TestScanNotADirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "file.csv", "a\n")
	_, err := Scan(filepath.Join(dir, "file.csv"))
	require.ErrorIs(t, err, ErrNotDirectory)
}

func TestScanNoSupportedFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "readme.md", "")
	_, err := Scan(dir)
	require.ErrorIs(t, err, ErrNoSupportedFiles)
}
