package merger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ryabkov82/table-merger/internal/format"
	"github.com/ryabkov82/table-merger/internal/reader"
)

type userRow struct {
	ID   string `parquet:"id,optional"`
	Name string `parquet:"name,optional"`
}

type cityRow struct {
	ID   string `parquet:"id,optional"`
	City string `parquet:"city,optional"`
}

func writeParquet[T any](t *testing.T, dir, name string, rows []T) {
	t.Helper()
	f, err := os.Create(filepath.Join(dir, name))
	require.NoError(t, err)
	w := parquet.NewGenericWriter[T](f)
	_, err = w.Write(rows)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.NoError(t, f.Close())
}

func parquetRequest(dir string, files []string) *Request {
	return &Request{
		Dir:        dir,
		Files:      files,
		Type:       format.TypeParquet,
		HasHeaders: true,
		SampleSize: 8192,
	}
}

func TestParquetMergeUnionColumns(t *testing.T) {
	dir := t.TempDir()
	writeParquet(t, dir, "users.parquet", []userRow{{ID: "1", Name: "Иван"}})
	writeParquet(t, dir, "cities.parquet", []cityRow{{ID: "2", City: "Москва"}})

	m, err := ForType(format.TypeParquet, zap.NewNop())
	require.NoError(t, err)
	res, err := m.MergeFiles(parquetRequest(dir, []string{"cities.parquet", "users.parquet"}))
	require.NoError(t, err)
	require.Equal(t, []string{filepath.Join(dir, "merged.parquet")}, res.OutputFiles)
	assert.EqualValues(t, 2, res.RowCount)

	tbl, err := reader.ReadParquet(res.OutputFiles[0])
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"id", "city", "name"}, tbl.Headers)
	require.Equal(t, 2, tbl.NumRows())
}

func TestParquetMergeSkipsBroken(t *testing.T) {
	dir := t.TempDir()
	writeParquet(t, dir, "good.parquet", []userRow{{ID: "1", Name: "Иван"}})
	writeFile(t, dir, "bad.parquet", "совсем не parquet")

	m, _ := ForType(format.TypeParquet, zap.NewNop())
	res, err := m.MergeFiles(parquetRequest(dir, []string{"bad.parquet", "good.parquet"}))
	require.NoError(t, err)
	assert.Equal(t, []string{"good.parquet"}, res.Merged)
	require.Len(t, res.Skipped, 1)
}

func TestParquetMergeAllBroken(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "bad.parquet", "мусор")
	m, _ := ForType(format.TypeParquet, zap.NewNop())
	_, err := m.MergeFiles(parquetRequest(dir, []string{"bad.parquet"}))
	require.ErrorIs(t, err, ErrNoReadableFiles)
}

func TestParquetMergeAddSource(t *testing.T) {
	dir := t.TempDir()
	writeParquet(t, dir, "a.parquet", []userRow{{ID: "1", Name: "Иван"}})

	req := parquetRequest(dir, []string{"a.parquet"})
	req.AddSource = true
	m, _ := ForType(format.TypeParquet, zap.NewNop())
	res, err := m.MergeFiles(req)
	require.NoError(t, err)

	tbl, err := reader.ReadParquet(res.OutputFiles[0])
	require.NoError(t, err)
	require.Equal(t, 1, tbl.NumRows())
	idx := -1
	for i, h := range tbl.Headers {
		if h == "SourceFile" {
			idx = i
		}
	}
	require.GreaterOrEqual(t, idx, 0)
	assert.Equal(t, "a.parquet", tbl.Rows[0][idx])
}
