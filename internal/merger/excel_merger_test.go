package merger

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/ryabkov82/table-merger/internal/format"
)

func writeWorkbook(t *testing.T, dir, name string, rows ...[]interface{}) {
	t.Helper()
	f := excelize.NewFile()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	require.NoError(t, f.SaveAs(filepath.Join(dir, name)))
	require.NoError(t, f.Close())
}

func readWorkbook(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	sheets := f.GetSheetList()
	require.NotEmpty(t, sheets)
	rows, err := f.GetRows(sheets[0])
	require.NoError(t, err)
	return rows
}

func excelRequest(dir string, files []string) *Request {
	return &Request{
		Dir:        dir,
		Files:      files,
		Type:       format.TypeXLSX,
		HasHeaders: true,
		SampleSize: 8192,
	}
}

func TestExcelMerge(t *testing.T) {
	dir := t.TempDir()
	// первый файл крупнее и станет шаблоном
	writeWorkbook(t, dir, "big.xlsx",
		[]interface{}{"id", "name"},
		[]interface{}{1, "Иван"},
		[]interface{}{2, "Петр"},
	)
	writeWorkbook(t, dir, "small.xlsx",
		[]interface{}{"id", "name"},
		[]interface{}{3, "Анна"},
	)

	m, err := ForType(format.TypeXLSX, zap.NewNop())
	require.NoError(t, err)
	res, err := m.MergeFiles(excelRequest(dir, []string{"big.xlsx", "small.xlsx"}))
	require.NoError(t, err)
	require.Equal(t, []string{filepath.Join(dir, "merged.xlsx")}, res.OutputFiles)
	assert.EqualValues(t, 3, res.RowCount)
	assert.Equal(t, []string{"big.xlsx", "small.xlsx"}, res.Merged)

	rows := readWorkbook(t, res.OutputFiles[0])
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"id", "name"}, rows[0])
	assert.Equal(t, []string{"1", "Иван"}, rows[1])
	assert.Equal(t, []string{"3", "Анна"}, rows[3])
}

func TestExcelMergeSkipsLegacyXLS(t *testing.T) {
	dir := t.TempDir()
	writeWorkbook(t, dir, "good.xlsx",
		[]interface{}{"id"},
		[]interface{}{1},
	)
	writeFile(t, dir, "old.xls", "старый бинарный формат")

	req := excelRequest(dir, []string{"good.xlsx", "old.xls"})
	req.Type = format.TypeXLSX
	m, _ := ForType(format.TypeXLSX, zap.NewNop())
	res, err := m.MergeFiles(req)
	require.NoError(t, err)
	assert.Equal(t, []string{"good.xlsx"}, res.Merged)
	require.Len(t, res.Skipped, 1)
	assert.Equal(t, "old.xls", res.Skipped[0].File)
}

func TestExcelMergeNoReadableFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "old.xls", "не открывается")
	m, _ := ForType(format.TypeXLS, zap.NewNop())
	_, err := m.MergeFiles(excelRequest(dir, []string{"old.xls"}))
	require.ErrorIs(t, err, ErrNoReadableFiles)
}

func TestExcelMergeAddSource(t *testing.T) {
	dir := t.TempDir()
	writeWorkbook(t, dir, "a.xlsx",
		[]interface{}{"x"},
		[]interface{}{"1"},
	)

	req := excelRequest(dir, []string{"a.xlsx"})
	req.AddSource = true
	m, _ := ForType(format.TypeXLSX, zap.NewNop())
	res, err := m.MergeFiles(req)
	require.NoError(t, err)

	rows := readWorkbook(t, res.OutputFiles[0])
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"x", "SourceFile"}, rows[0])
	assert.Equal(t, []string{"1", "a.xlsx"}, rows[1])
}

func TestExcelMergeMaxRowSplitsParts(t *testing.T) {
	dir := t.TempDir()
	writeWorkbook(t, dir, "a.xlsx",
		[]interface{}{"x"},
		[]interface{}{"1"},
		[]interface{}{"2"},
		[]interface{}{"3"},
	)

	req := excelRequest(dir, []string{"a.xlsx"})
	req.MaxRows = 2
	m, _ := ForType(format.TypeXLSX, zap.NewNop())
	res, err := m.MergeFiles(req)
	require.NoError(t, err)
	require.Equal(t, []string{
		filepath.Join(dir, "merged_part1.xlsx"),
		filepath.Join(dir, "merged_part2.xlsx"),
	}, res.OutputFiles)

	part1 := readWorkbook(t, res.OutputFiles[0])
	require.Len(t, part1, 3) // заголовок + 2 строки
	part2 := readWorkbook(t, res.OutputFiles[1])
	require.Len(t, part2, 2)
}
