// Package reader загружает файл поддерживаемого типа в таблицу в памяти.
package reader

import (
	"fmt"

	"github.com/ryabkov82/table-merger/internal/format"
	"github.com/ryabkov82/table-merger/internal/table"
)

// Load читает файл любого поддерживаемого типа.
func Load(path string, sampleSize int, hasHeaders bool) (*table.Table, error) {
	t := format.Detect(path)
	switch {
	case t.IsDelimited():
		return ReadDelimited(path, sampleSize, hasHeaders)
	case t.IsExcel():
		return ReadExcel(path, hasHeaders)
	case t.IsJSON():
		return ReadJSON(path)
	case t.IsParquet():
		return ReadParquet(path)
	default:
		return nil, fmt.Errorf("неподдерживаемый тип файла: %s", path)
	}
}

// fromRecords строит таблицу из сырых записей. При hasHeaders первая запись
// становится заголовком, иначе создаются синтетические имена col_1..col_N
// по самой широкой записи.
func fromRecords(records [][]string, hasHeaders bool) *table.Table {
	if len(records) == 0 {
		return table.New(nil)
	}
	if hasHeaders {
		tbl := table.New(records[0])
		for _, rec := range records[1:] {
			tbl.AppendRow(rec)
		}
		return tbl
	}
	maxLen := 0
	for _, rec := range records {
		if len(rec) > maxLen {
			maxLen = len(rec)
		}
	}
	tbl := table.New(syntheticHeaders(maxLen))
	for _, rec := range records {
		tbl.AppendRow(rec)
	}
	return tbl
}

func syntheticHeaders(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("col_%d", i+1)
	}
	return out
}
