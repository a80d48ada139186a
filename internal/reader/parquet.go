package reader

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/parquet-go/parquet-go"

	"github.com/ryabkov82/table-merger/internal/table"
)

// ReadParquetRecords читает parquet-файл: имена листовых колонок
// и записи со строковым представлением значений. Null-значения в записи
// отсутствуют.
func ReadParquetRecords(path string) ([]string, []map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("ошибка открытия файла %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, nil, fmt.Errorf("ошибка чтения атрибутов %s: %w", path, err)
	}

	pf, err := parquet.OpenFile(f, info.Size())
	if err != nil {
		return nil, nil, fmt.Errorf("ошибка открытия parquet %s: %w", path, err)
	}

	// листовые колонки; вложенные поля получают имя через точку
	paths := pf.Schema().Columns()
	columns := make([]string, len(paths))
	for i, p := range paths {
		columns[i] = strings.Join(p, ".")
	}

	var records []map[string]string
	for _, rg := range pf.RowGroups() {
		rows := rg.Rows()
		buf := make([]parquet.Row, 128)
		for {
			n, err := rows.ReadRows(buf)
			for _, row := range buf[:n] {
				rec := make(map[string]string, len(columns))
				for _, v := range row {
					if v.IsNull() {
						continue
					}
					ci := int(v.Column())
					if ci < 0 || ci >= len(columns) {
						continue
					}
					rec[columns[ci]] = v.String()
				}
				records = append(records, rec)
			}
			if err != nil {
				if errors.Is(err, io.EOF) {
					break
				}
				rows.Close()
				return nil, nil, fmt.Errorf("ошибка чтения строк parquet %s: %w", path, err)
			}
		}
		rows.Close()
	}
	return columns, records, nil
}

// ReadParquet загружает parquet-файл в таблицу.
func ReadParquet(path string) (*table.Table, error) {
	columns, records, err := ReadParquetRecords(path)
	if err != nil {
		return nil, err
	}
	tbl := table.New(columns)
	for _, rec := range records {
		row := make([]string, len(columns))
		for i, c := range columns {
			row[i] = rec[c]
		}
		tbl.AppendRow(row)
	}
	return tbl, nil
}
