package reader

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/ryabkov82/table-merger/internal/table"
)

// ReadExcel читает первый лист книги Excel.
// Файлы .xls (старый бинарный формат) excelize не открывает, такие файлы
// дают ошибку и пропускаются вызывающей стороной.
func ReadExcel(path string, hasHeaders bool) (*table.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия файла %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return table.New(nil), nil
	}

	rows, err := f.Rows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения строк из %s: %w", path, err)
	}
	defer rows.Close()

	var records [][]string
	for rows.Next() {
		cols, err := rows.Columns()
		if err != nil {
			return nil, fmt.Errorf("ошибка чтения строки из %s: %w", path, err)
		}
		records = append(records, cols)
	}
	return fromRecords(records, hasHeaders), nil
}
