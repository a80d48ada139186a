package reader

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/ryabkov82/table-merger/internal/sniff"
	"github.com/ryabkov82/table-merger/internal/table"
)

// ReadDelimited читает CSV/TXT с автоматическим определением разделителя.
// Строки с неполным набором полей дополняются до ширины заголовка, лишние
// поля отбрасываются. Если разбор не удался вовсе, выполняется аварийное
// восстановление: наивное построчное деление с именами колонок col_1..col_N.
func ReadDelimited(path string, sampleSize int, hasHeaders bool) (*table.Table, error) {
	delim := sniff.DetectFile(path, sampleSize)

	rc, err := sniff.OpenDecoded(path, sampleSize)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	r := csv.NewReader(rc)
	r.Comma = delim
	r.LazyQuotes = true
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return recoverDelimited(path, sampleSize, delim)
	}
	return fromRecords(records, hasHeaders), nil
}

// recoverDelimited — последнее средство: кавычки игнорируются, каждая строка
// делится по разделителю, все строки считаются данными.
func recoverDelimited(path string, sampleSize int, delim rune) (*table.Table, error) {
	rc, err := sniff.OpenDecoded(path, sampleSize)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения файла %s: %w", path, err)
	}

	var records [][]string
	for _, ln := range strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n") {
		if strings.TrimSpace(ln) == "" {
			continue
		}
		records = append(records, strings.Split(ln, string(delim)))
	}
	return fromRecords(records, false), nil
}
