package reader

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/ryabkov82/table-merger/internal/table"
)

// DecodeJSON читает .json в виде массива объектов, NDJSON (объект в строке)
// или одиночного объекта. Возвращает признак того, что файл был NDJSON.
func DecodeJSON(path string) ([]map[string]any, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false, fmt.Errorf("ошибка открытия файла %s: %w", path, err)
	}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, false, fmt.Errorf("файл %s пуст", path)
	}

	if trimmed[0] == '[' {
		var records []map[string]any
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return nil, false, fmt.Errorf("ошибка разбора JSON в %s: %w", path, err)
		}
		return records, false, nil
	}

	// NDJSON: объект в каждой непустой строке
	var records []map[string]any
	lineNo := 0
	for _, line := range bytes.Split(trimmed, []byte("\n")) {
		lineNo++
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		var rec map[string]any
		if err := json.Unmarshal(line, &rec); err != nil {
			// одиночный объект на несколько строк
			var single map[string]any
			if err2 := json.Unmarshal(trimmed, &single); err2 == nil {
				return []map[string]any{single}, false, nil
			}
			return nil, false, fmt.Errorf("ошибка разбора строки %d в %s: %w", lineNo, path, err)
		}
		records = append(records, rec)
	}
	return records, true, nil
}

// ReadJSON загружает .json в таблицу. Колонки — объединение ключей записей
// в порядке первого появления (ключи каждой записи — по алфавиту).
func ReadJSON(path string) (*table.Table, error) {
	records, _, err := DecodeJSON(path)
	if err != nil {
		return nil, err
	}
	tbl := table.New(RecordColumns(records))
	for _, rec := range records {
		row := make([]string, len(tbl.Headers))
		for i, h := range tbl.Headers {
			if v, ok := rec[h]; ok {
				row[i] = FormatValue(v)
			}
		}
		tbl.AppendRow(row)
	}
	return tbl, nil
}

// RecordColumns возвращает объединение ключей записей в порядке первого
// появления, ключи внутри записи отсортированы.
func RecordColumns(records []map[string]any) []string {
	var cols []string
	seen := make(map[string]bool)
	for _, rec := range records {
		keys := make([]string, 0, len(rec))
		for k := range rec {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if !seen[k] {
				seen[k] = true
				cols = append(cols, k)
			}
		}
	}
	return cols
}

// FormatValue приводит значение JSON к строке для таблицы.
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprintf("%v", val)
		}
		return string(b)
	}
}
