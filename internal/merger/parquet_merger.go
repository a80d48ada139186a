package merger

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/parquet-go/parquet-go"

	"github.com/ryabkov82/table-merger/internal/reader"
)

// parquetMerger объединяет parquet-файлы. Схема результата — объединение
// колонок всех входных файлов как необязательных строк: значения приводятся
// к строкам, поскольку схемы входов могут не совпадать.
type parquetMerger struct {
	baseMerger
}

func (m *parquetMerger) MergeFiles(req *Request) (*Result, error) {
	out := ResolveOutput(req)
	if err := removeExistingParts(out, req.Type); err != nil {
		return nil, err
	}

	var (
		columns []string
		seen    = map[string]bool{}
		records []map[string]string
	)
	for _, path := range req.inputPaths(out) {
		cols, recs, err := reader.ReadParquetRecords(path)
		if err != nil {
			m.skip(filepath.Base(path), err)
			continue
		}
		for _, c := range cols {
			if !seen[c] {
				seen[c] = true
				columns = append(columns, c)
			}
		}
		if req.AddSource {
			for _, rec := range recs {
				rec[sourceColumn] = filepath.Base(path)
			}
		}
		records = append(records, recs...)
		m.ok(filepath.Base(path))
	}
	if len(m.merged) == 0 {
		return nil, ErrNoReadableFiles
	}
	if req.AddSource && !seen[sourceColumn] {
		columns = append(columns, sourceColumn)
	}

	outputs, err := m.write(out, columns, records, req)
	if err != nil {
		return nil, err
	}
	return m.result(outputs, int64(len(records))), nil
}

func (m *parquetMerger) write(out string, columns []string, records []map[string]string, req *Request) ([]string, error) {
	if req.MaxRows <= 0 {
		if err := writeParquetFile(out, columns, records); err != nil {
			return nil, err
		}
		return []string{out}, nil
	}

	var outputs []string
	part := 1
	start := 0
	for {
		end := start + int(req.MaxRows)
		if end > len(records) {
			end = len(records)
		}
		name := partName(out, req.Type, part)
		if err := writeParquetFile(name, columns, records[start:end]); err != nil {
			return nil, err
		}
		outputs = append(outputs, name)
		part++
		start = end
		if start >= len(records) {
			break
		}
	}
	return outputs, nil
}

func writeParquetFile(path string, columns []string, records []map[string]string) error {
	group := parquet.Group{}
	for _, c := range columns {
		group[c] = parquet.Optional(parquet.String())
	}
	schema := parquet.NewSchema("merged", group)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("ошибка создания файла %s: %v", path, err)
	}

	w := parquet.NewGenericWriter[map[string]any](f, schema)
	for _, rec := range records {
		row := make(map[string]any, len(rec))
		for k, v := range rec {
			row[k] = v
		}
		if _, err := w.Write([]map[string]any{row}); err != nil {
			w.Close()
			f.Close()
			return fmt.Errorf("ошибка записи строки: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		f.Close()
		return fmt.Errorf("ошибка записи файла %s: %v", path, err)
	}
	return f.Close()
}
