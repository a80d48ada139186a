package merger

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ryabkov82/table-merger/internal/reader"
)

// jsonMerger объединяет .json файлы: массивы объектов и NDJSON.
// Если все прочитанные файлы были NDJSON, результат тоже NDJSON,
// иначе — массив с отступами.
type jsonMerger struct {
	baseMerger
}

func (m *jsonMerger) MergeFiles(req *Request) (*Result, error) {
	out := ResolveOutput(req)
	if err := removeExistingParts(out, req.Type); err != nil {
		return nil, err
	}

	records := []map[string]any{}
	allNDJSON := true
	for _, path := range req.inputPaths(out) {
		recs, ndjson, err := reader.DecodeJSON(path)
		if err != nil {
			m.skip(filepath.Base(path), err)
			continue
		}
		if !ndjson {
			allNDJSON = false
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

	outputs, err := m.write(out, records, allNDJSON, req)
	if err != nil {
		return nil, err
	}
	return m.result(outputs, int64(len(records))), nil
}

func (m *jsonMerger) write(out string, records []map[string]any, ndjson bool, req *Request) ([]string, error) {
	if req.MaxRows <= 0 {
		if err := writeJSONFile(out, records, ndjson); err != nil {
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
		if err := writeJSONFile(name, records[start:end], ndjson); err != nil {
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

func writeJSONFile(path string, records []map[string]any, ndjson bool) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("ошибка создания файла %s: %v", path, err)
	}

	enc := json.NewEncoder(f)
	if ndjson {
		for _, rec := range records {
			if err := enc.Encode(rec); err != nil {
				f.Close()
				return fmt.Errorf("ошибка записи записи: %v", err)
			}
		}
	} else {
		enc.SetIndent("", "  ")
		if err := enc.Encode(records); err != nil {
			f.Close()
			return fmt.Errorf("ошибка записи файла %s: %v", path, err)
		}
	}
	return f.Close()
}
