package merger

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/ryabkov82/table-merger/internal/reader"
	"github.com/ryabkov82/table-merger/internal/sniff"
	"github.com/ryabkov82/table-merger/internal/table"
)

// csvMerger объединяет CSV/TXT файлы. Разделитель каждого входного файла
// определяется по выборке, колонки объединяются по имени, результат
// пишется через запятую в UTF-8.
type csvMerger struct {
	baseMerger
}

func (m *csvMerger) MergeFiles(req *Request) (*Result, error) {
	out := ResolveOutput(req)
	if err := removeExistingParts(out, req.Type); err != nil {
		return nil, err
	}

	merged := table.New(nil)
	for _, path := range req.inputPaths(out) {
		tbl, err := reader.ReadDelimited(path, req.SampleSize, req.HasHeaders)
		if err != nil {
			m.reportProblems(path)
			m.skip(filepath.Base(path), err)
			continue
		}
		if req.AddSource {
			tbl.AddConstColumn(sourceColumn, filepath.Base(path))
		}
		merged.Concat(tbl)
		m.ok(filepath.Base(path))
	}
	if len(m.merged) == 0 {
		return nil, ErrNoReadableFiles
	}

	outputs, err := m.write(out, merged, req)
	if err != nil {
		return nil, err
	}
	return m.result(outputs, int64(merged.NumRows())), nil
}

func (m *csvMerger) write(out string, tbl *table.Table, req *Request) ([]string, error) {
	if req.MaxRows <= 0 {
		if err := writeCSVFile(out, tbl.Headers, tbl.Rows); err != nil {
			return nil, err
		}
		return []string{out}, nil
	}

	var outputs []string
	part := 1
	start := 0
	for {
		end := start + int(req.MaxRows)
		if end > len(tbl.Rows) {
			end = len(tbl.Rows)
		}
		name := partName(out, req.Type, part)
		if err := writeCSVFile(name, tbl.Headers, tbl.Rows[start:end]); err != nil {
			return nil, err
		}
		outputs = append(outputs, name)
		part++
		start = end
		if start >= len(tbl.Rows) {
			break
		}
	}
	return outputs, nil
}

// reportProblems логирует строки с непарными кавычками нечитаемого файла.
func (m *csvMerger) reportProblems(path string) {
	problems, err := sniff.ProblemLines(path, 2, 20)
	if err != nil || len(problems) == 0 {
		return
	}
	var sb strings.Builder
	sniff.FormatProblems(&sb, problems)
	m.log.Debug("подозрительные строки", zap.String("file", filepath.Base(path)), zap.String("report", sb.String()))
}

func writeCSVFile(path string, headers []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("ошибка создания файла %s: %v", path, err)
	}
	w := csv.NewWriter(f)
	if err := w.Write(headers); err != nil {
		f.Close()
		return fmt.Errorf("ошибка записи заголовков: %v", err)
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			f.Close()
			return fmt.Errorf("ошибка записи строки: %v", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("ошибка записи файла %s: %v", path, err)
	}
	return f.Close()
}
