// Package merger объединяет файлы одного типа в один результирующий файл.
package merger

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/ryabkov82/table-merger/internal/format"
)

// ErrNoReadableFiles возвращается, когда ни один входной файл не удалось
// прочитать: объединение прерывается, результат не создается.
var ErrNoReadableFiles = errors.New("ни один файл не удалось прочитать")

// Request описывает одно объединение.
type Request struct {
	Dir        string          // папка с исходными файлами
	Files      []string        // имена файлов (без пути)
	Type       format.FileType // тип объединяемых файлов
	OutputPath string          // пусто — merged<ext> в папке Dir
	AddSource  bool            // добавлять колонку SourceFile
	HasHeaders bool            // исходные файлы содержат заголовки
	MaxRows    int64           // максимум строк данных в одном файле, 0 — без разбиения
	SampleSize int             // размер выборки для определения разделителя
}

// FileError — ошибка чтения одного входного файла.
type FileError struct {
	File string
	Err  error
}

func (e FileError) Error() string { return fmt.Sprintf("%s: %v", e.File, e.Err) }

// Result — итог объединения.
type Result struct {
	OutputFiles []string
	RowCount    int64       // строк данных записано (без заголовков)
	Merged      []string    // успешно прочитанные файлы
	Skipped     []FileError // пропущенные файлы с причинами
}

type FileMerger interface {
	MergeFiles(req *Request) (*Result, error)
}

// ForType возвращает реализацию для типа файлов.
func ForType(t format.FileType, log *zap.Logger) (FileMerger, error) {
	if log == nil {
		log = zap.NewNop()
	}
	switch {
	case t.IsDelimited():
		return &csvMerger{baseMerger: newBase(log)}, nil
	case t.IsExcel():
		return &excelMerger{baseMerger: newBase(log)}, nil
	case t.IsJSON():
		return &jsonMerger{baseMerger: newBase(log)}, nil
	case t.IsParquet():
		return &parquetMerger{baseMerger: newBase(log)}, nil
	default:
		return nil, fmt.Errorf("объединение файлов '%s' не поддерживается", string(t))
	}
}

// baseMerger несет общее состояние конкретных реализаций.
type baseMerger struct {
	log     *zap.Logger
	merged  []string
	skipped []FileError
}

func newBase(log *zap.Logger) baseMerger {
	return baseMerger{log: log}
}

// skip регистрирует пропуск входного файла: ошибка логируется,
// объединение продолжается с остальными файлами.
func (bm *baseMerger) skip(file string, err error) {
	bm.log.Warn("файл пропущен", zap.String("file", file), zap.Error(err))
	bm.skipped = append(bm.skipped, FileError{File: file, Err: err})
}

func (bm *baseMerger) ok(file string) {
	bm.merged = append(bm.merged, file)
}

func (bm *baseMerger) result(outputs []string, rows int64) *Result {
	return &Result{
		OutputFiles: outputs,
		RowCount:    rows,
		Merged:      bm.merged,
		Skipped:     bm.skipped,
	}
}

// ResolveOutput вычисляет путь результирующего файла: заданный пользователем
// или merged<ext> в исходной папке; расширение дописывается при отсутствии.
func ResolveOutput(req *Request) string {
	ext := req.Type.Ext()
	out := req.OutputPath
	if out == "" {
		out = filepath.Join(req.Dir, "merged"+ext)
	} else if !strings.HasSuffix(strings.ToLower(out), ext) {
		out += ext
	}
	return filepath.Clean(out)
}

// inputPaths возвращает полные пути входных файлов, исключая сам
// результирующий файл: итог предыдущего запуска не должен попасть во входы.
func (req *Request) inputPaths(out string) []string {
	outAbs, _ := filepath.Abs(out)
	paths := make([]string, 0, len(req.Files))
	for _, f := range req.Files {
		p := filepath.Join(req.Dir, f)
		if abs, err := filepath.Abs(p); err == nil && abs == outAbs {
			continue
		}
		paths = append(paths, p)
	}
	return paths
}

// partName строит имя части результирующего файла при разбиении по -max-row.
func partName(out string, t format.FileType, part int) string {
	ext := t.Ext()
	return fmt.Sprintf("%s_part%d%s", strings.TrimSuffix(out, ext), part, ext)
}

// removeExistingParts удаляет части от прошлых запусков.
func removeExistingParts(out string, t format.FileType) error {
	ext := t.Ext()
	pattern := fmt.Sprintf("%s_part*%s", strings.TrimSuffix(out, ext), ext)
	files, err := filepath.Glob(pattern)
	if err != nil {
		return fmt.Errorf("ошибка поиска файлов по шаблону: %v", err)
	}
	for _, file := range files {
		if err := os.Remove(file); err != nil {
			return fmt.Errorf("ошибка удаления файла %s: %v", file, err)
		}
	}
	return nil
}

// sourceColumn — имя служебной колонки с именем исходного файла.
const sourceColumn = "SourceFile"
