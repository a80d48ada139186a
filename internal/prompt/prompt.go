// Package prompt реализует интерактивный выбор типа файлов и набора файлов
// с последующей загрузкой одного файла или объединением всех файлов типа.
// Ввод и вывод передаются снаружи, что позволяет тестировать диалог.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/ryabkov82/table-merger/internal/config"
	"github.com/ryabkov82/table-merger/internal/format"
	"github.com/ryabkov82/table-merger/internal/merger"
	"github.com/ryabkov82/table-merger/internal/reader"
	"github.com/ryabkov82/table-merger/internal/scanner"
	"github.com/ryabkov82/table-merger/internal/table"
)

// answer — результат вопроса да/нет.
type answer int

const (
	answerYes answer = iota
	answerNo
	answerQuit
)

// LoadResult — загруженные данные и их источник.
type LoadResult struct {
	Table   *table.Table
	Path    string   // загруженный файл
	Outputs []string // результирующие файлы объединения, если оно выполнялось
}

type Session struct {
	in         *bufio.Reader
	out        io.Writer
	log        *zap.Logger
	cfg        *config.Config
	defaultDir string
}

func New(in io.Reader, out io.Writer, cfg *config.Config, defaultDir string, log *zap.Logger) *Session {
	if log == nil {
		log = zap.NewNop()
	}
	return &Session{
		in:         bufio.NewReader(in),
		out:        out,
		log:        log,
		cfg:        cfg,
		defaultDir: defaultDir,
	}
}

// Run ведет диалог до загрузки данных или отмены.
// При отмене пользователем возвращает (nil, nil).
func (s *Session) Run() (*LoadResult, error) {
	dir := s.cfg.InputDir
	if dir == "" {
		input := s.ask("\nВведите путь к папке с данными (пусто — текущая папка): ")
		if input == "" {
			dir = s.defaultDir
		} else {
			dir = filepath.Clean(input)
		}
	}

	listing, err := scanner.Scan(dir)
	if err != nil {
		if errors.Is(err, scanner.ErrNoSupportedFiles) {
			fmt.Fprintln(s.out, "В папке нет поддерживаемых файлов (.csv, .txt, .xls, .xlsx, .json, .parquet).")
			return nil, nil
		}
		fmt.Fprintf(s.out, "Папка '%s' недоступна: %v\n", dir, err)
		return nil, err
	}

	for {
		t, quit := s.selectType(listing)
		if quit {
			fmt.Fprintln(s.out, "Выбор отменен пользователем.")
			return nil, nil
		}
		group, _ := listing.Group(t)

		fmt.Fprintf(s.out, "\nФайлы '%s':\n", t.Ext())
		for i, f := range group.Files {
			fmt.Fprintf(s.out, "%d. %s\n", i+1, f)
		}

		switch s.askYesNo("\nЭто ожидаемые файлы? (y/n) [q — выход]: ") {
		case answerQuit:
			fmt.Fprintln(s.out, "Выбор отменен пользователем.")
			return nil, nil
		case answerNo:
			continue
		}

		fmt.Fprintf(s.out, "\nВыбраны все файлы '%s' (%d шт.).\n", t.Ext(), len(group.Files))
		comb := s.askYesNo(fmt.Sprintf("\nОбъединить все %d файлов '%s' в один? (y/n): ", len(group.Files), t.Ext()))
		if comb == answerQuit {
			fmt.Fprintln(s.out, "Выбор отменен пользователем.")
			return nil, nil
		}

		if comb == answerYes {
			res, ok := s.combine(dir, t, group)
			if !ok {
				// объединение отменено или не удалось — вернуться к выбору
				continue
			}
			return res, nil
		}

		res, ok := s.loadSingle(dir, group)
		if !ok {
			continue
		}
		return res, nil
	}
}

// selectType показывает меню типов и разбирает выбор (номер или расширение).
func (s *Session) selectType(listing *scanner.Listing) (format.FileType, bool) {
	for {
		fmt.Fprintln(s.out, "\nТипы файлов в папке:")
		types := listing.Types()
		for i, t := range types {
			g, _ := listing.Group(t)
			fmt.Fprintf(s.out, "%d. %s (файлов: %d)\n", i+1, t.Ext(), len(g.Files))
		}

		choice := s.ask("\nВыберите тип по номеру или расширению (например 1 или .csv), q — выход: ")
		choice = strings.ToLower(choice)
		if choice == "q" || choice == "quit" {
			return format.TypeUnknown, true
		}
		if n, err := strconv.Atoi(choice); err == nil {
			if n >= 1 && n <= len(types) {
				return types[n-1], false
			}
			fmt.Fprintln(s.out, "Неверный выбор.")
			continue
		}
		t := format.Normalize(choice)
		if _, ok := listing.Group(t); !ok {
			fmt.Fprintln(s.out, "Неверное расширение.")
			continue
		}
		return t, false
	}
}

// combine выполняет объединение всех файлов группы и загружает результат.
// Второе значение false означает возврат к выбору типа.
func (s *Session) combine(dir string, t format.FileType, group *scanner.Group) (*LoadResult, bool) {
	defaultName := "merged" + t.Ext()
	if s.cfg.OutputPath != "" {
		defaultName = filepath.Base(s.cfg.OutputPath)
	}
	outName := s.ask(fmt.Sprintf("\nИмя результирующего файла (пусто — %s): ", defaultName))
	outPath := ""
	switch {
	case outName != "" && filepath.IsAbs(outName):
		outPath = outName
	case outName != "":
		outPath = filepath.Join(dir, outName)
	default:
		// пустой ответ — путь из флага -out, если он был задан
		outPath = s.cfg.OutputPath
	}

	req := &merger.Request{
		Dir:        dir,
		Files:      group.Files,
		Type:       t,
		OutputPath: outPath,
		AddSource:  s.cfg.AddSourceFile,
		HasHeaders: s.cfg.HasHeaders,
		MaxRows:    s.cfg.MaxRowPerFile,
		SampleSize: s.cfg.SampleSize,
	}
	resolved := merger.ResolveOutput(req)

	if fileExists(resolved) {
		ans := s.askYesNo(fmt.Sprintf("Файл '%s' уже существует. Перезаписать? (y/n): ", filepath.Base(resolved)))
		if ans != answerYes {
			fmt.Fprintln(s.out, "Сохранение отменено.")
			return nil, false
		}
	}

	m, err := merger.ForType(t, s.log)
	if err != nil {
		fmt.Fprintf(s.out, "Ошибка объединения: %v\n", err)
		return nil, false
	}
	res, err := m.MergeFiles(req)
	if err != nil {
		if errors.Is(err, merger.ErrNoReadableFiles) {
			fmt.Fprintln(s.out, "Ни один файл не удалось прочитать. Объединение прервано.")
		} else {
			fmt.Fprintf(s.out, "Ошибка объединения: %v\n", err)
		}
		return nil, false
	}

	if len(res.Skipped) > 0 {
		fmt.Fprintln(s.out, "\nЧасть файлов объединить не удалось:")
		for _, fe := range res.Skipped {
			fmt.Fprintf(s.out, " - %s: %v\n", fe.File, fe.Err)
		}
	}
	fmt.Fprintf(s.out, "\nОбъединено %d / %d файлов -> %s\n",
		len(res.Merged), len(group.Files), strings.Join(res.OutputFiles, ", "))

	first := res.OutputFiles[0]
	tbl, err := reader.Load(first, s.cfg.SampleSize, s.mergedHasHeaders(t))
	if err != nil {
		fmt.Fprintf(s.out, "Ошибка загрузки объединенного файла: %v\n", err)
		return nil, false
	}
	fmt.Fprintf(s.out, "\nЗагружен объединенный файл '%s': строк: %d, колонок: %d.\n",
		filepath.Base(first), tbl.NumRows(), tbl.NumCols())

	return &LoadResult{Table: tbl, Path: first, Outputs: res.OutputFiles}, true
}

// mergedHasHeaders: объединенные CSV/TXT всегда получают строку заголовка,
// у Excel она есть только при -has-headers.
func (s *Session) mergedHasHeaders(t format.FileType) bool {
	if t.IsExcel() {
		return s.cfg.HasHeaders
	}
	return true
}

// loadSingle загружает один выбранный файл группы.
func (s *Session) loadSingle(dir string, group *scanner.Group) (*LoadResult, bool) {
	choice := s.ask("\nВведите номер файла для загрузки: ")
	n, err := strconv.Atoi(choice)
	if err != nil || n < 1 || n > len(group.Files) {
		fmt.Fprintln(s.out, "Неверный номер файла.")
		return nil, false
	}
	path := filepath.Join(dir, group.Files[n-1])

	tbl, err := reader.Load(path, s.cfg.SampleSize, s.cfg.HasHeaders)
	if err != nil {
		fmt.Fprintf(s.out, "Ошибка загрузки файла: %v\n", err)
		return nil, false
	}
	fmt.Fprintf(s.out, "\nЗагружен файл '%s': строк: %d, колонок: %d.\n",
		group.Files[n-1], tbl.NumRows(), tbl.NumCols())
	return &LoadResult{Table: tbl, Path: path}, true
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// ask печатает приглашение и читает строку ответа.
func (s *Session) ask(prompt string) string {
	fmt.Fprint(s.out, prompt)
	line, err := s.in.ReadString('\n')
	if err != nil && line == "" {
		// конец ввода равнозначен выходу
		return "q"
	}
	return strings.TrimSpace(line)
}

// askYesNo повторяет вопрос, пока не получит y/n/q.
func (s *Session) askYesNo(prompt string) answer {
	for {
		switch strings.ToLower(s.ask(prompt)) {
		case "y", "yes":
			return answerYes
		case "n", "no":
			return answerNo
		case "q", "quit":
			return answerQuit
		default:
			fmt.Fprintln(s.out, "Ответьте 'y' или 'n' (или 'q' для выхода).")
		}
	}
}
