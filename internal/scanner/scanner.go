// Package scanner отвечает за поиск поддерживаемых файлов в папке
// и их группировку по расширению.
package scanner

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ryabkov82/table-merger/internal/format"
)

var (
	ErrNotDirectory     = errors.New("путь не является папкой")
	ErrNoSupportedFiles = errors.New("в папке нет поддерживаемых файлов")
)

// Group — файлы одного типа, имена без пути, отсортированы.
type Group struct {
	Type  format.FileType
	Files []string
}

// Listing — результат сканирования папки.
type Listing struct {
	Dir    string
	groups map[format.FileType]*Group
}

// Scan собирает поддерживаемые файлы папки, пропуская lock-файлы Office
// (префикс "~$") и скрытые файлы.
func Scan(dir string) (*Listing, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("папка '%s' не существует: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("'%s': %w", dir, ErrNotDirectory)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения папки '%s': %w", dir, err)
	}

	l := &Listing{Dir: dir, groups: make(map[format.FileType]*Group)}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasPrefix(name, "~$") || strings.HasPrefix(name, ".") {
			continue
		}
		t := format.Detect(name)
		if t == format.TypeUnknown {
			continue
		}
		g, ok := l.groups[t]
		if !ok {
			g = &Group{Type: t}
			l.groups[t] = g
		}
		g.Files = append(g.Files, name)
	}

	if len(l.groups) == 0 {
		return nil, ErrNoSupportedFiles
	}
	for _, g := range l.groups {
		sort.Strings(g.Files)
	}
	return l, nil
}

// Types возвращает типы файлов папки в стабильном порядке меню.
func (l *Listing) Types() []format.FileType {
	var out []format.FileType
	for _, t := range format.Allowed() {
		if _, ok := l.groups[t]; ok {
			out = append(out, t)
		}
	}
	return out
}

// Group возвращает группу файлов заданного типа.
func (l *Listing) Group(t format.FileType) (*Group, bool) {
	g, ok := l.groups[t]
	return g, ok
}

// Paths возвращает полные пути файлов группы.
func (g *Group) Paths(dir string) []string {
	out := make([]string, len(g.Files))
	for i, f := range g.Files {
		out[i] = filepath.Join(dir, f)
	}
	return out
}
