// Package table реализует простую таблицу в памяти: заголовки и строки.
// Семантика объединения повторяет конкатенацию датафреймов: объединение
// колонок по имени, порядок — по первому появлению, пропуски заполняются
// пустыми значениями.
package table

import (
	"fmt"
	"io"
	"text/tabwriter"
)

type Table struct {
	Headers []string
	Rows    [][]string

	index map[string]int // позиция колонки по имени
}

func New(headers []string) *Table {
	t := &Table{index: make(map[string]int, len(headers))}
	for _, h := range headers {
		t.addColumn(h)
	}
	return t
}

func (t *Table) NumRows() int { return len(t.Rows) }

func (t *Table) NumCols() int { return len(t.Headers) }

// AppendRow добавляет строку, выравнивая ее по ширине таблицы:
// короткие строки дополняются пустыми значениями, длинные обрезаются.
func (t *Table) AppendRow(row []string) {
	norm := make([]string, len(t.Headers))
	copy(norm, row)
	t.Rows = append(t.Rows, norm)
}

// addColumn регистрирует колонку и расширяет уже добавленные строки.
func (t *Table) addColumn(name string) {
	if _, ok := t.index[name]; ok {
		return
	}
	t.index[name] = len(t.Headers)
	t.Headers = append(t.Headers, name)
	for i := range t.Rows {
		t.Rows[i] = append(t.Rows[i], "")
	}
}

// Concat дописывает строки другой таблицы, сопоставляя колонки по имени.
// Новые колонки добавляются в конец, отсутствующие значения — пустые.
func (t *Table) Concat(other *Table) {
	if other == nil {
		return
	}
	for _, h := range other.Headers {
		t.addColumn(h)
	}
	for _, row := range other.Rows {
		norm := make([]string, len(t.Headers))
		for i, h := range other.Headers {
			if i < len(row) {
				norm[t.index[h]] = row[i]
			}
		}
		t.Rows = append(t.Rows, norm)
	}
}

// AddConstColumn добавляет колонку с одним значением во всех строках.
// Используется для колонки с именем исходного файла.
func (t *Table) AddConstColumn(name, value string) {
	t.addColumn(name)
	idx := t.index[name]
	for i := range t.Rows {
		t.Rows[i][idx] = value
	}
}

// Head возвращает первые n строк.
func (t *Table) Head(n int) [][]string {
	if n > len(t.Rows) {
		n = len(t.Rows)
	}
	return t.Rows[:n]
}

// Preview печатает заголовки и первые n строк выровненными колонками.
func (t *Table) Preview(w io.Writer, n int) {
	tw := tabwriter.NewWriter(w, 2, 4, 2, ' ', 0)
	printRow(tw, t.Headers)
	for _, row := range t.Head(n) {
		printRow(tw, row)
	}
	tw.Flush()
}

func printRow(w io.Writer, cells []string) {
	for i, c := range cells {
		if i > 0 {
			fmt.Fprint(w, "\t")
		}
		fmt.Fprint(w, c)
	}
	fmt.Fprintln(w)
}
