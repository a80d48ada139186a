package sniff

import (
	"fmt"
	"io"
	"strings"
)

// ProblemLine — строка с нечетным количеством кавычек и ее окружение.
type ProblemLine struct {
	Number  int      // номер проблемной строки, с единицы
	Start   int      // номер первой строки контекста
	Context []string // строки контекста, включая проблемную
}

// ProblemLines ищет строки с нечетным количеством двойных кавычек —
// вероятный признак испорченного CSV. Возвращает не более maxReport находок,
// каждую с context строками окружения.
func ProblemLines(path string, context, maxReport int) ([]ProblemLine, error) {
	rc, err := OpenDecoded(path, 8192)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения файла %s: %w", path, err)
	}
	lines := strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n")

	var out []ProblemLine
	for i, ln := range lines {
		if strings.Count(ln, `"`)%2 == 0 {
			continue
		}
		start := i - context
		if start < 0 {
			start = 0
		}
		end := i + context + 1
		if end > len(lines) {
			end = len(lines)
		}
		ctx := make([]string, end-start)
		copy(ctx, lines[start:end])
		out = append(out, ProblemLine{Number: i + 1, Start: start + 1, Context: ctx})
		if len(out) >= maxReport {
			break
		}
	}
	return out, nil
}

// FormatProblems печатает отчет о проблемных строках в w.
func FormatProblems(w io.Writer, problems []ProblemLine) {
	if len(problems) == 0 {
		fmt.Fprintln(w, "Строк с непарными кавычками не найдено.")
		return
	}
	fmt.Fprintf(w, "Найдено подозрительных строк: %d\n", len(problems))
	for _, p := range problems {
		fmt.Fprintf(w, "\n--- Контекст строки %d ---\n", p.Number)
		for i, ln := range p.Context {
			prefix := "  "
			if p.Start+i == p.Number {
				prefix = ">>"
			}
			fmt.Fprintf(w, "%s %4d: %s\n", prefix, p.Start+i, strings.TrimRight(ln, "\r\n"))
		}
	}
}
