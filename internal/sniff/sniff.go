// Package sniff определяет разделитель полей текстового файла
// по выборке байтов и помогает диагностировать проблемные строки.
package sniff

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// DefaultDelimiter используется, когда разделитель определить не удалось.
const DefaultDelimiter = ','

// candidates — разделители в порядке предпочтения при равном счете.
var candidates = []rune{',', ';', '\t', '|', ':'}

var ErrNoDelimiter = errors.New("не удалось определить разделитель")

// Sample читает до n байт файла и возвращает текст.
// Невалидный UTF-8 декодируется как latin1 (как и при полном чтении файла).
func Sample(path string, n int) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("ошибка открытия файла %s: %w", path, err)
	}
	defer f.Close()

	buf := make([]byte, n)
	read, err := io.ReadFull(f, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", fmt.Errorf("ошибка чтения выборки из %s: %w", path, err)
	}
	buf = buf[:read]
	if read == n {
		// граница выборки могла разрезать многобайтовую руну
		buf = trimPartialRune(buf)
	}

	if utf8.Valid(buf) {
		return string(buf), nil
	}
	decoded, _, err := transform.Bytes(charmap.ISO8859_1.NewDecoder(), buf)
	if err != nil {
		return string(buf), nil
	}
	return string(decoded), nil
}

// Delimiter подбирает разделитель по согласованности количества вхождений
// в строках выборки. Кавычки учитываются: вхождения внутри кавычек не считаются.
func Delimiter(sample string) (rune, error) {
	lines := sampleLines(sample)
	if len(lines) == 0 {
		return 0, ErrNoDelimiter
	}

	var (
		best      rune
		bestAgree int
		bestCount int
	)
	for _, cand := range candidates {
		counts := make(map[int]int)
		for _, ln := range lines {
			counts[countUnquoted(ln, cand)]++
		}
		// опорное количество вхождений — модальное по строкам выборки,
		// чтобы заголовочная строка без разделителей не отводила кандидата
		ref, agree := 0, 0
		for c, n := range counts {
			if c == 0 {
				continue
			}
			if n > agree || (n == agree && c > ref) {
				ref, agree = c, n
			}
		}
		if ref == 0 {
			continue
		}
		// кандидат должен подтверждаться большинством строк
		if agree*2 <= len(lines) {
			continue
		}
		if agree > bestAgree || (agree == bestAgree && ref > bestCount) {
			best, bestAgree, bestCount = cand, agree, ref
		}
	}
	if best == 0 {
		return 0, ErrNoDelimiter
	}
	return best, nil
}

// DetectFile определяет разделитель файла, при неудаче возвращает запятую.
func DetectFile(path string, sampleSize int) rune {
	sample, err := Sample(path, sampleSize)
	if err != nil {
		return DefaultDelimiter
	}
	d, err := Delimiter(sample)
	if err != nil {
		return DefaultDelimiter
	}
	return d
}

// OpenDecoded открывает файл для чтения; если выборка не является валидным
// UTF-8, содержимое прозрачно перекодируется из latin1.
func OpenDecoded(path string, sampleSize int) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия файла %s: %w", path, err)
	}

	buf := make([]byte, sampleSize)
	read, err := io.ReadFull(f, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		f.Close()
		return nil, fmt.Errorf("ошибка чтения файла %s: %w", path, err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		f.Close()
		return nil, fmt.Errorf("ошибка позиционирования в файле %s: %w", path, err)
	}

	sample := buf[:read]
	if read == sampleSize {
		sample = trimPartialRune(sample)
	}
	if utf8.Valid(sample) {
		return f, nil
	}
	return struct {
		io.Reader
		io.Closer
	}{
		Reader: transform.NewReader(bufio.NewReader(f), charmap.ISO8859_1.NewDecoder()),
		Closer: f,
	}, nil
}

// trimPartialRune отбрасывает хвост выборки, если ее граница пришлась
// на середину многобайтовой руны. Вызывается только для оборванных выборок:
// в полностью прочитанном файле неполный байт — признак другой кодировки.
func trimPartialRune(b []byte) []byte {
	for i := len(b) - 1; i >= 0 && i >= len(b)-utf8.UTFMax; i-- {
		if !utf8.RuneStart(b[i]) {
			continue
		}
		if utf8.FullRune(b[i:]) {
			return b
		}
		return b[:i]
	}
	return b
}

// sampleLines возвращает непустые строки выборки.
// Последняя строка отбрасывается, если выборка оборвана посередине строки.
func sampleLines(sample string) []string {
	complete := strings.HasSuffix(sample, "\n")
	lines := strings.Split(strings.ReplaceAll(sample, "\r\n", "\n"), "\n")
	if !complete && len(lines) > 1 {
		lines = lines[:len(lines)-1]
	}
	var out []string
	for _, ln := range lines {
		if strings.TrimSpace(ln) != "" {
			out = append(out, ln)
		}
	}
	return out
}

func countUnquoted(line string, sep rune) int {
	count := 0
	inQuotes := false
	for _, r := range line {
		switch {
		case r == '"':
			inQuotes = !inQuotes
		case r == sep && !inQuotes:
			count++
		}
	}
	return count
}
