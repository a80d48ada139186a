package format

import (
	"path/filepath"
	"strings"
)

// FileType — тип поддерживаемого файла, определяется по расширению.
type FileType string

const (
	TypeUnknown FileType = ""
	TypeCSV     FileType = ".csv"
	TypeTXT     FileType = ".txt"
	TypeXLS     FileType = ".xls"
	TypeXLSX    FileType = ".xlsx"
	TypeJSON    FileType = ".json"
	TypeParquet FileType = ".parquet"
)

// Allowed возвращает список поддерживаемых типов в порядке вывода меню.
func Allowed() []FileType {
	return []FileType{TypeCSV, TypeTXT, TypeXLS, TypeXLSX, TypeJSON, TypeParquet}
}

// Detect определяет тип файла по расширению (без учета регистра).
func Detect(path string) FileType {
	ext := strings.ToLower(filepath.Ext(path))
	switch FileType(ext) {
	case TypeCSV, TypeTXT, TypeXLS, TypeXLSX, TypeJSON, TypeParquet:
		return FileType(ext)
	default:
		return TypeUnknown
	}
}

// Normalize приводит пользовательский ввод ("csv", ".CSV") к типу файла.
func Normalize(s string) FileType {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return TypeUnknown
	}
	if !strings.HasPrefix(s, ".") {
		s = "." + s
	}
	return Detect("x" + s)
}

// Ext возвращает расширение с точкой.
func (t FileType) Ext() string { return string(t) }

// IsDelimited сообщает, что файл текстовый с разделителем (CSV/TXT).
func (t FileType) IsDelimited() bool { return t == TypeCSV || t == TypeTXT }

// IsExcel сообщает, что файл в формате Excel.
func (t FileType) IsExcel() bool { return t == TypeXLS || t == TypeXLSX }

func (t FileType) IsJSON() bool { return t == TypeJSON }

func (t FileType) IsParquet() bool { return t == TypeParquet }
