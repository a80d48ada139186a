package config

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ryabkov82/table-merger/internal/format"
)

type Config struct {
	InputDir      string
	Ext           format.FileType // тип файлов для неинтерактивного объединения
	OutputPath    string
	SampleSize    int   // размер выборки для определения разделителя, байт
	AddSourceFile bool  // добавлять колонку с именем файла
	HasHeaders    bool  // исходные файлы содержат заголовки
	MaxRowPerFile int64 // максимальное количество строк в одном результирующем файле, 0 — без разбиения
	Debug         bool
}

func ParseFlags() (*Config, error) {
	return parse(flag.CommandLine, os.Args[1:])
}

func parse(fs *flag.FlagSet, args []string) (*Config, error) {

	cfg := &Config{}
	var ext string

	fs.StringVar(&cfg.InputDir, "dir", "", "папка с исходными файлами (пусто — запросить интерактивно)")
	fs.StringVar(&ext, "ext", "", "тип файлов для объединения без диалога, например .csv")
	fs.StringVar(&cfg.OutputPath, "out", "", "результирующий файл (пусто — merged<ext> в исходной папке)")
	fs.IntVar(&cfg.SampleSize, "sample", 8192, "размер выборки для определения разделителя, байт")
	fs.BoolVar(&cfg.AddSourceFile, "add-source", false, "добавлять колонку с именем файла")
	fs.BoolVar(&cfg.HasHeaders, "has-headers", true, "исходные файлы содержат заголовки")
	fs.Int64Var(&cfg.MaxRowPerFile, "max-row", 0, "максимальное количество строк в объединенном файле, 0 — без разбиения")
	fs.BoolVar(&cfg.Debug, "debug", false, "подробная диагностика в stderr")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if ext != "" {
		cfg.Ext = format.Normalize(ext)
		if cfg.Ext == format.TypeUnknown {
			return nil, fmt.Errorf("неподдерживаемое расширение: %s", ext)
		}
		if cfg.InputDir == "" {
			return nil, fmt.Errorf("для -ext необходимо указать папку с файлами через -dir")
		}
	}

	if cfg.SampleSize <= 0 {
		return nil, fmt.Errorf("размер выборки должен быть положительным")
	}

	// Нормализация путей
	if cfg.InputDir != "" {
		cfg.InputDir = filepath.Clean(cfg.InputDir)
	}
	if cfg.OutputPath != "" {
		cfg.OutputPath = filepath.Clean(cfg.OutputPath)
	}

	return cfg, nil
}

// Interactive сообщает, что программа должна вести диалог с пользователем.
func (cfg *Config) Interactive() bool { return cfg.Ext == format.TypeUnknown }
