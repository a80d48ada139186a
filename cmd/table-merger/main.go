package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/ryabkov82/table-merger/internal/config"
	"github.com/ryabkov82/table-merger/internal/logging"
	"github.com/ryabkov82/table-merger/internal/merger"
	"github.com/ryabkov82/table-merger/internal/prompt"
	"github.com/ryabkov82/table-merger/internal/scanner"
)

type Output struct {
	Success     bool     `json:"success"`
	OutputFiles []string `json:"output_files,omitempty"`
	Error       string   `json:"error,omitempty"`
	Duration    string   `json:"duration"`
	RowCount    int64    `json:"row_count,omitempty"`
}

func main() {

	start := time.Now()

	cfg, err := config.ParseFlags()
	if err != nil {
		emitJSON(Output{
			Success:  false,
			Error:    fmt.Sprintf("Ошибка конфигурации: %v", err),
			Duration: time.Since(start).String(),
		})
		return
	}

	logger := logging.New(cfg.Debug)
	defer logger.Sync()

	if cfg.Interactive() {
		runInteractive(cfg, logger)
		return
	}

	res, err := merge(cfg, logger)
	if err != nil {
		emitJSON(Output{
			Success:  false,
			Error:    fmt.Sprintf("Ошибка объединения: %v", err),
			Duration: time.Since(start).String(),
		})
		return
	}

	emitJSON(Output{
		Success:     true,
		OutputFiles: res.OutputFiles,
		RowCount:    res.RowCount,
		Duration:    time.Since(start).String(),
	})

}

// merge выполняет объединение без диалога, по флагам -dir и -ext.
func merge(cfg *config.Config, logger *zap.Logger) (*merger.Result, error) {
	listing, err := scanner.Scan(cfg.InputDir)
	if err != nil {
		return nil, err
	}
	group, ok := listing.Group(cfg.Ext)
	if !ok {
		return nil, fmt.Errorf("в папке нет файлов '%s'", cfg.Ext.Ext())
	}

	m, err := merger.ForType(cfg.Ext, logger)
	if err != nil {
		return nil, err
	}
	return m.MergeFiles(&merger.Request{
		Dir:        cfg.InputDir,
		Files:      group.Files,
		Type:       cfg.Ext,
		OutputPath: cfg.OutputPath,
		AddSource:  cfg.AddSourceFile,
		HasHeaders: cfg.HasHeaders,
		MaxRows:    cfg.MaxRowPerFile,
		SampleSize: cfg.SampleSize,
	})
}

func runInteractive(cfg *config.Config, logger *zap.Logger) {
	wd, err := os.Getwd()
	if err != nil {
		wd = "."
	}

	sess := prompt.New(os.Stdin, os.Stdout, cfg, wd, logger)
	res, err := sess.Run()
	if err != nil {
		os.Exit(1)
	}
	if res == nil {
		// выбор отменен пользователем
		return
	}

	fmt.Println("\nПервые 5 строк загруженных данных:")
	res.Table.Preview(os.Stdout, 5)
}

func emitJSON(out Output) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		log.Fatalf("Ошибка вывода JSON: %v", err)
	}
}
