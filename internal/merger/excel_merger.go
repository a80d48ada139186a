package merger

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// excelMerger потоково объединяет книги Excel. Самый крупный открывающийся
// файл служит шаблоном: из него берутся заголовки, ширины колонок и стили.
// Файлы .xls excelize не открывает, они пропускаются с ошибкой.
type excelMerger struct {
	baseMerger
	req          *Request
	out          string
	templatePath string
	headers      []string
	headerStyles []int
	rowStyles    []int
	colWidths    []float64
	heightHeader float64
	outFile      *excelize.File
	sw           *excelize.StreamWriter
	sheet        string
	rowCursor    int64 // следующая строка листа, с единицы
	written      int64 // строк данных в текущем файле
	total        int64
	partCounter  int
	outputs      []string
}

func (m *excelMerger) MergeFiles(req *Request) (*Result, error) {
	m.req = req
	m.out = ResolveOutput(req)
	m.partCounter = 1

	if err := removeExistingParts(m.out, req.Type); err != nil {
		return nil, err
	}

	inputs := m.req.inputPaths(m.out)

	// выбор шаблона: самый крупный файл, который удается открыть
	for _, path := range bySizeDesc(inputs) {
		if err := m.prepareTemplate(path); err != nil {
			m.log.Debug("файл не подходит как шаблон", zap.String("file", filepath.Base(path)), zap.Error(err))
			continue
		}
		m.templatePath = path
		break
	}
	if m.templatePath == "" {
		return nil, ErrNoReadableFiles
	}

	if err := m.newOutput(); err != nil {
		return nil, err
	}

	for _, path := range inputs {
		if err := m.processInputFile(path); err != nil {
			m.skip(filepath.Base(path), err)
			continue
		}
		m.ok(filepath.Base(path))
	}
	if len(m.merged) == 0 {
		_ = m.outFile.Close()
		return nil, ErrNoReadableFiles
	}

	// заключительный flush
	if err := m.sw.Flush(); err != nil {
		return nil, fmt.Errorf("ошибка финального flush: %v", err)
	}
	name := m.out
	if m.req.MaxRows > 0 {
		name = partName(m.out, m.req.Type, m.partCounter)
	}
	if err := m.outFile.SaveAs(name); err != nil {
		return nil, fmt.Errorf("ошибка сохранения файла: %v", err)
	}
	_ = m.outFile.Close()
	m.outputs = append(m.outputs, name)

	return m.result(m.outputs, m.total), nil
}

// prepareTemplate читает из шаблона заголовки, стили и ширины колонок.
func (m *excelMerger) prepareTemplate(path string) error {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return fmt.Errorf("ошибка открытия файла %s: %v", path, err)
	}
	defer f.Close()

	sheetList := f.GetSheetList()
	if len(sheetList) == 0 {
		return fmt.Errorf("шаблон пустой, нет листов")
	}
	sheet := sheetList[0]

	rows, err := f.Rows(sheet)
	if err != nil {
		return err
	}
	defer rows.Close()

	if !rows.Next() {
		return fmt.Errorf("шаблон пустой, нет строк")
	}
	headers, err := rows.Columns()
	if err != nil {
		return err
	}
	m.heightHeader = rows.GetRowOpts().Height

	if m.req.AddSource {
		if m.req.HasHeaders {
			headers = append(headers, sourceColumn)
		} else {
			headers = append(headers, "")
		}
	}
	m.headers = headers

	// Стили заголовков и первой строки данных, ширины колонок
	m.headerStyles = make([]int, len(m.headers))
	m.rowStyles = make([]int, len(m.headers))
	m.colWidths = make([]float64, len(m.headers))
	for col := 1; col <= len(m.headers); col++ {
		cell1, _ := excelize.CoordinatesToCellName(col, 1)
		styleID1, _ := f.GetCellStyle(sheet, cell1)
		m.headerStyles[col-1] = styleID1

		cell2, _ := excelize.CoordinatesToCellName(col, 2)
		styleID2, _ := f.GetCellStyle(sheet, cell2)
		m.rowStyles[col-1] = styleID2

		colName, _ := excelize.ColumnNumberToName(col)
		if width, err := f.GetColWidth(sheet, colName); err == nil {
			m.colWidths[col-1] = width
		}
	}
	return nil
}

// newOutput завершает текущий результирующий файл (если есть) и открывает
// следующий на основе шаблона.
func (m *excelMerger) newOutput() error {
	if m.outFile != nil {
		if err := m.sw.Flush(); err != nil {
			return fmt.Errorf("ошибка финального flush: %v", err)
		}
		name := partName(m.out, m.req.Type, m.partCounter)
		if err := m.outFile.SaveAs(name); err != nil {
			return fmt.Errorf("ошибка сохранения файла: %v", err)
		}
		_ = m.outFile.Close()
		m.outputs = append(m.outputs, name)
		m.partCounter++
	}

	f, err := excelize.OpenFile(m.templatePath)
	if err != nil {
		return fmt.Errorf("ошибка открытия шаблона: %v", err)
	}
	sheetList := f.GetSheetList()
	m.sheet = "merged"
	if _, err := f.NewSheet(m.sheet); err != nil {
		return fmt.Errorf("ошибка создания листа: %v", err)
	}

	for col := 1; col <= len(m.headers); col++ {
		if m.colWidths[col-1] <= 0 {
			continue
		}
		colName, _ := excelize.ColumnNumberToName(col)
		_ = f.SetColWidth(m.sheet, colName, colName, m.colWidths[col-1])
	}

	m.sw, err = f.NewStreamWriter(m.sheet)
	if err != nil {
		return fmt.Errorf("ошибка создания StreamWriter: %v", err)
	}
	if err := f.DeleteSheet(sheetList[0]); err != nil {
		return fmt.Errorf("ошибка удаления листа шаблона: %v", err)
	}

	m.outFile = f
	m.written = 0
	m.rowCursor = 1

	if m.req.HasHeaders && len(m.headers) > 0 {
		headerRow := make([]interface{}, len(m.headers))
		for i, h := range m.headers {
			headerRow[i] = excelize.Cell{Value: h, StyleID: m.headerStyles[i]}
		}
		if err := m.setRow(headerRow, m.heightHeader); err != nil {
			return fmt.Errorf("ошибка записи заголовков: %v", err)
		}
	}
	return nil
}

func (m *excelMerger) setRow(row []interface{}, height float64) error {
	cell := fmt.Sprintf("A%d", m.rowCursor)
	var opts []excelize.RowOpts
	if height > 0 {
		opts = append(opts, excelize.RowOpts{Height: height})
	}
	if err := m.sw.SetRow(cell, row, opts...); err != nil {
		return err
	}
	m.rowCursor++
	return nil
}

func (m *excelMerger) processInputFile(path string) error {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return fmt.Errorf("ошибка открытия файла %s: %v", path, err)
	}
	defer f.Close()

	sheetListSrc := f.GetSheetList()
	if len(sheetListSrc) == 0 {
		return nil
	}
	sheetSrc := sheetListSrc[0]

	rows, err := f.Rows(sheetSrc)
	if err != nil {
		return fmt.Errorf("ошибка чтения строк из %s: %v", path, err)
	}
	defer rows.Close()

	rowInFile := 1
	if m.req.HasHeaders && rows.Next() {
		rowInFile++
	}

	for rows.Next() {
		if m.req.MaxRows > 0 && m.written >= m.req.MaxRows {
			if err := m.newOutput(); err != nil {
				return err
			}
		}

		stringRow, err := rows.Columns()
		if err != nil {
			return fmt.Errorf("ошибка чтения строки: %v", err)
		}

		rowData := make([]interface{}, len(stringRow))
		for i, cellVal := range stringRow {
			styleID := 0
			if i < len(m.rowStyles) {
				styleID = m.rowStyles[i]
			}

			colName, _ := excelize.ColumnNumberToName(i + 1)
			cellRef := fmt.Sprintf("%s%d", colName, rowInFile)
			valType, _ := f.GetCellType(sheetSrc, cellRef)

			var value interface{}
			switch valType {
			case excelize.CellTypeBool:
				value = cellVal == "1" || strings.EqualFold(cellVal, "true")
			case excelize.CellTypeNumber:
				if n, err := strconv.ParseFloat(cellVal, 64); err == nil {
					value = n
				} else {
					value = cellVal
				}
			default:
				value = cellVal
			}

			rowData[i] = excelize.Cell{Value: value, StyleID: styleID}
		}

		if m.req.AddSource {
			rowData = append(rowData, excelize.Cell{Value: filepath.Base(path)})
		}

		if err := m.setRow(rowData, rows.GetRowOpts().Height); err != nil {
			return fmt.Errorf("ошибка записи строки: %v", err)
		}
		m.written++
		m.total++
		rowInFile++
	}
	return nil
}

// bySizeDesc сортирует пути по убыванию размера файла.
func bySizeDesc(paths []string) []string {
	out := make([]string, len(paths))
	copy(out, paths)
	size := func(p string) int64 {
		info, err := os.Stat(p)
		if err != nil {
			return 0
		}
		return info.Size()
	}
	sort.SliceStable(out, func(i, j int) bool { return size(out[i]) > size(out[j]) })
	return out
}
