// Package tabular 读取CSV/XLSX表格(第一行为表头)
package tabular

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrUnsupportedFormat 不支持的文件格式
var ErrUnsupportedFormat = errors.New("unsupported file format, expected .csv or .xlsx")

// ErrEmpty 文件没有表头
var ErrEmpty = errors.New("file is empty")

// Table 表格
type Table struct {
	Header []string
	Rows   []Row
	index  map[string]int
}

// Row 数据行,Line为原文件中的行号(表头为第1行)
type Row struct {
	Line   int
	Values []string
}

// Read 按扩展名解析
func Read(filename string, r io.Reader) (*Table, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return readCSV(r)
	case ".xlsx":
		return readXLSX(r)
	default:
		return nil, ErrUnsupportedFormat
	}
}

// Has 是否包含某列
func (t *Table) Has(column string) bool {
	_, ok := t.index[normalize(column)]
	return ok
}

// Missing 返回缺失的必需列
func (t *Table) Missing(columns ...string) []string {
	var missing []string
	for _, c := range columns {
		if !t.Has(c) {
			missing = append(missing, c)
		}
	}
	return missing
}

// Get 取某行某列的值(已去空白),列不存在或该行较短时返回空串
func (t *Table) Get(row Row, column string) string {
	i, ok := t.index[normalize(column)]
	if !ok || i >= len(row.Values) {
		return ""
	}
	return strings.TrimSpace(row.Values[i])
}

func newTable(records [][]string, lineOf func(i int) int) (*Table, error) {
	if len(records) == 0 {
		return nil, ErrEmpty
	}
	t := &Table{
		Header: records[0],
		index:  make(map[string]int, len(records[0])),
	}
	for i, h := range records[0] {
		t.index[normalize(h)] = i
	}
	for i, rec := range records[1:] {
		if isBlank(rec) {
			continue
		}
		t.Rows = append(t.Rows, Row{Line: lineOf(i + 1), Values: rec})
	}
	return t, nil
}

func readCSV(r io.Reader) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	// 去掉Excel导出的UTF-8 BOM
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var (
		records [][]string
		lines   []int
	)
	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse csv: %w", err)
		}
		line, _ := reader.FieldPos(0)
		records = append(records, rec)
		lines = append(lines, line)
	}
	return newTable(records, func(i int) int { return lines[i] })
}

func readXLSX(r io.Reader) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, ErrEmpty
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	return newTable(rows, func(i int) int { return i + 1 })
}

func normalize(column string) string {
	return strings.ToLower(strings.TrimSpace(column))
}

func isBlank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
