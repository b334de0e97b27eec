// Package importer parses keyword upload files (CSV and XLSX) into rows
// ready for insertion.
package importer

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

var (
	// ErrUnsupportedFormat reports a file extension outside the allow-list.
	ErrUnsupportedFormat = errors.New("unsupported file format, use .csv or .xlsx")
	// ErrNoKeywordColumn reports a file without a recognizable keyword column.
	ErrNoKeywordColumn = errors.New("file must contain a 'keyword' column")
	// ErrEmptyFile reports a file with no data rows.
	ErrEmptyFile = errors.New("file contains no data rows")
	// ErrTooManyRows reports a file over the row limit.
	ErrTooManyRows = errors.New("file contains too many rows")
)

// headerAliases maps common column name variations to canonical names.
var headerAliases = map[string]string{
	"keyword":            "keyword",
	"keywords":           "keyword",
	"search_term":        "keyword",
	"query":              "keyword",
	"search_volume":      "search_volume",
	"volume":             "search_volume",
	"monthly_searches":   "search_volume",
	"keyword_difficulty": "keyword_difficulty",
	"difficulty":         "keyword_difficulty",
	"kd":                 "keyword_difficulty",
	"category":           "category",
	"topic":              "category",
}

// Row is one parsed keyword. Optional fields stay nil when the column is
// absent or unparseable.
type Row struct {
	Keyword      string
	SearchVolume *int64
	Difficulty   *float64
	Category     *string
}

// Result carries the parsed rows plus how many input rows were skipped
// for having a blank keyword.
type Result struct {
	Rows    []Row
	Skipped int
}

// ParseUpload parses an uploaded keyword file based on its extension.
// maxRows bounds the number of data rows accepted.
func ParseUpload(filename string, data []byte, maxRows int) (*Result, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return parseCSV(data, maxRows)
	case ".xlsx", ".xls":
		return parseXLSX(data, maxRows)
	default:
		return nil, ErrUnsupportedFormat
	}
}

func parseCSV(data []byte, maxRows int) (*Result, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var records [][]string
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse csv: %w", err)
		}
		records = append(records, record)
	}

	return parseRows(records, maxRows)
}

func parseXLSX(data []byte, maxRows int) (*Result, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyFile
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read xlsx rows: %w", err)
	}

	return parseRows(rows, maxRows)
}

func parseRows(records [][]string, maxRows int) (*Result, error) {
	if len(records) < 2 {
		return nil, ErrEmptyFile
	}

	header := records[0]
	dataRows := records[1:]
	if len(dataRows) > maxRows {
		return nil, fmt.Errorf("%w: maximum %d keywords allowed", ErrTooManyRows, maxRows)
	}

	columns := map[string]int{}
	for i, name := range header {
		canonical, ok := headerAliases[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			continue
		}
		if _, exists := columns[canonical]; !exists {
			columns[canonical] = i
		}
	}
	keywordCol, ok := columns["keyword"]
	if !ok {
		return nil, ErrNoKeywordColumn
	}

	result := &Result{}
	for _, record := range dataRows {
		keyword := strings.ToLower(strings.TrimSpace(cell(record, keywordCol)))
		if keyword == "" || keyword == "nan" {
			result.Skipped++
			continue
		}

		row := Row{Keyword: keyword}
		if i, ok := columns["search_volume"]; ok {
			row.SearchVolume = parseVolume(cell(record, i))
		}
		if i, ok := columns["keyword_difficulty"]; ok {
			row.Difficulty = parseDifficulty(cell(record, i))
		}
		if i, ok := columns["category"]; ok {
			if category := strings.TrimSpace(cell(record, i)); category != "" {
				row.Category = &category
			}
		}
		result.Rows = append(result.Rows, row)
	}

	if len(result.Rows) == 0 && result.Skipped == 0 {
		return nil, ErrEmptyFile
	}
	return result, nil
}

func cell(record []string, i int) string {
	if i < 0 || i >= len(record) {
		return ""
	}
	return record[i]
}

// parseVolume accepts thousands separators ("12,500").
func parseVolume(s string) *int64 {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil
	}
	return &v
}

func parseDifficulty(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}
