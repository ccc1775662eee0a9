// Package parse reads delimited-text and spreadsheet files into flat tables.
package parse

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/itsmostafa/bomfold/internal/bomerr"
	"github.com/itsmostafa/bomfold/internal/flat"
	"github.com/itsmostafa/bomfold/internal/rules"
)

// Format is a supported input format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ValidateFormat checks if the given format string is valid and returns the Format
func ValidateFormat(format string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimPrefix(format, "."))) {
	case FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	default:
		return "", bomerr.InvalidArgument("unrecognized file type %q (valid options: csv, xlsx)", format)
	}
}

// FormatOf derives the format from a file extension.
func FormatOf(path string) (Format, error) {
	return ValidateFormat(filepath.Ext(path))
}

// Options controls how a source is read.
type Options struct {
	// Sheet selects the worksheet for xlsx input; the first sheet when empty.
	Sheet string
	// Mapping types the columns; unmapped columns are text.
	Mapping rules.TypeMapping
}

// File reads path, dispatching on its extension.
func File(path string, opts Options) (*flat.Table, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input: %w", err)
	}
	defer f.Close()

	return Read(f, format, opts)
}

// Read parses r as the given format.
func Read(r io.Reader, format Format, opts Options) (*flat.Table, error) {
	switch format {
	case FormatCSV:
		return CSV(r, opts.Mapping)
	case FormatXLSX:
		return XLSX(r, opts.Sheet, opts.Mapping)
	default:
		return nil, bomerr.InvalidArgument("unrecognized file type %q (valid options: csv, xlsx)", format)
	}
}

// CSV reads a header row followed by records. Records may be shorter or
// longer than the header.
func CSV(r io.Reader, mapping rules.TypeMapping) (*flat.Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return &flat.Table{}, nil
	}
	if err != nil {
		return nil, readError("csv header", err)
	}

	table := &flat.Table{Keys: header}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, readError("csv record", err)
		}

		row, err := makeRow(record, header, mapping)
		if err != nil {
			return nil, err
		}
		table.Records = append(table.Records, row)
	}
	return table, nil
}

// XLSX reads the first row of a worksheet as the header. Trailing empty
// cells are trimmed by the reader, so rows can be shorter than the header.
func XLSX(r io.Reader, sheet string, mapping rules.TypeMapping) (*flat.Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read workbook: %w", err)
	}

	book, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, bomerr.InvalidArgument("failed to open workbook: %v", err)
	}
	defer book.Close()

	if sheet == "" {
		sheets := book.GetSheetList()
		if len(sheets) == 0 {
			return &flat.Table{}, nil
		}
		sheet = sheets[0]
	}

	rows, err := book.GetRows(sheet)
	if err != nil {
		return nil, bomerr.InvalidArgument("failed to read sheet %q: %v", sheet, err)
	}
	if len(rows) == 0 {
		return &flat.Table{}, nil
	}

	header := rows[0]
	table := &flat.Table{Keys: header}
	for _, record := range rows[1:] {
		row, err := makeRow(record, header, mapping)
		if err != nil {
			return nil, err
		}
		table.Records = append(table.Records, row)
	}
	return table, nil
}

// readError classifies a reader failure: malformed input is InvalidArgument,
// failures of the underlying reader keep their own error.
func readError(what string, err error) error {
	var parseErr *csv.ParseError
	if errors.As(err, &parseErr) {
		return bomerr.InvalidArgument("failed to read %s: %v", what, err)
	}
	return fmt.Errorf("failed to read %s: %w", what, err)
}

// makeRow converts an untyped record into values per the type mapping.
func makeRow(record, header []string, mapping rules.TypeMapping) (flat.Row, error) {
	row := make(flat.Row, len(record))
	for i, raw := range record {
		var key string
		if i < len(header) {
			key = header[i]
		}
		v, err := Cell(raw, key, mapping.KindOf(key))
		if err != nil {
			return nil, err
		}
		row[i] = v
	}
	return row, nil
}

// Cell converts one raw cell. Empty numeric cells are 0; anything else must
// be a plain decimal float.
func Cell(raw, key string, kind flat.Kind) (flat.Value, error) {
	if kind != flat.KindNumber {
		return flat.Text(raw), nil
	}
	if raw == "" {
		return flat.Number(0), nil
	}
	if !isDecimal(raw) {
		return flat.Value{}, bomerr.InvalidArgument("failed to parse record as number for %q -> %q: not a decimal number", key, raw)
	}
	n, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return flat.Value{}, bomerr.InvalidArgument("failed to parse record as number for %q -> %q: %v", key, raw, err)
	}
	return flat.Number(n), nil
}

// isDecimal screens out the forms strconv accepts beyond plain decimals.
func isDecimal(s string) bool {
	if strings.TrimSpace(s) != s || strings.ContainsRune(s, '_') {
		return false
	}
	unsigned := strings.TrimLeft(s, "+-")
	return !strings.HasPrefix(unsigned, "0x") && !strings.HasPrefix(unsigned, "0X")
}
