// Package export turns tabular payloads into downloadable artifacts. Callers
// assemble a Table; the writers know nothing about where the rows came from.
package export

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrUnknownFormat is returned by Lookup for unsupported formats.
var ErrUnknownFormat = errors.New("unknown export format")

// Table is the payload handed to a writer.
type Table struct {
	Title   string     `json:"title"`
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// Writer renders a Table in one file format.
type Writer interface {
	Format() string
	Ext() string
	ContentType() string
	Write(w io.Writer, t Table) error
}

var writers = map[string]Writer{
	"csv":  csvWriter{},
	"json": jsonWriter{},
	"pdf":  pdfWriter{},
	"xlsx": xlsxWriter{},
}

// Lookup returns the writer for format, case-insensitively.
func Lookup(format string) (Writer, error) {
	w, ok := writers[strings.ToLower(strings.TrimSpace(format))]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	return w, nil
}

// Formats lists the supported formats.
func Formats() []string {
	out := make([]string, 0, len(writers))
	for k := range writers {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Filename appends the writer's extension to base.
func Filename(base string, w Writer) string {
	return base + "." + w.Ext()
}

type csvWriter struct{}

func (csvWriter) Format() string      { return "csv" }
func (csvWriter) Ext() string         { return "csv" }
func (csvWriter) ContentType() string { return "text/csv; charset=utf-8" }

// Write emits a UTF-8 BOM so spreadsheet tools detect the Cyrillic text, then
// the title row, the header row and the data rows.
func (csvWriter) Write(w io.Writer, t Table) error {
	if _, err := io.WriteString(w, "\ufeff"); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{t.Title}); err != nil {
		return err
	}
	if err := cw.Write(t.Headers); err != nil {
		return err
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return err
	}
	return cw.Error()
}

type jsonWriter struct{}

func (jsonWriter) Format() string      { return "json" }
func (jsonWriter) Ext() string         { return "json" }
func (jsonWriter) ContentType() string { return "application/json; charset=utf-8" }

func (jsonWriter) Write(w io.Writer, t Table) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(t)
}

type xlsxWriter struct{}

func (xlsxWriter) Format() string { return "xlsx" }
func (xlsxWriter) Ext() string    { return "xlsx" }
func (xlsxWriter) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// Write puts the title in A1, the headers on row 2 and the data below.
func (xlsxWriter) Write(w io.Writer, t Table) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	if err := f.SetCellValue(sheet, "A1", t.Title); err != nil {
		return err
	}
	if err := setRow(f, sheet, 2, t.Headers); err != nil {
		return err
	}
	for i, row := range t.Rows {
		if err := setRow(f, sheet, i+3, row); err != nil {
			return err
		}
	}

	if len(t.Headers) > 0 {
		bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
		if err != nil {
			return err
		}
		last, err := excelize.CoordinatesToCellName(len(t.Headers), 2)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, "A1", last, bold); err != nil {
			return err
		}
	}
	return f.Write(w)
}

func setRow(f *excelize.File, sheet string, row int, values []string) error {
	for col, v := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return err
		}
	}
	return nil
}
