package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rpattn/nwreports/internal/repository"

	"github.com/xuri/excelize/v2"
)

// Format is a supported download format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ErrUnsupportedFormat is returned for formats other than csv and xlsx.
var ErrUnsupportedFormat = errors.New("unsupported export format")

// ParseFormat accepts a case-insensitive format name. Empty means CSV.
func ParseFormat(raw string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(raw))) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, raw)
	}
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// File is a rendered export ready to be written to a client.
type File struct {
	Name        string
	ContentType string
	Rows        int
	Data        []byte
}

// Service renders catalogued reports as downloadable files.
type Service struct {
	repo repository.ReportRepository
	now  func() time.Time
}

type Option func(*Service)

// WithClock overrides the time used in file names.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func NewService(repo repository.ReportRepository, opts ...Option) *Service {
	service := &Service{repo: repo, now: time.Now}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// Render runs the named report and encodes it in the requested format. Unknown
// report names yield repository.ErrUnknownReport.
func (s *Service) Render(ctx context.Context, report string, format Format) (File, error) {
	table, err := s.repo.Table(ctx, report)
	if err != nil {
		return File{}, err
	}

	var buf bytes.Buffer
	switch format {
	case FormatCSV:
		err = writeCSV(&buf, table)
	case FormatXLSX:
		err = writeXLSX(&buf, sheetName(report), table)
	default:
		err = fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return File{}, err
	}

	name := fmt.Sprintf("%s-%s.%s", sanitizeFileComponent(report), s.now().UTC().Format("20060102"), format)
	return File{
		Name:        name,
		ContentType: format.ContentType(),
		Rows:        len(table.Rows),
		Data:        buf.Bytes(),
	}, nil
}

func writeCSV(buf *bytes.Buffer, table repository.Table) error {
	w := csv.NewWriter(buf)
	if err := w.Write(table.Columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	record := make([]string, len(table.Columns))
	for _, row := range table.Rows {
		for i := range record {
			record[i] = ""
			if i < len(row) {
				record[i] = formatValue(row[i])
			}
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

func writeXLSX(buf *bytes.Buffer, sheet string, table repository.Table) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}
	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return fmt.Errorf("open sheet writer: %w", err)
	}

	header := make([]any, len(table.Columns))
	for i, column := range table.Columns {
		header[i] = column
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for idx, row := range table.Rows {
		cells := make([]any, len(row))
		for i, value := range row {
			cells[i] = cellValue(value)
		}
		cell, err := excelize.CoordinatesToCellName(1, idx+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, cells); err != nil {
			return fmt.Errorf("write row %d: %w", idx+1, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return fmt.Errorf("flush sheet: %w", err)
	}
	if err := f.Write(buf); err != nil {
		return fmt.Errorf("encode workbook: %w", err)
	}
	return nil
}

// sheetName derives a worksheet title, which excelize caps at 31 characters.
func sheetName(report string) string {
	name := sanitizeFileComponent(report)
	if len(name) > 31 {
		name = name[:31]
	}
	return name
}

func sanitizeFileComponent(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return "report"
	}
	builder := strings.Builder{}
	for _, r := range value {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			builder.WriteRune(r)
		default:
			builder.WriteRune('-')
		}
	}
	result := strings.Trim(builder.String(), "-")
	if result == "" {
		return "report"
	}
	return result
}

// cellValue keeps numbers and timestamps native so spreadsheets can sort them.
func cellValue(value any) any {
	switch v := value.(type) {
	case nil:
		return nil
	case int16, int32, int64, int, float32, float64, bool, time.Time:
		return v
	default:
		return formatValue(v)
	}
}

func formatValue(value any) string {
	if value == nil {
		return ""
	}
	switch v := value.(type) {
	case string:
		return v
	case time.Time:
		return v.UTC().Format(time.RFC3339)
	case fmt.Stringer:
		return v.String()
	case bool:
		if v {
			return "true"
		}
		return "false"
	case float32, float64, int, int16, int32, int64:
		return fmt.Sprintf("%v", v)
	case []byte:
		return string(v)
	case json.Marshaler:
		encoded, err := v.MarshalJSON()
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return strings.Trim(string(encoded), `"`)
	default:
		return fmt.Sprintf("%v", v)
	}
}
