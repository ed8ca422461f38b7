// Package report exports reviews tables as CSV, XLSX and PDF files.
//
// Each format has a Generator. All formats share the same columns, defined
// once in Columns.
package report

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/hmpps/incentives-ui/internal/domain"
	"github.com/hmpps/incentives-ui/internal/format"
	"github.com/hmpps/incentives-ui/internal/metrics"
)

// =============================================================================
// Formats
// =============================================================================

// Format is an export file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatPDF  Format = "pdf"
)

// ParseFormat reads a format from a file extension, with or without the dot.
func ParseFormat(s string) (Format, bool) {
	switch f := Format(strings.ToLower(strings.TrimPrefix(s, "."))); f {
	case FormatCSV, FormatXLSX, FormatPDF:
		return f, true
	}
	return "", false
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatPDF:
		return "application/pdf"
	}
	return "application/octet-stream"
}

// =============================================================================
// Generator Interface
// =============================================================================

// Data is the reviews table being exported.
type Data struct {
	Prison      string // Prison name
	Location    string // Wing description
	Level       string // Incentive level name
	GeneratedAt time.Time
	Reviews     []domain.Review
}

// Title describes the table, e.g. "Houseblock 1: Standard".
func (d *Data) Title() string {
	return d.Location + ": " + d.Level
}

// Generator defines the interface for export generators.
type Generator interface {
	// Generate writes the export to w.
	// Returns the number of bytes written and any error.
	Generate(ctx context.Context, data *Data, w io.Writer) (int64, error)

	// Format returns the output format of this generator.
	Format() Format
}

// NewGenerator returns the generator for f.
func NewGenerator(f Format) (Generator, error) {
	switch f {
	case FormatCSV:
		return NewCSVGenerator(), nil
	case FormatXLSX:
		return NewXLSXGenerator(), nil
	case FormatPDF:
		return NewPDFGenerator(), nil
	}
	return nil, domain.Invalid("report.NewGenerator", fmt.Sprintf("unsupported export format %q", f))
}

// Write generates an export in format f and records it in metrics.
func Write(ctx context.Context, f Format, data *Data, w io.Writer) (int64, error) {
	g, err := NewGenerator(f)
	if err != nil {
		return 0, err
	}
	n, err := g.Generate(ctx, data, w)
	if err != nil {
		return n, domain.Internal(err, "report.Write", "Export could not be created")
	}
	metrics.ReportsExported.WithLabelValues(string(f)).Inc()
	return n, nil
}

// Filename names an export, e.g. "incentive-reviews-MDI-1-STD-2023-03-14.csv".
func Filename(locationPrefix, levelCode string, generatedAt time.Time, f Format) string {
	return fmt.Sprintf("incentive-reviews-%s-%s-%s.%s",
		locationPrefix, levelCode, generatedAt.Format("2006-01-02"), f)
}

// =============================================================================
// Columns
// =============================================================================

// Column is one exported column.
type Column struct {
	Header string
	Width  float64 // relative width, used by PDF and XLSX
	Value  func(r *domain.Review, now time.Time) string
	Number bool // right-aligned and written as a number where the format allows
}

// Columns are the exported columns in order.
var Columns = []Column{
	{Header: "Name", Width: 44, Value: func(r *domain.Review, _ time.Time) string {
		return format.ReversedName(r.FirstName, r.LastName)
	}},
	{Header: "Prison number", Width: 24, Value: func(r *domain.Review, _ time.Time) string {
		return r.PrisonerNumber
	}},
	{Header: "Days since last review", Width: 22, Number: true, Value: func(r *domain.Review, _ time.Time) string {
		if r.DaysSinceLastReview == nil {
			return ""
		}
		return strconv.Itoa(*r.DaysSinceLastReview)
	}},
	{Header: "Next review due", Width: 24, Value: func(r *domain.Review, _ time.Time) string {
		return format.Date(r.NextReviewDate, format.DateShort)
	}},
	{Header: "Overdue", Width: 16, Value: func(r *domain.Review, now time.Time) string {
		return format.YesNo(r.IsOverdue(now))
	}},
	{Header: "Positive behaviours", Width: 20, Number: true, Value: func(r *domain.Review, _ time.Time) string {
		return strconv.Itoa(r.PositiveBehaviours)
	}},
	{Header: "Negative behaviours", Width: 20, Number: true, Value: func(r *domain.Review, _ time.Time) string {
		return strconv.Itoa(r.NegativeBehaviours)
	}},
	{Header: "ACCT open", Width: 14, Value: func(r *domain.Review, _ time.Time) string {
		return format.YesNo(r.HasACCTOpen)
	}},
	{Header: "New to prison", Width: 16, Value: func(r *domain.Review, _ time.Time) string {
		return format.YesNo(r.IsNewToPrison)
	}},
}

// headers returns the column headers.
func headers() []string {
	h := make([]string, len(Columns))
	for i, c := range Columns {
		h[i] = c.Header
	}
	return h
}

// row returns the column values for a review.
func row(r *domain.Review, now time.Time) []string {
	values := make([]string, len(Columns))
	for i, c := range Columns {
		values[i] = c.Value(r, now)
	}
	return values
}

// =============================================================================
// Colors
// =============================================================================

// Colors is the palette used in PDF and XLSX exports.
var Colors = struct {
	Text       string
	Secondary  string
	Brand      string
	Overdue    string
	Border     string
	Background string
}{
	Text:       "#0B0C0C",
	Secondary:  "#505A5F",
	Brand:      "#1D70B8",
	Overdue:    "#D4351C",
	Border:     "#B1B4B6",
	Background: "#F3F2F1",
}

// HexToRGB converts a hex color string to RGB values.
// Input format: "#RRGGBB" or "RRGGBB"
func HexToRGB(hex string) (r, g, b int) {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) != 6 {
		return 0, 0, 0
	}

	r = hexToDec(hex[0:2])
	g = hexToDec(hex[2:4])
	b = hexToDec(hex[4:6])
	return
}

// hexToDec converts a 2-character hex string to decimal.
func hexToDec(hex string) int {
	v, err := strconv.ParseUint(hex, 16, 8)
	if err != nil {
		return 0
	}
	return int(v)
}

// TruncateText truncates text to a maximum length, adding ellipsis if needed.
func TruncateText(text string, maxLen int) string {
	runes := []rune(text)
	if len(runes) <= maxLen {
		return text
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}
