package report

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"

	"github.com/hmpps/incentives-ui/internal/format"
)

// =============================================================================
// PDF Generator
// =============================================================================

// PDFGenerator writes exports as a landscape A4 table.
type PDFGenerator struct {
	// Page dimensions (A4 landscape in mm)
	pageWidth  float64
	pageHeight float64
	margin     float64

	// Content area
	contentWidth float64
	rowHeight    float64
}

// NewPDFGenerator creates a new PDF generator with default settings.
func NewPDFGenerator() *PDFGenerator {
	margin := 12.0
	pageWidth := 297.0
	return &PDFGenerator{
		pageWidth:    pageWidth,
		pageHeight:   210.0,
		margin:       margin,
		contentWidth: pageWidth - (2 * margin),
		rowHeight:    7,
	}
}

// Format returns the output format of this generator.
func (g *PDFGenerator) Format() Format {
	return FormatPDF
}

// Generate writes the title block and the reviews table, repeating the table
// header on every page.
func (g *PDFGenerator) Generate(ctx context.Context, data *Data, w io.Writer) (int64, error) {
	pdf := fpdf.New("L", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetTitle("Incentive reviews - "+data.Title(), true)
	pdf.SetAuthor(data.Prison, true)
	pdf.SetCreator("Incentives UI", true)
	pdf.SetMargins(g.margin, g.margin, g.margin)
	pdf.SetAutoPageBreak(true, 18)
	pdf.AliasNbPages("")

	pdf.SetFooterFunc(func() {
		g.addFooter(pdf, data)
	})

	pdf.AddPage()
	g.addTitle(pdf, tr, data)

	if len(data.Reviews) == 0 {
		pdf.SetFont("Helvetica", "", 11)
		pdf.Cell(0, 8, "There are no prisoners on this level.")
	} else {
		widths := g.columnWidths()
		g.addTableHeader(pdf, widths)
		for i := range data.Reviews {
			if i%200 == 0 && ctx.Err() != nil {
				return 0, ctx.Err()
			}
			if pdf.GetY()+g.rowHeight > g.pageHeight-18 {
				pdf.AddPage()
				g.addTableHeader(pdf, widths)
			}
			g.addRow(pdf, tr, widths, row(&data.Reviews[i], data.GeneratedAt), i%2 == 1)
		}
	}

	if err := pdf.Error(); err != nil {
		return 0, fmt.Errorf("pdf generation error: %w", err)
	}

	// Write to buffer to count bytes
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return 0, fmt.Errorf("pdf output error: %w", err)
	}

	n, err := w.Write(buf.Bytes())
	return int64(n), err
}

// =============================================================================
// Sections
// =============================================================================

func (g *PDFGenerator) addTitle(pdf *fpdf.Fpdf, tr func(string) string, data *Data) {
	r, gr, b := HexToRGB(Colors.Text)
	pdf.SetTextColor(r, gr, b)
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 9, tr(data.Title()))
	pdf.Ln(10)

	r, gr, b = HexToRGB(Colors.Secondary)
	pdf.SetTextColor(r, gr, b)
	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 6, tr(data.Prison))
	pdf.Ln(6)
	pdf.Cell(0, 6, format.Pluralise(len(data.Reviews), "prisoner", "prisoners"))
	pdf.Ln(10)

	r, gr, b = HexToRGB(Colors.Text)
	pdf.SetTextColor(r, gr, b)
}

func (g *PDFGenerator) columnWidths() []float64 {
	var total float64
	for _, c := range Columns {
		total += c.Width
	}
	widths := make([]float64, len(Columns))
	for i, c := range Columns {
		widths[i] = c.Width / total * g.contentWidth
	}
	return widths
}

func (g *PDFGenerator) addTableHeader(pdf *fpdf.Fpdf, widths []float64) {
	r, gr, b := HexToRGB(Colors.Brand)
	pdf.SetFillColor(r, gr, b)
	r, gr, b = HexToRGB(Colors.Border)
	pdf.SetDrawColor(r, gr, b)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 8)

	for i, c := range Columns {
		align := "L"
		if c.Number {
			align = "R"
		}
		pdf.CellFormat(widths[i], g.rowHeight+2, c.Header, "1", 0, align, true, 0, "")
	}
	pdf.Ln(-1)

	r, gr, b = HexToRGB(Colors.Text)
	pdf.SetTextColor(r, gr, b)
}

func (g *PDFGenerator) addRow(pdf *fpdf.Fpdf, tr func(string) string, widths []float64, values []string, shaded bool) {
	r, gr, b := HexToRGB(Colors.Background)
	pdf.SetFillColor(r, gr, b)
	pdf.SetFont("Helvetica", "", 8)

	for i, c := range Columns {
		align := "L"
		if c.Number {
			align = "R"
		}
		overdue := c.Header == "Overdue" && values[i] == format.YesNo(true)
		if overdue {
			r, gr, b := HexToRGB(Colors.Overdue)
			pdf.SetTextColor(r, gr, b)
			pdf.SetFont("Helvetica", "B", 8)
		}
		maxChars := int(widths[i] / 1.6)
		pdf.CellFormat(widths[i], g.rowHeight, tr(TruncateText(values[i], maxChars)), "1", 0, align, shaded, 0, "")
		if overdue {
			r, gr, b := HexToRGB(Colors.Text)
			pdf.SetTextColor(r, gr, b)
			pdf.SetFont("Helvetica", "", 8)
		}
	}
	pdf.Ln(-1)
}

func (g *PDFGenerator) addFooter(pdf *fpdf.Fpdf, data *Data) {
	pdf.SetY(-14)

	r, gr, b := HexToRGB(Colors.Border)
	pdf.SetDrawColor(r, gr, b)
	pdf.Line(g.margin, pdf.GetY()-2, g.pageWidth-g.margin, pdf.GetY()-2)

	r, gr, b = HexToRGB(Colors.Secondary)
	pdf.SetTextColor(r, gr, b)
	pdf.SetFont("Helvetica", "", 8)

	pdf.Cell(0, 8, "Generated "+format.Date(data.GeneratedAt, format.DateLong))

	pdf.SetX(-g.margin - 40)
	pdf.CellFormat(40, 8, fmt.Sprintf("Page %d of {nb}", pdf.PageNo()), "", 0, "R", false, 0, "")
}
