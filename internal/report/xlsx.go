package report

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/hmpps/incentives-ui/internal/format"
)

const (
	xlsxSheet     = "Reviews"
	xlsxHeaderRow = 3
)

// XLSXGenerator writes exports as a single-sheet spreadsheet.
type XLSXGenerator struct{}

// NewXLSXGenerator creates a new XLSX generator.
func NewXLSXGenerator() *XLSXGenerator {
	return &XLSXGenerator{}
}

// Format returns the output format of this generator.
func (g *XLSXGenerator) Format() Format {
	return FormatXLSX
}

// Generate writes a title row, a frozen header row and one row per review.
// Numeric columns are stored as numbers.
func (g *XLSXGenerator) Generate(ctx context.Context, data *Data, w io.Writer) (int64, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", xlsxSheet); err != nil {
		return 0, fmt.Errorf("rename sheet: %w", err)
	}

	styles, err := newXLSXStyles(f)
	if err != nil {
		return 0, err
	}

	// Title and generated date
	if err := f.SetCellValue(xlsxSheet, "A1", data.Prison+" - "+data.Title()); err != nil {
		return 0, err
	}
	if err := f.SetCellStyle(xlsxSheet, "A1", "A1", styles.title); err != nil {
		return 0, err
	}
	if err := f.SetCellValue(xlsxSheet, "A2", "Generated "+format.Date(data.GeneratedAt, format.DateLong)); err != nil {
		return 0, err
	}

	// Header
	for i, c := range Columns {
		cell, err := excelize.CoordinatesToCellName(i+1, xlsxHeaderRow)
		if err != nil {
			return 0, err
		}
		if err := f.SetCellValue(xlsxSheet, cell, c.Header); err != nil {
			return 0, err
		}
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return 0, err
		}
		if err := f.SetColWidth(xlsxSheet, col, col, c.Width*0.8); err != nil {
			return 0, err
		}
	}
	first, _ := excelize.CoordinatesToCellName(1, xlsxHeaderRow)
	last, _ := excelize.CoordinatesToCellName(len(Columns), xlsxHeaderRow)
	if err := f.SetCellStyle(xlsxSheet, first, last, styles.header); err != nil {
		return 0, err
	}

	// Rows
	for i := range data.Reviews {
		if i%500 == 0 && ctx.Err() != nil {
			return 0, ctx.Err()
		}
		review := &data.Reviews[i]
		rowNum := xlsxHeaderRow + 1 + i
		for j, c := range Columns {
			cell, err := excelize.CoordinatesToCellName(j+1, rowNum)
			if err != nil {
				return 0, err
			}
			value := c.Value(review, data.GeneratedAt)
			if err := setXLSXValue(f, cell, value, c.Number); err != nil {
				return 0, err
			}
			if c.Header == "Overdue" && value == format.YesNo(true) {
				if err := f.SetCellStyle(xlsxSheet, cell, cell, styles.overdue); err != nil {
					return 0, err
				}
			}
		}
	}

	if err := f.SetPanes(xlsxSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      xlsxHeaderRow,
		TopLeftCell: "A" + strconv.Itoa(xlsxHeaderRow+1),
		ActivePane:  "bottomLeft",
	}); err != nil {
		return 0, fmt.Errorf("freeze header: %w", err)
	}
	if len(data.Reviews) > 0 {
		end, _ := excelize.CoordinatesToCellName(len(Columns), xlsxHeaderRow+len(data.Reviews))
		if err := f.AutoFilter(xlsxSheet, first+":"+end, nil); err != nil {
			return 0, fmt.Errorf("add filter: %w", err)
		}
	}

	return f.WriteTo(w)
}

func setXLSXValue(f *excelize.File, cell, value string, number bool) error {
	if number && value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return f.SetCellValue(xlsxSheet, cell, n)
		}
	}
	return f.SetCellValue(xlsxSheet, cell, value)
}

type xlsxStyles struct {
	title   int
	header  int
	overdue int
}

func newXLSXStyles(f *excelize.File) (xlsxStyles, error) {
	var s xlsxStyles
	var err error

	s.title, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 14, Color: strings.TrimPrefix(Colors.Text, "#")},
	})
	if err != nil {
		return s, fmt.Errorf("title style: %w", err)
	}

	s.header, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{strings.TrimPrefix(Colors.Brand, "#")}},
		Alignment: &excelize.Alignment{
			WrapText: true,
			Vertical: "center",
		},
	})
	if err != nil {
		return s, fmt.Errorf("header style: %w", err)
	}

	s.overdue, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: strings.TrimPrefix(Colors.Overdue, "#")},
	})
	if err != nil {
		return s, fmt.Errorf("overdue style: %w", err)
	}
	return s, nil
}
