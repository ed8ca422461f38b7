package report

import (
	"context"
	"encoding/csv"
	"io"
)

// CSVGenerator writes exports as CSV with a header row.
type CSVGenerator struct{}

// NewCSVGenerator creates a new CSV generator.
func NewCSVGenerator() *CSVGenerator {
	return &CSVGenerator{}
}

// Format returns the output format of this generator.
func (g *CSVGenerator) Format() Format {
	return FormatCSV
}

// Generate writes one row per review.
func (g *CSVGenerator) Generate(ctx context.Context, data *Data, w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	out := csv.NewWriter(cw)

	if err := out.Write(headers()); err != nil {
		return cw.n, err
	}
	for i := range data.Reviews {
		if i%500 == 0 && ctx.Err() != nil {
			return cw.n, ctx.Err()
		}
		if err := out.Write(row(&data.Reviews[i], data.GeneratedAt)); err != nil {
			return cw.n, err
		}
	}
	out.Flush()
	return cw.n, out.Error()
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
