package export

import (
	"encoding/csv"
	"io"
	"time"

	"delivery-report-service/internal/report"
)

// WriteCSV writes one header line and one line per report row. Timestamps are rendered in loc.
func WriteCSV(w io.Writer, rep *report.Report, loc *time.Location) error {
	loc = orUTC(loc)
	cols := columnsFor(rep.Shape)

	writer := csv.NewWriter(w)
	header := make([]string, len(cols))
	for i, col := range cols {
		header[i] = col.header
	}
	if err := writer.Write(header); err != nil {
		return err
	}

	line := make([]string, len(cols))
	for _, row := range rep.Data {
		for i, col := range cols {
			line[i] = col.text(row, loc)
		}
		if err := writer.Write(line); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
