// Package export writes record lists as CSV files and delivers them to a
// configured destination.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/kuncheriajose/firehawk-frontend/internal/core"
)

// DefaultBaseName is the file name prefix used when none is configured.
const DefaultBaseName = "car-database"

// Filename returns base-YYYY-MM-DD.csv for the local date of now.
func Filename(base string, now time.Time) string {
	if base == "" {
		base = DefaultBaseName
	}
	return fmt.Sprintf("%s-%s.csv", base, now.Format("2006-01-02"))
}

// Header returns the CSV columns for records: the first record's field
// names followed by "id" when that record has one. Empty input has no header.
func Header(records []core.Record) []string {
	if len(records) == 0 {
		return nil
	}
	header := records[0].Keys()
	if records[0].ID != "" {
		header = append(header, "id")
	}
	return header
}

// WriteCSV writes records with CRLF line endings. Fields a record lacks are
// written as empty cells; fields not in the header are dropped.
func WriteCSV(w io.Writer, records []core.Record) error {
	header := Header(records)
	if header == nil {
		return nil
	}

	cw := csv.NewWriter(w)
	cw.UseCRLF = true

	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	row := make([]string, len(header))
	for i, r := range records {
		for j, col := range header {
			// Records never carry an "id" field; the column is the identifier.
			if col == "id" {
				row[j] = r.ID
				continue
			}
			row[j] = r.Get(col).String()
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	cw.Flush()
	return cw.Error()
}
