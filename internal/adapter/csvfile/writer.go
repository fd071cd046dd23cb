package csvfile

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/LabSOIL/sensor-toolbox/internal/domain"
)

// outputTimeLayout matches the datetime form of the reference package's
// output tables, so rows compare directly against reference fixtures.
const outputTimeLayout = "2006-01-02 15:04:05"

var header = []string{"datetime", "raw", "temp", "VWC_moisture"}

// Writer emits calibrated records to a CSV output table.
// It implements pipeline.Loader.
//
// Rows are written to a temporary file next to the destination; Commit
// renames it into place. A failed run aborted before Commit leaves no
// output file behind, partial or otherwise.
type Writer struct {
	file *os.File
	csv  *csv.Writer
	path string
	rows int
}

// NewWriter creates the output table and writes its header.
func NewWriter(path string) (*Writer, error) {
	f, err := os.CreateTemp(filepath.Dir(path), ".output-*.csv.tmp")
	if err != nil {
		return nil, fmt.Errorf("create output %s: %w", path, err)
	}
	w := &Writer{file: f, csv: csv.NewWriter(f), path: path}
	if err := w.csv.Write(header); err != nil {
		w.Abort()
		return nil, fmt.Errorf("write output header: %w", err)
	}
	return w, nil
}

// Load appends one calibrated record as a CSV row. Masked readings
// serialize their VWC as NA, matching the reference package.
func (w *Writer) Load(_ context.Context, rec domain.VWCRecord) error {
	vwc := "NA"
	if !rec.Masked {
		vwc = strconv.FormatFloat(rec.VWC, 'f', 6, 64)
	}
	row := []string{
		rec.Timestamp.Format(outputTimeLayout),
		strconv.Itoa(rec.RawMoisture),
		strconv.FormatFloat(rec.Temperature, 'f', -1, 64),
		vwc,
	}
	if err := w.csv.Write(row); err != nil {
		return fmt.Errorf("write output row: %w", err)
	}
	w.rows++
	return nil
}

// Commit flushes all rows and moves the table to its final path.
func (w *Writer) Commit() error {
	w.csv.Flush()
	if err := w.csv.Error(); err != nil {
		w.Abort()
		return fmt.Errorf("flush output: %w", err)
	}
	if err := w.file.Close(); err != nil {
		os.Remove(w.file.Name())
		return fmt.Errorf("close output: %w", err)
	}
	if err := os.Rename(w.file.Name(), w.path); err != nil {
		os.Remove(w.file.Name())
		return fmt.Errorf("finalize output %s: %w", w.path, err)
	}
	return nil
}

// Abort discards the partially written table. Safe to call after Commit,
// where it is a no-op.
func (w *Writer) Abort() {
	w.file.Close()
	os.Remove(w.file.Name())
}

// Rows returns the number of data rows written so far, header excluded.
func (w *Writer) Rows() int { return w.rows }
