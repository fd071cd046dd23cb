// Package csvfile adapts sensor export files and the output table to the
// pipeline's Extractor and Loader interfaces.
package csvfile

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/LabSOIL/sensor-toolbox/internal/domain"
)

// Reader streams raw sensor lines from a TMS4 export file.
// It implements pipeline.Extractor.
type Reader struct {
	file    *os.File
	scanner *bufio.Scanner
	lineNo  int
}

// NewReader opens the input file for streaming.
func NewReader(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input %s: %w", path, err)
	}
	return &Reader{file: f, scanner: bufio.NewScanner(f)}, nil
}

// Extract returns the next non-blank line with its 1-based line number, or
// io.EOF when the file is exhausted. Blank lines (including the final
// newline of a well-formed file) are skipped, not rejected.
func (r *Reader) Extract(ctx context.Context) (domain.RawLine, error) {
	if err := ctx.Err(); err != nil {
		return domain.RawLine{}, err
	}
	for r.scanner.Scan() {
		r.lineNo++
		text := r.scanner.Text()
		if strings.TrimSpace(text) == "" {
			continue
		}
		return domain.RawLine{Text: text, Number: r.lineNo}, nil
	}
	if err := r.scanner.Err(); err != nil {
		return domain.RawLine{}, fmt.Errorf("read input: %w", err)
	}
	return domain.RawLine{}, io.EOF
}

// Close releases the input file handle.
func (r *Reader) Close() error {
	return r.file.Close()
}
