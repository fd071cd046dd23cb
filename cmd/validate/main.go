// Command validate checks the calibration fixture tables against the live
// engine. It re-runs every soil type over the raw export and verifies row
// counts, output format, and numeric agreement within tolerance, reporting
// per-field mismatch statistics.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -input internal/domain/testdata/fixtures/data.csv \
//	  -fixture-dir internal/domain/testdata/fixtures
package main

import (
	"bufio"
	"encoding/csv"
	"flag"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/LabSOIL/sensor-toolbox/internal/domain"
)

const tolerance = 1e-6

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	input := flag.String("input", "", "raw TMS4 export the fixtures were generated from")
	fixtureDir := flag.String("fixture-dir", "", "directory containing output_<soil>.csv fixtures")
	flag.Parse()

	if *input == "" || *fixtureDir == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*input, *fixtureDir); code != 0 {
		os.Exit(code)
	}
}

func run(inputPath, fixtureDir string) int {
	fmt.Println("=== Calibration Fixture Validation ===")
	fmt.Println()

	observations, err := loadObservations(inputPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load input: %v\n", err)
		return 1
	}

	fixtures, err := loadAllFixtures(fixtureDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load fixtures: %v\n", err)
		return 1
	}

	phases := []*phase{
		validateCompleteness(fixtures, len(observations)),
		validateFormat(fixtures),
		validateAgreement(fixtures, observations),
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Records: %d observations, %d fixture tables\n", len(observations), len(fixtures))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// ── Data loading ──

func loadObservations(path string) ([]domain.SensorObservation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var observations []domain.SensorObservation
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		text := scanner.Text()
		if strings.TrimSpace(text) == "" {
			continue
		}
		obs, err := domain.ParseRecord(text, lineNo)
		if err != nil {
			return nil, err
		}
		observations = append(observations, obs)
	}
	return observations, scanner.Err()
}

// fixtureRow is one parsed data row of an output table.
type fixtureRow struct {
	lineNum  int
	datetime string
	raw      string
	temp     string
	vwc      string
}

func loadAllFixtures(dir string) (map[domain.SoilType][]fixtureRow, error) {
	result := make(map[domain.SoilType][]fixtureRow, len(domain.AllSoilTypes))
	for _, soil := range domain.AllSoilTypes {
		path := filepath.Join(dir, fmt.Sprintf("output_%s.csv", soil))
		rows, err := loadFixture(path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", soil, err)
		}
		result[soil] = rows
	}
	return result, nil
}

func loadFixture(path string) ([]fixtureRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	all, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(all) < 2 {
		return nil, fmt.Errorf("no data rows in %s", path)
	}
	if got := strings.Join(all[0], ","); got != "datetime,raw,temp,VWC_moisture" {
		return nil, fmt.Errorf("unexpected header %q in %s", got, path)
	}

	rows := make([]fixtureRow, 0, len(all)-1)
	for i, row := range all[1:] {
		if len(row) != 4 {
			return nil, fmt.Errorf("line %d: expected 4 columns, got %d", i+2, len(row))
		}
		rows = append(rows, fixtureRow{
			lineNum:  i + 2,
			datetime: row[0],
			raw:      row[1],
			temp:     row[2],
			vwc:      row[3],
		})
	}
	return rows, nil
}

// ── Phase 1: Completeness ──
// Every soil type has a fixture with one row per input observation.

func validateCompleteness(fixtures map[domain.SoilType][]fixtureRow, want int) *phase {
	p := &phase{name: "Phase 1: Completeness (row counts)"}
	for _, soil := range domain.AllSoilTypes {
		rows, ok := fixtures[soil]
		if !ok {
			p.errorf("%s: fixture missing", soil)
			continue
		}
		if len(rows) != want {
			p.errorf("%s: expected %d rows, got %d", soil, want, len(rows))
		}
	}
	return p
}

// ── Phase 2: Format ──
// Datetime layout, integer raw column, VWC either NA or a value in [0, 1].

func validateFormat(fixtures map[domain.SoilType][]fixtureRow) *phase {
	p := &phase{name: "Phase 2: Format (column shapes)"}
	for _, soil := range domain.AllSoilTypes {
		for _, row := range fixtures[soil] {
			if _, err := time.Parse("2006-01-02 15:04:05", row.datetime); err != nil {
				p.errorf("%s line %d: bad datetime %q", soil, row.lineNum, row.datetime)
			}
			if _, err := strconv.Atoi(row.raw); err != nil {
				p.errorf("%s line %d: bad raw %q", soil, row.lineNum, row.raw)
			}
			if _, err := strconv.ParseFloat(row.temp, 64); err != nil {
				p.errorf("%s line %d: bad temp %q", soil, row.lineNum, row.temp)
			}
			if row.vwc == "NA" {
				continue
			}
			v, err := strconv.ParseFloat(row.vwc, 64)
			if err != nil {
				p.errorf("%s line %d: bad VWC %q", soil, row.lineNum, row.vwc)
			} else if v < 0 || v > 1 {
				p.errorf("%s line %d: VWC %g outside [0, 1]", soil, row.lineNum, v)
			}
		}
	}
	return p
}

// ── Phase 3: Agreement ──
// Re-run the engine and compare every field against the fixture rows,
// accumulating per-field mismatch counts.

func validateAgreement(fixtures map[domain.SoilType][]fixtureRow, observations []domain.SensorObservation) *phase {
	p := &phase{name: "Phase 3: Agreement (engine vs fixtures)"}

	mismatches := map[string]int{}
	for _, soil := range domain.AllSoilTypes {
		rows := fixtures[soil]
		if len(rows) != len(observations) {
			continue // already reported in phase 1
		}

		engine := domain.NewEngine(soil.Calibration(), domain.DefaultConstants(), false)
		for i, obs := range observations {
			rec, err := engine.Convert(obs)
			if err != nil {
				p.errorf("%s row %d: conversion failed: %v", soil, i, err)
				continue
			}
			compareRow(p, mismatches, soil, rows[i], rec)
		}
	}

	if len(mismatches) > 0 {
		fmt.Println("  Mismatches by field:")
		for _, field := range []string{"datetime", "raw", "temp", "VWC_moisture"} {
			if n := mismatches[field]; n > 0 {
				fmt.Printf("    %-14s %d\n", field, n)
			}
		}
	}
	return p
}

func compareRow(p *phase, mismatches map[string]int, soil domain.SoilType, row fixtureRow, rec domain.VWCRecord) {
	if want := rec.Timestamp.Format("2006-01-02 15:04:05"); row.datetime != want {
		mismatches["datetime"]++
		p.errorf("%s line %d: datetime: expected %q, got %q", soil, row.lineNum, want, row.datetime)
	}
	if want := strconv.Itoa(rec.RawMoisture); row.raw != want {
		mismatches["raw"]++
		p.errorf("%s line %d: raw: expected %s, got %s", soil, row.lineNum, want, row.raw)
	}
	gotTemp, err := strconv.ParseFloat(row.temp, 64)
	if err != nil || math.Abs(gotTemp-rec.Temperature) > tolerance {
		mismatches["temp"]++
		p.errorf("%s line %d: temp: expected %g, got %q", soil, row.lineNum, rec.Temperature, row.temp)
	}
	if rec.Masked {
		if row.vwc != "NA" {
			mismatches["VWC_moisture"]++
			p.errorf("%s line %d: VWC: expected NA, got %q", soil, row.lineNum, row.vwc)
		}
		return
	}
	gotVWC, err := strconv.ParseFloat(row.vwc, 64)
	if err != nil || math.Abs(gotVWC-rec.VWC) > tolerance {
		mismatches["VWC_moisture"]++
		p.errorf("%s line %d: VWC: expected %.6f, got %q", soil, row.lineNum, rec.VWC, row.vwc)
	}
}
