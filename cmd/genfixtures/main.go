// Command genfixtures regenerates the calibration test fixtures from a raw
// TMS4 export. It runs every soil type through the actual domain engine so
// the fixture tables always match real pipeline behavior.
//
// Usage:
//
//	go run ./cmd/genfixtures \
//	  -input internal/domain/testdata/fixtures/data.csv \
//	  -out-dir internal/domain/testdata/fixtures
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/LabSOIL/sensor-toolbox/internal/domain"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	input := flag.String("input", "", "raw TMS4 export to calibrate")
	outDir := flag.String("out-dir", "", "directory for the output_<soil>.csv fixtures")
	flag.Parse()

	if *input == "" || *outDir == "" {
		flag.Usage()
		return fmt.Errorf("missing required flags: -input, -out-dir")
	}

	observations, err := parseInput(*input)
	if err != nil {
		return err
	}
	log.Printf("parsed %d observations from %s", len(observations), *input)

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		return err
	}

	for _, soil := range domain.AllSoilTypes {
		path := filepath.Join(*outDir, fmt.Sprintf("output_%s.csv", soil))
		if err := writeFixture(path, soil, observations); err != nil {
			return fmt.Errorf("generating %s: %w", path, err)
		}
		log.Printf("wrote fixture: %s", path)
	}

	printStats(observations)
	return nil
}

func parseInput(path string) ([]domain.SensorObservation, error) {
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
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return observations, nil
}

func writeFixture(path string, soil domain.SoilType, observations []domain.SensorObservation) error {
	engine := domain.NewEngine(soil.Calibration(), domain.DefaultConstants(), false)

	var b strings.Builder
	b.WriteString("datetime,raw,temp,VWC_moisture\n")
	for _, obs := range observations {
		rec, err := engine.Convert(obs)
		if err != nil {
			return err
		}
		vwc := "NA"
		if !rec.Masked {
			vwc = strconv.FormatFloat(rec.VWC, 'f', 6, 64)
		}
		fmt.Fprintf(&b, "%s,%d,%s,%s\n",
			rec.Timestamp.Format("2006-01-02 15:04:05"),
			rec.RawMoisture,
			strconv.FormatFloat(rec.Temperature, 'f', -1, 64),
			vwc)
	}
	return os.WriteFile(path, []byte(b.String()), 0o600)
}

// printStats reports per-soil summaries useful for updating test assertions.
func printStats(observations []domain.SensorObservation) {
	fmt.Println("\n=== Stats for updating test assertions ===")
	fmt.Printf("Observations: %d\n", len(observations))

	for _, soil := range domain.AllSoilTypes {
		engine := domain.NewEngine(soil.Calibration(), domain.DefaultConstants(), false)
		var minVWC, maxVWC, sum float64
		minVWC = 1
		clamped := 0
		for _, obs := range observations {
			rec, err := engine.Convert(obs)
			if err != nil {
				continue
			}
			if rec.VWC < minVWC {
				minVWC = rec.VWC
			}
			if rec.VWC > maxVWC {
				maxVWC = rec.VWC
			}
			if rec.VWC == 0 || rec.VWC == 1 {
				clamped++
			}
			sum += rec.VWC
		}
		fmt.Printf("%-18s min=%.6f max=%.6f mean=%.6f clamped=%d\n",
			soil, minVWC, maxVWC, sum/float64(len(observations)), clamped)
	}
}
