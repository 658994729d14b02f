package sampleio

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/cwbudde/rotospeed/dsp/spectrum"
)

// Format controls how real values are rendered.
type Format struct {
	// Decimals is the number of fixed decimals. A negative value uses the
	// shortest representation that round-trips.
	Decimals int
	// DecimalComma renders the decimal separator as ','.
	DecimalComma bool
}

// Shortest renders values in the shortest form that round-trips.
var Shortest = Format{Decimals: -1}

// FormatValue renders v according to f.
func (f Format) FormatValue(v float64) string {
	s := strconv.FormatFloat(v, 'f', f.Decimals, 64)
	if f.DecimalComma {
		s = strings.Replace(s, ".", ",", 1)
	}
	return s
}

// WriteSeries writes one value per line.
func WriteSeries(w io.Writer, series []float64, f Format) error {
	return writeLines(w, len(series), func(i int) string { return f.FormatValue(series[i]) })
}

// WriteIntegers writes one unsigned integer per line.
func WriteIntegers(w io.Writer, values []uint32) error {
	return writeLines(w, len(values), func(i int) string { return strconv.FormatUint(uint64(values[i]), 10) })
}

func writeLines(w io.Writer, n int, line func(int) string) error {
	bw := bufio.NewWriter(w)
	for i := range n {
		if i > 0 {
			if err := bw.WriteByte('\n'); err != nil {
				return fmt.Errorf("sampleio: write: %w", err)
			}
		}
		if _, err := bw.WriteString(line(i)); err != nil {
			return fmt.Errorf("sampleio: write: %w", err)
		}
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("sampleio: write: %w", err)
	}
	return nil
}

// DetectionFormat selects the layout of detection output.
type DetectionFormat string

const (
	// DetectionText writes "freq = F, peak = P, rpm = R" lines.
	DetectionText DetectionFormat = "text"
	// DetectionCSV writes a header and one record per frame.
	DetectionCSV DetectionFormat = "csv"
)

// ParseDetectionFormat validates a format name.
func ParseDetectionFormat(name string) (DetectionFormat, error) {
	switch f := DetectionFormat(strings.ToLower(strings.TrimSpace(name))); f {
	case DetectionText, DetectionCSV:
		return f, nil
	case "":
		return DetectionText, nil
	default:
		return "", fmt.Errorf("sampleio: unknown detection format %q", name)
	}
}

var detectionHeader = []string{"frame", "freq_hz", "peak", "rpm", "gated"}

// WriteDetections writes one line or record per frame result.
func WriteDetections(w io.Writer, results []spectrum.Result, format DetectionFormat) error {
	num := Shortest.FormatValue

	switch format {
	case DetectionText, "":
		return writeLines(w, len(results), func(i int) string {
			r := results[i]
			return fmt.Sprintf("freq = %s, peak = %s, rpm = %s", num(r.FrequencyHz), num(r.PeakMagnitude), num(r.RPM))
		})

	case DetectionCSV:
		cw := csv.NewWriter(w)
		if err := cw.Write(detectionHeader); err != nil {
			return fmt.Errorf("sampleio: write: %w", err)
		}
		for i, r := range results {
			rec := []string{
				strconv.Itoa(i),
				num(r.FrequencyHz),
				num(r.PeakMagnitude),
				num(r.RPM),
				strconv.FormatBool(r.Gated),
			}
			if err := cw.Write(rec); err != nil {
				return fmt.Errorf("sampleio: write: %w", err)
			}
		}
		cw.Flush()
		if err := cw.Error(); err != nil {
			return fmt.Errorf("sampleio: write: %w", err)
		}
		return nil

	default:
		return fmt.Errorf("sampleio: unknown detection format %q", format)
	}
}

// WriteFile creates path and hands it to write.
func WriteFile(path string, write func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = cerr
		}
	}()

	return write(f)
}
