package sampleio

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/cwbudde/rotospeed/dsp/core"
)

// MalformedSampleError reports an input line that is not a finite number.
type MalformedSampleError struct {
	Line int
	Text string
}

func (e *MalformedSampleError) Error() string {
	return fmt.Sprintf("sampleio: line %d: malformed sample %q", e.Line, e.Text)
}

func (e *MalformedSampleError) Unwrap() error { return core.ErrMalformedSample }

// ParseSample parses one sample. A single comma is accepted as the decimal
// separator. NaN and infinities are rejected.
func ParseSample(text string) (float64, bool) {
	s := strings.TrimSpace(text)
	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || !core.IsFinite(v) {
		return 0, false
	}

	return v, true
}

// ReadSeries parses one sample per line. Trailing blank lines are ignored; a
// blank line followed by more samples is malformed. Input without any sample
// fails with core.ErrInsufficientSamples.
func ReadSeries(r io.Reader) ([]float64, error) {
	var (
		series []float64
		blank  int // first blank line of the current run, 0 if none
		line   int
	)

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line++
		text := sc.Text()

		if strings.TrimSpace(text) == "" {
			if blank == 0 {
				blank = line
			}
			continue
		}

		if blank != 0 {
			return nil, &MalformedSampleError{Line: blank}
		}

		v, ok := ParseSample(text)
		if !ok {
			return nil, &MalformedSampleError{Line: line, Text: text}
		}
		series = append(series, v)
	}

	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("sampleio: read: %w", err)
	}

	if len(series) == 0 {
		return nil, fmt.Errorf("sampleio: no samples: %w", core.ErrInsufficientSamples)
	}

	return series, nil
}

// ReadFile reads a sample dump from path.
func ReadFile(path string) ([]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	series, err := ReadSeries(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return series, nil
}
