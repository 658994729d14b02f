package sampleio

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cwbudde/rotospeed/dsp/core"
)

func TestParseSample(t *testing.T) {
	tests := []struct {
		text string
		want float64
		ok   bool
	}{
		{"1.5", 1.5, true},
		{"1,5", 1.5, true},
		{"  -2048 ", -2048, true},
		{"3,0000\r", 3, true},
		{"1e3", 1000, true},
		{"", 0, false},
		{"abc", 0, false},
		{"1,2,3", 0, false},
		{"1,234.5", 0, false},
		{"NaN", 0, false},
		{"-Inf", 0, false},
	}

	for _, test := range tests {
		got, ok := ParseSample(test.text)
		require.Equal(t, test.ok, ok, "text %q", test.text)
		require.Equal(t, test.want, got, "text %q", test.text)
	}
}

func TestReadSeries(t *testing.T) {
	in := "1\r\n2,5\n-3.25\n\n\n"

	series, err := ReadSeries(strings.NewReader(in))
	require.NoError(t, err)
	require.Equal(t, []float64{1, 2.5, -3.25}, series)
}

func TestReadSeriesEmpty(t *testing.T) {
	for _, in := range []string{"", "\n", "  \n\n\t\n"} {
		series, err := ReadSeries(strings.NewReader(in))
		require.ErrorIs(t, err, core.ErrInsufficientSamples, "input %q", in)
		require.Nil(t, series)
	}
}

func TestReadSeriesMalformed(t *testing.T) {
	tests := []struct {
		name string
		in   string
		line int
	}{
		{"garbage", "1\n2\nx7\n4", 3},
		{"interior blank", "1\n\n2", 2},
		{"nan text", "NaN", 1},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := ReadSeries(strings.NewReader(test.in))
			require.ErrorIs(t, err, core.ErrMalformedSample)

			var mse *MalformedSampleError
			require.True(t, errors.As(err, &mse))
			require.Equal(t, test.line, mse.Line)
		})
	}
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dump.txt")
	require.NoError(t, os.WriteFile(path, []byte("0,5\n1,5"), 0o600))

	series, err := ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, []float64{0.5, 1.5}, series)

	_, err = ReadFile(filepath.Join(t.TempDir(), "missing.txt"))
	require.Error(t, err)
}
