package main

import (
	"bytes"
	"flag"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cwbudde/rotospeed/dsp/core"
	"github.com/cwbudde/rotospeed/internal/config"
	"github.com/cwbudde/rotospeed/internal/testutil"
)

func writeDump(t *testing.T, values []float64, decimalComma bool) string {
	t.Helper()

	lines := make([]string, len(values))
	for i, v := range values {
		lines[i] = strconv.FormatFloat(v, 'f', -1, 64)
		if decimalComma {
			lines[i] = strings.Replace(lines[i], ".", ",", 1)
		}
	}

	path := filepath.Join(t.TempDir(), "dump.txt")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o600))
	return path
}

func readLines(t *testing.T, path string) []string {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return strings.Split(string(data), "\n")
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	err := run(args, &stdout, &stderr)
	return stdout.String(), err
}

func TestRunDispatch(t *testing.T) {
	_, err := execute(t)
	require.Error(t, err)

	_, err = execute(t, "bogus")
	require.ErrorContains(t, err, "unknown command")

	_, err = execute(t, "help")
	require.ErrorIs(t, err, flag.ErrHelp)

	_, err = execute(t, "detect", "-h")
	require.ErrorIs(t, err, flag.ErrHelp)
}

func TestDetectCommand(t *testing.T) {
	// Two frames of a 2 kHz tone at 16384 Hz, then a partial frame.
	input := writeDump(t, testutil.BinTone(125, 1024, 400, 2*1024+100), false)
	metricsFile := filepath.Join(t.TempDir(), "rotospeed.prom")

	_, err := execute(t, "detect", "-no-color", "-metrics-file", metricsFile, input)
	require.NoError(t, err)

	require.Equal(t, []string{
		"freq = 2000, peak = 204800, rpm = 15000",
		"freq = 2000, peak = 204800, rpm = 15000",
	}, readLines(t, input+".detect"))

	data, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	require.Contains(t, string(data), "rotospeed_frames_processed_total 2")
	require.Contains(t, string(data), "rotospeed_samples_read_total 2148")
}

func TestDetectCommandCSVAndGate(t *testing.T) {
	input := writeDump(t, testutil.BinTone(125, 1024, 100, 1024), true)
	out := filepath.Join(t.TempDir(), "out.csv")

	_, err := execute(t, "detect", "-no-color", "-format", "csv", "-o", out, input)
	require.NoError(t, err)

	require.Equal(t, []string{
		"frame,freq_hz,peak,rpm,gated",
		"0,0,51200,0,true",
		"",
	}, readLines(t, out))
}

func TestDetectCommandErrors(t *testing.T) {
	_, err := execute(t, "detect", "-no-color", filepath.Join(t.TempDir(), "missing.txt"))
	require.Error(t, err)

	_, err = execute(t, "detect", "-no-color")
	require.Error(t, err)

	input := writeDump(t, testutil.DC(1, 2048), false)
	_, err = execute(t, "detect", "-no-color", "-scale", "5", input)
	require.ErrorIs(t, err, config.ErrInvalid)
}

func TestMetricsWrittenOnFailedRun(t *testing.T) {
	dir := t.TempDir()
	malformed := filepath.Join(dir, "malformed.txt")
	require.NoError(t, os.WriteFile(malformed, []byte("1\n2\nx\n"), 0o600))
	empty := filepath.Join(dir, "empty.txt")
	require.NoError(t, os.WriteFile(empty, nil, 0o600))

	tests := []struct {
		args []string
		want error
	}{
		{[]string{"detect", malformed}, core.ErrMalformedSample},
		{[]string{"filter", malformed}, core.ErrMalformedSample},
		{[]string{"resample", "-s", "2", malformed}, core.ErrMalformedSample},
		{[]string{"spectrum", "-p", "16", malformed}, core.ErrMalformedSample},
		{[]string{"normalize", malformed}, core.ErrMalformedSample},
		{[]string{"normalize", empty}, core.ErrInsufficientSamples},
		{[]string{"detect", "-scale", "5", empty}, config.ErrInvalid},
	}

	for _, test := range tests {
		t.Run(strings.Join(test.args[:len(test.args)-1], " "), func(t *testing.T) {
			metricsFile := filepath.Join(t.TempDir(), "rotospeed.prom")
			args := append([]string{test.args[0], "-no-color", "-metrics-file", metricsFile}, test.args[1:]...)

			_, err := execute(t, args...)
			require.ErrorIs(t, err, test.want)

			data, err := os.ReadFile(metricsFile)
			require.NoError(t, err)
			require.Contains(t, string(data), "rotospeed_samples_read_total 0")
		})
	}
}

func TestDetectFlagsApply(t *testing.T) {
	cfg := config.Default()
	f := detectFlags{lowpass: 3000, sampling: 32768, scale: 2}

	require.NoError(t, f.apply(&cfg, map[string]bool{"lp": true, "s": true, "scale": true}))
	require.Equal(t, 3000.0, cfg.Detector.LowpassHz)
	require.Equal(t, 1, cfg.Detector.LowpassPasses)
	require.Equal(t, 32768.0, cfg.Detector.SampleRate)
	require.Equal(t, 2, cfg.Detector.Decimation)
}

func TestResampleCommand(t *testing.T) {
	input := writeDump(t, testutil.DC(1000, 200), false)

	_, err := execute(t, "resample", "-no-color", "-s", "2", input)
	require.NoError(t, err)

	lines := readLines(t, input+".resampled")
	require.Len(t, lines, 70)
	for _, l := range lines {
		require.Equal(t, "1000", l)
	}

	long := writeDump(t, testutil.DC(1000, 300), false)
	var stdout, stderr bytes.Buffer
	require.NoError(t, run([]string{"resample", "-no-color", "-v", "-s", "8", long}, &stdout, &stderr))
	require.Contains(t, stderr.String(), "taps=235")
	require.Contains(t, stderr.String(), "stopband_db=-")

	_, err = execute(t, "resample", "-no-color", input)
	require.ErrorContains(t, err, "-s is required")

	_, err = execute(t, "resample", "-no-color", "-s", "5", input)
	require.Error(t, err)
}

func TestFilterCommand(t *testing.T) {
	series := testutil.Add(
		testutil.DeterministicSine(2000, 250000, 1.5, 30000),
		testutil.DC(2, 30000),
	)
	input := writeDump(t, series, true)

	_, err := execute(t, "filter", "-no-color", input)
	require.NoError(t, err)

	filtered := readLines(t, input+".filtered")
	require.Len(t, filtered, len(series))
	require.Regexp(t, `^-?\d+,\d{4}$`, filtered[100])

	spectrum := readLines(t, input+".spectrum")
	require.Len(t, spectrum, 16384)
}

func TestFilterCommandShortInputSkipsSpectrum(t *testing.T) {
	input := writeDump(t, testutil.DC(1, 500), false)

	_, err := execute(t, "filter", "-no-color", "-period", "-hp", "300", input)
	require.NoError(t, err)

	require.Len(t, readLines(t, input+".filtered"), 500)
	require.NoFileExists(t, input+".spectrum")
}

func TestSpectrumCommand(t *testing.T) {
	series := append(testutil.BinTone(5, 64, 1, 64), testutil.DC(7, 36)...)
	input := writeDump(t, testutil.Add(series, testutil.DC(3, 100)), false)

	_, err := execute(t, "spectrum", "-no-color", "-p", "64", "-backend", "godsp", input)
	require.NoError(t, err)

	lines := readLines(t, input+".spectre")
	require.Len(t, lines, 64)
	require.Equal(t, "0", lines[0])
	require.Equal(t, "32", lines[5])
	require.Equal(t, "32", lines[59])

	_, err = execute(t, "spectrum", "-no-color", "-p", "64", "-window", "hann", "-o", input+".hann", input)
	require.NoError(t, err)
	lines = readLines(t, input+".hann")
	require.Equal(t, "16", lines[5])
	require.Equal(t, "8", lines[6])

	_, err = execute(t, "spectrum", "-no-color", "-p", "64", "-window", "bartlett", input)
	require.Error(t, err)

	_, err = execute(t, "spectrum", "-no-color", input)
	require.ErrorContains(t, err, "-p is required")

	_, err = execute(t, "spectrum", "-no-color", "-p", "128", input)
	require.Error(t, err)
}

func TestNormalizeCommand(t *testing.T) {
	input := writeDump(t, []float64{0, 2.048, 5, -1}, true)

	_, err := execute(t, "normalize", "-no-color", input)
	require.NoError(t, err)
	require.Equal(t, []string{"0", "32768", "65535", "0"}, readLines(t, input+".normalized"))

	_, err = execute(t, "normalize", "-no-color", "-src-max", "1", "-dst-max", "255", "-o", input+".u8", input)
	require.NoError(t, err)
	require.Equal(t, []string{"0", "255", "255", "0"}, readLines(t, input+".u8"))
}

func TestFreqlistCommand(t *testing.T) {
	out, err := execute(t, "freqlist", "-no-color", "-min", "10", "-max", "50", "-precision", "0.1")
	require.NoError(t, err)

	require.Equal(t,
		"11\n12\n13\n14\n15\n16\n17\n18\n20\n22\n24\n26\n28\n31\n34\n37\n41\n45\n50\n",
		out)

	out, err = execute(t, "freqlist", "-no-color", "-response", "1000")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 234)
	require.Contains(t, lines[0], "cutoff_hz")
}

func TestConfigFlag(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rig.toml")
	require.NoError(t, os.WriteFile(path, []byte("[sweep]\nmin_hz = 40\nmax_hz = 50\nprecision = 0.1\n"), 0o600))

	out, err := execute(t, "freqlist", "-no-color", "-config", path)
	require.NoError(t, err)
	require.Equal(t, "41\n45\n50\n", out)

	require.NoError(t, os.WriteFile(path, []byte("[sweep]\nbogus = 1\n"), 0o600))
	_, err = execute(t, "freqlist", "-no-color", "-config", path)
	require.ErrorContains(t, err, "unknown keys")
}
