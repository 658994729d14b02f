package rpm

import (
	"bytes"
	"log/slog"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/cwbudde/rotospeed/dsp/core"
	"github.com/cwbudde/rotospeed/dsp/filter/biquad"
	"github.com/cwbudde/rotospeed/dsp/spectrum"
	"github.com/cwbudde/rotospeed/internal/testutil"
)

type recordingObserver struct {
	mu      sync.Mutex
	stages  []Stage
	reports int
}

func (o *recordingObserver) ObserveStage(stage Stage, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.stages = append(o.stages, stage)
}

func (o *recordingObserver) ObserveReport(*spectrum.Report) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.reports++
}

func TestRunDetectOnly(t *testing.T) {
	series := testutil.BinTone(125, 1024, 400, 4096)
	obs := &recordingObserver{}

	m, err := Run(series, Config{
		InputRate: 16384,
		Detector:  spectrum.DefaultDetectorConfig(),
		Observer:  obs,
	})
	require.NoError(t, err)

	require.Equal(t, 16384.0, m.SampleRate)
	require.True(t, m.Report.Complete)
	require.Len(t, m.Report.Frames, 4)
	for _, r := range m.Report.Frames {
		require.Equal(t, 2000.0, r.FrequencyHz)
		require.Equal(t, 15000.0, r.RPM)
	}

	require.InDelta(t, 2000, m.Level.CrossingFrequency(m.SampleRate), 20)

	require.Equal(t, []Stage{StageDetect}, obs.stages)
	require.Equal(t, 1, obs.reports)
}

func TestRunDecimateAndFilter(t *testing.T) {
	const inputRate = 32768.0

	// 2 kHz rotation tone plus a 12 kHz spike component above the
	// decimated Nyquist rate.
	series := testutil.Add(
		testutil.DeterministicSine(2000, inputRate, 400, 8*2048+500),
		testutil.DeterministicSine(12000, inputRate, 400, 8*2048+500),
		testutil.DC(2048, 8*2048+500),
	)

	obs := &recordingObserver{}
	var logs bytes.Buffer

	m, err := Run(series, Config{
		InputRate:      inputRate,
		Decimation:     2,
		LowpassHz:      5000,
		LowpassPasses:  2,
		HighpassHz:     100,
		HighpassPasses: 1,
		Detector:       spectrum.DefaultDetectorConfig(),
		Logger:         slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug})),
		Observer:       obs,
	})
	require.NoError(t, err)

	require.Equal(t, 16384.0, m.SampleRate)
	require.Equal(t, []Stage{StageDecimate, StageLowpass, StageHighpass, StageDetect}, obs.stages)
	require.NotEmpty(t, m.Report.Frames)

	for _, r := range m.Report.Frames {
		require.False(t, r.Gated)
		require.Equal(t, 2000.0, r.FrequencyHz)
		require.Equal(t, 15000.0, r.RPM)
	}

	require.Contains(t, logs.String(), "stage=decimate")
	require.Contains(t, logs.String(), "stage=detect")
}

func TestCondition(t *testing.T) {
	const rate = 250000.0

	series := testutil.Add(
		testutil.DeterministicSine(2000, rate, 400, 4096),
		testutil.DeterministicNoise(3, 50, 4096),
	)
	orig := append([]float64(nil), series...)

	lp, err := biquad.DesignLowpass(rate, 10000)
	require.NoError(t, err)
	hp, err := biquad.DesignHighpass(rate, 300)
	require.NoError(t, err)

	want, err := biquad.Cascade(lp, series, 2)
	require.NoError(t, err)
	want, err = biquad.Cascade(hp, want, 1)
	require.NoError(t, err)

	obs := &recordingObserver{}
	got, err := Condition(series, rate, Filters{
		LowpassHz:      10000,
		LowpassPasses:  2,
		HighpassHz:     300,
		HighpassPasses: 1,
	}, nil, obs)
	require.NoError(t, err)

	require.Equal(t, want, got)
	require.Equal(t, orig, series)
	require.Equal(t, []Stage{StageLowpass, StageHighpass}, obs.stages)

	same, err := Condition(series, rate, Filters{}, nil, nil)
	require.NoError(t, err)
	require.Equal(t, series, same)

	_, err = Condition(series, rate, Filters{HighpassHz: rate, HighpassPasses: 1}, nil, obs)
	require.ErrorIs(t, err, core.ErrInvalidFilterParameters)
	require.ErrorContains(t, err, "highpass")
}

func TestRunErrors(t *testing.T) {
	series := testutil.DC(1, 4096)

	tests := []struct {
		name string
		cfg  Config
		want error
	}{
		{"rate", Config{InputRate: 0, Detector: spectrum.DefaultDetectorConfig()}, core.ErrInvalidFilterParameters},
		{"scale", Config{InputRate: 16384, Decimation: 5, Detector: spectrum.DefaultDetectorConfig()}, core.ErrUnsupportedScale},
		{"cutoff", Config{InputRate: 16384, LowpassHz: 9000, LowpassPasses: 1, Detector: spectrum.DefaultDetectorConfig()}, core.ErrInvalidFilterParameters},
		{"short", Config{InputRate: 16384, Decimation: 8, Detector: spectrum.DefaultDetectorConfig()}, core.ErrInsufficientSamples},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			m, err := Run(series, test.cfg)
			require.ErrorIs(t, err, test.want)
			require.Nil(t, m)
		})
	}
}

func TestRunPartialReport(t *testing.T) {
	series := testutil.BinTone(125, 1024, 400, 3*1024)
	series[2*1024+5] = math.NaN()

	cfg := Config{InputRate: 16384, Detector: spectrum.DefaultDetectorConfig()}
	cfg.Detector.Workers = 1

	m, err := Run(series, cfg)
	require.ErrorIs(t, err, core.ErrMalformedSample)
	require.NotNil(t, m)
	require.False(t, m.Report.Complete)
	require.Len(t, m.Report.Frames, 2)
}
