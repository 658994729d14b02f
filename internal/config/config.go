// Package config loads the rig configuration shared by the rotospeed tools.
//
// Configuration is an optional TOML file. Keys missing from the file keep
// their defaults, which reproduce the bench rig settings. Unknown keys
// are rejected so typos do not silently fall back to defaults.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/cwbudde/rotospeed/dsp/core"
	"github.com/cwbudde/rotospeed/dsp/fft"
	"github.com/cwbudde/rotospeed/dsp/filter/fir"
	"github.com/cwbudde/rotospeed/dsp/normalize"
	"github.com/cwbudde/rotospeed/dsp/spectrum"
	"github.com/cwbudde/rotospeed/internal/sampleio"
)

// ErrInvalid reports a configuration value outside its valid range.
var ErrInvalid = errors.New("config: invalid value")

// Config is the complete rig configuration.
type Config struct {
	Detector  Detector  `toml:"detector"`
	Filter    Filter    `toml:"filter"`
	Sweep     Sweep     `toml:"sweep"`
	Normalize Normalize `toml:"normalize"`
	Output    Output    `toml:"output"`
}

// Detector configures the detect pipeline. SampleRate is the rate of the
// input dump; the detector runs at SampleRate/Decimation.
type Detector struct {
	SampleRate          float64 `toml:"sample_rate"`
	FrameSize           int     `toml:"frame_size"`
	IgnoreBandHz        float64 `toml:"ignore_band_hz"`
	MinPeak             float64 `toml:"min_peak"`
	PulsesPerRevolution float64 `toml:"pulses_per_revolution"`
	Workers             int     `toml:"workers"`
	Backend             string  `toml:"backend"`
	Decimation          int     `toml:"decimation"`
	LowpassHz           float64 `toml:"lowpass_hz"`
	LowpassPasses       int     `toml:"lowpass_passes"`
	HighpassHz          float64 `toml:"highpass_hz"`
	HighpassPasses      int     `toml:"highpass_passes"`
}

// Filter configures the standalone filter tool.
type Filter struct {
	SampleRate     float64 `toml:"sample_rate"`
	LowpassHz      float64 `toml:"lowpass_hz"`
	LowpassPasses  int     `toml:"lowpass_passes"`
	HighpassHz     float64 `toml:"highpass_hz"`
	HighpassPasses int     `toml:"highpass_passes"`
	SpectrumSize   int     `toml:"spectrum_size"`
	SpectrumOffset int     `toml:"spectrum_offset"`
}

// Sweep configures the cutoff sweep of the freqlist tool and filter banks.
type Sweep struct {
	MinHz     float64 `toml:"min_hz"`
	MaxHz     float64 `toml:"max_hz"`
	Precision float64 `toml:"precision"`
}

// Normalize configures the integer rescale.
type Normalize struct {
	SrcMax float64 `toml:"src_max"`
	DstMax uint32  `toml:"dst_max"`
}

// Output configures text rendering.
type Output struct {
	Decimals     int    `toml:"decimals"`
	DecimalComma bool   `toml:"decimal_comma"`
	Format       string `toml:"format"`
}

// Default returns the bench rig configuration.
func Default() Config {
	return Config{
		Detector: Detector{
			SampleRate:          core.DefaultSampleRate,
			FrameSize:           core.DefaultFrameSize,
			IgnoreBandHz:        spectrum.DefaultIgnoreBandHz,
			MinPeak:             spectrum.DefaultMinPeak,
			PulsesPerRevolution: spectrum.DefaultPulsesPerRevolution,
			Backend:             string(fft.DefaultBackend),
			Decimation:          1,
		},
		Filter: Filter{
			SampleRate:     250000,
			LowpassHz:      10000,
			LowpassPasses:  1,
			HighpassHz:     300,
			HighpassPasses: 0,
			SpectrumSize:   16384,
			SpectrumOffset: 10000,
		},
		Sweep: Sweep{
			MinHz:     1500,
			MaxHz:     15000,
			Precision: 0.01,
		},
		Normalize: Normalize{
			SrcMax: normalize.DefaultSourceMax,
			DstMax: normalize.DefaultDestinationMax,
		},
		Output: Output{
			Decimals:     4,
			DecimalComma: true,
			Format:       string(sampleio.DetectionText),
		},
	}
}

// Load decodes path over the defaults and validates the result. An empty
// path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}

	if err := checkUndecoded(md); err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}

	return cfg, nil
}

// Decode parses TOML text over the defaults. It is Load without the file.
func Decode(text string) (Config, error) {
	cfg := Default()

	md, err := toml.Decode(text, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}

	if err := checkUndecoded(md); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

func checkUndecoded(md toml.MetaData) error {
	undecoded := md.Undecoded()
	if len(undecoded) == 0 {
		return nil
	}

	keys := make([]string, len(undecoded))
	for i, k := range undecoded {
		keys[i] = k.String()
	}

	return fmt.Errorf("unknown keys %s", strings.Join(keys, ", "))
}

// Validate checks ranges that do not depend on the input data. Filter
// cutoffs are checked against the Nyquist rate the filter will run at.
func (c Config) Validate() error {
	d := c.Detector

	if _, err := fft.ParseBackend(d.Backend); err != nil {
		return fmt.Errorf("%w: detector.backend: %v", ErrInvalid, err)
	}

	if d.Decimation != 1 {
		if _, err := fir.Taps(d.Decimation); err != nil {
			return fmt.Errorf("%w: detector.decimation: %v", ErrInvalid, err)
		}
	}

	if d.SampleRate <= 0 {
		return fmt.Errorf("%w: detector.sample_rate %v", ErrInvalid, d.SampleRate)
	}

	if _, err := spectrum.NewDetectorFromConfig(c.DetectorConfig(nil)); err != nil {
		return fmt.Errorf("%w: detector: %v", ErrInvalid, err)
	}

	rate := d.SampleRate / float64(d.Decimation)
	if err := checkCutoff("detector.lowpass_hz", d.LowpassHz, d.LowpassPasses, rate); err != nil {
		return err
	}
	if err := checkCutoff("detector.highpass_hz", d.HighpassHz, d.HighpassPasses, rate); err != nil {
		return err
	}

	f := c.Filter
	if f.SampleRate <= 0 {
		return fmt.Errorf("%w: filter.sample_rate %v", ErrInvalid, f.SampleRate)
	}
	if err := checkCutoff("filter.lowpass_hz", f.LowpassHz, f.LowpassPasses, f.SampleRate); err != nil {
		return err
	}
	if err := checkCutoff("filter.highpass_hz", f.HighpassHz, f.HighpassPasses, f.SampleRate); err != nil {
		return err
	}
	if f.SpectrumSize < 2 || f.SpectrumOffset < 0 {
		return fmt.Errorf("%w: filter.spectrum_size %d offset %d", ErrInvalid, f.SpectrumSize, f.SpectrumOffset)
	}

	s := c.Sweep
	if s.MinHz <= 0 || s.MaxHz <= s.MinHz || s.Precision <= 0 || s.Precision >= 1 {
		return fmt.Errorf("%w: sweep %v..%v at %v", ErrInvalid, s.MinHz, s.MaxHz, s.Precision)
	}

	if c.Normalize.SrcMax <= 0 {
		return fmt.Errorf("%w: normalize.src_max %v", ErrInvalid, c.Normalize.SrcMax)
	}

	if c.Output.Decimals < 0 {
		return fmt.Errorf("%w: output.decimals %d", ErrInvalid, c.Output.Decimals)
	}
	if _, err := sampleio.ParseDetectionFormat(c.Output.Format); err != nil {
		return fmt.Errorf("%w: output.format: %v", ErrInvalid, err)
	}

	return nil
}

// checkCutoff accepts 0 passes with any cutoff; otherwise the cutoff must
// lie strictly inside (0, rate/2).
func checkCutoff(key string, hz float64, passes int, rate float64) error {
	if passes < 0 {
		return fmt.Errorf("%w: %s passes %d", ErrInvalid, key, passes)
	}
	if passes == 0 {
		return nil
	}
	if hz <= 0 || hz >= rate/2 {
		return fmt.Errorf("%w: %s %v outside (0, %v)", ErrInvalid, key, hz, rate/2)
	}
	return nil
}

// DetectorConfig converts the [detector] section, running at the decimated
// rate. A nil factory selects the configured backend.
func (c Config) DetectorConfig(factory fft.Factory) spectrum.DetectorConfig {
	d := c.Detector

	if factory == nil {
		// Validate rejects unknown names; here they fall back to the
		// detector default. Every parsed backend has a factory.
		if b, err := fft.ParseBackend(d.Backend); err == nil {
			factory, _ = fft.NewFactory(b)
		}
	}

	decimation := max(d.Decimation, 1)

	return spectrum.DetectorConfig{
		SampleRate:          d.SampleRate / float64(decimation),
		FrameSize:           d.FrameSize,
		IgnoreBandHz:        d.IgnoreBandHz,
		MinPeak:             d.MinPeak,
		PulsesPerRevolution: d.PulsesPerRevolution,
		Workers:             d.Workers,
		Transform:           factory,
	}
}

// SeriesFormat returns the rendering used for filtered series.
func (c Config) SeriesFormat() sampleio.Format {
	return sampleio.Format{Decimals: c.Output.Decimals, DecimalComma: c.Output.DecimalComma}
}
