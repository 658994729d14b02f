package core

import "testing"

func TestApplyProcessorOptions(t *testing.T) {
	cfg := ApplyProcessorOptions()
	if cfg.SampleRate != DefaultSampleRate || cfg.FrameSize != DefaultFrameSize {
		t.Fatalf("defaults = %+v", cfg)
	}

	cfg = ApplyProcessorOptions(WithSampleRate(250000), WithFrameSize(16384), nil)
	if cfg.SampleRate != 250000 || cfg.FrameSize != 16384 {
		t.Fatalf("options not applied: %+v", cfg)
	}

	cfg = ApplyProcessorOptions(WithSampleRate(-1), WithFrameSize(0))
	if cfg.SampleRate != DefaultSampleRate || cfg.FrameSize != DefaultFrameSize {
		t.Fatalf("invalid options must be ignored: %+v", cfg)
	}
}
