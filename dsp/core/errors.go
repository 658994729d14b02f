package core

import "errors"

// Error taxonomy shared by the numeric packages. Failure sites wrap one of
// these with the offending parameter, so callers match with errors.Is.
var (
	// ErrInvalidFilterParameters reports a cutoff outside (0, sampleRate/2)
	// or a non-positive / non-finite sample rate.
	ErrInvalidFilterParameters = errors.New("invalid filter parameters")

	// ErrUnsupportedScale reports a decimation ratio without a coefficient table.
	ErrUnsupportedScale = errors.New("unsupported decimation scale")

	// ErrInsufficientSamples reports a series shorter than one frame or
	// filter window.
	ErrInsufficientSamples = errors.New("insufficient samples")

	// ErrMalformedSample reports an input value that is not a decimal number.
	ErrMalformedSample = errors.New("malformed sample")
)
