// Package spectrum turns sample series into magnitude spectra and per-frame
// rotational-speed estimates.
//
// The forward transform itself is delegated to a [fft.Transformer]. [Compute]
// returns the raw (unrounded) magnitude spectrum of one window. A [Detector]
// cuts a series into non-overlapping frames, finds the dominant bin above an
// ignored low-frequency band in each frame, applies a minimum-peak noise gate
// and converts the bin to frequency and RPM. Frames are independent and may be
// analyzed concurrently; results are always returned in frame order.
package spectrum
