// Package rpm composes the speed measurement pipeline: optional FIR
// decimation, optional chained biquad lowpass and highpass passes, and
// framed spectral peak detection.
//
// # Usage
//
//	m, err := rpm.Run(series, rpm.Config{
//	    InputRate:  32768,
//	    Decimation: 2,
//	    LowpassHz:  4000, LowpassPasses: 1,
//	    Detector:   spectrum.DefaultDetectorConfig(),
//	})
//	for _, r := range m.Report.Frames {
//	    fmt.Println(r.FrequencyHz, r.RPM)
//	}
package rpm
