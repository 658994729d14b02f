// Package fir provides fixed-table FIR decimation.
//
// [Decimate] combines low-pass convolution and downsampling by 2, 3, 4 or 8
// in a single pass over the input. The coefficient tables are Kaiser
// windowed-sinc designs with about 60 dB of stopband attenuation, generated
// once on first use and shared read-only afterwards. [Lookup] returns a
// table as a [Filter] for response checks such as [Filter.StopbandDB].
package fir
