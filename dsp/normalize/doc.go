// Package normalize rescales real-valued sample series into bounded
// unsigned integer ranges, such as 0..65535 for 16-bit ADC dumps.
package normalize
