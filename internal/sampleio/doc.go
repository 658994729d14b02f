// Package sampleio reads and writes the one-value-per-line text dumps
// produced by the speed sensor rig and consumed by the rotospeed tools.
//
// Input accepts both period and comma as the decimal separator. Output
// matches the bench tools: values joined by '\n' without a trailing newline,
// with optional fixed decimals and decimal comma.
package sampleio
