// Package biquad designs and runs second-order Butterworth IIR sections.
//
// [DesignLowpass] and [DesignHighpass] derive [Coefficients] analytically
// from a sample rate and cutoff using the bilinear-transformed Butterworth
// prototype (Q = 1/√2). [Apply] filters a whole series on fresh state, and a
// [Section] carries an explicit [State] across calls for callers that need
// continuity between successive blocks.
//
// Processing uses Direct Form II with a three-element rolling history:
//
//	u[n] = x[n] - A1*u[n-1] - A2*u[n-2]
//	y[n] = B0*u[n] + B1*u[n-1] + B2*u[n-2]
package biquad
