package biquad

const historyLen = 3

// State is the rolling Direct Form II history u[n-2], u[n-1], u[n] of one
// Section. It is a value: copying it snapshots the filter.
type State [historyLen]float64

// SeedState returns the history used by [Apply]: the first three samples of
// input. Shorter inputs leave the remaining slots zero.
func SeedState(input []float64) State {
	var st State
	copy(st[:], input)

	return st
}

// Section is a single biquad with coefficients and caller-visible state.
// A Section is not safe for concurrent use.
type Section struct {
	Coefficients

	u State
}

// NewSection returns a Section starting from the given history.
func NewSection(c Coefficients, st State) *Section {
	return &Section{Coefficients: c, u: st}
}

// ProcessSample filters one input sample and returns the output.
func (s *Section) ProcessSample(x float64) float64 {
	s.u[0] = s.u[1]
	s.u[1] = s.u[2]
	s.u[2] = x - s.A1*s.u[1] - s.A2*s.u[0]

	return s.B0*s.u[2] + s.B1*s.u[1] + s.B2*s.u[0]
}

// ProcessBlock filters a block of samples in-place.
func (s *Section) ProcessBlock(buf []float64) {
	for i, x := range buf {
		buf[i] = s.ProcessSample(x)
	}
}

// ProcessBlockTo filters src into dst. Both slices must have the same length.
func (s *Section) ProcessBlockTo(dst, src []float64) {
	if len(src) == 0 {
		return
	}

	_ = dst[len(src)-1] // bounds check hint
	for i, x := range src {
		dst[i] = s.ProcessSample(x)
	}
}

// State returns the current history.
func (s *Section) State() State {
	return s.u
}

// SetState restores a previously saved history.
func (s *Section) SetState(st State) {
	s.u = st
}

// Reset clears the history to zero.
func (s *Section) Reset() {
	s.u = State{}
}
