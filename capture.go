package testkit

import "bytes"

// outputBuffer is a fixed-capacity capture sink for one child's combined
// stdout and stderr. Writes past the capacity are counted as accepted but
// dropped, so a runaway test cannot grow the parent's memory; the truncation
// is recorded instead. A fresh buffer is allocated per child and never
// shared between two of them.
type outputBuffer struct {
	limit     int
	buf       bytes.Buffer
	truncated bool
}

func newOutputBuffer(limit int) *outputBuffer {
	return &outputBuffer{limit: limit}
}

func (b *outputBuffer) Write(p []byte) (int, error) {
	n := len(p)
	if room := b.limit - b.buf.Len(); room < n {
		if room < 0 {
			room = 0
		}
		p = p[:room]
		b.truncated = true
	}
	b.buf.Write(p)
	return n, nil
}

func (b *outputBuffer) Bytes() []byte	{ return b.buf.Bytes() }
func (b *outputBuffer) String() string	{ return b.buf.String() }
func (b *outputBuffer) Len() int	{ return b.buf.Len() }
func (b *outputBuffer) Truncated() bool	{ return b.truncated }
