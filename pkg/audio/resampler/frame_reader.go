package resampler

import "io"

// frameReader hands out whole sample frames only. A frame split across two
// reads of the underlying reader is held back until it is complete.
type frameReader struct {
	r         io.Reader
	frameSize int
	pending   []byte
	npending  int
}

func newFrameReader(r io.Reader, frameSize int) *frameReader {
	return &frameReader{
		r:         r,
		frameSize: frameSize,
		pending:   make([]byte, frameSize-1),
	}
}

// Read returns a multiple of frameSize bytes, or io.ErrShortBuffer when p
// cannot hold a single frame. A truncated final frame is returned together
// with io.ErrUnexpectedEOF.
func (fr *frameReader) Read(p []byte) (int, error) {
	if len(p) < fr.frameSize {
		return 0, io.ErrShortBuffer
	}
	p = p[:len(p)/fr.frameSize*fr.frameSize]

	n := copy(p, fr.pending[:fr.npending])
	fr.npending = 0

	rn, err := fr.r.Read(p[n:])
	n += rn
	rem := n % fr.frameSize
	if err != nil {
		if rem != 0 && err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return n, err
	}
	if rem != 0 {
		n -= rem
		fr.npending = copy(fr.pending, p[n:n+rem])
	}
	return n, nil
}
