package xpt

import (
	"bufio"
	"io"
)

// reader consumes a transport stream strictly forward, 80-byte card by
// 80-byte card, tracking the absolute offset consumed. It never seeks, so
// any io.Reader works as a source.
type reader struct {
	r    *bufio.Reader
	off  int64
	card [cardLen]byte
}

func newReader(rd io.Reader) *reader {
	return &reader{r: bufio.NewReader(rd)}
}

// readCard returns the next 80-byte card. The returned slice aliases an
// internal buffer and is only valid until the next read.
func (r *reader) readCard() ([]byte, error) {
	if err := r.readFull(r.card[:]); err != nil {
		return nil, err
	}
	return r.card[:], nil
}

func (r *reader) readFull(buf []byte) error {
	n, err := io.ReadFull(r.r, buf)
	r.off += int64(n)
	return err
}

// discard skips n bytes by reading through them, keeping plain readers
// usable as sources.
func (r *reader) discard(n int) error {
	if n <= 0 {
		return nil
	}
	m, err := r.r.Discard(n)
	r.off += int64(m)
	if err == io.EOF && m < n {
		return io.ErrUnexpectedEOF
	}
	return err
}

// peek returns the next n bytes without consuming them. io.EOF means the
// stream holds fewer than n.
func (r *reader) peek(n int) ([]byte, error) {
	return r.r.Peek(n)
}

func (r *reader) offset() int64 {
	return r.off
}
