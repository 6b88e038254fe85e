package bitutil

import (
	"errors"
	"fmt"
)

// ErrShortRead is returned when more bits are requested than remain.
var ErrShortRead = errors.New("bitutil: not enough bits")

// BitSource reads big-endian bit fields of any width up to 32 from a byte
// slice.
type BitSource struct {
	data []byte
	pos  int
}

// NewBitSource reads data from its first byte's high bit onwards.
func NewBitSource(data []byte) *BitSource {
	return &BitSource{data: data}
}

// ReadBits returns the next n bits as the low bits of an int.
func (s *BitSource) ReadBits(n int) (int, error) {
	if n < 1 || n > 32 || n > s.Available() {
		return 0, fmt.Errorf("read %d bits with %d left: %w", n, s.Available(), ErrShortRead)
	}
	v := 0
	for n > 0 {
		used := s.pos % 8
		take := min(8-used, n)
		b := int(s.data[s.pos/8]) >> (8 - used - take)
		v = v<<take | b&(1<<take-1)
		s.pos += take
		n -= take
	}
	return v, nil
}

// Available returns the number of unread bits.
func (s *BitSource) Available() int {
	return 8*len(s.data) - s.pos
}
