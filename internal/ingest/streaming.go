package ingest

// streaming.go wraps the raw input with memory-constant transforms so the
// CSV decoder only ever sees clean UTF-8:
//
//   - bomSkipper drops the UTF-8 BOM Windows tools like to prepend
//   - utf8Cleaner replaces invalid byte sequences with '?'
//   - CountingReader tracks bytes read for end-of-run stats
//
// WrapInput stacks them in that order.

import (
	"io"
	"unicode/utf8"
)

// bomSkipper strips a leading UTF-8 BOM (0xEF 0xBB 0xBF) if present.
type bomSkipper struct {
	reader  io.Reader
	checked bool
	carry   []byte
}

func (b *bomSkipper) Read(p []byte) (int, error) {
	if !b.checked {
		b.checked = true

		var head [3]byte
		n, err := io.ReadFull(b.reader, head[:])
		if n == 3 && head[0] == 0xEF && head[1] == 0xBB && head[2] == 0xBF {
			// BOM found, swallow it.
		} else {
			b.carry = append(b.carry, head[:n]...)
		}
		if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
			return 0, err
		}
	}

	if len(b.carry) > 0 {
		n := copy(p, b.carry)
		b.carry = b.carry[n:]
		return n, nil
	}
	return b.reader.Read(p)
}

// utf8Cleaner replaces invalid UTF-8 bytes with '?' as data streams
// through. A multi-byte sequence split across two reads is carried over in
// pending instead of being mangled.
type utf8Cleaner struct {
	reader  io.Reader
	pending []byte
}

func (c *utf8Cleaner) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	off := copy(p, c.pending)
	c.pending = c.pending[:0]

	n, err := c.reader.Read(p[off:])
	n += off
	if n == 0 {
		return 0, err
	}

	buf := p[:n]
	if asciiOnly(buf) {
		return n, err
	}
	return c.clean(buf, err == io.EOF), err
}

// clean rewrites data in place and returns the number of usable bytes.
// Unless atEOF, an incomplete trailing sequence is saved for the next read.
func (c *utf8Cleaner) clean(data []byte, atEOF bool) int {
	w := 0
	for r := 0; r < len(data); {
		if !atEOF && startsIncompleteRune(data[r:]) {
			c.pending = append(c.pending, data[r:]...)
			return w
		}

		ch, size := utf8.DecodeRune(data[r:])
		if ch == utf8.RuneError && size == 1 {
			// '?' keeps the output the same length; the 3-byte
			// replacement character would force reallocation mid-stream.
			data[w] = '?'
			w++
			r++
		} else {
			copy(data[w:], data[r:r+size])
			w += size
			r += size
		}
	}
	return w
}

func asciiOnly(data []byte) bool {
	for _, b := range data {
		if b >= 0x80 {
			return false
		}
	}
	return true
}

// seqLen returns the byte length a UTF-8 sequence starting with b claims,
// or 0 for a bare continuation byte.
func seqLen(b byte) int {
	switch {
	case b < 0x80:
		return 1
	case b < 0xC0:
		return 0
	case b < 0xE0:
		return 2
	case b < 0xF0:
		return 3
	default:
		return 4
	}
}

// startsIncompleteRune reports whether data is a strict prefix of a
// multi-byte sequence, i.e. more bytes are needed to decode it.
func startsIncompleteRune(data []byte) bool {
	if len(data) == 0 {
		return false
	}
	return seqLen(data[0]) > len(data)
}

// CountingReader tracks bytes read from the underlying reader.
type CountingReader struct {
	reader    io.Reader
	BytesRead int64
	Total     int64 // 0 when the input size is unknown
}

func (r *CountingReader) Read(p []byte) (int, error) {
	n, err := r.reader.Read(p)
	r.BytesRead += int64(n)
	return n, err
}

// Progress returns read progress as a 0-100 percentage, or 0 when the
// total size is unknown.
func (r *CountingReader) Progress() int {
	if r.Total <= 0 {
		return 0
	}
	return int(r.BytesRead * 100 / r.Total)
}

// WrapInput stacks the input transforms: BOM stripping first, then UTF-8
// repair, then byte counting on the outside.
func WrapInput(r io.Reader, totalSize int64) *CountingReader {
	return &CountingReader{
		reader: &utf8Cleaner{reader: &bomSkipper{reader: r}},
		Total:  totalSize,
	}
}
