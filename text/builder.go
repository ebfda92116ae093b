// SPDX-License-Identifier: Apache-2.0

package text

import (
	"io"
	"strconv"
	"unicode/utf8"

	arena "github.com/brotbox/bbe-arena"
	"github.com/brotbox/bbe-arena/fault"
)

// readBufferSize is the size of the intermediate buffer used by ReadFrom.
const readBufferSize = 4 * 1024

// Builder accumulates UTF-8 text in storage drawn from an arena and produces
// String values from it. It implements io.Writer, io.StringWriter,
// io.ByteWriter, io.ReaderFrom and io.WriterTo.
type Builder struct {
	arena   arena.Arena
	buf     []byte
	readBuf []byte // intermediate buffer for ReadFrom
}

// NewBuilder returns an empty Builder backed by a. A nil a uses the Go heap.
func NewBuilder(a arena.Arena) *Builder {
	return &Builder{arena: a}
}

// Write appends p.
func (b *Builder) Write(p []byte) (n int, err error) {
	if len(p) == 0 {
		return 0, nil
	}
	b.buf = arena.SliceAppend(b.arena, b.buf, p...)
	return len(p), nil
}

// WriteByte appends c.
func (b *Builder) WriteByte(c byte) error {
	b.buf = arena.SliceAppend(b.arena, b.buf, c)
	return nil
}

// WriteRune appends the UTF-8 encoding of r.
func (b *Builder) WriteRune(r rune) (n int, err error) {
	var scratch [utf8.UTFMax]byte
	return b.Write(utf8.AppendRune(scratch[:0], r))
}

// WriteString appends s.
func (b *Builder) WriteString(s string) (n int, err error) {
	if len(s) == 0 {
		return 0, nil
	}
	b.buf = arena.SliceAppend(b.arena, b.buf, []byte(s)...)
	return len(s), nil
}

// WriteInt appends the decimal representation of v.
func (b *Builder) WriteInt(v int64) {
	var scratch [24]byte
	_, _ = b.Write(strconv.AppendInt(scratch[:0], v, 10))
}

// WriteFloat appends the shortest decimal representation of f.
func (b *Builder) WriteFloat(f float64) {
	var scratch [32]byte
	_, _ = b.Write(strconv.AppendFloat(scratch[:0], f, 'g', -1, 64))
}

// WriteText appends the contents of s.
func (b *Builder) WriteText(s *String) {
	for _, r := range s.Runes() {
		_, _ = b.WriteRune(r)
	}
}

// WriteTo writes the accumulated bytes to w and drops the ones written.
func (b *Builder) WriteTo(w io.Writer) (n int64, err error) {
	if len(b.buf) == 0 {
		return 0, nil
	}
	m, err := w.Write(b.buf)
	if m > 0 {
		n = int64(m)
		rest := copy(b.buf, b.buf[m:])
		b.buf = b.buf[:rest]
	}
	return n, err
}

// ReadFrom appends everything read from r until EOF.
// The intermediate read buffer is drawn from the arena.
func (b *Builder) ReadFrom(r io.Reader) (n int64, err error) {
	if b.readBuf == nil {
		b.readBuf = arena.AllocateSlice[byte](b.arena, readBufferSize, readBufferSize)
	}
	for {
		nr, er := r.Read(b.readBuf)
		if nr > 0 {
			_, _ = b.Write(b.readBuf[:nr])
			n += int64(nr)
		}
		if er == io.EOF {
			return n, nil
		}
		if er != nil {
			return n, er
		}
	}
}

// Bytes returns the accumulated bytes. The slice is valid until the next
// modification.
func (b *Builder) Bytes() []byte {
	return b.buf
}

// String returns the accumulated text as a Go string.
func (b *Builder) String() string {
	return string(b.buf)
}

// Text returns the accumulated text as a String drawing storage from the
// Builder's arena.
func (b *Builder) Text() *String {
	return FromBytes(b.buf, WithArena(b.arena))
}

// Len returns the number of accumulated bytes.
func (b *Builder) Len() int {
	return len(b.buf)
}

// Cap returns the capacity of the underlying storage.
func (b *Builder) Cap() int {
	return cap(b.buf)
}

// Reset empties the Builder and keeps its storage.
func (b *Builder) Reset() {
	b.buf = b.buf[:0]
}

// Truncate discards all but the first n bytes. n outside [0, Len] is a
// contract violation.
func (b *Builder) Truncate(n int) {
	if n < 0 || n > len(b.buf) {
		fault.Violation("truncation to %d out of range [0, %d]", n, len(b.buf))
	}
	b.buf = b.buf[:n]
}
