// SPDX-License-Identifier: Apache-2.0

// Package text provides String, a text container that keeps short contents
// inline and moves longer contents to storage drawn from an arena.Arena, and
// Builder, an arena-backed accumulator producing String values.
//
// The code unit is the rune. Strings shorter than 16 runes never allocate.
package text

import (
	"slices"
	"strconv"
	"unicode"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/segmentio/fasthash/fnv1a"

	arena "github.com/brotbox/bbe-arena"
	"github.com/brotbox/bbe-arena/fault"
	"github.com/brotbox/bbe-arena/list"
)

// inlineSize is the inline threshold: contents shorter than this are
// stored inline.
const inlineSize = 16

type storage uint8

const (
	inlineStorage storage = iota
	heapStorage
)

// Option configures a String.
type Option func(*String)

// WithArena draws heap storage from a instead of the Go heap.
func WithArena(a arena.Arena) Option {
	return func(s *String) {
		s.arena = a
	}
}

// String is a mutable text container with small-buffer storage.
//
// The zero value is an empty inline String. A String owns its storage:
// copying a String value aliases heap contents. Use Clone.
type String struct {
	mode   storage
	length int
	inline [inlineSize]rune
	heap   []rune // len(heap) is the capacity
	arena  arena.Arena
}

func newString(opts []Option) *String {
	s := &String{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// New returns a String holding the UTF-8 text str.
func New(str string, opts ...Option) *String {
	s := newString(opts)
	buf := s.reset(utf8.RuneCountInString(str))
	i := 0
	for _, r := range str {
		buf[i] = r
		i++
	}
	return s
}

// FromBytes returns a String holding the UTF-8 text b.
func FromBytes(b []byte, opts ...Option) *String {
	s := newString(opts)
	buf := s.reset(utf8.RuneCount(b))
	for i := 0; len(b) > 0; i++ {
		r, size := utf8.DecodeRune(b)
		buf[i] = r
		b = b[size:]
	}
	return s
}

// FromRunes returns a String holding a copy of r.
func FromRunes(r []rune, opts ...Option) *String {
	s := newString(opts)
	copy(s.reset(len(r)), r)
	return s
}

// FromUTF16 returns a String holding the UTF-16 text u.
func FromUTF16(u []uint16, opts ...Option) *String {
	return FromRunes(utf16.Decode(u), opts...)
}

// FromInt returns the decimal representation of v.
func FromInt(v int64, opts ...Option) *String {
	var scratch [24]byte
	return FromBytes(strconv.AppendInt(scratch[:0], v, 10), opts...)
}

// FromUint returns the decimal representation of v.
func FromUint(v uint64, opts ...Option) *String {
	var scratch [24]byte
	return FromBytes(strconv.AppendUint(scratch[:0], v, 10), opts...)
}

// FromFloat returns the shortest decimal representation that parses back
// to f.
func FromFloat(f float64, opts ...Option) *String {
	var scratch [32]byte
	return FromBytes(strconv.AppendFloat(scratch[:0], f, 'g', -1, 64), opts...)
}

// FromFloat32 is FromFloat for single precision values.
func FromFloat32(f float32, opts ...Option) *String {
	var scratch [32]byte
	return FromBytes(strconv.AppendFloat(scratch[:0], float64(f), 'g', -1, 32), opts...)
}

// reset discards the contents and prepares storage for exactly n runes,
// inline when n is below the threshold.
func (s *String) reset(n int) []rune {
	s.length = n
	if n < inlineSize {
		s.mode = inlineStorage
		s.heap = nil
		return s.inline[:n]
	}
	s.mode = heapStorage
	s.heap = arena.AllocateSlice[rune](s.arena, n, n)
	return s.heap
}

// grow makes room for extra more runes and returns the whole storage.
// Heap capacity doubles like list.Sequence.
func (s *String) grow(extra int) []rune {
	n := s.length + extra
	switch s.mode {
	case inlineStorage:
		if n < inlineSize {
			return s.inline[:]
		}
	case heapStorage:
		if n <= len(s.heap) {
			return s.heap
		}
	}
	c := arena.GrowCapacity(s.Cap(), n)
	buf := arena.AllocateSlice[rune](s.arena, c, c)
	copy(buf, s.Runes())
	s.mode = heapStorage
	s.heap = buf
	return buf
}

// Len returns the number of runes.
func (s *String) Len() int {
	return s.length
}

// Cap returns the number of runes the String can hold without allocating.
// An inline String reports 15: contents stay inline only while shorter than
// the 16-rune inline buffer. A heap String reports its buffer length, which
// it keeps until it grows, even when trimmed below 16.
func (s *String) Cap() int {
	if s.mode == heapStorage {
		return len(s.heap)
	}
	return inlineSize - 1
}

// IsInline reports whether the contents live in the inline buffer.
func (s *String) IsInline() bool {
	return s.mode == inlineStorage
}

// Runes returns the contents. The slice aliases the String's storage and is
// valid until the next mutating call.
func (s *String) Runes() []rune {
	if s.mode == heapStorage {
		return s.heap[:s.length]
	}
	return s.inline[:s.length]
}

// At returns the rune at i.
func (s *String) At(i int) rune {
	s.checkIndex(i)
	return s.Runes()[i]
}

// Set replaces the rune at i.
func (s *String) Set(i int, r rune) {
	s.checkIndex(i)
	s.Runes()[i] = r
}

func (s *String) checkIndex(i int) {
	if i < 0 || i >= s.length {
		fault.Violation("index %d out of range [0, %d)", i, s.length)
	}
}

// String returns the contents as UTF-8.
func (s *String) String() string {
	return string(s.Runes())
}

// UTF16 returns the contents encoded as UTF-16.
func (s *String) UTF16() []uint16 {
	return utf16.Encode(s.Runes())
}

// Clone returns a copy drawing storage from the same arena.
func (s *String) Clone() *String {
	return FromRunes(s.Runes(), WithArena(s.arena))
}

// Concat returns a new String holding s followed by other. The result is
// inline when short enough, regardless of where the operands live.
func (s *String) Concat(other *String) *String {
	a, b := s.Runes(), other.Runes()
	c := &String{arena: s.arena}
	buf := c.reset(len(a) + len(b))
	copy(buf, a)
	copy(buf[len(a):], b)
	return c
}

// Append extends s with other. other may be s.
func (s *String) Append(other *String) {
	s.appendRunes(other.Runes())
}

// AppendString extends s with the UTF-8 text str.
func (s *String) AppendString(str string) {
	buf := s.grow(utf8.RuneCountInString(str))
	i := s.length
	for _, r := range str {
		buf[i] = r
		i++
	}
	s.length = i
}

// AppendInt extends s with the decimal representation of v.
func (s *String) AppendInt(v int64) {
	var scratch [24]byte
	s.appendASCII(strconv.AppendInt(scratch[:0], v, 10))
}

// AppendFloat extends s with the shortest decimal representation of f.
func (s *String) AppendFloat(f float64) {
	var scratch [32]byte
	s.appendASCII(strconv.AppendFloat(scratch[:0], f, 'g', -1, 64))
}

func (s *String) appendASCII(b []byte) {
	buf := s.grow(len(b))
	for i, c := range b {
		buf[s.length+i] = rune(c)
	}
	s.length += len(b)
}

func (s *String) appendRunes(r []rune) {
	// r may alias the current storage, which grow leaves intact.
	buf := s.grow(len(r))
	copy(buf[s.length:], r)
	s.length += len(r)
}

// Trim removes leading and trailing white space in place. The storage is
// kept, so a heap String stays on the heap.
func (s *String) Trim() {
	r := s.Runes()
	start, end := 0, len(r)
	for start < end && unicode.IsSpace(r[start]) {
		start++
	}
	for end > start && unicode.IsSpace(r[end-1]) {
		end--
	}
	if start == 0 && end == len(r) {
		return
	}
	n := copy(r, r[start:end])
	clear(r[n:])
	s.length = n
}

// ToUpper maps every rune to upper case in place.
func (s *String) ToUpper() {
	r := s.Runes()
	for i, c := range r {
		r[i] = unicode.ToUpper(c)
	}
}

// ToLower maps every rune to lower case in place.
func (s *String) ToLower() {
	r := s.Runes()
	for i, c := range r {
		r[i] = unicode.ToLower(c)
	}
}

// Search returns the offset of the first occurrence of needle, or -1. An
// empty needle is found at offset 0.
func (s *String) Search(needle *String) int {
	return index(s.Runes(), needle.Runes())
}

// Contains reports whether needle occurs in s.
func (s *String) Contains(needle *String) bool {
	return s.Search(needle) >= 0
}

// Count returns the number of non-overlapping occurrences of needle,
// scanning from the left. An empty needle occurs zero times.
func (s *String) Count(needle *String) int {
	hay, n := s.Runes(), needle.Runes()
	if len(n) == 0 {
		return 0
	}
	count := 0
	for {
		i := index(hay, n)
		if i < 0 {
			return count
		}
		count++
		hay = hay[i+len(n):]
	}
}

// Split returns the pieces of s between non-overlapping occurrences of
// delim: always Count(delim)+1 of them. Pieces draw storage from the same
// arena as s.
func (s *String) Split(delim *String) *list.Sequence[*String] {
	k := s.Count(delim)
	parts := list.New[*String](list.WithCapacity(k + 1))
	if k == 0 {
		parts.Append(s.Clone())
		return parts
	}

	r, d := s.Runes(), delim.Runes()
	opt := WithArena(s.arena)
	for range k {
		i := index(r, d)
		parts.Append(FromRunes(r[:i], opt))
		r = r[i+len(d):]
	}
	parts.Append(FromRunes(r, opt))
	return parts
}

// index returns the offset of the first occurrence of needle in hay, or -1.
func index(hay, needle []rune) int {
	n := len(needle)
	if n == 0 {
		return 0
	}
	for i := 0; i+n <= len(hay); i++ {
		if hay[i] == needle[0] && slices.Equal(hay[i:i+n], needle) {
			return i
		}
	}
	return -1
}

// Equal reports whether s and other hold the same runes.
func (s *String) Equal(other *String) bool {
	return slices.Equal(s.Runes(), other.Runes())
}

// EqualString reports whether s holds the UTF-8 text str.
func (s *String) EqualString(str string) bool {
	r := s.Runes()
	i := 0
	for _, c := range str {
		if i >= len(r) || r[i] != c {
			return false
		}
		i++
	}
	return i == len(r)
}

// Compare orders s and other by their runes, returning -1, 0 or +1.
func (s *String) Compare(other *String) int {
	return slices.Compare(s.Runes(), other.Runes())
}

// Hash returns the FNV-1a hash of the runes.
func (s *String) Hash() uint32 {
	h := fnv1a.Init32
	for _, r := range s.Runes() {
		h = fnv1a.AddUint32(h, uint32(r))
	}
	return h
}
