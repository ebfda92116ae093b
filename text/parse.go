// SPDX-License-Identifier: Apache-2.0

package text

import (
	"math"
	"strconv"
	"unicode"
)

// ToLong parses the longest prefix of s, after leading white space, that
// forms an integer in base. Base 0 picks the base from the prefix: "0x" for
// 16, "0" for 8, 10 otherwise. Base 16 accepts an optional "0x" prefix.
//
// Parsing is permissive: no digits or an unsupported base yield 0, and
// values out of range saturate at the int64 limits.
func (s *String) ToLong(base int) int64 {
	r := s.Runes()
	i := skipSpace(r)
	neg := false
	if i < len(r) && (r[i] == '+' || r[i] == '-') {
		neg = r[i] == '-'
		i++
	}

	switch {
	case (base == 0 || base == 16) && hexPrefix(r[i:]):
		base = 16
		i += 2
	case base == 0 && i < len(r) && r[i] == '0':
		base = 8
	case base == 0:
		base = 10
	}
	if base < 2 || base > 36 {
		return 0
	}

	start := i
	for i < len(r) && digitValue(r[i]) < base {
		i++
	}
	if i == start {
		return 0
	}

	digits := string(r[start:i])
	if neg {
		digits = "-" + digits
	}
	// On overflow ParseInt still returns the saturated value.
	v, _ := strconv.ParseInt(digits, base, 64)
	return v
}

// ToDouble parses the longest prefix of s, after leading white space, that
// forms a decimal floating point number, "inf", "infinity" or "nan".
// Malformed input yields 0; values out of range yield ±Inf or 0.
func (s *String) ToDouble() float64 {
	return parseFloatPrefix(s.Runes(), 64)
}

// ToFloat is ToDouble rounded to single precision.
func (s *String) ToFloat() float32 {
	return float32(parseFloatPrefix(s.Runes(), 32))
}

func parseFloatPrefix(r []rune, bitSize int) float64 {
	i := skipSpace(r)
	start := i
	if i < len(r) && (r[i] == '+' || r[i] == '-') {
		i++
	}

	if end := i + specialPrefix(r[i:]); end > i {
		if hasFoldPrefix(r[i:], "nan") {
			// A sign on nan is accepted and dropped.
			return math.NaN()
		}
		v, _ := strconv.ParseFloat(string(r[start:end]), bitSize)
		return v
	}

	digits := 0
	for i < len(r) && isDecimal(r[i]) {
		i++
		digits++
	}
	if i < len(r) && r[i] == '.' {
		i++
		for i < len(r) && isDecimal(r[i]) {
			i++
			digits++
		}
	}
	if digits == 0 {
		return 0
	}

	if i < len(r) && (r[i] == 'e' || r[i] == 'E') {
		j := i + 1
		if j < len(r) && (r[j] == '+' || r[j] == '-') {
			j++
		}
		if j < len(r) && isDecimal(r[j]) {
			for j < len(r) && isDecimal(r[j]) {
				j++
			}
			i = j
		}
	}

	// On overflow ParseFloat still returns ±Inf or 0.
	v, _ := strconv.ParseFloat(string(r[start:i]), bitSize)
	return v
}

// specialPrefix returns the length of a leading "infinity", "inf" or "nan",
// case-insensitive, or 0.
func specialPrefix(r []rune) int {
	for _, word := range []string{"infinity", "inf", "nan"} {
		if hasFoldPrefix(r, word) {
			return len(word)
		}
	}
	return 0
}

func hasFoldPrefix(r []rune, word string) bool {
	if len(r) < len(word) {
		return false
	}
	for i := 0; i < len(word); i++ {
		if unicode.ToLower(r[i]) != rune(word[i]) {
			return false
		}
	}
	return true
}

func hexPrefix(r []rune) bool {
	return len(r) > 2 && r[0] == '0' && (r[1] == 'x' || r[1] == 'X') && digitValue(r[2]) < 16
}

func skipSpace(r []rune) int {
	i := 0
	for i < len(r) && unicode.IsSpace(r[i]) {
		i++
	}
	return i
}

func isDecimal(c rune) bool {
	return '0' <= c && c <= '9'
}

// digitValue returns the value of c as a digit in bases up to 36, or 36 when
// c is not a digit.
func digitValue(c rune) int {
	switch {
	case '0' <= c && c <= '9':
		return int(c - '0')
	case 'a' <= c && c <= 'z':
		return int(c-'a') + 10
	case 'A' <= c && c <= 'Z':
		return int(c-'A') + 10
	}
	return 36
}
