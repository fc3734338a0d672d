// ABOUTME: NaturalString key type with human-friendly ordering
// ABOUTME: Numbers compare by value, text by Persian-aware collation

// Package natural implements String, a text token ordered the way a person
// reading a dictionary expects: "2" before "10", and پ right after ب.
//
// The order, from smallest to largest:
//
//   - the empty string;
//   - numeric tokens, by value, then by digit count, then by raw text;
//   - textual tokens, rune by rune over the case-folded text using Rank,
//     with ties broken on the raw text.
//
// A token is numeric when it is made only of decimal digits (ASCII,
// Persian U+06F0..U+06F9 or Arabic-Indic U+0660..U+0669, freely mixed) and
// its value fits in a uint64. Signs, separators and decimal points make a
// token textual, and so does overflow.
//
// Two Strings compare equal only when their raw texts are identical.
package natural

import (
	"cmp"
	"math"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
)

// Kind is the classification of a token.
type Kind uint8

const (
	Textual Kind = iota
	Numeric
)

func (k Kind) String() string {
	switch k {
	case Numeric:
		return "numeric"
	case Textual:
		return "textual"
	default:
		return "unknown"
	}
}

// String is an immutable, naturally ordered text token. The zero value is
// the empty token.
type String struct {
	raw    string
	folded string
	kind   Kind
	num    uint64
	digits int
}

// New builds a String from text. It never fails.
func New(text string) String {
	s := String{raw: text}
	if n, digits, ok := parseNumber(text); ok {
		s.kind = Numeric
		s.num = n
		s.digits = digits
		s.folded = text
		return s
	}
	// cases.Caser keeps state, so it is not shared between calls
	s.folded = cases.Fold().String(text)
	return s
}

// Text returns the original text.
func (s String) Text() string { return s.raw }

// String implements fmt.Stringer.
func (s String) String() string { return s.raw }

// Kind reports whether the token is numeric or textual.
func (s String) Kind() Kind { return s.kind }

// IsEmpty reports whether the token has no text.
func (s String) IsEmpty() bool { return s.raw == "" }

// MarshalText implements encoding.TextMarshaler.
func (s String) MarshalText() ([]byte, error) {
	return []byte(s.raw), nil
}

// Compare returns -1, 0 or +1 depending on whether s sorts before, equal to
// or after o.
func (s String) Compare(o String) int {
	switch {
	case s.raw == o.raw:
		return 0
	case s.raw == "":
		return -1
	case o.raw == "":
		return 1
	}

	if s.kind != o.kind {
		if s.kind == Numeric {
			return -1
		}
		return 1
	}

	if s.kind == Numeric {
		if c := cmp.Compare(s.num, o.num); c != 0 {
			return c
		}
		if c := cmp.Compare(s.digits, o.digits); c != 0 {
			return c
		}
		return compareRaw(s.raw, o.raw)
	}

	if c := compareRanked(s.folded, o.folded); c != 0 {
		return c
	}
	return compareRaw(s.raw, o.raw)
}

// Less reports whether s sorts before o.
func (s String) Less(o String) bool { return s.Compare(o) < 0 }

// Equal reports whether s and o hold the same text.
func (s String) Equal(o String) bool { return s.raw == o.raw }

// Compare orders two raw texts as Strings.
func Compare(a, b string) int {
	return New(a).Compare(New(b))
}

func compareRaw(a, b string) int {
	if c := compareRanked(a, b); c != 0 {
		return c
	}
	// only reachable for distinct invalid UTF-8 sequences
	return strings.Compare(a, b)
}

// compareRanked walks both texts rune by rune. A text that is a prefix of
// the other sorts first.
func compareRanked(a, b string) int {
	for a != "" && b != "" {
		ra, na := utf8.DecodeRuneInString(a)
		rb, nb := utf8.DecodeRuneInString(b)
		if c := cmp.Compare(Rank(ra), Rank(rb)); c != 0 {
			return c
		}
		a, b = a[na:], b[nb:]
	}
	switch {
	case a == "" && b == "":
		return 0
	case a == "":
		return -1
	default:
		return 1
	}
}

func parseNumber(text string) (n uint64, digits int, ok bool) {
	if text == "" {
		return 0, 0, false
	}
	for _, r := range text {
		d, isDigit := digitValue(r)
		if !isDigit {
			return 0, 0, false
		}
		if n > (math.MaxUint64-d)/10 {
			return 0, 0, false
		}
		n = n*10 + d
		digits++
	}
	return n, digits, true
}

func digitValue(r rune) (uint64, bool) {
	switch {
	case r >= '0' && r <= '9':
		return uint64(r - '0'), true
	case r >= '۰' && r <= '۹':
		return uint64(r - '۰'), true
	case r >= '٠' && r <= '٩':
		return uint64(r - '٠'), true
	}
	return 0, false
}
