package model

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// ID is the stable identifier of a kanji record: its Unicode codepoint.
//
// IDs order numerically; that ordering is the tie-break order of the
// similarity index.
type ID uint32

// ParseID parses a hexadecimal codepoint such as "6f22", "U+6F22" or "0x6f22".
func ParseID(s string) (ID, error) {
	v := strings.TrimSpace(s)
	switch {
	case strings.HasPrefix(v, "U+"), strings.HasPrefix(v, "u+"),
		strings.HasPrefix(v, "0x"), strings.HasPrefix(v, "0X"):
		v = v[2:]
	}
	if v == "" {
		return 0, fmt.Errorf("invalid codepoint %q: empty", s)
	}
	n, err := strconv.ParseUint(v, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid codepoint %q: %w", s, err)
	}
	if n > utf8.MaxRune {
		return 0, fmt.Errorf("invalid codepoint %q: beyond unicode range", s)
	}
	return ID(n), nil
}

// IDFromLiteral returns the ID of a single-rune literal.
func IDFromLiteral(literal string) (ID, error) {
	r, size := utf8.DecodeRuneInString(literal)
	if r == utf8.RuneError || size != len(literal) {
		return 0, fmt.Errorf("literal %q is not a single character", literal)
	}
	return ID(r), nil
}

// Rune returns the ID as a rune.
func (id ID) Rune() rune { return rune(id) }

// Literal returns the character the ID denotes.
func (id ID) Literal() string { return string(rune(id)) }

// String returns the lowercase hex form used by the dataset ("6f22").
func (id ID) String() string {
	return fmt.Sprintf("%04x", uint32(id))
}

// IsCJK reports whether the ID falls into a CJK ideograph block
// (unified, extension A, extensions B and later, compatibility supplement)
// or is the iteration mark 々.
func (id ID) IsCJK() bool {
	switch {
	case id == 0x3005:
		return true
	case id >= 0x4E00 && id <= 0x9FFF:
		return true
	case id >= 0x3400 && id <= 0x4DBF:
		return true
	case id >= 0xF900 && id <= 0xFAFF:
		return true
	case id >= 0x20000 && id <= 0x2FA1F:
		return true
	default:
		return false
	}
}

// MarshalText encodes the ID in its dataset hex form.
func (id ID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText parses a hex codepoint.
func (id *ID) UnmarshalText(text []byte) error {
	v, err := ParseID(string(text))
	if err != nil {
		return err
	}
	*id = v
	return nil
}
