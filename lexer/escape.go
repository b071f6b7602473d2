package lexer

import (
	"fmt"
	"strconv"
)

// parseEscapeAt parses one escape sequence starting at s[i] (which must be
// '\\'). It returns the number of source characters consumed and the
// decoded bytes, or ok=false if the escape is not recognized.
//
// Grounded on _examples/lookbusy1344-arm_emulator/parser/escape.go,
// extended with \uHHHH per spec.md 4.1 (the teacher's set lacks it).
func parseEscapeAt(s string, i int) (consumed int, out []byte, ok bool) {
	if i+1 >= len(s) || s[i] != '\\' {
		return 0, nil, false
	}

	switch s[i+1] {
	case 'n':
		return 2, []byte{'\n'}, true
	case 't':
		return 2, []byte{'\t'}, true
	case 'r':
		return 2, []byte{'\r'}, true
	case '\\':
		return 2, []byte{'\\'}, true
	case '0':
		return 2, []byte{0}, true
	case '"':
		return 2, []byte{'"'}, true
	case '\'':
		return 2, []byte{'\''}, true
	case 'x':
		if i+3 >= len(s) {
			return 0, nil, false
		}
		val, err := strconv.ParseUint(s[i+2:i+4], 16, 8)
		if err != nil {
			return 0, nil, false
		}
		return 4, []byte{byte(val)}, true
	case 'u':
		if i+5 >= len(s) {
			return 0, nil, false
		}
		val, err := strconv.ParseUint(s[i+2:i+6], 16, 32)
		if err != nil {
			return 0, nil, false
		}
		return 6, []byte(string(rune(val))), true
	default:
		return 0, nil, false
	}
}

// parseEscapeChar parses a single escape sequence and requires it to
// produce exactly one byte, for character literals.
func parseEscapeChar(escape string) (byte, int, error) {
	consumed, out, ok := parseEscapeAt(escape, 0)
	if !ok {
		return 0, 0, fmt.Errorf("unknown escape sequence: %s", escape)
	}
	if len(out) != 1 {
		return 0, 0, fmt.Errorf("escape sequence must produce a single byte: %s", escape)
	}
	return out[0], consumed, nil
}
