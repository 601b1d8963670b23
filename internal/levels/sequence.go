package levels

import (
	"strconv"
	"strings"
	"unicode"
)

// Follows reports whether next can directly follow prev in a numbering
// sequence: decimal ("3" then "4", or an inserted "3A"), alphabetic ("h" then
// "i", "z" then "aa") or roman ("iv" then "v"). It is used to tell the letter
// "(i)" from the roman numeral "(i)".
func Follows(prev, next string) bool {
	if prev == "" || next == "" {
		return false
	}
	if p, pok := leadingInt(prev); pok {
		n, nok := leadingInt(next)
		if !nok {
			return false
		}
		if n == p+1 {
			return true
		}
		// inserted provisions: "3" then "3A", "3A" then "3B"
		return n == p && strings.TrimLeft(next, "0123456789") > strings.TrimLeft(prev, "0123456789")
	}
	if p, ok := Roman(prev); ok {
		if n, ok := Roman(next); ok && n == p+1 {
			return true
		}
	}
	if p, ok := alpha(prev); ok {
		if n, ok := alpha(next); ok && n == p+1 {
			return true
		}
	}
	return false
}

func leadingInt(s string) (int, bool) {
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	return n, err == nil
}

// alpha maps "a".."z", "aa".."az", ... to 1, 2, ...
func alpha(s string) (int, bool) {
	s = strings.ToLower(s)
	n := 0
	for _, r := range s {
		if r < 'a' || r > 'z' {
			return 0, false
		}
		n = n*26 + int(r-'a'+1)
	}
	return n, n > 0
}

var romanDigits = map[rune]int{'i': 1, 'v': 5, 'x': 10, 'l': 50, 'c': 100, 'd': 500, 'm': 1000}

// Roman parses a lower- or upper-case roman numeral.
func Roman(s string) (int, bool) {
	total, prev := 0, 0
	rs := []rune(strings.ToLower(s))
	if len(rs) == 0 {
		return 0, false
	}
	for i := len(rs) - 1; i >= 0; i-- {
		if !unicode.IsLetter(rs[i]) {
			return 0, false
		}
		v, ok := romanDigits[rs[i]]
		if !ok {
			return 0, false
		}
		if v < prev {
			total -= v
		} else {
			total += v
			prev = v
		}
	}
	return total, true
}
