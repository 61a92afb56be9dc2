// Package validate holds the input rules shared by the HTTP form layer and
// the service layer. Every function is pure.
package validate

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

const (
	MinPhoneDigits    = 10
	MaxPhoneDigits    = 15
	MinPasswordLength = 6
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneChars   = regexp.MustCompile(`^\+?[\d\s\-()]+$`)
)

// Email reports whether s looks like local@domain.tld.
func Email(s string) bool {
	return emailPattern.MatchString(strings.TrimSpace(s))
}

// Phone reports whether s holds 10 to 15 digits once spaces, dashes and
// parentheses are removed. A single leading "+" is allowed.
func Phone(s string) bool {
	s = strings.TrimSpace(s)
	if !phoneChars.MatchString(s) {
		return false
	}
	n := PhoneDigits(s)
	return n >= MinPhoneDigits && n <= MaxPhoneDigits
}

// PhoneDigits counts the decimal digits in s.
func PhoneDigits(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}

// Price reports whether p is a usable catalog price.
func Price(p float64) bool {
	return p > 0 && !math.IsInf(p, 0) && !math.IsNaN(p)
}

// ParsePrice parses a form value into a positive price.
func ParsePrice(raw string) (float64, bool) {
	p, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || !Price(p) {
		return 0, false
	}
	return p, true
}

// Required reports whether s has non-whitespace content.
func Required(s string) bool {
	return strings.TrimSpace(s) != ""
}

// Password reports whether s satisfies the minimum password length.
func Password(s string) bool {
	return len(s) >= MinPasswordLength
}
