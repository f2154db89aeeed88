// Package morse holds the fixed A–Z code table and the pattern buffer used
// while a character is being keyed.
package morse

import (
	"errors"
	"strings"
)

// MaxPatternLen is the longest pattern in the table (four symbols).
const MaxPatternLen = 4

// ErrPatternFull is returned by Append when the pattern already holds
// MaxPatternLen symbols.
var ErrPatternFull = errors.New("morse: pattern full")

// Symbol is a single keyed element.
type Symbol uint8

const (
	Dot Symbol = iota
	Dash
)

// String returns the display form of the symbol.
func (s Symbol) String() string {
	if s == Dash {
		return "-"
	}
	return "."
}

// digit returns the table form: '0' for dot, '1' for dash.
func (s Symbol) digit() byte {
	if s == Dash {
		return '1'
	}
	return '0'
}

// Pattern is the symbol sequence of the character currently being entered.
// The zero value is an empty pattern.
type Pattern struct {
	syms [MaxPatternLen]Symbol
	n    int
}

// Append adds a symbol. The pattern is left unchanged when full.
func (p *Pattern) Append(s Symbol) error {
	if p.n >= MaxPatternLen {
		return ErrPatternFull
	}
	p.syms[p.n] = s
	p.n++
	return nil
}

// Len returns the number of symbols.
func (p Pattern) Len() int { return p.n }

// Full reports whether another Append would fail.
func (p Pattern) Full() bool { return p.n >= MaxPatternLen }

// Empty reports whether no symbols have been entered.
func (p Pattern) Empty() bool { return p.n == 0 }

// Reset clears the pattern.
func (p *Pattern) Reset() {
	p.n = 0
}

// Symbols returns a copy of the entered symbols.
func (p Pattern) Symbols() []Symbol {
	out := make([]Symbol, p.n)
	copy(out, p.syms[:p.n])
	return out
}

// Digits returns the pattern in table form, e.g. "01" for A.
func (p Pattern) Digits() string {
	b := make([]byte, p.n)
	for i := 0; i < p.n; i++ {
		b[i] = p.syms[i].digit()
	}
	return string(b)
}

// String returns the pattern in dot/dash form, e.g. ".-" for A.
func (p Pattern) String() string {
	var sb strings.Builder
	for i := 0; i < p.n; i++ {
		sb.WriteString(p.syms[i].String())
	}
	return sb.String()
}

// ParsePattern builds a pattern from table digits ('0'/'1') or dot/dash
// notation ('.'/'-'). It fails on any other byte or on more than
// MaxPatternLen symbols.
func ParsePattern(s string) (Pattern, error) {
	var p Pattern
	for i := 0; i < len(s); i++ {
		var sym Symbol
		switch s[i] {
		case '0', '.':
			sym = Dot
		case '1', '-':
			sym = Dash
		default:
			return Pattern{}, errors.New("morse: invalid symbol " + string(s[i]))
		}
		if err := p.Append(sym); err != nil {
			return Pattern{}, err
		}
	}
	return p, nil
}
