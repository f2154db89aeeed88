package morse

import "unicode"

// InvalidMarker is shown in place of a pattern that matches no letter.
const InvalidMarker = '?'

// codes lists the patterns for A through Z in order, dot = '0', dash = '1'.
var codes = [26]string{
	"01", "1000", "1010", "100", "0", "0010", "110", "0000",
	"00", "0111", "101", "0100", "11", "10", "111", "0110",
	"1101", "010", "000", "1", "001", "0001", "011", "1001",
	"1011", "1100",
}

var (
	byPattern = make(map[string]rune, len(codes))
	byLetter  = make(map[rune]Pattern, len(codes))
)

func init() {
	for i, code := range codes {
		letter := rune('A' + i)
		p, err := ParsePattern(code)
		if err != nil {
			panic("morse: bad table entry for " + string(letter))
		}
		byPattern[code] = letter
		byLetter[letter] = p
	}
}

// Lookup returns the letter for an exact pattern match. Incomplete or
// unknown patterns report false.
func Lookup(p Pattern) (rune, bool) {
	if p.Empty() {
		return 0, false
	}
	r, ok := byPattern[p.Digits()]
	return r, ok
}

// PatternFor returns the pattern for a letter. Lower case is accepted.
func PatternFor(letter rune) (Pattern, bool) {
	p, ok := byLetter[unicode.ToUpper(letter)]
	return p, ok
}

// Letters returns A through Z in table order.
func Letters() []rune {
	out := make([]rune, len(codes))
	for i := range codes {
		out[i] = rune('A' + i)
	}
	return out
}
