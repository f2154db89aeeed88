package logic

import "github.com/sweeney/morse-key/internal/morse"

// GapKind is the classification of a release.
type GapKind uint8

const (
	IntraCharacter GapKind = iota
	EndOfCharacter
)

func (g GapKind) String() string {
	if g == EndOfCharacter {
		return "end-of-character"
	}
	return "intra-character"
}

// ClassifyPress decides dot or dash. The fixed caps win; only presses
// between them are compared with the adaptive boundary, and ties go to Dot.
func ClassifyPress(d Millis, mean, stddev float64, th Thresholds) morse.Symbol {
	switch {
	case d < th.ShortPressCap:
		return morse.Dot
	case d > th.LongPressCap:
		return morse.Dash
	case float64(d) <= mean+th.Multiplier*stddev:
		return morse.Dot
	default:
		return morse.Dash
	}
}

// GapBoundary returns the gap length beyond which a character ends:
// mean + k*stddev clamped to [GapFloor, FinalizeGap].
func GapBoundary(mean, stddev float64, th Thresholds) float64 {
	b := mean + th.Multiplier*stddev
	if b < float64(th.GapFloor) {
		b = float64(th.GapFloor)
	}
	if th.FinalizeGap > 0 && b > float64(th.FinalizeGap) {
		b = float64(th.FinalizeGap)
	}
	return b
}

// ClassifyGap decides whether a release ends the character. A full
// pattern always ends it.
func ClassifyGap(d Millis, mean, stddev float64, patternFull bool, th Thresholds) GapKind {
	if patternFull || float64(d) > GapBoundary(mean, stddev, th) {
		return EndOfCharacter
	}
	return IntraCharacter
}
