package sequence

import "github.com/Mistodon/melo/internal/notation"

// TimedToken pairs a note token with its inferred duration, in bars.
type TimedToken struct {
	Token    notation.Token
	Duration Fraction
}

// TimeBar stretches a bar's tokens across one whole bar: every token gets
// exactly 1/N of the bar, so a 1-token bar is a whole note and a 4-token bar
// is four quarters. The sum of the returned durations is exactly one bar for
// any token count.
func TimeBar(bar notation.Bar) []TimedToken {
	out := make([]TimedToken, len(bar))
	share := Frac(1, int64(len(bar)))
	for i, tok := range bar {
		out[i] = TimedToken{Token: tok, Duration: share}
	}
	return out
}
