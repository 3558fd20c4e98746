package timeline

// Policy tunes how long silences are shrunk. All durations are seconds.
type Policy struct {
	// LongThreshold is the length below which a silence is treated as a
	// natural pause and kept verbatim.
	LongThreshold float64
	// ReduceRatio is the fraction of a long silence that is retained.
	ReduceRatio float64
	// MinFinal is the floor on the retained length after shrinking.
	MinFinal float64
	// MaxFinal is the ceiling on the retained length. A negative value
	// disables the ceiling.
	MaxFinal float64
	// HeadTailRatio is the fraction of the retained length placed at the
	// head of the silence; the remainder goes to the tail.
	HeadTailRatio float64
}

// DefaultPolicy returns the shrink tuning used when nothing is configured.
func DefaultPolicy() Policy {
	return Policy{
		LongThreshold: 1.0,
		ReduceRatio:   0.6,
		MinFinal:      0.5,
		MaxFinal:      1.4,
		HeadTailRatio: 0.5,
	}
}

// finalLength computes the retained length for a long silence of length l.
// The floor is applied before the ceiling, so a ceiling below the floor
// wins and yields a degenerate (short) retained length rather than an
// error.
func (p Policy) finalLength(l float64) float64 {
	final := l * p.ReduceRatio
	if final < p.MinFinal {
		final = p.MinFinal
	}
	if p.MaxFinal >= 0 && final > p.MaxFinal {
		final = p.MaxFinal
	}
	return final
}
