package timeline

import "fmt"

// mergeEpsilon absorbs floating-point drift between a range end and the
// next range start. It is a tolerance, not a tunable.
const mergeEpsilon = 0.002

// BuildKeepRanges derives the surviving timeline segments from the
// detected silences. Spoken segments between silences are kept whole;
// silences shorter than the policy threshold are kept verbatim; longer
// silences are shrunk to a head fragment and a tail fragment (or one
// centered fragment when the two would meet). Adjacent results are merged
// and clamped so the returned ranges are strictly ordered and
// non-overlapping.
func BuildKeepRanges(totalDuration float64, silences []Interval, policy Policy) ([]Interval, error) {
	if totalDuration <= 0 {
		return nil, fmt.Errorf("%w: total duration %.3f", ErrNonPositiveDuration, totalDuration)
	}
	if err := validateSilences(silences); err != nil {
		return nil, err
	}

	keep := make([]Interval, 0, len(silences)*2+1)
	cursor := 0.0
	for _, silence := range silences {
		if cursor < silence.Start {
			keep = append(keep, Interval{Start: cursor, End: silence.Start})
		}
		keep = append(keep, shrinkSilence(silence, policy)...)
		cursor = silence.End
	}
	if cursor < totalDuration {
		keep = append(keep, Interval{Start: cursor, End: totalDuration})
	}

	return clampRanges(mergeAdjacent(keep)), nil
}

// shrinkSilence applies the gentle-shrink policy to one silence.
func shrinkSilence(silence Interval, policy Policy) []Interval {
	length := silence.Length()
	if length < policy.LongThreshold {
		return []Interval{silence}
	}

	final := policy.finalLength(length)
	headLen := final * policy.HeadTailRatio
	tailLen := final - headLen
	headEnd := silence.Start + headLen
	tailStart := silence.End - tailLen
	if headEnd >= tailStart {
		// Head and tail would touch or overlap: keep one centered
		// fragment of the retained length instead.
		mid := silence.Start + (length-final)/2
		return []Interval{{Start: mid, End: mid + final}}
	}
	return []Interval{
		{Start: silence.Start, End: headEnd},
		{Start: tailStart, End: silence.End},
	}
}

// mergeAdjacent collapses ranges whose start falls within mergeEpsilon of
// the previous range's end, extending the previous end to the larger of
// the two. Running it on already-merged input is a no-op.
func mergeAdjacent(ranges []Interval) []Interval {
	merged := make([]Interval, 0, len(ranges))
	for _, r := range ranges {
		if len(merged) == 0 {
			merged = append(merged, r)
			continue
		}
		prev := &merged[len(merged)-1]
		if r.Start <= prev.End+mergeEpsilon {
			if r.End > prev.End {
				prev.End = r.End
			}
			continue
		}
		merged = append(merged, r)
	}
	return merged
}

// clampRanges floors every start at zero and forces end >= start,
// returning fresh values rather than mutating the input.
func clampRanges(ranges []Interval) []Interval {
	clamped := make([]Interval, 0, len(ranges))
	for _, r := range ranges {
		if r.Start < 0 {
			r.Start = 0
		}
		if r.End < r.Start {
			r.End = r.Start
		}
		clamped = append(clamped, r)
	}
	return clamped
}
