package timeline

// PairSilences converts the two boundary marker sequences reported by the
// analyzer into ordered silence intervals. Both sequences are ascending;
// their lengths may differ when the analyzer reports a stale leading end
// or leaves the final silence open at the end of the stream.
//
// The two sequences are walked with independent cursors. An end marker at
// or before the current start marker belongs to a silence that opened
// before the observed window and is skipped. A trailing unmatched start
// marker is dropped: the audio past it is then covered by the final keep
// range instead of being shrunk.
func PairSilences(starts, ends []float64) []Interval {
	silences := make([]Interval, 0, min(len(starts), len(ends)))
	i, j := 0, 0
	for i < len(starts) && j < len(ends) {
		if ends[j] <= starts[i] {
			j++
			continue
		}
		silences = append(silences, Interval{Start: starts[i], End: ends[j]})
		i++
		j++
	}
	return silences
}
