package timeline

import (
	"errors"
	"math"
	"testing"
)

const floatTolerance = 1e-6

func assertIntervals(t *testing.T, got, want []Interval) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("expected %d intervals, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if math.Abs(got[i].Start-want[i].Start) > floatTolerance || math.Abs(got[i].End-want[i].End) > floatTolerance {
			t.Fatalf("interval %d: expected %v, got %v", i, want[i], got[i])
		}
	}
}

func TestBuildKeepRangesNoSilences(t *testing.T) {
	keep, err := BuildKeepRanges(12.5, nil, DefaultPolicy())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	assertIntervals(t, keep, []Interval{{0, 12.5}})
}

func TestBuildKeepRangesShortSilenceKeptVerbatim(t *testing.T) {
	keep, err := BuildKeepRanges(10, []Interval{{3.0, 3.5}}, DefaultPolicy())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	// 0.5s silence is under the 1s threshold; everything merges back into
	// one continuous range.
	assertIntervals(t, keep, []Interval{{0, 10}})
}

func TestBuildKeepRangesGentleShrink(t *testing.T) {
	keep, err := BuildKeepRanges(10, []Interval{{2.0, 5.0}}, DefaultPolicy())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	// L=3.0 -> final=min(1.8, 1.4)=1.4, head=tail=0.7. The head fragment
	// touches the preceding speech and the tail fragment touches the
	// following speech, so the merge pass collapses each pair.
	assertIntervals(t, keep, []Interval{{0, 2.7}, {4.3, 10}})
}

func TestBuildKeepRangesSkewedHeadTailRatio(t *testing.T) {
	policy := DefaultPolicy()
	policy.HeadTailRatio = 0.9

	keep, err := BuildKeepRanges(10, []Interval{{2.0, 5.0}}, policy)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	// final=1.4 -> head=1.26, tail=0.14. Still two distinct fragments.
	assertIntervals(t, keep, []Interval{{0, 3.26}, {4.86, 10}})
}

func TestBuildKeepRangesCenteredCollapse(t *testing.T) {
	policy := Policy{
		LongThreshold: 1.0,
		ReduceRatio:   1.0,
		MinFinal:      1.0,
		MaxFinal:      -1,
		HeadTailRatio: 0.5,
	}

	// L=1.2, final=1.2: head end meets tail start exactly, so the two
	// fragments collapse into one centered range of the full length.
	keep, err := BuildKeepRanges(10, []Interval{{4.0, 5.2}}, policy)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	assertIntervals(t, keep, []Interval{{0, 10}})
}

func TestBuildKeepRangesCenteredCollapseIsolated(t *testing.T) {
	policy := Policy{
		LongThreshold: 1.0,
		ReduceRatio:   0.5,
		MinFinal:      0.1,
		MaxFinal:      -1,
		HeadTailRatio: 0.5,
	}

	// L=4, final=2, head/tail of 1s each: head ends at 4 and tail starts
	// at 6, distinct fragments around the removed middle.
	keep, err := BuildKeepRanges(10, []Interval{{3.0, 7.0}}, policy)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	assertIntervals(t, keep, []Interval{{0, 4}, {6, 10}})
}

func TestBuildKeepRangesRetainedLengthMatchesPolicy(t *testing.T) {
	policy := DefaultPolicy()
	silence := Interval{Start: 20, End: 26}

	keep, err := BuildKeepRanges(60, []Interval{silence}, policy)
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	total := 0.0
	for _, r := range keep {
		total += r.Length()
	}
	// The removed slack is exactly L minus the clamped retained length.
	wantRemoved := silence.Length() - policy.finalLength(silence.Length())
	if math.Abs((60-total)-wantRemoved) > floatTolerance {
		t.Fatalf("expected %.3fs removed, got %.3fs", wantRemoved, 60-total)
	}
}

func TestBuildKeepRangesCeilingBelowFloorDegenerates(t *testing.T) {
	policy := DefaultPolicy()
	policy.MinFinal = 2.0
	policy.MaxFinal = 0.2

	// Misconfiguration is resolved, not rejected: the floor is applied
	// first so the ceiling wins with a near-zero retained length.
	keep, err := BuildKeepRanges(30, []Interval{{10, 20}}, policy)
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	total := 0.0
	for _, r := range keep {
		total += r.Length()
	}
	if math.Abs((30-total)-9.8) > floatTolerance {
		t.Fatalf("expected 9.8s removed, got %.3fs", 30-total)
	}
}

func TestBuildKeepRangesUnboundedCeiling(t *testing.T) {
	policy := DefaultPolicy()
	policy.MaxFinal = -1

	keep, err := BuildKeepRanges(60, []Interval{{10, 20}}, policy)
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	total := 0.0
	for _, r := range keep {
		total += r.Length()
	}
	// final = 10 * 0.6 = 6.0 with no ceiling, so 4s are removed.
	if math.Abs((60-total)-4.0) > floatTolerance {
		t.Fatalf("expected 4.0s removed, got %.3fs", 60-total)
	}
}

func TestBuildKeepRangesSilenceAtStartAndEnd(t *testing.T) {
	keep, err := BuildKeepRanges(10, []Interval{{0, 0.4}, {9.7, 10}}, DefaultPolicy())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	assertIntervals(t, keep, []Interval{{0, 10}})
}

func TestBuildKeepRangesOrderedNonOverlapping(t *testing.T) {
	silences := []Interval{{1, 3}, {4, 4.5}, {5, 9}, {12, 18}}
	keep, err := BuildKeepRanges(20, silences, DefaultPolicy())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	for i, r := range keep {
		if r.End < r.Start {
			t.Fatalf("range %d inverted: %v", i, r)
		}
		if r.Start < 0 || r.End > 20+floatTolerance {
			t.Fatalf("range %d outside the timeline: %v", i, r)
		}
		if i > 0 && r.Start <= keep[i-1].End {
			t.Fatalf("range %d overlaps previous: %v", i, keep)
		}
	}
}

func TestBuildKeepRangesNonPositiveDuration(t *testing.T) {
	if _, err := BuildKeepRanges(0, nil, DefaultPolicy()); !errors.Is(err, ErrNonPositiveDuration) {
		t.Fatalf("expected ErrNonPositiveDuration, got %v", err)
	}
	if _, err := BuildKeepRanges(-3, nil, DefaultPolicy()); !errors.Is(err, ErrNonPositiveDuration) {
		t.Fatalf("expected ErrNonPositiveDuration, got %v", err)
	}
}

func TestBuildKeepRangesInvalidSilence(t *testing.T) {
	_, err := BuildKeepRanges(10, []Interval{{5, 5}}, DefaultPolicy())
	if !errors.Is(err, ErrInvalidInterval) {
		t.Fatalf("expected ErrInvalidInterval, got %v", err)
	}
	_, err = BuildKeepRanges(10, []Interval{{5, 4}}, DefaultPolicy())
	if !errors.Is(err, ErrInvalidInterval) {
		t.Fatalf("expected ErrInvalidInterval, got %v", err)
	}
}

func TestMergeAdjacentIdempotent(t *testing.T) {
	ranges := []Interval{{0, 2}, {2.001, 3}, {5, 6}, {6.1, 7}}
	once := mergeAdjacent(ranges)
	twice := mergeAdjacent(once)
	assertIntervals(t, twice, once)
}

func TestMergeAdjacentExtendsToLargerEnd(t *testing.T) {
	ranges := []Interval{{0, 5}, {1, 3}}
	merged := mergeAdjacent(ranges)
	assertIntervals(t, merged, []Interval{{0, 5}})
}

func TestClampRangesFloorsNegativeStarts(t *testing.T) {
	clamped := clampRanges([]Interval{{-0.5, 1}, {2, 1.5}})
	assertIntervals(t, clamped, []Interval{{0, 1}, {2, 2}})
}
