package filtergraph

import (
	"errors"
	"testing"

	"pausetrim/internal/timeline"
)

func TestAssembleEmptyInput(t *testing.T) {
	if _, err := Assemble(nil, Options{PostChain: "loudnorm"}); !errors.Is(err, ErrEmptyInput) {
		t.Fatalf("expected ErrEmptyInput, got %v", err)
	}
}

func TestAssembleOperationCounts(t *testing.T) {
	keep := []timeline.Interval{{Start: 0, End: 2.7}, {Start: 4.3, End: 10}, {Start: 12, End: 15}}
	graph, err := Assemble(keep, Options{PostChain: "loudnorm"})
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}

	trims, concats, filters := 0, 0, 0
	for _, op := range graph.Ops {
		switch op.(type) {
		case TrimOp:
			trims++
		case ConcatOp:
			concats++
		case FilterChainOp:
			filters++
		}
	}
	if trims != 2*len(keep) {
		t.Fatalf("expected %d trims, got %d", 2*len(keep), trims)
	}
	if concats != 1 || filters != 1 {
		t.Fatalf("expected 1 concat and 1 filter op, got %d and %d", concats, filters)
	}
}

func TestAssembleInterleavesSegmentLabels(t *testing.T) {
	keep := []timeline.Interval{{Start: 0, End: 1}, {Start: 2, End: 3}}
	graph, err := Assemble(keep, Options{PostChain: "loudnorm"})
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}

	var concat ConcatOp
	found := false
	for _, op := range graph.Ops {
		if c, ok := op.(ConcatOp); ok {
			concat = c
			found = true
		}
	}
	if !found {
		t.Fatalf("no concat op in graph")
	}
	want := []string{"v0", "a0", "v1", "a1"}
	if len(concat.Inputs) != len(want) {
		t.Fatalf("expected inputs %v, got %v", want, concat.Inputs)
	}
	for i := range want {
		if concat.Inputs[i] != want[i] {
			t.Fatalf("expected inputs %v, got %v", want, concat.Inputs)
		}
	}
	if concat.Segments != 2 {
		t.Fatalf("expected 2 segments, got %d", concat.Segments)
	}
}

func TestAssembleChainOrdering(t *testing.T) {
	keep := []timeline.Interval{{Start: 0, End: 1}}

	graph, err := Assemble(keep, Options{PreChain: "afftdn=nr=8", PostChain: "loudnorm"})
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	chainOp, ok := graph.Ops[len(graph.Ops)-1].(FilterChainOp)
	if !ok {
		t.Fatalf("last op is not a filter chain: %T", graph.Ops[len(graph.Ops)-1])
	}
	if len(chainOp.Chains) != 2 || chainOp.Chains[0] != "afftdn=nr=8" || chainOp.Chains[1] != "loudnorm" {
		t.Fatalf("pre chain must come before post chain: %v", chainOp.Chains)
	}

	graph, err = Assemble(keep, Options{PostChain: "loudnorm"})
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	chainOp = graph.Ops[len(graph.Ops)-1].(FilterChainOp)
	if len(chainOp.Chains) != 1 || chainOp.Chains[0] != "loudnorm" {
		t.Fatalf("expected only the post chain: %v", chainOp.Chains)
	}
}

func TestAssembleOutputLabels(t *testing.T) {
	graph, err := Assemble([]timeline.Interval{{Start: 0, End: 1}}, Options{PostChain: "loudnorm"})
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	if graph.VideoOutput != "vcat" || graph.AudioOutput != "aout" {
		t.Fatalf("unexpected output labels: %q %q", graph.VideoOutput, graph.AudioOutput)
	}
}

func TestAssembleReferencesEarlierLabelsOnly(t *testing.T) {
	keep := []timeline.Interval{{Start: 0, End: 1}, {Start: 2, End: 3}}
	graph, err := Assemble(keep, Options{PostChain: "loudnorm"})
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}

	produced := map[string]bool{}
	for _, op := range graph.Ops {
		switch op := op.(type) {
		case ConcatOp:
			for _, in := range op.Inputs {
				if !produced[in] {
					t.Fatalf("concat references label %q before it is produced", in)
				}
			}
		case FilterChainOp:
			if !produced[op.Input] {
				t.Fatalf("filter chain references label %q before it is produced", op.Input)
			}
		}
		for _, label := range op.OutputLabels() {
			produced[label] = true
		}
	}
}
