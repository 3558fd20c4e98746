package filtergraph

import (
	"errors"
	"fmt"
	"strings"

	"pausetrim/internal/timeline"
)

// ErrEmptyInput marks an assembly call with zero keep ranges. There is
// nothing to render.
var ErrEmptyInput = errors.New("filtergraph: no keep ranges")

// Options configures graph assembly.
type Options struct {
	// VideoSource and AudioSource are the input stream specifiers.
	// Defaults are "0:v" and "0:a".
	VideoSource string
	AudioSource string
	// PreChain is an optional filter chain applied to the concatenated
	// audio before PostChain, e.g. a denoise pass.
	PreChain string
	// PostChain is the filter chain applied last, e.g. normalization
	// and dynamics. Both chains are opaque to this package.
	PostChain string
}

// Assemble builds the operation graph for the given keep ranges: a
// video/audio trim pair per range, one interleaved concatenate, and one
// filter-chain application on the merged audio.
func Assemble(keep []timeline.Interval, opts Options) (Graph, error) {
	if len(keep) == 0 {
		return Graph{}, ErrEmptyInput
	}

	videoSource := opts.VideoSource
	if videoSource == "" {
		videoSource = "0:v"
	}
	audioSource := opts.AudioSource
	if audioSource == "" {
		audioSource = "0:a"
	}

	ops := make([]Op, 0, len(keep)*2+2)
	interleaved := make([]string, 0, len(keep)*2)
	for i, r := range keep {
		videoLabel := fmt.Sprintf("v%d", i)
		audioLabel := fmt.Sprintf("a%d", i)
		ops = append(ops,
			TrimOp{Source: videoSource, Start: r.Start, End: r.End, Output: videoLabel},
			TrimOp{Source: audioSource, Audio: true, Start: r.Start, End: r.End, Output: audioLabel},
		)
		interleaved = append(interleaved, videoLabel, audioLabel)
	}

	ops = append(ops, ConcatOp{
		Inputs:      interleaved,
		Segments:    len(keep),
		VideoOutput: "vcat",
		AudioOutput: "acat",
	})

	chains := make([]string, 0, 2)
	if chain := strings.TrimSpace(opts.PreChain); chain != "" {
		chains = append(chains, chain)
	}
	if chain := strings.TrimSpace(opts.PostChain); chain != "" {
		chains = append(chains, chain)
	}
	ops = append(ops, FilterChainOp{Input: "acat", Chains: chains, Output: "aout"})

	return Graph{Ops: ops, VideoOutput: "vcat", AudioOutput: "aout"}, nil
}
