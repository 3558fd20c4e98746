package filtergraph

// Op is one labeled operation in the graph. Operations reference labels
// produced by earlier operations only, so the graph is a single linear
// pipeline.
type Op interface {
	// OutputLabels lists the labels this operation produces.
	OutputLabels() []string
}

// TrimOp cuts one keep range out of a source stream and restarts its
// timestamps at zero so concatenation sees contiguous segments.
type TrimOp struct {
	// Source is the input stream specifier, e.g. "0:v" or "0:a".
	Source string
	// Audio selects atrim/asetpts instead of trim/setpts.
	Audio bool
	Start float64
	End   float64
	// Output is the label the trimmed segment is bound to.
	Output string
}

// OutputLabels implements Op.
func (op TrimOp) OutputLabels() []string { return []string{op.Output} }

// ConcatOp joins the trimmed segments back to back. Inputs are the
// segment labels interleaved as (video, audio, video, audio, ...).
type ConcatOp struct {
	Inputs      []string
	Segments    int
	VideoOutput string
	AudioOutput string
}

// OutputLabels implements Op.
func (op ConcatOp) OutputLabels() []string { return []string{op.VideoOutput, op.AudioOutput} }

// FilterChainOp applies one or more opaque filter chains, in order, to a
// single stream.
type FilterChainOp struct {
	Input  string
	Chains []string
	Output string
}

// OutputLabels implements Op.
func (op FilterChainOp) OutputLabels() []string { return []string{op.Output} }

// Graph is the ordered operation sequence plus the labels the renderer
// maps into the output container.
type Graph struct {
	Ops []Op
	// VideoOutput and AudioOutput are the final labels to map.
	VideoOutput string
	AudioOutput string
}
