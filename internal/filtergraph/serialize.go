package filtergraph

import (
	"fmt"
	"strconv"
	"strings"
)

// FilterComplex renders the graph in ffmpeg filter_complex syntax. This
// is the only renderer-specific piece; the assembled records themselves
// carry no syntax.
func FilterComplex(g Graph) string {
	parts := make([]string, 0, len(g.Ops))
	for _, op := range g.Ops {
		switch op := op.(type) {
		case TrimOp:
			parts = append(parts, serializeTrim(op))
		case ConcatOp:
			parts = append(parts, serializeConcat(op))
		case FilterChainOp:
			parts = append(parts, serializeFilterChain(op))
		}
	}
	return strings.Join(parts, ";")
}

func serializeTrim(op TrimOp) string {
	trim, setpts := "trim", "setpts"
	if op.Audio {
		trim, setpts = "atrim", "asetpts"
	}
	return fmt.Sprintf("[%s]%s=start=%s:end=%s,%s=PTS-STARTPTS[%s]",
		op.Source, trim, formatSeconds(op.Start), formatSeconds(op.End), setpts, op.Output)
}

func serializeConcat(op ConcatOp) string {
	var b strings.Builder
	for _, label := range op.Inputs {
		b.WriteByte('[')
		b.WriteString(label)
		b.WriteByte(']')
	}
	fmt.Fprintf(&b, "concat=n=%d:v=1:a=1[%s][%s]", op.Segments, op.VideoOutput, op.AudioOutput)
	return b.String()
}

func serializeFilterChain(op FilterChainOp) string {
	chain := strings.Join(op.Chains, ",")
	if chain == "" {
		chain = "anull"
	}
	return fmt.Sprintf("[%s]%s[%s]", op.Input, chain, op.Output)
}

// formatSeconds writes a timestamp with millisecond precision, matching
// what silencedetect reports.
func formatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}
