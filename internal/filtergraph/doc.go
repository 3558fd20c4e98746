// Package filtergraph turns keep ranges into the ordered operation
// description the renderer executes.
//
// Assembly produces typed records: one trim per keep range per stream
// (each restarted at time zero), one concatenate over the interleaved
// segment outputs, and one final filter-chain application on the merged
// audio. Serialization of the records into ffmpeg filter_complex syntax
// is a separate step so the assembly logic stays independent of the wire
// format.
package filtergraph
