// Package ffprobe shells out to ffprobe and decodes the JSON inspection
// payload the pipeline needs before planning an edit.
package ffprobe
