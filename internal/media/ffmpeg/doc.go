// Package ffmpeg wraps the ffmpeg invocations the pipeline needs: audio
// extraction for silence detection, the silencedetect pass itself, and the
// final filter_complex render.
package ffmpeg
