// Package analysis implements the first pipeline stage: probing the source
// container and detecting silence intervals on a cleaned throwaway audio
// track.
package analysis
