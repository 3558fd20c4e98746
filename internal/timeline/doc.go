// Package timeline implements the interval arithmetic at the heart of
// pausetrim.
//
// Silence boundary markers emitted by the analyzer are paired into
// well-formed silence intervals, and those intervals plus the total
// duration are turned into keep ranges: the portions of the source
// timeline that survive into the edited output. Long silences are not
// deleted but gently shrunk, optionally split into a short head pause and
// a short tail pause so the edit keeps its natural leading-in and
// trailing-out feel.
//
// Everything in this package is a pure function over value types. No
// state is held between calls, so the same inputs always produce the
// same keep ranges.
package timeline
