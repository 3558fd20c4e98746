// Package queue persists batch edit jobs in SQLite.
//
// Each queue item is one source file moving through the workflow:
// pending -> analyzing -> analyzed -> planning -> planned -> rendering ->
// rendered -> organizing -> completed, or failed at any point. Analysis
// and planning results are stored on the item so a later stage (or a
// retry) never recomputes earlier work.
package queue
