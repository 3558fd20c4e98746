// Package workflow drives queued items through the pipeline stages:
// analysis, planning, rendering, and organization. A file lock enforces a
// single processor per queue database.
package workflow
