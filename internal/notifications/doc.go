// Package notifications pushes pipeline progress to an ntfy topic. When no
// topic is configured, a noop implementation keeps callers unconditional.
package notifications
