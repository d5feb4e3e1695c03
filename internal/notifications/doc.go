// Package notifications publishes run events to ntfy.
//
// NewService returns a no-op implementation when no topic is configured, so
// callers publish unconditionally. Which events reach the topic is decided
// here from the [notifications] toggles.
package notifications
