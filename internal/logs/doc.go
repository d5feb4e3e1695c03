// Package logs locates and tails the per-run log files written by
// internal/logging.
//
// Reads are bounded: the last N lines are kept in a ring, and follow mode
// polls from a byte offset until new lines arrive or the wait expires.
package logs
