// Package retry wraps every remote call made during a crawl.
//
// A Policy runs an action up to MaxAttempts times with a fixed delay between
// attempts. Each call site supplies a stop classifier that turns an expected
// absence (a missing descriptor, a withheld update list) into an Absent
// outcome instead of an error. Failures marked permanent are returned at
// once, and cancellation of the context interrupts the delay.
//
// Warnings are logged before every retry and an error after the final
// attempt, each naming the operation so an operator can see which title or
// list version is misbehaving.
package retry
