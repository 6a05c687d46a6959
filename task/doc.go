// Package task holds background work records and their lifecycle: a record
// is created pending, transitions exactly once to completed or failed when
// the work finishes, and is retired by a one-shot consume when its result is
// delivered. Listings feed the status agent's matching step.
package task
