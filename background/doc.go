// Package background executes units of work under a caller-facing deadline.
// The work is never cancelled: if the deadline elapses first the caller gets
// a placeholder and the work keeps running, recording its outcome into the
// task store for later retrieval. Only the caller's wait is bounded.
package background
