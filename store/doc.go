// Package store provides a generic, concurrency-safe keyed record container
// with per-entry last-touched timestamps. It is the shared foundation for the
// task and session stores: both need atomic single-record mutation, snapshot
// iteration that never observes a half-written entry, and timestamp-driven
// sweeps.
package store
