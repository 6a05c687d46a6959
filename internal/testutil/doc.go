// Package testutil contains helpers used across tests: a controllable clock
// for TTL and ordering assertions and a scripted model completer. These
// helpers are intentionally minimal and not intended for production usage.
package testutil
