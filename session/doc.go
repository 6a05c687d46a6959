// Package session keeps a per-session sliding window of conversation turns
// with inactivity expiry. Sessions are created lazily on first reference and
// evicted once idle for longer than the configured TTL; eviction is lazy on
// access with an optional sweep for callers that want a periodic pass.
package session
