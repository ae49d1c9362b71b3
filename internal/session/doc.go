// Package session stores the ephemeral per-user pending request that
// bridges "links received" and the later "quality chosen" callback.
// Consumption is atomic take-and-clear so each submission runs at most once.
package session
