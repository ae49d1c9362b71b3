// Package whitelist persists the set of identities authorized to use the
// bot. Identities are numeric Telegram ids plus a lowercase username map
// whose values stay null until the owner's id has been observed.
package whitelist
