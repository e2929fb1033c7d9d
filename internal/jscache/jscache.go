// Package jscache stores downloaded player scripts keyed by their URL.
//
// Player script URLs carry the player version, so a stored body stays valid
// until it is evicted; ExpiresAt bounds how long a copy is trusted anyway.
package jscache

import "time"

// Entry is one stored player script.
type Entry struct {
	Body      string
	ExpiresAt time.Time
}

// Expired reports whether e is past its expiry at now. A zero ExpiresAt
// never expires.
func (e Entry) Expired(now time.Time) bool {
	return !e.ExpiresAt.IsZero() && !now.Before(e.ExpiresAt)
}

// Store is a player script cache. Implementations must be safe for
// concurrent use and treat expired entries as missing.
type Store interface {
	Get(key string) (Entry, bool)
	Set(key string, e Entry)
}
