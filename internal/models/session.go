package models

import "time"

// SessionScope names where a session is persisted.
type SessionScope string

const (
	// ScopeSession lives in process memory and dies with the browser session.
	ScopeSession SessionScope = "session"
	// ScopeDurable survives restarts and browser restarts until its TTL.
	ScopeDurable SessionScope = "durable"
)

// Session is the authenticated context of one signed-in browser.
type Session struct {
	ID        string       `json:"id"`
	Token     string       `json:"token"`
	User      UserProfile  `json:"user"`
	Scope     SessionScope `json:"scope"`
	CreatedAt time.Time    `json:"created_at"`
}
