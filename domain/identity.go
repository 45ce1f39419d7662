// Package domain contains core concepts of the relay.
// This file defines the caller identity resolved at connection time.
// Identity is immutable for the lifetime of a session.
package domain

type Identity struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}
