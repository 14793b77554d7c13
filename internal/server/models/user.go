// Package models defines the persistent records owned by the server.
package models

import "time"

// User is a credential record. PasswordHash is the self-contained encoded
// output of the password hasher; the plaintext is never stored.
type User struct {
	ID           string
	UserName     string
	PasswordHash string
	CreatedAt    time.Time
}
