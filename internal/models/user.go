package models

import (
	"time"

	"github.com/google/uuid"
)

// User is the account record stored in PostgreSQL. Contacts holds the
// usernames of everyone this user may message; the relation is symmetric
// (if A lists B, B lists A) and both edges are written in one transaction.
type User struct {
	ID           uuid.UUID `json:"-"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Contacts     []string  `json:"contacts"`
	CreatedAt    time.Time `json:"-"`
}

// HasContact reports whether username is in the user's contact list.
func (u *User) HasContact(username string) bool {
	for _, c := range u.Contacts {
		if c == username {
			return true
		}
	}
	return false
}
