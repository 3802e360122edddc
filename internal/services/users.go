package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/privchat/privchat-backend/internal/models"
	"github.com/privchat/privchat-backend/pkg/utils"
)

// UserAccounts is the account-store surface the user service needs. The
// production implementation is the PostgreSQL UserStore.
type UserAccounts interface {
	UserDirectory
	CreateUser(ctx context.Context, username, passwordHash, email string) (*models.User, error)
	AddContactPair(ctx context.Context, userID, contactID uuid.UUID) error
}

// Users implements registration, login, profile lookup, and the
// contact-add operation that keeps the contact graph symmetric.
type Users struct {
	accounts UserAccounts
}

func NewUsers(accounts UserAccounts) *Users {
	return &Users{accounts: accounts}
}

// Register creates a new account with an Argon2id password hash.
func (u *Users) Register(ctx context.Context, username, password, email string) (*models.User, error) {
	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user, err := u.accounts.CreateUser(ctx, username, hash, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUsernameTaken
	}

	return user, nil
}

// Login verifies the password and returns the account. An unknown username
// and a wrong password produce the same error.
func (u *Users) Login(ctx context.Context, username, password string) (*models.User, error) {
	user, err := u.accounts.FindUser(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	ok, err := utils.VerifyPassword(password, user.PasswordHash)
	if err != nil || !ok {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// GetUser returns the account for username.
func (u *Users) GetUser(ctx context.Context, username string) (*models.User, error) {
	user, err := u.accounts.FindUser(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidUser
	}
	return user, nil
}

// AddContact links two accounts. Both directed edges are written in one
// transaction so that whenever A lists B, B lists A; the router's
// authorization check relies on this invariant.
func (u *Users) AddContact(ctx context.Context, username, contactUsername string) (*models.User, error) {
	user, err := u.accounts.FindUser(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidUser
	}

	contact, err := u.accounts.FindUser(ctx, contactUsername)
	if err != nil {
		return nil, err
	}
	if contact == nil {
		return nil, ErrInvalidContact
	}

	if user.HasContact(contact.Username) {
		return nil, ErrContactExists
	}

	if err := u.accounts.AddContactPair(ctx, user.ID, contact.ID); err != nil {
		return nil, err
	}

	user.Contacts = append(user.Contacts, contact.Username)
	return user, nil
}

// AreContacts reports whether b is in a's contact list. By the symmetric
// invariant the answer is the same with the arguments swapped. An unknown
// user yields false, not a distinct error.
func (u *Users) AreContacts(ctx context.Context, a, b string) (bool, error) {
	user, err := u.accounts.FindUser(ctx, a)
	if err != nil {
		return false, err
	}
	if user == nil {
		return false, nil
	}
	return user.HasContact(b), nil
}
