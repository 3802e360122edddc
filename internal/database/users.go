package database

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/privchat/privchat-backend/internal/models"
)

// UserStore reads and writes account records and contact edges in
// PostgreSQL. It implements the directory and contact-graph interfaces
// declared by the services package.
type UserStore struct {
	db *sql.DB
}

func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

// FindUser returns the user with the given username, contacts included,
// or (nil, nil) when no such user exists.
func (s *UserStore) FindUser(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	err := s.db.QueryRowContext(ctx, `
		SELECT id, username, email, password_hash, created_at
		FROM users WHERE username = $1
	`, username).Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT c.username
		FROM contacts e
		JOIN users c ON c.id = e.contact_id
		WHERE e.user_id = $1
		ORDER BY c.username
	`, u.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	u.Contacts = []string{}
	for rows.Next() {
		var contact string
		if err := rows.Scan(&contact); err != nil {
			return nil, err
		}
		u.Contacts = append(u.Contacts, contact)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &u, nil
}

// CreateUser inserts a new account. Returns (nil, nil) when the username is
// already taken so the caller can surface its own domain error.
func (s *UserStore) CreateUser(ctx context.Context, username, passwordHash, email string) (*models.User, error) {
	u := models.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		Contacts:     []string{},
	}

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO users (id, username, email, password_hash)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`, u.ID, u.Username, u.Email, u.PasswordHash).Scan(&u.CreatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return nil, nil
		}
		return nil, err
	}

	return &u, nil
}

// AddContactPair inserts both directed edges between the two users in a
// single transaction, keeping the contact relation symmetric.
func (s *UserStore) AddContactPair(ctx context.Context, userID, contactID uuid.UUID) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, pair := range [][2]uuid.UUID{{userID, contactID}, {contactID, userID}} {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO contacts (user_id, contact_id) VALUES ($1, $2)
		`, pair[0], pair[1]); err != nil {
			return err
		}
	}

	return tx.Commit()
}
