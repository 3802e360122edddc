package services

import (
	"context"

	"github.com/privchat/privchat-backend/internal/models"
)

// PresenceRows is the minimal document-store surface the registry needs.
// The production implementation lives in internal/database (MongoDB
// "sockets" collection); tests substitute an in-memory fake.
type PresenceRows interface {
	Exists(ctx context.Context, socketID string) (bool, error)
	Insert(ctx context.Context, row models.PresenceRow) error
	Delete(ctx context.Context, socketID string) error
	FindSockets(ctx context.Context, usernames []string, excluding string) ([]string, error)
}

// PresenceRegistry maps live socket ids to the usernames they represent.
// A username may hold many rows at once (one per device/tab); a socket id
// holds at most one.
type PresenceRegistry struct {
	rows PresenceRows
}

func NewPresenceRegistry(rows PresenceRows) *PresenceRegistry {
	return &PresenceRegistry{rows: rows}
}

// Register records that socketID now represents username. Registering a
// socket id that already has a row is a no-op, so a retried identify event
// never produces duplicate rows.
//
// The existence check and the insert are two separate store calls with no
// transaction around them; two near-simultaneous registrations of a brand
// new socket id can race. Known weakness, tolerated: socket ids are issued
// per connection and each connection registers from a single read loop.
func (p *PresenceRegistry) Register(ctx context.Context, socketID, username string) error {
	if socketID == "" {
		return ErrEmptyIdentifier
	}

	exists, err := p.rows.Exists(ctx, socketID)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	return p.rows.Insert(ctx, models.PresenceRow{SocketID: socketID, Username: username})
}

// Unregister removes any row for socketID. Unregistering a socket id with
// no row (a connection that never identified) is not an error.
func (p *PresenceRegistry) Unregister(ctx context.Context, socketID string) error {
	if socketID == "" {
		return ErrEmptyIdentifier
	}
	return p.rows.Delete(ctx, socketID)
}

// ConnectionsFor returns the socket ids of every row whose username is in
// usernames, minus the excluded socket id. The router uses this to reach
// every other device of the sender and recipient without echoing the
// message back to its originating connection.
func (p *PresenceRegistry) ConnectionsFor(ctx context.Context, usernames []string, excluding string) ([]string, error) {
	return p.rows.FindSockets(ctx, usernames, excluding)
}
