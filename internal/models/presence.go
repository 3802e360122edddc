package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// PresenceRow is stored in the MongoDB "sockets" collection and records that
// a live WebSocket connection currently represents a username. A username may
// own any number of rows (multi-device); a socket id owns at most one.
type PresenceRow struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	SocketID string             `bson:"socketId" json:"socketId"`
	Username string             `bson:"username" json:"username"`
}
