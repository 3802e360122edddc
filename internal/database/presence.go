package database

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/privchat/privchat-backend/internal/models"
)

// PresenceStore is the MongoDB-backed document store for the "sockets"
// collection, one document per identified live connection.
type PresenceStore struct {
	col *mongo.Collection
}

func NewPresenceStore(db *mongo.Database) *PresenceStore {
	return &PresenceStore{col: db.Collection("sockets")}
}

// Exists reports whether a row for the socket id is present.
func (s *PresenceStore) Exists(ctx context.Context, socketID string) (bool, error) {
	err := s.col.FindOne(ctx, bson.M{"socketId": socketID}).Err()
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Insert creates a row for the socket id.
func (s *PresenceStore) Insert(ctx context.Context, row models.PresenceRow) error {
	_, err := s.col.InsertOne(ctx, row)
	return err
}

// Delete removes any row for the socket id. Deleting a socket id with no
// row is not an error.
func (s *PresenceStore) Delete(ctx context.Context, socketID string) error {
	_, err := s.col.DeleteOne(ctx, bson.M{"socketId": socketID})
	return err
}

// FindSockets returns the socket ids of every row whose username is in
// usernames, excluding the given socket id.
func (s *PresenceStore) FindSockets(ctx context.Context, usernames []string, excluding string) ([]string, error) {
	filter := bson.M{
		"socketId": bson.M{"$ne": excluding},
		"username": bson.M{"$in": usernames},
	}

	cur, err := s.col.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var ids []string
	for cur.Next(ctx) {
		var row models.PresenceRow
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		ids = append(ids, row.SocketID)
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}

	return ids, nil
}
