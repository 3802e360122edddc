package database

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/privchat/privchat-backend/internal/models"
)

// MessageRecords is the MongoDB-backed document store for the append-only
// "messages" collection.
type MessageRecords struct {
	col *mongo.Collection
}

func NewMessageRecords(db *mongo.Database) *MessageRecords {
	return &MessageRecords{col: db.Collection("messages")}
}

// Insert appends one message document.
func (r *MessageRecords) Insert(ctx context.Context, msg models.Message) (models.Message, error) {
	res, err := r.col.InsertOne(ctx, msg)
	if err != nil {
		return models.Message{}, err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		msg.ID = oid
	}
	return msg, nil
}

// FindByParticipant returns every message where the username is sender or
// recipient. Ordering and counterpart filtering are left to the caller.
func (r *MessageRecords) FindByParticipant(ctx context.Context, username string) ([]models.Message, error) {
	filter := bson.M{
		"$or": []bson.M{
			{"from": username},
			{"to": username},
		},
	}

	cur, err := r.col.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	msgs := []models.Message{}
	for cur.Next(ctx) {
		var m models.Message
		if err := cur.Decode(&m); err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}

	return msgs, nil
}
