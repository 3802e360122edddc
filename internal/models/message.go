package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Message is stored in the MongoDB "messages" collection, one document per
// message, append-only. CreatedTime is assigned server-side at append time;
// Seq is a process-monotonic counter that breaks ties between messages that
// share a timestamp (CreatedTime alone is not unique).
type Message struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	From        string             `bson:"from" json:"from"`
	To          string             `bson:"to" json:"to"`
	MessageText string             `bson:"messageText" json:"messageText"`
	CreatedTime time.Time          `bson:"createdTime" json:"createdTime"`
	Seq         int64              `bson:"seq" json:"seq"`
}
