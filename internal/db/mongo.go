package db

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// MongoClient wraps the driver client so callers can disconnect on shutdown.
type MongoClient struct {
	*mongo.Client
}

// MongoDB wraps a database handle.
type MongoDB struct {
	Database *mongo.Database
}

// Collection returns a handle to the named collection.
func (d *MongoDB) Collection(name string) *mongo.Collection {
	return d.Database.Collection(name)
}

// InitMongo connects to MongoDB and verifies the connection with a ping.
func InitMongo(uri, dbName string) (*MongoClient, *MongoDB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return &MongoClient{Client: client}, &MongoDB{Database: client.Database(dbName)}, nil
}
