package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/dcode-github/dealdirect/backend/store"
)

const connectTimeout = 10 * time.Second

// ConnectDB opens the Mongo client and verifies it with a ping.
func ConnectDB(ctx context.Context, uri string) (*mongo.Client, error) {
	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("MongoDB ping failed: %w", err)
	}

	logrus.Info("Connected to MongoDB")
	return client, nil
}

// InitStore binds the listing collections of dbName and makes sure their
// indexes exist.
func InitStore(ctx context.Context, client *mongo.Client, dbName string) (*store.Store, error) {
	s := store.New(client.Database(dbName))

	idxCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := s.EnsureIndexes(idxCtx); err != nil {
		return nil, err
	}
	return s, nil
}

func CloseDBConnection(client *mongo.Client) {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	if err := client.Disconnect(ctx); err != nil {
		logrus.WithError(err).Error("Error closing database connection")
		return
	}
	logrus.Info("MongoDB connection closed")
}
