package database

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

const (
	MongoTimeout = 10 * time.Second

	CollectionUsers         = "users"
	CollectionCustomers     = "customers"
	CollectionInteractions  = "interactions"
	CollectionLeads         = "leads"
	CollectionOpportunities = "opportunities"
)

// Open connects to MongoDB, verifies the connection and returns the named
// database. The caller owns the client and must Disconnect it.
func Open(uri, name string) (*mongo.Client, *mongo.Database, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetMaxPoolSize(25).
		SetMinPoolSize(2).
		SetMaxConnIdleTime(30 * time.Minute).
		SetConnectTimeout(5 * time.Second)

	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, nil, err
	}

	// Ping with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, err
	}
	return client, client.Database(name), nil
}

// EnsureIndexes creates the indexes the repositories rely on. Creating an
// index that already exists is a no-op.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(ctx, MongoTimeout)
	defer cancel()

	_, err := db.Collection(CollectionUsers).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("uniq_email"),
	})
	if err != nil {
		return err
	}
	_, err = db.Collection(CollectionInteractions).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "customer", Value: 1}},
	})
	if err != nil {
		return err
	}
	_, err = db.Collection(CollectionOpportunities).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "lead", Value: 1}},
	})
	return err
}
