package mongostore

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	collTickets  = "tickets"
	collConfigs  = "ticket_configs"
	collLogs     = "ticket_logs"
	collCounters = "ticket_counters"
	collWarnings = "warnings"
)

// DB wraps the client and database used by the document store backend.
type DB struct {
	client *mongo.Client
	db     *mongo.Database
}

// Connect dials uri and verifies the connection with a ping.
func Connect(ctx context.Context, uri, dbName string) (*DB, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}
	return &DB{client: client, db: client.Database(dbName)}, nil
}

func (d *DB) Close(ctx context.Context) error {
	return d.client.Disconnect(ctx)
}

func (d *DB) collection(name string) *mongo.Collection {
	return d.db.Collection(name)
}

var indexes = map[string][]mongo.IndexModel{
	collTickets: {
		{Keys: bson.D{{Key: "guildId", Value: 1}, {Key: "ticketId", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "channelId", Value: 1}}},
		{Keys: bson.D{{Key: "guildId", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "guildId", Value: 1}, {Key: "userId", Value: 1}}},
	},
	collConfigs: {
		{Keys: bson.D{{Key: "guildId", Value: 1}}, Options: options.Index().SetUnique(true)},
	},
	collLogs: {
		{Keys: bson.D{{Key: "guildId", Value: 1}, {Key: "createdAt", Value: -1}}},
	},
	collWarnings: {
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "guildId", Value: 1}, {Key: "active", Value: 1}}},
		{Keys: bson.D{{Key: "guildId", Value: 1}, {Key: "createdAt", Value: -1}}},
	},
}

// EnsureIndexes creates the secondary indexes the stores query by.
func (d *DB) EnsureIndexes(ctx context.Context) error {
	for coll, models := range indexes {
		if _, err := d.collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", coll, err)
		}
	}
	return nil
}
