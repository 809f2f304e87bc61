package mongostore

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"community-bot/model"
)

type WarningStore struct {
	warnings *mongo.Collection
}

func NewWarningStore(d *DB) *WarningStore {
	return &WarningStore{warnings: d.collection(collWarnings)}
}

var newestFirst = bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}

func (s *WarningStore) InsertWarning(ctx context.Context, w *model.Warning) error {
	if _, err := s.warnings.InsertOne(ctx, w); err != nil {
		return fmt.Errorf("failed to insert warning: %w", err)
	}
	return nil
}

// userWarningFilter matches a user's warnings, restricted to counting ones when activeAt is set.
func userWarningFilter(guildID, userID string, activeAt *time.Time) bson.M {
	filter := bson.M{"userId": userID, "guildId": guildID}
	if activeAt != nil {
		filter["active"] = true
		filter["$or"] = bson.A{
			bson.M{"expiresAt": nil},
			bson.M{"expiresAt": bson.M{"$gt": *activeAt}},
		}
	}
	return filter
}

func (s *WarningStore) find(ctx context.Context, filter bson.M) ([]model.Warning, error) {
	cursor, err := s.warnings.Find(ctx, filter, options.Find().SetSort(newestFirst))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	out := []model.Warning{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *WarningStore) ListWarnings(ctx context.Context, guildID, userID string, activeAt *time.Time) ([]model.Warning, error) {
	list, err := s.find(ctx, userWarningFilter(guildID, userID, activeAt))
	if err != nil {
		return nil, fmt.Errorf("failed to list warnings for user %s: %w", userID, err)
	}
	return list, nil
}

func (s *WarningStore) ListGuildWarnings(ctx context.Context, guildID string, since time.Time) ([]model.Warning, error) {
	filter := bson.M{"guildId": guildID}
	if !since.IsZero() {
		filter["createdAt"] = bson.M{"$gte": since}
	}
	list, err := s.find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list warnings for guild %s: %w", guildID, err)
	}
	return list, nil
}

func (s *WarningStore) SetWarningActive(ctx context.Context, guildID, warningID string, active bool) error {
	res, err := s.warnings.UpdateOne(ctx,
		bson.M{"_id": warningID, "guildId": guildID},
		bson.M{"$set": bson.M{"active": active}})
	if err != nil {
		return fmt.Errorf("failed to update warning %s: %w", warningID, err)
	}
	if res.MatchedCount == 0 {
		return model.ErrNotFound
	}
	return nil
}
