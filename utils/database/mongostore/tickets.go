package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"community-bot/model"
)

// TicketStore keeps tickets, configs and the audit trail in mongodb.
// Transcript messages are embedded in the ticket document.
type TicketStore struct {
	tickets  *mongo.Collection
	configs  *mongo.Collection
	logs     *mongo.Collection
	counters *mongo.Collection
}

func NewTicketStore(d *DB) *TicketStore {
	return &TicketStore{
		tickets:  d.collection(collTickets),
		configs:  d.collection(collConfigs),
		logs:     d.collection(collLogs),
		counters: d.collection(collCounters),
	}
}

func notFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.ErrNotFound
	}
	return err
}

func (s *TicketStore) UpsertConfig(ctx context.Context, cfg *model.TicketConfig) error {
	update := bson.M{
		"$set": bson.M{
			"channelId":     cfg.ChannelID,
			"categoryId":    cfg.CategoryID,
			"supportRoleId": cfg.SupportRoleID,
			"categories":    cfg.Categories,
			"settings":      cfg.Settings,
			"updatedAt":     cfg.UpdatedAt,
		},
		"$setOnInsert": bson.M{"guildId": cfg.GuildID, "createdAt": cfg.CreatedAt},
	}
	_, err := s.configs.UpdateOne(ctx, bson.M{"guildId": cfg.GuildID}, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to upsert ticket config for guild %s: %w", cfg.GuildID, err)
	}
	return nil
}

func (s *TicketStore) GetConfig(ctx context.Context, guildID string) (*model.TicketConfig, error) {
	var cfg model.TicketConfig
	if err := s.configs.FindOne(ctx, bson.M{"guildId": guildID}).Decode(&cfg); err != nil {
		return nil, notFound(err)
	}
	return &cfg, nil
}

func (s *TicketStore) ListConfigs(ctx context.Context) ([]model.TicketConfig, error) {
	cursor, err := s.configs.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "guildId", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list ticket configs: %w", err)
	}
	defer cursor.Close(ctx)

	var out []model.TicketConfig
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode ticket configs: %w", err)
	}
	return out, nil
}

// NextTicketNumber increments the guild counter with one findOneAndUpdate.
func (s *TicketStore) NextTicketNumber(ctx context.Context, guildID string) (int, error) {
	var counter struct {
		Value int `bson:"value"`
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	err := s.counters.FindOneAndUpdate(ctx, bson.M{"_id": guildID}, bson.M{"$inc": bson.M{"value": 1}}, opts).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("failed to increment ticket counter for guild %s: %w", guildID, err)
	}
	return counter.Value, nil
}

func (s *TicketStore) InsertTicket(ctx context.Context, t *model.Ticket) error {
	doc := *t
	if doc.Messages == nil {
		doc.Messages = []model.TicketMessage{}
	}
	if _, err := s.tickets.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to insert ticket %s: %w", t.TicketID, err)
	}
	return nil
}

func (s *TicketStore) findTicket(ctx context.Context, filter bson.M) (*model.Ticket, error) {
	var t model.Ticket
	if err := s.tickets.FindOne(ctx, filter).Decode(&t); err != nil {
		return nil, notFound(err)
	}
	return &t, nil
}

func (s *TicketStore) GetTicket(ctx context.Context, guildID, ticketID string) (*model.Ticket, error) {
	return s.findTicket(ctx, bson.M{"guildId": guildID, "ticketId": ticketID})
}

func (s *TicketStore) GetTicketByChannel(ctx context.Context, channelID string) (*model.Ticket, error) {
	return s.findTicket(ctx, bson.M{"channelId": channelID})
}

// ticketUpdateDoc translates a partial update into mongo update operators.
func ticketUpdateDoc(upd model.TicketUpdate) bson.M {
	set := bson.M{"updatedAt": upd.UpdatedAt}
	if upd.Status != nil {
		set["status"] = *upd.Status
	}
	if upd.Priority != nil {
		set["priority"] = *upd.Priority
	}
	if upd.AssignedTo != nil {
		set["assignedTo"] = *upd.AssignedTo
	}
	if upd.ChannelID != nil {
		set["channelId"] = *upd.ChannelID
	}
	if upd.ClosedAt != nil {
		set["closedAt"] = *upd.ClosedAt
	}
	if upd.ClosedBy != nil {
		set["metadata.closedBy"] = *upd.ClosedBy
	}
	if upd.CloseReason != nil {
		set["metadata.closeReason"] = *upd.CloseReason
	}
	if upd.ReopenedBy != nil {
		set["metadata.reopenedBy"] = *upd.ReopenedBy
	}
	if upd.LastActivity != nil {
		set["metadata.lastActivity"] = *upd.LastActivity
	}

	doc := bson.M{"$set": set}
	if upd.ClearClosedAt {
		doc["$unset"] = bson.M{"closedAt": ""}
	}
	if upd.IncrementReopen {
		doc["$inc"] = bson.M{"metadata.reopenCount": 1}
	}
	return doc
}

func (s *TicketStore) UpdateTicket(ctx context.Context, guildID, ticketID string, upd model.TicketUpdate) (*model.Ticket, error) {
	var t model.Ticket
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := s.tickets.FindOneAndUpdate(ctx, bson.M{"guildId": guildID, "ticketId": ticketID}, ticketUpdateDoc(upd), opts).Decode(&t)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, model.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update ticket %s: %w", ticketID, err)
	}
	return &t, nil
}

func openFilter(guildID, userID string) bson.M {
	return bson.M{"guildId": guildID, "userId": userID, "status": bson.M{"$ne": model.StatusClosed}}
}

func (s *TicketStore) CountOpenTickets(ctx context.Context, guildID, userID string) (int, error) {
	n, err := s.tickets.CountDocuments(ctx, openFilter(guildID, userID))
	if err != nil {
		return 0, fmt.Errorf("failed to count open tickets: %w", err)
	}
	return int(n), nil
}

func (s *TicketStore) findTickets(ctx context.Context, filter bson.M, sort bson.D) ([]model.Ticket, error) {
	opts := options.Find().SetSort(sort).SetProjection(bson.M{"messages": 0})
	cursor, err := s.tickets.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	out := []model.Ticket{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *TicketStore) ListOpenTickets(ctx context.Context, guildID, userID string) ([]model.Ticket, error) {
	list, err := s.findTickets(ctx, openFilter(guildID, userID),
		bson.D{{Key: "createdAt", Value: -1}, {Key: "ticketId", Value: -1}})
	if err != nil {
		return nil, fmt.Errorf("failed to list open tickets: %w", err)
	}
	return list, nil
}

func (s *TicketStore) ListInactiveTickets(ctx context.Context, guildID string, before time.Time) ([]model.Ticket, error) {
	filter := bson.M{
		"guildId": guildID,
		"status":  bson.M{"$ne": model.StatusClosed},
		"$or": bson.A{
			bson.M{"metadata.lastActivity": bson.M{"$gt": time.Time{}, "$lt": before}},
			bson.M{"metadata.lastActivity": bson.M{"$lte": time.Time{}}, "createdAt": bson.M{"$lt": before}},
		},
	}
	list, err := s.findTickets(ctx, filter, bson.D{{Key: "ticketId", Value: 1}})
	if err != nil {
		return nil, fmt.Errorf("failed to list inactive tickets: %w", err)
	}
	return list, nil
}

func (s *TicketStore) AppendMessage(ctx context.Context, guildID, ticketID string, msg model.TicketMessage) error {
	res, err := s.tickets.UpdateOne(ctx,
		bson.M{"guildId": guildID, "ticketId": ticketID},
		bson.M{
			"$push": bson.M{"messages": msg},
			"$set":  bson.M{"metadata.lastActivity": msg.Timestamp},
		})
	if err != nil {
		return fmt.Errorf("failed to append message to ticket %s: %w", ticketID, err)
	}
	if res.MatchedCount == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (s *TicketStore) InsertLog(ctx context.Context, entry *model.TicketLog) error {
	if _, err := s.logs.InsertOne(ctx, entry); err != nil {
		return fmt.Errorf("failed to insert ticket log: %w", err)
	}
	return nil
}

// logFilter builds the audit query for q.
func logFilter(guildID string, q model.TicketLogQuery) bson.M {
	filter := bson.M{"guildId": guildID}
	if q.TicketID != "" {
		filter["ticketId"] = q.TicketID
	}
	if q.UserID != "" {
		filter["userId"] = q.UserID
	}
	if q.Action != "" {
		filter["action"] = q.Action
	}
	return filter
}

func (s *TicketStore) ListLogs(ctx context.Context, guildID string, q model.TicketLogQuery) ([]model.TicketLog, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(int64(q.Limit))
	cursor, err := s.logs.Find(ctx, logFilter(guildID, q), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list ticket logs: %w", err)
	}
	defer cursor.Close(ctx)

	out := []model.TicketLog{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode ticket logs: %w", err)
	}
	return out, nil
}
