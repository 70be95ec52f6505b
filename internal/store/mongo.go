package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/wavechat-ai/wavechat-server/internal/model"
)

const (
	chatsCollection    = "chats"
	settingsCollection = "settings"

	// settingsDocID is the fixed _id of the settings singleton document.
	settingsDocID = "settings"
)

// Dial connects to MongoDB and verifies the connection with a ping.
func Dial(ctx context.Context, uri string) (*mongo.Client, error) {
	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(dialCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(dialCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return client, nil
}

// MongoChatStore is the MongoDB-backed ChatStore.
type MongoChatStore struct {
	coll *mongo.Collection
}

// NewMongoChatStore creates a chat store on the given database.
func NewMongoChatStore(db *mongo.Database) *MongoChatStore {
	return &MongoChatStore{coll: db.Collection(chatsCollection)}
}

// summaryProjection selects the listing fields, leaving message bodies out.
var summaryProjection = bson.D{
	{Key: "_id", Value: 1},
	{Key: "user_id", Value: 1},
	{Key: "title", Value: 1},
	{Key: "created_at", Value: 1},
	{Key: "updated_at", Value: 1},
}

func (s *MongoChatStore) Insert(ctx context.Context, chat *model.Chat) error {
	if _, err := s.coll.InsertOne(ctx, chat); err != nil {
		return fmt.Errorf("failed to insert chat: %w", err)
	}
	return nil
}

func (s *MongoChatStore) Get(ctx context.Context, id string) (*model.Chat, error) {
	var chat model.Chat
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&chat)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find chat: %w", err)
	}
	return &chat, nil
}

func (s *MongoChatStore) Save(ctx context.Context, chat *model.Chat) error {
	res, err := s.coll.ReplaceOne(ctx, bson.M{"_id": chat.ID}, chat)
	if err != nil {
		return fmt.Errorf("failed to save chat: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoChatStore) Delete(ctx context.Context, id string) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete chat: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoChatStore) ListByUser(ctx context.Context, userID string) ([]model.ChatSummary, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "updated_at", Value: -1}}).
		SetProjection(summaryProjection)

	cursor, err := s.coll.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list chats for user: %w", err)
	}

	summaries := []model.ChatSummary{}
	if err := cursor.All(ctx, &summaries); err != nil {
		return nil, fmt.Errorf("failed to decode chat summaries: %w", err)
	}
	return summaries, nil
}

func (s *MongoChatStore) ListRecent(ctx context.Context, limit int) ([]model.ChatSummary, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "updated_at", Value: -1}}).
		SetLimit(int64(limit)).
		SetProjection(summaryProjection)

	cursor, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent chats: %w", err)
	}

	summaries := []model.ChatSummary{}
	if err := cursor.All(ctx, &summaries); err != nil {
		return nil, fmt.Errorf("failed to decode chat summaries: %w", err)
	}
	return summaries, nil
}

func (s *MongoChatStore) ListAll(ctx context.Context) ([]model.Chat, error) {
	opts := options.Find().SetSort(bson.D{{Key: "updated_at", Value: -1}})

	cursor, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list chats: %w", err)
	}

	chats := []model.Chat{}
	if err := cursor.All(ctx, &chats); err != nil {
		return nil, fmt.Errorf("failed to decode chats: %w", err)
	}
	return chats, nil
}

// settingsDoc pins the settings singleton to a fixed _id.
type settingsDoc struct {
	ID       string         `bson:"_id"`
	Settings model.Settings `bson:"settings"`
}

// MongoSettingsStore is the MongoDB-backed SettingsStore.
type MongoSettingsStore struct {
	coll *mongo.Collection
}

// NewMongoSettingsStore creates a settings store on the given database.
func NewMongoSettingsStore(db *mongo.Database) *MongoSettingsStore {
	return &MongoSettingsStore{coll: db.Collection(settingsCollection)}
}

func (s *MongoSettingsStore) Get(ctx context.Context) (*model.Settings, error) {
	var doc settingsDoc
	err := s.coll.FindOne(ctx, bson.M{"_id": settingsDocID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find settings: %w", err)
	}
	return &doc.Settings, nil
}

func (s *MongoSettingsStore) Put(ctx context.Context, settings *model.Settings) error {
	doc := settingsDoc{ID: settingsDocID, Settings: *settings}
	opts := options.Replace().SetUpsert(true)
	if _, err := s.coll.ReplaceOne(ctx, bson.M{"_id": settingsDocID}, doc, opts); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}
