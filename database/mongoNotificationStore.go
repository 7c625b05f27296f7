package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"learnhub/models"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const colNotifications = "notifications"

// MongoNotificationStore keeps notifications in a MongoDB collection.
type MongoNotificationStore struct {
	client *mongo.Client
	col    *mongo.Collection
}

func NewMongoNotificationStore(uri, dbName string) (*MongoNotificationStore, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo: connect failed: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo: ping failed: %w", err)
	}

	s := &MongoNotificationStore{
		client: client,
		col:    client.Database(dbName).Collection(colNotifications),
	}
	if err := s.ensureIndexes(ctx); err != nil {
		log.Warn().Err(err).Msg("mongo: ensure indexes failed")
	}
	return s, nil
}

func (s *MongoNotificationStore) ensureIndexes(ctx context.Context) error {
	_, err := s.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
	})
	return err
}

func wrapMongoError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	return err
}

func (s *MongoNotificationStore) CreateNotification(ctx context.Context, n *models.Notification) error {
	prepareNotification(n)
	_, err := s.col.InsertOne(ctx, n)
	return wrapMongoError(err)
}

func (s *MongoNotificationStore) ListNotifications(ctx context.Context, userID uint, limit int) ([]models.Notification, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := s.col.Find(ctx, bson.D{{Key: "user_id", Value: userID}}, opts)
	if err != nil {
		return nil, wrapMongoError(err)
	}
	defer cursor.Close(ctx)

	list := []models.Notification{}
	for cursor.Next(ctx) {
		var n models.Notification
		if err := cursor.Decode(&n); err != nil {
			return nil, err
		}
		list = append(list, n)
	}
	return list, cursor.Err()
}

func (s *MongoNotificationStore) MarkNotificationRead(ctx context.Context, id string, userID uint) error {
	res, err := s.col.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: id}, {Key: "user_id", Value: userID}},
		bson.D{{Key: "$set", Value: bson.D{{Key: "read", Value: true}}}},
	)
	if err != nil {
		return wrapMongoError(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoNotificationStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Drop removes the collection. Used to reset test databases.
func (s *MongoNotificationStore) Drop(ctx context.Context) error {
	return s.col.Drop(ctx)
}
