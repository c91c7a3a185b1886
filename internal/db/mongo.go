package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/arzan03/CampusKart/internal/logging"
)

const (
	usersCollection    = "users"
	productsCollection = "products"
	chatsCollection    = "chats"
)

// ErrNotFound is returned when a lookup matches no document.
var ErrNotFound = errors.New("document not found")

// DuplicateKeyError reports a unique index violation on Field.
type DuplicateKeyError struct {
	Field string
	Err   error
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate value for %s", e.Field)
}

func (e *DuplicateKeyError) Unwrap() error {
	return e.Err
}

// ConnectMongoDB opens a client and verifies it with a ping.
func ConnectMongoDB(ctx context.Context, uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	logging.Info().Msg("connected to MongoDB")
	return client, nil
}

// EnsureIndexes creates the unique and lookup indexes the repositories rely on.
func EnsureIndexes(ctx context.Context, database *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		usersCollection: {
			{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true).SetName("username_unique")},
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true).SetName("email_unique")},
		},
		productsCollection: {
			{Keys: bson.D{{Key: "category", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "seller", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		},
		chatsCollection: {
			{Keys: bson.D{{Key: "product", Value: 1}, {Key: "buyer", Value: 1}, {Key: "seller", Value: 1}}},
			{Keys: bson.D{{Key: "buyer", Value: 1}, {Key: "lastMessage", Value: -1}}},
			{Keys: bson.D{{Key: "seller", Value: 1}, {Key: "lastMessage", Value: -1}}},
		},
	}

	for name, models := range indexes {
		if _, err := database.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create indexes on %s: %w", name, err)
		}
	}
	return nil
}

// mapWriteError turns a duplicate key write error into *DuplicateKeyError.
func mapWriteError(err error) error {
	if err == nil {
		return nil
	}
	if mongo.IsDuplicateKeyError(err) {
		return &DuplicateKeyError{Field: duplicateField(err.Error()), Err: err}
	}
	return err
}

// duplicateField extracts the field name from an E11000 message such as
// "... index: email_unique dup key: { email: \"a@b.c\" }".
func duplicateField(msg string) string {
	if i := strings.Index(msg, "dup key: {"); i >= 0 {
		rest := strings.TrimSpace(msg[i+len("dup key: {"):])
		if j := strings.IndexAny(rest, ": "); j > 0 {
			return rest[:j]
		}
	}
	if i := strings.Index(msg, "index: "); i >= 0 {
		rest := msg[i+len("index: "):]
		if j := strings.IndexAny(rest, "_ "); j > 0 {
			return rest[:j]
		}
	}
	return "field"
}

func mapFindError(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return err
}
