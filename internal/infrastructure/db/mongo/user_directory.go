package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/univexams/exam-portal/internal/core/domain"
	"github.com/univexams/exam-portal/internal/core/ports"
)

const usersCollection = "users"

// UserDirectory implements ports.UserDirectory over the users collection.
type UserDirectory struct {
	coll *mongo.Collection
}

var _ ports.UserDirectory = (*UserDirectory)(nil)

func NewUserDirectory(db *mongo.Database) *UserDirectory {
	return &UserDirectory{coll: db.Collection(usersCollection)}
}

type mongoUser struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Username     string             `bson:"username"`
	PasswordHash string             `bson:"password_hash"`
	Role         string             `bson:"role"`
	LinkedID     string             `bson:"linked_id,omitempty"`
	Email        string             `bson:"email,omitempty"`
	DisplayName  string             `bson:"display_name,omitempty"`
	IsActive     bool               `bson:"is_active"`
}

// LookupActiveUser matches username exactly and requires is_active.
func (d *UserDirectory) LookupActiveUser(ctx context.Context, username string) (*domain.UserRecord, error) {
	var mu mongoUser
	filter := bson.M{"username": username, "is_active": true}
	if err := d.coll.FindOne(ctx, filter).Decode(&mu); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	role, err := domain.ParseRole(mu.Role)
	if err != nil {
		return nil, fmt.Errorf("user %s: %w", mu.Username, err)
	}

	return &domain.UserRecord{
		ID:             mu.ID.Hex(),
		Username:       mu.Username,
		Role:           role,
		LinkedEntityID: mu.LinkedID,
		Email:          mu.Email,
		DisplayName:    mu.DisplayName,
		PasswordHash:   mu.PasswordHash,
	}, nil
}

// EnsureIndexes creates the unique username index and the audit lookup index.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(usersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("users index: %w", err)
	}

	_, err = db.Collection(auditCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "username", Value: 1}, {Key: "occurred_at", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("auth_events index: %w", err)
	}
	return nil
}
