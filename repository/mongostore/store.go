// Package mongostore is the MongoDB backend. Ledger writes use multi-document
// transactions, so the server must run as a replica set.
package mongostore

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/kp7829294-create/libzone/repository"
)

const (
	colBooks = "books"
	colLoans = "loans"
	colUsers = "users"
	colOTPs  = "otp_codes"
)

type Store struct {
	client *mongo.Client
	books  *mongo.Collection
	loans  *mongo.Collection
	users  *mongo.Collection
	otps   *mongo.Collection
}

var _ repository.Store = (*Store)(nil)

func New(client *mongo.Client, database string) *Store {
	db := client.Database(database)
	return &Store{
		client: client,
		books:  db.Collection(colBooks),
		loans:  db.Collection(colLoans),
		users:  db.Collection(colUsers),
		otps:   db.Collection(colOTPs),
	}
}

func (s *Store) Close(ctx context.Context) error { return s.client.Disconnect(ctx) }

// Migrate creates the indexes the ledger relies on: the partial unique index
// enforces one active loan per (user, book) and the TTL index expires codes.
func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.loans.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "book_id", Value: 1}},
			Options: options.Index().
				SetName("loans_one_active").
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"status": "active"}),
		},
		{Keys: bson.D{{Key: "book_id", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "due_date", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("loan indexes: %w", err)
	}

	_, err = s.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetName("users_email").SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("user indexes: %w", err)
	}

	_, err = s.books.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "category", Value: 1}}},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("book indexes: %w", err)
	}

	_, err = s.otps.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "expires_at", Value: 1}},
		Options: options.Index().SetName("otp_ttl").SetExpireAfterSeconds(0),
	})
	if err != nil {
		return fmt.Errorf("otp indexes: %w", err)
	}
	return nil
}

// inTx runs fn inside a session transaction. The driver retries fn on
// transient write conflicts.
func (s *Store) inTx(ctx context.Context, fn func(sc mongo.SessionContext) error) error {
	sess, err := s.client.StartSession()
	if err != nil {
		return err
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}

func notFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return repository.ErrNotFound
	}
	return err
}
