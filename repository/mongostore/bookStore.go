package mongostore

import (
	"context"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/kp7829294-create/libzone/model"
	"github.com/kp7829294-create/libzone/repository"
)

func (s *Store) CreateBook(ctx context.Context, b *model.Book) error {
	_, err := s.books.InsertOne(ctx, b)
	return err
}

func (s *Store) GetBook(ctx context.Context, id string) (*model.Book, error) {
	var b model.Book
	if err := s.books.FindOne(ctx, bson.M{"_id": id}).Decode(&b); err != nil {
		return nil, notFound(err)
	}
	return &b, nil
}

// searchFilter matches text literally and case-insensitively against title or
// author, and category exactly.
func searchFilter(f model.BookFilter) bson.M {
	filter := bson.M{}
	if f.Text != "" {
		re := bson.M{"$regex": regexp.QuoteMeta(f.Text), "$options": "i"}
		filter["$or"] = bson.A{bson.M{"title": re}, bson.M{"author": re}}
	}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	return filter
}

func (s *Store) SearchBooks(ctx context.Context, f model.BookFilter) ([]model.Book, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := s.books.Find(ctx, searchFilter(f), opts)
	if err != nil {
		return nil, err
	}
	out := []model.Book{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) UpdateBook(ctx context.Context, id string, mutate func(*model.Book)) (*model.Book, error) {
	var out model.Book
	err := s.inTx(ctx, func(sc mongo.SessionContext) error {
		var b model.Book
		if err := s.books.FindOne(sc, bson.M{"_id": id}).Decode(&b); err != nil {
			return notFound(err)
		}
		mutate(&b)
		if _, err := s.books.ReplaceOne(sc, bson.M{"_id": id}, b); err != nil {
			return err
		}
		out = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Store) DeleteBook(ctx context.Context, id string) error {
	return s.inTx(ctx, func(sc mongo.SessionContext) error {
		n, err := s.loans.CountDocuments(sc, bson.M{"book_id": id, "status": model.LoanActive})
		if err != nil {
			return err
		}
		if n > 0 {
			return repository.ErrActiveLoans
		}
		res, err := s.books.DeleteOne(sc, bson.M{"_id": id})
		if err != nil {
			return err
		}
		if res.DeletedCount == 0 {
			return repository.ErrNotFound
		}
		return nil
	})
}

func (s *Store) CountBooks(ctx context.Context) (int64, error) {
	return s.books.CountDocuments(ctx, bson.M{})
}
