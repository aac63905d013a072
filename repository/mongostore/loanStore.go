package mongostore

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/kp7829294-create/libzone/model"
	"github.com/kp7829294-create/libzone/repository"
)

func (s *Store) IssueLoan(ctx context.Context, l *model.Loan) (*model.Book, error) {
	var out model.Book
	err := s.inTx(ctx, func(sc mongo.SessionContext) error {
		// Guard: only decrement while a copy is left.
		err := s.books.FindOneAndUpdate(sc,
			bson.M{"_id": l.BookID, "available": bson.M{"$gt": 0}},
			bson.M{"$inc": bson.M{"available": -1}},
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		).Decode(&out)
		if errors.Is(err, mongo.ErrNoDocuments) {
			n, cerr := s.books.CountDocuments(sc, bson.M{"_id": l.BookID})
			if cerr != nil {
				return cerr
			}
			if n == 0 {
				return repository.ErrNotFound
			}
			return repository.ErrOutOfStock
		}
		if err != nil {
			return err
		}

		n, err := s.users.CountDocuments(sc, bson.M{"_id": l.UserID})
		if err != nil {
			return err
		}
		if n == 0 {
			return repository.ErrUnknownAccount
		}

		if _, err := s.loans.InsertOne(sc, l); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return repository.ErrAlreadyBorrowed
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// restoreCopy adds one copy back without ever exceeding total.
var restoreCopy = mongo.Pipeline{
	{{Key: "$set", Value: bson.D{{Key: "available", Value: bson.D{{Key: "$min", Value: bson.A{
		bson.D{{Key: "$add", Value: bson.A{"$available", 1}}},
		"$total",
	}}}}}}},
}

func (s *Store) ReturnLoan(ctx context.Context, userID, loanID string, at time.Time) error {
	return s.inTx(ctx, func(sc mongo.SessionContext) error {
		var l model.Loan
		err := s.loans.FindOneAndUpdate(sc,
			bson.M{"_id": loanID, "user_id": userID, "status": model.LoanActive},
			bson.M{"$set": bson.M{"status": model.LoanReturned, "returned_at": at}},
		).Decode(&l)
		if err != nil {
			return notFound(err)
		}
		_, err = s.books.UpdateOne(sc, bson.M{"_id": l.BookID}, restoreCopy)
		return err
	})
}

func (s *Store) ActiveLoan(ctx context.Context, userID, loanID string) (*model.Loan, error) {
	var l model.Loan
	err := s.loans.FindOne(ctx, bson.M{"_id": loanID, "user_id": userID, "status": model.LoanActive}).Decode(&l)
	if err != nil {
		return nil, notFound(err)
	}
	b, err := s.GetBook(ctx, l.BookID)
	if err != nil {
		return nil, err
	}
	l.Book = b
	return &l, nil
}

func (s *Store) ListActiveLoans(ctx context.Context, userID string) ([]model.Loan, error) {
	opts := options.Find().SetSort(bson.D{{Key: "borrowed_at", Value: -1}})
	cur, err := s.loans.Find(ctx, bson.M{"user_id": userID, "status": model.LoanActive}, opts)
	if err != nil {
		return nil, err
	}
	out := []model.Loan{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return out, nil
	}

	ids := make(bson.A, 0, len(out))
	for _, l := range out {
		ids = append(ids, l.BookID)
	}
	bcur, err := s.books.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	var books []model.Book
	if err := bcur.All(ctx, &books); err != nil {
		return nil, err
	}
	byID := make(map[string]*model.Book, len(books))
	for i := range books {
		byID[books[i].ID] = &books[i]
	}
	for i := range out {
		out[i].Book = byID[out[i].BookID]
	}
	return out, nil
}

func (s *Store) CountActiveLoans(ctx context.Context) (int64, error) {
	return s.loans.CountDocuments(ctx, bson.M{"status": model.LoanActive})
}

func (s *Store) CountOverdueLoans(ctx context.Context, now time.Time) (int64, error) {
	return s.loans.CountDocuments(ctx, bson.M{"status": model.LoanActive, "due_date": bson.M{"$lt": now}})
}
