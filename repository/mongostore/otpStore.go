package mongostore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/kp7829294-create/libzone/model"
)

func (s *Store) PutOTP(ctx context.Context, o model.OTP) error {
	_, err := s.otps.ReplaceOne(ctx, bson.M{"_id": o.Email}, o, options.Replace().SetUpsert(true))
	return err
}

func (s *Store) TakeOTP(ctx context.Context, email, code string) (*model.OTP, error) {
	var o model.OTP
	if err := s.otps.FindOneAndDelete(ctx, bson.M{"_id": email, "code": code}).Decode(&o); err != nil {
		return nil, notFound(err)
	}
	return &o, nil
}

// PurgeExpiredOTPs covers the gap before the TTL monitor runs.
func (s *Store) PurgeExpiredOTPs(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.otps.DeleteMany(ctx, bson.M{"expires_at": bson.M{"$lt": now}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
