package pgstore

import (
	"context"
	"time"

	"github.com/kp7829294-create/libzone/model"
)

func (s *Store) PutOTP(ctx context.Context, o model.OTP) error {
	const q = `
		INSERT INTO otp_codes (email, code, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (email) DO UPDATE
		SET code = EXCLUDED.code,
			expires_at = EXCLUDED.expires_at`
	_, err := s.pool.Exec(ctx, q, o.Email, o.Code, o.ExpiresAt)
	return err
}

// TakeOTP deletes the row in the same statement that matches it, so two
// concurrent verifications of one code cannot both succeed.
func (s *Store) TakeOTP(ctx context.Context, email, code string) (*model.OTP, error) {
	const q = `
		DELETE FROM otp_codes
		WHERE email = $1
		AND code = $2
		RETURNING expires_at`
	o := model.OTP{Email: email, Code: code}
	if err := s.pool.QueryRow(ctx, q, email, code).Scan(&o.ExpiresAt); err != nil {
		return nil, notFound(err)
	}
	return &o, nil
}

func (s *Store) PurgeExpiredOTPs(ctx context.Context, now time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM otp_codes WHERE expires_at < $1`, now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
