package model

import "time"

const (
	OTPLength = 6
	OTPTTL    = 10 * time.Minute
)

// OTP is a single-use signup verification code. One live code per email.
type OTP struct {
	Email     string    `bson:"_id"`
	Code      string    `bson:"code"`
	ExpiresAt time.Time `bson:"expires_at"`
}

func (o OTP) Expired(now time.Time) bool { return now.After(o.ExpiresAt) }

// SendOTPReq
// swagger:model SendOTPReq
type SendOTPReq struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"name"`
}
