package authsvc

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"

	"github.com/google/uuid"

	"github.com/kp7829294-create/libzone/model"
	"github.com/kp7829294-create/libzone/repository"
	"github.com/kp7829294-create/libzone/util/apperr"
	"github.com/kp7829294-create/libzone/util/clock"
	"github.com/kp7829294-create/libzone/util/hash"
	jwtutil "github.com/kp7829294-create/libzone/util/jwt"
	"github.com/kp7829294-create/libzone/util/notify"
)

var (
	ErrBadInput      = apperr.New(apperr.Validation, "BAD_INPUT", "Missing fields")
	ErrEmailTaken    = apperr.New(apperr.Conflict, "EMAIL_TAKEN", "Email already registered")
	ErrInvalidOTP    = apperr.New(apperr.Validation, "INVALID_OTP", "Invalid or expired code")
	ErrInvalidCreds  = apperr.New(apperr.Unauthorized, "INVALID_CREDENTIALS", "Invalid credentials")
	ErrWrongPassword = apperr.New(apperr.Validation, "WRONG_PASSWORD", "Current password is incorrect")
	ErrWeakPassword  = apperr.New(apperr.Validation, "WEAK_PASSWORD", "Password must be at least 6 characters")
	ErrUserNotFound  = apperr.New(apperr.NotFound, "USER_NOT_FOUND", "User not found")
	ErrMailFailed    = apperr.New(apperr.Unavailable, "MAIL_FAILED", "Could not send verification email")
)

const minPassword = 6

type Service interface {
	// SendOTP issues a fresh code for an unregistered email, replacing any previous one.
	SendOTP(ctx context.Context, req model.SendOTPReq) error
	// Signup consumes the code and creates a student account.
	Signup(ctx context.Context, req model.SignupReq) (*model.User, string, error)
	Login(ctx context.Context, req model.LoginReq) (*model.User, string, error)
	Me(ctx context.Context, userID string) (*model.User, error)
	UpdateProfile(ctx context.Context, userID string, req model.ProfileUpdateReq) (*model.User, error)
}

type Deps struct {
	Users  repository.UserRepo
	OTPs   repository.OTPRepo
	Mail   notify.Sender
	Clock  clock.Clock
	Secret string
	Log    *slog.Logger
	// Codes generates one-time codes; defaults to 6 random digits.
	Codes func() (string, error)
}

type service struct {
	Deps
}

func New(d Deps) Service {
	if d.Codes == nil {
		d.Codes = randomCode
	}
	if d.Log == nil {
		d.Log = slog.Default()
	}
	return &service{d}
}

func randomCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", model.OTPLength, n.Int64()), nil
}

func (s *service) SendOTP(ctx context.Context, req model.SendOTPReq) error {
	email := model.NormalizeEmail(req.Email)
	if email == "" {
		return ErrBadInput
	}

	_, err := s.Users.UserByEmail(ctx, email)
	if err == nil {
		return ErrEmailTaken
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return err
	}

	code, err := s.Codes()
	if err != nil {
		return err
	}
	otp := model.OTP{Email: email, Code: code, ExpiresAt: s.Clock.Now().Add(model.OTPTTL)}
	if err := s.OTPs.PutOTP(ctx, otp); err != nil {
		return err
	}

	msg, err := notify.OTPMail.Render(email, map[string]any{
		"Name":    strings.TrimSpace(req.Name),
		"Code":    code,
		"Minutes": int(model.OTPTTL.Minutes()),
	})
	if err != nil {
		return err
	}
	if err := s.Mail.Send(ctx, msg); err != nil {
		return ErrMailFailed.Wrap(err)
	}
	return nil
}

func (s *service) Signup(ctx context.Context, req model.SignupReq) (*model.User, string, error) {
	name := strings.TrimSpace(req.Name)
	email := model.NormalizeEmail(req.Email)
	code := strings.TrimSpace(req.OTP)
	if name == "" || email == "" || code == "" {
		return nil, "", ErrBadInput
	}
	if len(req.Password) < minPassword {
		return nil, "", ErrWeakPassword
	}

	if _, err := s.Users.UserByEmail(ctx, email); err == nil {
		return nil, "", ErrEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, "", err
	}

	// The code is gone after this call whether or not it was still valid.
	otp, err := s.OTPs.TakeOTP(ctx, email, code)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, "", ErrInvalidOTP
	}
	if err != nil {
		return nil, "", err
	}
	now := s.Clock.Now()
	if otp.Expired(now) {
		return nil, "", ErrInvalidOTP
	}

	hashed, err := hash.HashPassword(req.Password)
	if err != nil {
		return nil, "", err
	}
	u := &model.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: hashed,
		Role:         model.RoleStudent,
		CreatedAt:    now,
	}
	if err := s.Users.CreateUser(ctx, u); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return nil, "", ErrEmailTaken
		}
		return nil, "", err
	}

	token, err := jwtutil.Issue(s.Secret, u.ID, string(u.Role), now)
	if err != nil {
		return nil, "", err
	}

	s.welcome(ctx, u)
	return u, token, nil
}

// welcome is best effort; the account already exists.
func (s *service) welcome(ctx context.Context, u *model.User) {
	msg, err := notify.WelcomeMail.Render(u.Email, map[string]any{
		"Name":     u.Name,
		"LoanDays": int(model.LoanPeriod.Hours() / 24),
	})
	if err == nil {
		err = s.Mail.Send(ctx, msg)
	}
	if err != nil {
		s.Log.Warn("welcome email failed", "user_id", u.ID, "err", err)
	}
}

func (s *service) Login(ctx context.Context, req model.LoginReq) (*model.User, string, error) {
	email := model.NormalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return nil, "", ErrBadInput
	}

	u, err := s.Users.UserByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, "", ErrInvalidCreds
	}
	if err != nil {
		return nil, "", err
	}
	if !hash.Check(u.PasswordHash, req.Password) {
		return nil, "", ErrInvalidCreds
	}

	token, err := jwtutil.Issue(s.Secret, u.ID, string(u.Role), s.Clock.Now())
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

func (s *service) Me(ctx context.Context, userID string) (*model.User, error) {
	u, err := s.Users.UserByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return u, err
}

func (s *service) UpdateProfile(ctx context.Context, userID string, req model.ProfileUpdateReq) (*model.User, error) {
	u, err := s.Me(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, ErrBadInput
		}
		u.Name = name
	}
	if req.Avatar != nil {
		u.Avatar = strings.TrimSpace(*req.Avatar)
	}
	if req.NewPassword != nil && *req.NewPassword != "" {
		if req.CurrentPassword == nil || !hash.Check(u.PasswordHash, *req.CurrentPassword) {
			return nil, ErrWrongPassword
		}
		if len(*req.NewPassword) < minPassword {
			return nil, ErrWeakPassword
		}
		if u.PasswordHash, err = hash.HashPassword(*req.NewPassword); err != nil {
			return nil, err
		}
	}

	if err := s.Users.UpdateUser(ctx, u); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}
