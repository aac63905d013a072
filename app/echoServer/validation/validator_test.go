package validation

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kp7829294-create/libzone/model"
	"github.com/kp7829294-create/libzone/util/apperr"
)

func TestValidate(t *testing.T) {
	v := New()

	require.NoError(t, v.Validate(&model.LoginReq{Email: "a@b.co", Password: "x"}))

	cases := []struct {
		name string
		in   any
		msg  string
	}{
		{"missing", &model.LoginReq{Password: "x"}, "Missing email"},
		{"email", &model.LoginReq{Email: "nope", Password: "x"}, "Invalid email"},
		{"min", &model.SignupReq{Name: "a", Email: "a@b.co", Password: "12345", OTP: "123456"}, "password must be at least 6 characters"},
		{"len", &model.SignupReq{Name: "a", Email: "a@b.co", Password: "123456", OTP: "123"}, "otp must be 6 characters"},
		{"numeric", &model.SignupReq{Name: "a", Email: "a@b.co", Password: "123456", OTP: "12345a"}, "otp must be numeric"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := v.Validate(tc.in)
			require.Error(t, err)
			require.Equal(t, apperr.Validation, apperr.KindOf(err))
			require.Equal(t, tc.msg, apperr.Message(err, ""))
		})
	}
}
