package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestIssueParse(t *testing.T) {
	tok, err := Issue("s3cret", "u-1", "student", time.Now())
	require.NoError(t, err)

	c, err := Parse("Bearer "+tok, "s3cret")
	require.NoError(t, err)
	require.Equal(t, "u-1", c.Subject)
	require.Equal(t, "student", c.Role)
	require.WithinDuration(t, time.Now().Add(TTL), c.ExpiresAt.Time, time.Minute)

	c, err = Parse(tok, "s3cret")
	require.NoError(t, err)
	require.Equal(t, "u-1", c.Subject)
}

func TestParse_Rejects(t *testing.T) {
	tok, err := Issue("s3cret", "u-1", "admin", time.Now())
	require.NoError(t, err)

	_, err = Parse(tok, "other")
	require.Error(t, err)

	_, err = Parse("", "s3cret")
	require.Error(t, err)

	old, err := Issue("s3cret", "u-1", "admin", time.Now().Add(-8*24*time.Hour))
	require.NoError(t, err)
	_, err = Parse(old, "s3cret")
	require.Error(t, err)
}
