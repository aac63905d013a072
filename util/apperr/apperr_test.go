package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

var errTest = New(Conflict, "OUT_OF_STOCK", "Book not available")

func TestCodeExtractor(t *testing.T) {
	wrapped := fmt.Errorf("issue: %w", errTest.Wrap(errors.New("guard failed")))

	require.Equal(t, ErrCode("OUT_OF_STOCK"), Code(wrapped))
	require.Equal(t, ErrCode(""), Code(errors.New("plain")))
	require.True(t, errors.Is(wrapped, errTest))
	require.Equal(t, Conflict, KindOf(wrapped))
	require.Equal(t, Internal, KindOf(errors.New("plain")))
}

func TestMessage(t *testing.T) {
	require.Equal(t, "Book not available", Message(errTest, "x"))
	require.Equal(t, "x", Message(errors.New("db down"), "x"))
}

func TestStatus(t *testing.T) {
	cases := map[Kind]int{
		Validation:   http.StatusBadRequest,
		Conflict:     http.StatusBadRequest,
		Unauthorized: http.StatusUnauthorized,
		NotFound:     http.StatusNotFound,
		Upstream:     http.StatusBadGateway,
		Unavailable:  http.StatusServiceUnavailable,
		Internal:     http.StatusInternalServerError,
	}
	for k, want := range cases {
		require.Equal(t, want, Status(k), string(k))
	}
}
