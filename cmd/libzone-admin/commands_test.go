package main

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kp7829294-create/libzone/model"
	"github.com/kp7829294-create/libzone/repository/memstore"
	"github.com/kp7829294-create/libzone/util/clock"
	"github.com/kp7829294-create/libzone/util/hash"
)

var now = time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)

func TestSeedCatalog(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()

	n, err := seedCatalog(ctx, st, clock.NewFake(now), "")
	require.NoError(t, err)
	require.Equal(t, 5, n)

	books, err := st.SearchBooks(ctx, model.BookFilter{})
	require.NoError(t, err)
	require.Len(t, books, 5)
	require.Equal(t, "The Future of Code", books[0].Title)
	require.Equal(t, 0, books[3].Available)
	for _, b := range books {
		require.LessOrEqual(t, b.Available, b.Total)
		require.Empty(t, b.FileURL)
	}

	n, err = seedCatalog(ctx, st, clock.NewFake(now), "")
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestSeedCatalog_WithFileURL(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()

	n, err := seedCatalog(ctx, st, clock.NewFake(now), "https://files.campus.edu/sample.pdf")
	require.NoError(t, err)
	require.Equal(t, 5, n)

	books, err := st.SearchBooks(ctx, model.BookFilter{})
	require.NoError(t, err)
	for _, b := range books {
		require.Equal(t, "https://files.campus.edu/sample.pdf", b.FileURL)
		require.Empty(t, b.FilePublicID)
	}
}

func TestCreateAdmin(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()

	u, err := createAdmin(ctx, st, " Root ", "Root@Campus.edu", "hunter22", clock.NewFake(now))
	require.NoError(t, err)
	require.Equal(t, model.RoleAdmin, u.Role)
	require.Equal(t, "root@campus.edu", u.Email)
	require.Equal(t, "Root", u.Name)
	require.True(t, hash.Check(u.PasswordHash, "hunter22"))

	_, err = createAdmin(ctx, st, "Again", "root@campus.edu", "hunter22", clock.NewFake(now))
	require.EqualError(t, err, "root@campus.edu is already registered")

	_, err = createAdmin(ctx, st, "X", "not-an-email", "hunter22", clock.NewFake(now))
	require.Error(t, err)

	_, err = createAdmin(ctx, st, "X", "x@campus.edu", "123", clock.NewFake(now))
	require.EqualError(t, err, "password must be at least 6 characters")
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCommandsAgainstMemoryStore(t *testing.T) {
	t.Setenv("LIBZONE_CONFIG", "")
	t.Setenv("APP_ENV", "dev")
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("LOG_LEVEL", "error")

	out, err := run(t, "migrate")
	require.NoError(t, err)
	require.Equal(t, "schema up to date\n", out)

	out, err = run(t, "seed", "--file-url", "https://files.campus.edu/sample.pdf")
	require.NoError(t, err)
	require.Equal(t, "seeded 5 books\n", out)

	out, err = run(t, "create-admin", "--email", "ops@campus.edu", "--password", "secret99")
	require.NoError(t, err)
	require.Contains(t, out, "created admin ops@campus.edu")

	out, err = run(t, "purge-otps")
	require.NoError(t, err)
	require.Equal(t, "purged 0 expired codes\n", out)

	_, err = run(t, "create-admin", "--password", "secret99")
	require.Error(t, err)
}
