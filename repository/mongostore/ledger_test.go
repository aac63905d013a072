package mongostore_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/kp7829294-create/libzone/repository/mongostore"
	"github.com/kp7829294-create/libzone/repository/storetest"
	"github.com/kp7829294-create/libzone/util/database"
)

// Transactions need a replica set: MONGO_URI=mongodb://localhost:27017/?replicaSet=rs0
func TestLedger_Mongo(t *testing.T) {
	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		t.Skip("MONGO_URI not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	client, err := database.NewMongo(ctx, uri)
	require.NoError(t, err)

	dbName := "libzone_test_" + uuid.NewString()[:8]
	s := mongostore.New(client, dbName)
	t.Cleanup(func() {
		_ = client.Database(dbName).Drop(context.Background())
		_ = s.Close(context.Background())
	})

	require.NoError(t, s.Migrate(ctx))
	storetest.RunLedger(t, s)
}
