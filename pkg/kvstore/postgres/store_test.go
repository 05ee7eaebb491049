package postgres

import (
	"os"
	"testing"

	"apin-chat/pkg/database"
	"apin-chat/pkg/kvstore/kvstoretest"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/require"
)

func TestStoreIntegration(t *testing.T) {
	_ = godotenv.Load("../../../.env")

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	db, err := database.NewGormDBFromDSN(dsn)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	store := NewStore(db)
	defer store.Close()

	kvstoretest.Run(t, store)
}
