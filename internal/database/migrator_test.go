package database_test

import (
	"context"
	"io"
	"os"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"tintura-sst/internal/database"
)

func TestPending_IsSorted(t *testing.T) {
	names, err := database.Pending()
	require.NoError(t, err)
	require.NotEmpty(t, names)
	assert.Equal(t, "001_init.sql", names[0])
}

func TestMigrator_RunIsIdempotent(t *testing.T) {
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	db, err := database.Open(ctx, url)
	require.NoError(t, err)
	defer db.Close()

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	m := database.NewMigrator(db, logger)
	require.NoError(t, m.Run(ctx))
	require.NoError(t, m.Run(ctx))

	var units int
	require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM units").Scan(&units))
	assert.GreaterOrEqual(t, units, 3)
}
