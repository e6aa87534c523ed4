package storage

import (
	"context"
	"testing"

	"github.com/SscSPs/investment_bot/internal/platform/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_Memory(t *testing.T) {
	repos, closeFn, err := Open(context.Background(), &config.Config{StorageDriver: config.StorageMemory}, true)
	require.NoError(t, err)
	defer closeFn()

	assert.NotNil(t, repos.AccountRepo)
	assert.NotNil(t, repos.LedgerRepo)
	assert.NotNil(t, repos.AccessCodeRepo)
	assert.NotNil(t, repos.TicketRepo)
	assert.NotNil(t, repos.TxManager)
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, _, err := Open(context.Background(), &config.Config{StorageDriver: "sqlite"}, false)
	assert.ErrorContains(t, err, "unknown storage driver")
}
