package postgres

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Conte777/feedbot/internal/domain/feed/deps"
	"github.com/Conte777/feedbot/internal/domain/feed/repository/storetest"
)

func TestStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) deps.Store {
		return NewStore(storetest.NewSQLiteDB(t))
	})
}

func TestStore_Ping(t *testing.T) {
	s := NewStore(storetest.NewSQLiteDB(t))
	require.NoError(t, s.Ping(t.Context()))
}
