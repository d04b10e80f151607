package database_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/revelare/revelare-web/pkg/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitDatabase_CreatesSchema(t *testing.T) {
	require.NoError(t, database.InitDatabase(filepath.Join(t.TempDir(), "nested", "test.db")))
	defer database.Close()

	var n int
	err := database.DB.QueryRow(`SELECT COUNT(*) FROM pragma_table_info('revoked_sessions') WHERE name = 'reason'`).Scan(&n)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestInitDatabase_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	require.NoError(t, database.InitDatabase(path))
	require.NoError(t, database.Close())
	require.NoError(t, database.InitDatabase(path))
	defer database.Close()
	assert.NoError(t, database.DB.Ping())
}

func TestPurgeExpired(t *testing.T) {
	require.NoError(t, database.InitDatabase(filepath.Join(t.TempDir(), "test.db")))
	defer database.Close()

	now := time.Now().UTC()
	_, err := database.DB.Exec(`INSERT INTO revoked_sessions (jti, user_id, expires_at) VALUES ('old','1',?), ('live','1',?)`,
		now.Add(-time.Hour).Unix(), now.Add(time.Hour).Unix())
	require.NoError(t, err)

	n, err := database.PurgeExpired(now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestPurgeExpired_NotInitialized(t *testing.T) {
	database.Close()
	_, err := database.PurgeExpired(time.Now())
	assert.Error(t, err)
}
