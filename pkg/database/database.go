package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/revelare/revelare-web/pkg/logger"
	_ "modernc.org/sqlite"
)

// DB holds the session revocation list shared by every request.
var DB *sql.DB

func InitDatabase(dbPath string) error {
	dir := filepath.Dir(dbPath)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create database directory %s: %w", dir, err)
		}
	}

	var err error
	DB, err = sql.Open("sqlite", dbPath+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	DB.SetMaxOpenConns(1)

	if err = DB.Ping(); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	if err = createTables(); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}

	logger.Info("database_ready", "path", dbPath)
	return nil
}

func createTables() error {
	schema := `
    CREATE TABLE IF NOT EXISTS revoked_sessions (
        jti TEXT PRIMARY KEY,
        user_id TEXT NOT NULL,
        expires_at INTEGER NOT NULL,
        revoked_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
    );

    CREATE INDEX IF NOT EXISTS idx_revoked_sessions_expires ON revoked_sessions(expires_at);
    `

	if _, err := DB.Exec(schema); err != nil {
		return err
	}
	// Older databases predate the reason column.
	return ensureColumn("revoked_sessions", "reason", `ALTER TABLE revoked_sessions ADD COLUMN reason TEXT DEFAULT 'signout';`)
}

func ensureColumn(table, column, ddl string) error {
	rows, err := DB.Query(fmt.Sprintf(`PRAGMA table_info(%s);`, table))
	if err != nil {
		return err
	}
	found := false
	for rows.Next() {
		var cid int
		var name, ctype string
		var notnull, pk int
		var dflt interface{}
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dflt, &pk); err != nil {
			rows.Close()
			return err
		}
		if strings.EqualFold(name, column) {
			found = true
			break
		}
	}
	rows.Close()
	if found {
		return nil
	}
	if _, err := DB.Exec(ddl); err != nil {
		return fmt.Errorf("add column %s.%s: %w", table, column, err)
	}
	logger.Info("database_column_added", "table", table, "column", column)
	return nil
}

// PurgeExpired drops revocation entries whose tokens have expired anyway.
func PurgeExpired(now time.Time) (int64, error) {
	if DB == nil {
		return 0, fmt.Errorf("database not initialized")
	}
	res, err := DB.Exec(`DELETE FROM revoked_sessions WHERE expires_at < ?`, now.Unix())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func Close() error {
	if DB != nil {
		err := DB.Close()
		DB = nil
		return err
	}
	return nil
}
