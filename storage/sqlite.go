package storage

import (
	"database/sql"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS kv (
	key TEXT PRIMARY KEY,
	value BLOB NOT NULL,
	updated_at INTEGER NOT NULL
);`

// dsnPragmas is applied by modernc.org/sqlite to every pooled connection.
const dsnPragmas = "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"

type kvRow struct {
	Key       string `db:"key"`
	Value     []byte `db:"value"`
	UpdatedAt int64  `db:"updated_at"`
}

// SQLite is a Store backed by a single SQLite table.
type SQLite struct {
	conn *sqlx.DB
}

// OpenSQLite opens or creates the database at path.
func OpenSQLite(path string) (*SQLite, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	conn, err := sqlx.Open("sqlite", path+dsnPragmas)
	if err != nil {
		return nil, errors.Wrap(err, "open sqlite")
	}
	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, errors.Wrap(err, "migrate sqlite")
	}
	return &SQLite{conn: conn}, nil
}

func (s *SQLite) Get(key string) ([]byte, error) {
	var v []byte
	err := s.conn.Get(&v, `SELECT value FROM kv WHERE key = ?`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "get %q", key)
	}
	return v, nil
}

func (s *SQLite) Set(key string, value []byte) error {
	_, err := s.conn.NamedExec(`
		INSERT INTO kv (key, value, updated_at) VALUES (:key, :value, :updated_at)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		kvRow{Key: key, Value: value, UpdatedAt: time.Now().Unix()})
	return errors.Wrapf(err, "set %q", key)
}

func (s *SQLite) Delete(key string) error {
	_, err := s.conn.Exec(`DELETE FROM kv WHERE key = ?`, key)
	return errors.Wrapf(err, "delete %q", key)
}

func (s *SQLite) Close() error {
	return s.conn.Close()
}
