package manifest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"go.uber.org/zap"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

// usageSchema is tracked with user_version pragma, database with different
// version is rebuilt.
const usageSchema = `
CREATE TABLE IF NOT EXISTS usage (
	seq    INTEGER PRIMARY KEY,
	module TEXT NOT NULL,
	name   TEXT NOT NULL,
	UNIQUE (module, name)
);
`

// busyTimeoutMs makes sqlite wait for other writers instead of failing.
const busyTimeoutMs = 60000

// SQLiteUsage keeps usage records in sqlite database. Write transactions are
// started immediately so concurrent writers from different processes are
// serialized by the database lock.
type SQLiteUsage struct {
	path string
	log  *zap.Logger

	mu   sync.Mutex
	conn *sqlite.Conn
}

// OpenSQLiteUsage opens (creating if necessary) usage database. Database
// which cannot be opened or prepared is rebuildable data: it is removed and
// created anew.
func OpenSQLiteUsage(path string, log *zap.Logger) (*SQLiteUsage, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("unable to create usage directory: %w", err)
	}
	log = log.Named("usage").With(zap.String("path", path))

	s, err := openSQLiteUsage(path, log)
	if err == nil {
		return s, nil
	}
	log.Warn("Discarding unusable usage database", zap.Error(err))
	for _, name := range []string{path, path + "-wal", path + "-shm"} {
		if err := os.Remove(name); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("unable to remove usage database: %w", err)
		}
	}
	return openSQLiteUsage(path, log)
}

func openSQLiteUsage(path string, log *zap.Logger) (*SQLiteUsage, error) {
	conn, err := sqlite.OpenConn(path, sqlite.OpenReadWrite, sqlite.OpenCreate, sqlite.OpenWAL)
	if err != nil {
		return nil, fmt.Errorf("unable to open usage database: %w", err)
	}
	s := &SQLiteUsage{path: path, log: log, conn: conn}
	if err := s.prepare(); err != nil {
		conn.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteUsage) prepare() error {
	if err := sqlitex.ExecuteTransient(s.conn, fmt.Sprintf("PRAGMA busy_timeout = %d;", busyTimeoutMs), nil); err != nil {
		return fmt.Errorf("unable to set busy timeout: %w", err)
	}

	var version int
	err := sqlitex.ExecuteTransient(s.conn, "PRAGMA user_version;", &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			version = stmt.ColumnInt(0)
			return nil
		}})
	if err != nil {
		return fmt.Errorf("unable to read schema version: %w", err)
	}

	switch version {
	case UsageVersion:
		return nil
	case 0:
	default:
		// rebuildable data, start over
		s.log.Warn("Discarding usage database with unknown schema", zap.Int("version", version))
		if err := sqlitex.ExecuteTransient(s.conn, "DROP TABLE IF EXISTS usage;", nil); err != nil {
			return fmt.Errorf("unable to drop usage table: %w", err)
		}
	}
	if err := sqlitex.ExecuteScript(s.conn, usageSchema, nil); err != nil {
		return fmt.Errorf("unable to create usage schema: %w", err)
	}
	if err := sqlitex.ExecuteTransient(s.conn, fmt.Sprintf("PRAGMA user_version = %d;", UsageVersion), nil); err != nil {
		return fmt.Errorf("unable to set schema version: %w", err)
	}
	return nil
}

func (s *SQLiteUsage) Read() (Usage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		return Usage{}, ErrClosed
	}
	return s.read()
}

func (s *SQLiteUsage) read() (Usage, error) {
	var u Usage
	err := sqlitex.Execute(s.conn, "SELECT module, name FROM usage ORDER BY seq;", &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			u.Entries = append(u.Entries, UsageEntry{Module: stmt.ColumnText(0), Name: stmt.ColumnText(1)})
			return nil
		}})
	if err != nil {
		return Usage{}, fmt.Errorf("unable to read usage: %w", err)
	}
	return u, nil
}

// Update runs fn inside immediate transaction. Entries fn added are inserted,
// entries it removed are deleted.
func (s *SQLiteUsage) Update(fn func(*Usage) error) (result Usage, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		return Usage{}, ErrClosed
	}

	end, err := sqlitex.ImmediateTransaction(s.conn)
	if err != nil {
		return Usage{}, fmt.Errorf("unable to start transaction: %w", err)
	}
	defer end(&err)

	before, err := s.read()
	if err != nil {
		return Usage{}, err
	}
	after := before.Clone()
	if err := fn(&after); err != nil {
		if errors.Is(err, ErrNoChange) {
			return before, nil
		}
		return Usage{}, err
	}
	if err := s.sync(before, after); err != nil {
		return Usage{}, err
	}
	return after, nil
}

func (s *SQLiteUsage) sync(before, after Usage) error {
	for _, e := range before.Entries {
		if slices.Contains(after.Entries, e) {
			continue
		}
		if err := sqlitex.Execute(s.conn, "DELETE FROM usage WHERE module = ? AND name = ?;",
			&sqlitex.ExecOptions{Args: []any{e.Module, e.Name}}); err != nil {
			return fmt.Errorf("unable to delete usage: %w", err)
		}
	}
	for _, e := range after.Entries {
		if err := sqlitex.Execute(s.conn, "INSERT OR IGNORE INTO usage (module, name) VALUES (?, ?);",
			&sqlitex.ExecOptions{Args: []any{e.Module, e.Name}}); err != nil {
			return fmt.Errorf("unable to record usage: %w", err)
		}
	}
	return nil
}

func (s *SQLiteUsage) Write(u Usage) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		return ErrClosed
	}
	end, err := sqlitex.ImmediateTransaction(s.conn)
	if err != nil {
		return fmt.Errorf("unable to start transaction: %w", err)
	}
	defer end(&err)

	if err := sqlitex.Execute(s.conn, "DELETE FROM usage;", nil); err != nil {
		return fmt.Errorf("unable to clear usage: %w", err)
	}
	return s.sync(Usage{}, u)
}

func (s *SQLiteUsage) Reset() error {
	return s.Write(Usage{})
}

func (s *SQLiteUsage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	return err
}
