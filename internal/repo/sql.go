package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"
)

type Dialect string

const (
	DialectSQLite Dialect = "sqlite"
	DialectMySQL  Dialect = "mysql"
)

// SQLStorage хранит ключи в таблице kv_store через database/sql (SQLite или MySQL)
type SQLStorage struct {
	db      *sql.DB
	dialect Dialect
}

// OpenSQLite открывает (или создает) файл базы по path
func OpenSQLite(ctx context.Context, path string) (*SQLStorage, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	return OpenSQL(ctx, DialectSQLite, path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
}

// OpenSQL подключается, проверяет соединение и создает таблицу
func OpenSQL(ctx context.Context, dialect Dialect, dsn string) (*SQLStorage, error) {
	switch dialect {
	case DialectSQLite, DialectMySQL:
	default:
		return nil, fmt.Errorf("unsupported sql dialect %q", dialect)
	}

	db, err := sql.Open(string(dialect), dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dialect, err)
	}
	if dialect == DialectSQLite {
		// один писатель на файл
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", dialect, err)
	}

	s := &SQLStorage{db: db, dialect: dialect}
	if err := s.Migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate %s: %w", dialect, err)
	}
	return s, nil
}

func (s *SQLStorage) Close() error { return s.db.Close() }

func (s *SQLStorage) Migrate(ctx context.Context) error {
	var ddl string
	switch s.dialect {
	case DialectMySQL:
		ddl = `CREATE TABLE IF NOT EXISTS kv_store (
    name VARCHAR(255) PRIMARY KEY,
    value LONGTEXT NOT NULL,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
)`
	default:
		ddl = `CREATE TABLE IF NOT EXISTS kv_store (
    name TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)`
	}
	_, err := s.db.ExecContext(ctx, ddl)
	return err
}

func (s *SQLStorage) Read(ctx context.Context, key string) (string, bool, error) {
	if key == "" {
		return "", false, ErrorInvalidKey
	}

	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv_store WHERE name = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (s *SQLStorage) Write(ctx context.Context, key, value string) error {
	if key == "" {
		return ErrorInvalidKey
	}

	query := `INSERT INTO kv_store (name, value) VALUES (?, ?)
ON CONFLICT(name) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`
	if s.dialect == DialectMySQL {
		query = `INSERT INTO kv_store (name, value) VALUES (?, ?)
ON DUPLICATE KEY UPDATE value = VALUES(value)`
	}

	if _, err := s.db.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("%w: %v", ErrorWriteFailed, err)
	}
	return nil
}
