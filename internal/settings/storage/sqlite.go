package storage

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLite 以单行形式保存设置文档。
type SQLite struct{ DB *sql.DB }

// Open 打开（必要时创建）数据库文件并建表。
func Open(dsn string) (*SQLite, error) {
	if dir := filepath.Dir(dsn); dsn != ":memory:" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	s := &SQLite{DB: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLite) Close() error { return s.DB.Close() }

func (s *SQLite) migrate() error {
	const ddl = `
CREATE TABLE IF NOT EXISTS settings (
  id          INTEGER PRIMARY KEY CHECK (id = 1),
  doc         TEXT NOT NULL,
  updated_at  DATETIME NOT NULL
);
`
	_, err := s.DB.Exec(ddl)
	return err
}

func (s *SQLite) Load(ctx context.Context) ([]byte, bool, error) {
	var doc string
	err := s.DB.QueryRowContext(ctx, `SELECT doc FROM settings WHERE id=1`).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return []byte(doc), true, nil
}

func (s *SQLite) Save(ctx context.Context, doc []byte) error {
	_, err := s.DB.ExecContext(ctx, `
INSERT INTO settings(id, doc, updated_at)
VALUES(1,?,?)
ON CONFLICT(id) DO UPDATE SET doc=excluded.doc, updated_at=excluded.updated_at
`, string(doc), time.Now().UTC())
	return err
}

// UpdatedAt 返回最后一次写入时间；未写入过时 ok=false。
func (s *SQLite) UpdatedAt(ctx context.Context) (t time.Time, ok bool, err error) {
	err = s.DB.QueryRowContext(ctx, `SELECT updated_at FROM settings WHERE id=1`).Scan(&t)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	return t, true, nil
}
