// Package sqlitehistory persists the publication history in SQLite.
package sqlitehistory

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/user/shortgen/pkg/adapters/logger"
	"github.com/user/shortgen/pkg/ports"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// timeLayout sorts lexically in time order for UTC values.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store implements ports.HistoryStore.
type Store struct {
	conn   *sql.DB
	logger ports.Logger
}

// Open opens or creates the database at path. Use ":memory:" for a
// throwaway store.
func Open(path string, log ports.Logger) (*Store, error) {
	if log == nil {
		log = logger.NewNoop()
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := conn.Exec(pragma); err != nil {
			conn.Close()
			return nil, fmt.Errorf("execute %s: %w", pragma, err)
		}
	}

	s := &Store{conn: conn, logger: log.WithComponent("history")}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	migrations, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("read migrations: %w", err)
	}

	for _, m := range migrations {
		if m.IsDir() {
			continue
		}
		name := m.Name()
		if s.applied(name) {
			continue
		}

		content, err := migrationsFS.ReadFile("migrations/" + name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}
		if _, err := s.conn.Exec(string(content)); err != nil {
			return fmt.Errorf("execute migration %s: %w", name, err)
		}
		if _, err := s.conn.Exec("INSERT INTO _migrations (name) VALUES (?)", name); err != nil {
			return fmt.Errorf("record migration %s: %w", name, err)
		}
		s.logger.Debug("Applied migration %s", name)
	}
	return nil
}

func (s *Store) applied(name string) bool {
	var n int
	if err := s.conn.QueryRow("SELECT 1 FROM sqlite_master WHERE type='table' AND name='_migrations'").Scan(&n); err != nil {
		return false
	}
	err := s.conn.QueryRow("SELECT 1 FROM _migrations WHERE name = ?", name).Scan(&n)
	return err == nil && n == 1
}

// Record stores a publication.
func (s *Store) Record(ctx context.Context, rec ports.PostRecord) error {
	if rec.PostedAt.IsZero() {
		rec.PostedAt = time.Now()
	}
	_, err := s.conn.ExecContext(ctx,
		"INSERT INTO posts (content_id, platform, video_id, posted_at) VALUES (?, ?, ?, ?)",
		rec.ContentID, rec.Platform, rec.VideoID, rec.PostedAt.UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("record post %s: %w", rec.ContentID, err)
	}
	return nil
}

// PostedIDs returns the content IDs already published on platform.
func (s *Store) PostedIDs(ctx context.Context, platform string) (map[string]bool, error) {
	rows, err := s.conn.QueryContext(ctx, "SELECT DISTINCT content_id FROM posts WHERE platform = ?", platform)
	if err != nil {
		return nil, fmt.Errorf("query posted ids: %w", err)
	}
	defer rows.Close()

	ids := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan posted id: %w", err)
		}
		ids[id] = true
	}
	return ids, rows.Err()
}

// CountSince returns the number of posts on platform at or after since.
func (s *Store) CountSince(ctx context.Context, platform string, since time.Time) (int, error) {
	var n int
	err := s.conn.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM posts WHERE platform = ? AND posted_at >= ?",
		platform, since.UTC().Format(timeLayout)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count posts: %w", err)
	}
	return n, nil
}

// Recent returns the latest records, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]ports.PostRecord, error) {
	rows, err := s.conn.QueryContext(ctx,
		"SELECT content_id, platform, video_id, posted_at FROM posts ORDER BY posted_at DESC, id DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("query recent posts: %w", err)
	}
	defer rows.Close()

	var recs []ports.PostRecord
	for rows.Next() {
		var rec ports.PostRecord
		var postedAt string
		if err := rows.Scan(&rec.ContentID, &rec.Platform, &rec.VideoID, &postedAt); err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		if rec.PostedAt, err = time.Parse(timeLayout, postedAt); err != nil {
			return nil, fmt.Errorf("parse posted_at %q: %w", postedAt, err)
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// Close closes the database.
func (s *Store) Close() error {
	return s.conn.Close()
}

var _ ports.HistoryStore = (*Store)(nil)
