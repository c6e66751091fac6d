package manifestcache

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"

	"manifesto/internal/manifest"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is the current schema version. Bump this when the schema
// changes; users clear the cache database after a mismatch.
const schemaVersion = 1

// ErrSchemaMismatch indicates the database schema version doesn't match the
// expected version.
var ErrSchemaMismatch = errors.New("cache schema version mismatch")

// Summary is one cached row describing a previously parsed manifest.
type Summary struct {
	PayloadSHA1  string    `json:"payloadSha1"`
	SourcePath   string    `json:"sourcePath"`
	GUID         string    `json:"guid"`
	AppName      string    `json:"appName"`
	BuildVersion string    `json:"buildVersion"`
	FileCount    int       `json:"fileCount"`
	ChunkCount   int       `json:"chunkCount"`
	DownloadSize uint64    `json:"downloadSize"`
	InstallSize  uint64    `json:"installSize"`
	Clean        bool      `json:"clean"`
	ParsedAt     time.Time `json:"parsedAt"`
}

// Summarize derives a cache row from a parsed manifest. The payload SHA-1
// from the header keys the row; manifests without one (JSON form) key on the
// source path instead.
func Summarize(m *manifest.Manifest, sourcePath string) Summary {
	s := Summary{
		PayloadSHA1: m.Header.SHA1Hash,
		SourcePath:  sourcePath,
		GUID:        m.Header.GUID,
		Clean:       m.Advisories.Clean(),
		ParsedAt:    time.Now().UTC(),
	}
	if s.PayloadSHA1 == "" {
		s.PayloadSHA1 = "path:" + sourcePath
	}
	if m.Meta != nil {
		s.AppName = m.Meta.AppName
		s.BuildVersion = m.Meta.BuildVersion
	}
	if m.ChunkList != nil {
		s.ChunkCount = len(m.ChunkList.Elements)
		s.DownloadSize = m.ChunkList.TotalDownloadSize()
		s.InstallSize = m.ChunkList.TotalInstalledSize()
	}
	if m.FileList != nil {
		s.FileCount = len(m.FileList.Files)
	}
	return s
}

// Store manages summary persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
	lock *flock.Flock
}

// Open initializes or connects to the cache database at path, creating
// parent directories as needed.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure cache dir: %w", err)
	}

	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return nil, fmt.Errorf("acquire cache lock: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("open cache db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			_ = lock.Unlock()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path, lock: lock}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		_ = lock.Unlock()
		return nil, err
	}
	return store, nil
}

// Close closes the database and releases the cross-process lock.
func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	var err error
	if s.db != nil {
		err = s.db.Close()
	}
	if s.lock != nil {
		if unlockErr := s.lock.Unlock(); err == nil {
			err = unlockErr
		}
	}
	return err
}

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableExists == 0 {
		if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
			return fmt.Errorf("create cache schema: %w", err)
		}
		if _, err := s.db.ExecContext(ctx,
			"INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
			return fmt.Errorf("record schema version: %w", err)
		}
		return nil
	}

	var version int
	if err := s.db.QueryRowContext(ctx,
		"SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (run 'manifesto cache clear' or delete %s)",
			ErrSchemaMismatch, version, schemaVersion, s.path)
	}
	return nil
}

// Put inserts or replaces the summary row for its payload hash.
func (s *Store) Put(ctx context.Context, sum Summary) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO manifest_summaries (
            payload_sha1, source_path, guid, app_name, build_version,
            file_count, chunk_count, download_size, install_size, clean, parsed_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(payload_sha1) DO UPDATE SET
            source_path = excluded.source_path,
            guid = excluded.guid,
            app_name = excluded.app_name,
            build_version = excluded.build_version,
            file_count = excluded.file_count,
            chunk_count = excluded.chunk_count,
            download_size = excluded.download_size,
            install_size = excluded.install_size,
            clean = excluded.clean,
            parsed_at = excluded.parsed_at`,
		sum.PayloadSHA1,
		sum.SourcePath,
		sum.GUID,
		sum.AppName,
		sum.BuildVersion,
		sum.FileCount,
		sum.ChunkCount,
		int64(sum.DownloadSize),
		int64(sum.InstallSize),
		sum.Clean,
		sum.ParsedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("store summary: %w", err)
	}
	return nil
}

// List returns all summaries, newest first.
func (s *Store) List(ctx context.Context) ([]Summary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT payload_sha1, source_path, guid, app_name, build_version,
                file_count, chunk_count, download_size, install_size, clean, parsed_at
         FROM manifest_summaries ORDER BY parsed_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list summaries: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var sum Summary
		var download, install int64
		var parsedAt string
		if err := rows.Scan(
			&sum.PayloadSHA1, &sum.SourcePath, &sum.GUID, &sum.AppName, &sum.BuildVersion,
			&sum.FileCount, &sum.ChunkCount, &download, &install, &sum.Clean, &parsedAt,
		); err != nil {
			return nil, fmt.Errorf("scan summary: %w", err)
		}
		sum.DownloadSize = uint64(download)
		sum.InstallSize = uint64(install)
		if t, parseErr := time.Parse(time.RFC3339Nano, parsedAt); parseErr == nil {
			sum.ParsedAt = t
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}

// Clear removes every cached summary.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM manifest_summaries"); err != nil {
		return fmt.Errorf("clear cache: %w", err)
	}
	return nil
}
