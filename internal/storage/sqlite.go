package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/hyperjump/seisho/internal/models"
)

// SQLiteStorage implements Storage using SQLite.
type SQLiteStorage struct {
	db   *sql.DB
	path string
}

var _ Storage = (*SQLiteStorage)(nil)

// NewSQLiteStorage opens or creates a SQLite database at dbPath and initializes the schema.
// Parent directories are created if they do not exist.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		// Every connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStorage{db: db, path: dbPath}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS volumes (
		name TEXT PRIMARY KEY,
		position INTEGER NOT NULL,
		digest TEXT,
		imported_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS verses (
		volume TEXT NOT NULL,
		book TEXT NOT NULL,
		book_position INTEGER NOT NULL,
		chapter INTEGER NOT NULL,
		chapter_position INTEGER NOT NULL,
		verse INTEGER NOT NULL,
		verse_position INTEGER NOT NULL,
		text TEXT NOT NULL,
		FOREIGN KEY (volume) REFERENCES volumes(name) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_verses_order
		ON verses(volume, book_position, chapter_position, verse_position);
	`
	_, err := db.Exec(schema)
	return err
}

// SaveVolume replaces the stored copy of vol in a single transaction.
func (s *SQLiteStorage) SaveVolume(ctx context.Context, vol *models.Volume, position int) error {
	if vol == nil || vol.Name == "" {
		return errors.New("volume name is required")
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM verses WHERE volume = ?`, vol.Name); err != nil {
		return fmt.Errorf("failed to clear verses: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO volumes (name, position, digest, imported_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET position = excluded.position,
		   digest = excluded.digest, imported_at = excluded.imported_at`,
		vol.Name, position, vol.Digest, time.Now().UTC(),
	); err != nil {
		return fmt.Errorf("failed to save volume: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO verses (volume, book, book_position, chapter, chapter_position, verse, verse_position, text)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for bi, book := range vol.Books {
		for ci, ch := range book.Chapters {
			for vi, v := range ch.Verses {
				if _, err := stmt.ExecContext(ctx, vol.Name, book.Name, bi, ch.Number, ci, v.Number, vi, v.Text); err != nil {
					return fmt.Errorf("failed to insert %s %d:%d: %w", book.Name, ch.Number, v.Number, err)
				}
			}
		}
	}
	return tx.Commit()
}

// Load rebuilds the named volume in stored order. It implements corpus.Loader.
// Books and chapters without verses are not stored and so are not returned.
func (s *SQLiteStorage) Load(ctx context.Context, name string) (*models.Volume, error) {
	vol := &models.Volume{Name: name}
	var digest sql.NullString
	err := s.db.QueryRowContext(ctx, `SELECT digest FROM volumes WHERE name = ?`, name).Scan(&digest)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", ErrVolumeNotFound, name)
	}
	if err != nil {
		return nil, err
	}
	vol.Digest = digest.String

	rows, err := s.db.QueryContext(ctx,
		`SELECT book, book_position, chapter, chapter_position, verse, text
		 FROM verses WHERE volume = ?
		 ORDER BY book_position, chapter_position, verse_position`,
		name,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lastBook, lastChapter := -1, -1
	for rows.Next() {
		var (
			bookName          string
			bookPos, chapPos  int
			chapter, verseNum int
			text              string
		)
		if err := rows.Scan(&bookName, &bookPos, &chapter, &chapPos, &verseNum, &text); err != nil {
			return nil, err
		}
		if bookPos != lastBook {
			vol.Books = append(vol.Books, models.Book{Name: bookName})
			lastBook, lastChapter = bookPos, -1
		}
		book := &vol.Books[len(vol.Books)-1]
		if chapPos != lastChapter {
			book.Chapters = append(book.Chapters, models.Chapter{Number: chapter})
			lastChapter = chapPos
		}
		ch := &book.Chapters[len(book.Chapters)-1]
		ch.Verses = append(ch.Verses, models.Verse{Number: verseNum, Text: text})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return vol, nil
}

// ListVolumes returns imported volumes ordered by position.
func (s *SQLiteStorage) ListVolumes(ctx context.Context) ([]VolumeInfo, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT v.name, v.position, COALESCE(v.digest, ''), v.imported_at,
		        (SELECT COUNT(*) FROM verses WHERE volume = v.name)
		 FROM volumes v ORDER BY v.position, v.name`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var infos []VolumeInfo
	for rows.Next() {
		var info VolumeInfo
		if err := rows.Scan(&info.Name, &info.Position, &info.Digest, &info.ImportedAt, &info.Verses); err != nil {
			return nil, err
		}
		infos = append(infos, info)
	}
	return infos, rows.Err()
}

// DeleteVolume removes a volume and its verses.
func (s *SQLiteStorage) DeleteVolume(ctx context.Context, name string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM verses WHERE volume = ?`, name); err != nil {
		return err
	}
	result, err := tx.ExecContext(ctx, `DELETE FROM volumes WHERE name = ?`, name)
	if err != nil {
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrVolumeNotFound, name)
	}
	return tx.Commit()
}

// CountVolumes returns the number of imported volumes.
func (s *SQLiteStorage) CountVolumes(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM volumes`).Scan(&count)
	return count, err
}

// CountVerses returns the total number of stored verses.
func (s *SQLiteStorage) CountVerses(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM verses`).Scan(&count)
	return count, err
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
