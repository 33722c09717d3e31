package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const schemaVersion = 1

// HistoryEntry represents a historyEntry.
type HistoryEntry struct {
	Track    string `json:"track"`
	PlayedAt string `json:"played_at"`
}

// Store persists playlists and play history in sqlite.
type Store struct {
	db *sql.DB
}

// Open opens (and migrates) the store at dbPath, creating parent directories
// as needed.
func Open(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db directory %s: %w", dir, err)
		}
	}
	return open(dbPath)
}

// OpenInMemory opens a throwaway store, used by tests and the REPL-only mode.
func OpenInMemory() (*Store, error) {
	return open(":memory:")
}

func open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dsn, err)
	}
	// modernc sqlite serializes access per connection; one is enough here
	// and sidesteps table locking between them.
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("storage migration failed: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	var currentVersion int
	if err := s.db.QueryRow("PRAGMA user_version").Scan(&currentVersion); err != nil {
		return err
	}
	if currentVersion >= schemaVersion {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	schema := `
	CREATE TABLE IF NOT EXISTS playlists (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL UNIQUE
	);

	CREATE TABLE IF NOT EXISTS playlist_tracks (
		id INTEGER PRIMARY KEY,
		playlist_id INTEGER NOT NULL,
		track_path TEXT NOT NULL,
		position INTEGER NOT NULL,
		FOREIGN KEY (playlist_id) REFERENCES playlists(id)
	);
	CREATE INDEX IF NOT EXISTS idx_playlist_tracks_playlist ON playlist_tracks(playlist_id, position);

	CREATE TABLE IF NOT EXISTS play_history (
		id INTEGER PRIMARY KEY,
		track_path TEXT NOT NULL,
		played_at TEXT NOT NULL
	);
	`

	if _, err := tx.Exec(schema); err != nil {
		return err
	}
	if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", schemaVersion)); err != nil {
		return err
	}
	return tx.Commit()
}

// Close executes the close method.
func (s *Store) Close() error {
	return s.db.Close()
}

// CreatePlaylist executes the createPlaylist method.
func (s *Store) CreatePlaylist(name string) error {
	_, err := s.db.Exec("INSERT OR IGNORE INTO playlists (name) VALUES (?)", name)
	return err
}

// DeletePlaylist removes a playlist and its tracks. Deleting a playlist that
// does not exist is a no-op.
func (s *Store) DeletePlaylist(name string) error {
	id, ok, err := s.playlistID(name)
	if err != nil || !ok {
		return err
	}
	if _, err := s.db.Exec("DELETE FROM playlist_tracks WHERE playlist_id = ?", id); err != nil {
		return err
	}
	_, err = s.db.Exec("DELETE FROM playlists WHERE id = ?", id)
	return err
}

// AddTrack appends a track to a playlist, creating the playlist on demand.
func (s *Store) AddTrack(playlist string, track string) error {
	if err := s.CreatePlaylist(playlist); err != nil {
		return err
	}
	id, ok, err := s.playlistID(playlist)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("playlist %s not found after create", playlist)
	}

	var position int64
	err = s.db.QueryRow(
		"SELECT COALESCE(MAX(position), -1) + 1 FROM playlist_tracks WHERE playlist_id = ?", id,
	).Scan(&position)
	if err != nil {
		position = 0
	}

	_, err = s.db.Exec(
		"INSERT INTO playlist_tracks (playlist_id, track_path, position) VALUES (?, ?, ?)",
		id, track, position,
	)
	return err
}

// RemoveTrack executes the removeTrack method.
func (s *Store) RemoveTrack(playlist string, track string) error {
	id, ok, err := s.playlistID(playlist)
	if err != nil || !ok {
		return err
	}
	_, err = s.db.Exec(
		"DELETE FROM playlist_tracks WHERE playlist_id = ? AND track_path = ?", id, track,
	)
	return err
}

// PlaylistTracks returns the playlist's tracks in position order. An unknown
// playlist yields an empty list.
func (s *Store) PlaylistTracks(playlist string) ([]string, error) {
	id, ok, err := s.playlistID(playlist)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []string{}, nil
	}

	rows, err := s.db.Query(
		"SELECT track_path FROM playlist_tracks WHERE playlist_id = ? ORDER BY position", id,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tracks := []string{}
	for rows.Next() {
		var track string
		if err := rows.Scan(&track); err != nil {
			return nil, err
		}
		tracks = append(tracks, track)
	}
	return tracks, rows.Err()
}

// Playlists returns all playlist names, sorted.
func (s *Store) Playlists() ([]string, error) {
	rows, err := s.db.Query("SELECT name FROM playlists ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// LogPlayback executes the logPlayback method.
func (s *Store) LogPlayback(track string) error {
	_, err := s.db.Exec(
		"INSERT INTO play_history (track_path, played_at) VALUES (?, ?)",
		track, time.Now().Format(time.RFC3339),
	)
	return err
}

// PlayHistory returns the most recent entries, newest first.
func (s *Store) PlayHistory(limit int) ([]HistoryEntry, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.Query(
		"SELECT track_path, played_at FROM play_history ORDER BY id DESC LIMIT ?", limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	history := []HistoryEntry{}
	for rows.Next() {
		var entry HistoryEntry
		if err := rows.Scan(&entry.Track, &entry.PlayedAt); err != nil {
			return nil, err
		}
		history = append(history, entry)
	}
	return history, rows.Err()
}

func (s *Store) playlistID(name string) (int64, bool, error) {
	var id int64
	err := s.db.QueryRow("SELECT id FROM playlists WHERE name = ?", name).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return id, true, nil
}
