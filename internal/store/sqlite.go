package store

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore keeps the same logical contract as ChatStore in an embedded
// database: one row per (kind, channel), owner recorded alongside. Useful for
// local runs and as a durable alternative to chat-message storage.
type SQLiteStore struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteStore opens (or creates) the database and runs migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite store opened: %s", dbPath)
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS state_blobs (
		kind       TEXT NOT NULL,
		channel_id TEXT NOT NULL,
		owner_id   TEXT NOT NULL,
		data       BLOB NOT NULL,
		updated_at INTEGER NOT NULL,
		PRIMARY KEY (kind, channel_id)
	)`)
	return err
}

func (s *SQLiteStore) Load(kind Kind, scope Scope) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var data []byte
	err := s.db.QueryRow(
		`SELECT data FROM state_blobs WHERE kind = ? AND channel_id = ?`,
		string(kind), scope.ChannelID,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load %s for channel %s: %w", kind, scope.ChannelID, err)
	}
	return data, true, nil
}

func (s *SQLiteStore) Save(kind Kind, scope Scope, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(
		`INSERT INTO state_blobs (kind, channel_id, owner_id, data, updated_at)
		 VALUES (?,?,?,?,?)
		 ON CONFLICT (kind, channel_id) DO UPDATE SET
		   owner_id = excluded.owner_id,
		   data = excluded.data,
		   updated_at = excluded.updated_at`,
		string(kind), scope.ChannelID, scope.OwnerID, data, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("save %s for channel %s: %w", kind, scope.ChannelID, err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	log.Println("[INFO] closing sqlite store")
	return s.db.Close()
}
