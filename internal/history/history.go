// Package history persists concluded hands to sqlite. Persistence is
// best-effort: a write failure is logged by the caller and never affects
// gameplay.
package history

import (
	"database/sql"
	"encoding/json"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Store records rooms and hand summaries.
type Store struct {
	db *sql.DB
}

// HandRecord is one persisted hand.
type HandRecord struct {
	ID        int64
	RoomCode  string
	StartedAt time.Time
	EndedAt   time.Time
	Summary   json.RawMessage
}

// Open opens (creating if necessary) the history database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if err := createTables(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func createTables(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS rooms (
			code TEXT PRIMARY KEY,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS hands (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			room_code TEXT NOT NULL,
			started_at TIMESTAMP NOT NULL,
			ended_at TIMESTAMP NOT NULL,
			summary TEXT,
			FOREIGN KEY (room_code) REFERENCES rooms(code)
		)
	`)
	return err
}

// EnsureRoom records a room's existence.
func (s *Store) EnsureRoom(code string) error {
	_, err := s.db.Exec(`
		INSERT INTO rooms (code) VALUES (?)
		ON CONFLICT(code) DO NOTHING
	`, code)
	return err
}

// RecordHand writes one concluded hand. The summary is marshalled to JSON.
func (s *Store) RecordHand(roomCode string, startedAt, endedAt time.Time, summary any) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`
		INSERT INTO hands (room_code, started_at, ended_at, summary)
		VALUES (?, ?, ?, ?)
	`, roomCode, startedAt, endedAt, string(data))
	return err
}

// RecentHands returns up to limit hands for a room, newest first.
func (s *Store) RecentHands(roomCode string, limit int) ([]HandRecord, error) {
	rows, err := s.db.Query(`
		SELECT id, room_code, started_at, ended_at, summary
		FROM hands WHERE room_code = ?
		ORDER BY id DESC LIMIT ?
	`, roomCode, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []HandRecord
	for rows.Next() {
		var rec HandRecord
		var summary string
		if err := rows.Scan(&rec.ID, &rec.RoomCode, &rec.StartedAt, &rec.EndedAt, &summary); err != nil {
			return nil, err
		}
		rec.Summary = json.RawMessage(summary)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
