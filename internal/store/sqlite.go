package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteStore is an append-only audit log of instruction revisions and chat
// exchanges. It never feeds back into the in-memory instruction store, which
// always boots from the default phrase.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dataSourceName string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err = db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err = store.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	schema := `
    CREATE TABLE IF NOT EXISTS instruction_revisions (
        id TEXT PRIMARY KEY, -- UUID
        instructions TEXT NOT NULL,
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP
    );

    CREATE TABLE IF NOT EXISTS chat_log (
        id TEXT PRIMARY KEY, -- UUID
        message TEXT NOT NULL,
        response TEXT NOT NULL,
        model TEXT NOT NULL,
        fallback BOOLEAN DEFAULT FALSE,
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP
    );
    `
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) CreateInstructionRevision(instructions string) (*InstructionRevision, error) {
	rev := &InstructionRevision{
		ID:           uuid.NewString(),
		Instructions: instructions,
		CreatedAt:    time.Now(),
	}

	stmt, err := s.db.Prepare("INSERT INTO instruction_revisions (id, instructions, created_at) VALUES (?, ?, ?)")
	if err != nil {
		return nil, fmt.Errorf("failed to prepare revision insert: %w", err)
	}
	defer stmt.Close()

	if _, err = stmt.Exec(rev.ID, rev.Instructions, rev.CreatedAt); err != nil {
		return nil, fmt.Errorf("failed to execute revision insert: %w", err)
	}
	return rev, nil
}

func (s *SQLiteStore) ListInstructionRevisions(limit int) ([]InstructionRevision, error) {
	rows, err := s.db.Query("SELECT id, instructions, created_at FROM instruction_revisions ORDER BY created_at DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query instruction revisions: %w", err)
	}
	defer rows.Close()

	var revisions []InstructionRevision
	for rows.Next() {
		var rev InstructionRevision
		if err := rows.Scan(&rev.ID, &rev.Instructions, &rev.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan revision row: %w", err)
		}
		revisions = append(revisions, rev)
	}
	return revisions, nil
}

func (s *SQLiteStore) LogChat(exchange *ChatExchange) error {
	exchange.ID = uuid.NewString()
	exchange.CreatedAt = time.Now()

	stmt, err := s.db.Prepare("INSERT INTO chat_log (id, message, response, model, fallback, created_at) VALUES (?, ?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare chat_log insert: %w", err)
	}
	defer stmt.Close()

	if _, err = stmt.Exec(exchange.ID, exchange.Message, exchange.Response, exchange.Model, exchange.Fallback, exchange.CreatedAt); err != nil {
		return fmt.Errorf("failed to execute chat_log insert: %w", err)
	}
	return nil
}

func (s *SQLiteStore) RecentExchanges(limit int) ([]ChatExchange, error) {
	rows, err := s.db.Query("SELECT id, message, response, model, fallback, created_at FROM chat_log ORDER BY created_at DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query chat_log: %w", err)
	}
	defer rows.Close()

	var exchanges []ChatExchange
	for rows.Next() {
		var ex ChatExchange
		if err := rows.Scan(&ex.ID, &ex.Message, &ex.Response, &ex.Model, &ex.Fallback, &ex.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan chat_log row: %w", err)
		}
		exchanges = append(exchanges, ex)
	}
	return exchanges, nil
}
