package chat

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dharitri-health/portal-cli/internal/dbx"
)

// maxStoredMessages bounds the history table. Add prunes the oldest rows
// past the cap in the same transaction as the insert, so the table can
// never be observed over the cap.
const maxStoredMessages = 200

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Add(ctx context.Context, m *Message) error {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}

	err := dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		query := `INSERT INTO chat_messages (kind, question, answer, created_at) VALUES (?, ?, ?, ?)`
		res, err := tx.ExecContext(ctx, query, m.Kind, m.Question, m.Answer, m.CreatedAt)
		if err != nil {
			return err
		}
		if id, err := res.LastInsertId(); err == nil {
			m.ID = id
		}

		prune := `DELETE FROM chat_messages WHERE id NOT IN
			(SELECT id FROM chat_messages ORDER BY id DESC LIMIT ?)`
		_, err = tx.ExecContext(ctx, prune, maxStoredMessages)
		return err
	})
	if err != nil {
		return fmt.Errorf("saving chat message: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Recent(ctx context.Context, limit int) ([]Message, error) {
	query := `SELECT id, kind, question, answer, created_at
		FROM chat_messages ORDER BY id DESC LIMIT ?`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("selecting chat messages: %w", err)
	}
	defer rows.Close()

	var result []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.Kind, &m.Question, &m.Answer, &m.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM chat_messages`); err != nil {
		return fmt.Errorf("clearing chat messages: %w", err)
	}
	return nil
}
