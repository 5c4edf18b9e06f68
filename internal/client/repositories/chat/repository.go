// Package chat persists the diet/chatbot conversation history in the local
// SQLite database so past consultations can be replayed offline.
package chat

import (
	"context"
	"time"
)

// Message kinds.
const (
	KindDiet    = "diet"
	KindChatbot = "chatbot"
)

type Message struct {
	ID        int64
	Kind      string
	Question  string
	Answer    string
	CreatedAt time.Time
}

type Repository interface {
	// Add stores the exchange. The history is bounded; the oldest rows are
	// pruned once the cap is exceeded.
	Add(ctx context.Context, m *Message) error
	// Recent returns up to limit messages, newest first.
	Recent(ctx context.Context, limit int) ([]Message, error)
	Clear(ctx context.Context) error
}
