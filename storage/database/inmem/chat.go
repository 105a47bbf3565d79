package inmemdb

import (
	"context"

	"github.com/google/uuid"

	"github.com/neuropeak/backend/core/chat"
)

type chatRepository struct {
	db *DB
}

var _ chat.Repository = (*chatRepository)(nil)

func NewChatRepository(db *DB) *chatRepository {
	return &chatRepository{db: db}
}

func (repo *chatRepository) CreateMessage(ctx context.Context, msg chat.Message) (chat.Message, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	msg.ID = uuid.New().String()
	repo.db.messages = append(repo.db.messages, msg)
	return msg, nil
}

func (repo *chatRepository) QueryMessagesByUserID(ctx context.Context, userID string) ([]chat.Message, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	messages := make([]chat.Message, 0)
	for _, msg := range repo.db.messages {
		if msg.UserID == userID {
			messages = append(messages, msg)
		}
	}
	return messages, nil
}
