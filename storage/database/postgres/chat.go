package pgrepos

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/neuropeak/backend/core/chat"
)

type chatMessageRow struct {
	ID          string    `db:"id"`
	UserID      string    `db:"user_id"`
	UserMessage string    `db:"user_message"`
	BotReply    string    `db:"bot_reply"`
	CreatedAt   time.Time `db:"created_at"`
}

func (r chatMessageRow) toDomain() chat.Message {
	return chat.Message(r)
}

type chatRepository struct {
	db *sqlx.DB
}

var _ chat.Repository = (*chatRepository)(nil)

func NewChatRepository(db *sqlx.DB) *chatRepository {
	return &chatRepository{db: db}
}

func (repo *chatRepository) CreateMessage(ctx context.Context, msg chat.Message) (chat.Message, error) {
	msg.ID = uuid.New().String()
	query, args, err := psql.Insert("chat_message").
		Columns("id", "user_id", "user_message", "bot_reply", "created_at").
		Values(msg.ID, msg.UserID, msg.UserMessage, msg.BotReply, msg.CreatedAt).
		ToSql()
	if err != nil {
		return chat.Message{}, errors.Wrap(err, "building query")
	}
	if _, err = repo.db.ExecContext(ctx, query, args...); err != nil {
		return chat.Message{}, errors.Wrap(err, "inserting chat message")
	}
	return msg, nil
}

func (repo *chatRepository) QueryMessagesByUserID(ctx context.Context, userID string) ([]chat.Message, error) {
	query, args, err := psql.Select("id", "user_id", "user_message", "bot_reply", "created_at").
		From("chat_message").Where(sq.Eq{"user_id": userID}).OrderBy("created_at").ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building query")
	}

	var rows []chatMessageRow
	if err = repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying chat messages")
	}
	msgs := make([]chat.Message, 0, len(rows))
	for _, row := range rows {
		msgs = append(msgs, row.toDomain())
	}
	return msgs, nil
}
