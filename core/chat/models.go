package chat

import "time"

// Message is one exchange of the chatbot transcript: what the user said and
// what the bot replied.
type Message struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	UserMessage string    `json:"user_message"`
	BotReply    string    `json:"bot_reply"`
	CreatedAt   time.Time `json:"created_at"` // UTC
}
