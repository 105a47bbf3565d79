package chat_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/neuropeak/backend/core"
	"github.com/neuropeak/backend/core/chat"
	"github.com/neuropeak/backend/core/user"
	textgensvc "github.com/neuropeak/backend/services/textgen"
	inmemdb "github.com/neuropeak/backend/storage/database/inmem"
)

func setup(t *testing.T) *chat.Service {
	t.Helper()

	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("opening in-mem db: %v", err)
	}
	return chat.NewService(inmemdb.NewChatRepository(db), textgensvc.NewDummyService())
}

func TestService_Send(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()
	usr := user.User{ID: "stu-1", Name: "Jane Mdr", Role: user.RoleStudent}

	t.Run("exchange is persisted", func(t *testing.T) {
		msg, err := svc.Send(ctx, usr, "  What is a closure?  ")
		if err != nil {
			t.Fatalf("Send() error = %v", err)
		}
		assert.Equal(t, usr.ID, msg.UserID)
		assert.Equal(t, "What is a closure?", msg.UserMessage)
		assert.Equal(t, "You said: What is a closure?", msg.BotReply)
		assert.NotEmpty(t, msg.ID)
	})

	t.Run("empty message", func(t *testing.T) {
		_, err := svc.Send(ctx, usr, "   ")
		var vErr *core.ValidationError
		assert.ErrorAs(t, err, &vErr)
	})

	t.Run("generator failure", func(t *testing.T) {
		db, err := inmemdb.Open()
		if err != nil {
			t.Fatalf("opening in-mem db: %v", err)
		}
		generator := textgensvc.NewDummyService()
		generator.Err = errors.New("quota exceeded")
		broken := chat.NewService(inmemdb.NewChatRepository(db), generator)

		_, err = broken.Send(ctx, usr, "hello")
		assert.ErrorIs(t, err, chat.ErrExternalService)

		// a failed exchange is not persisted
		history, err := broken.History(ctx, usr)
		if err != nil {
			t.Fatalf("History() error = %v", err)
		}
		assert.Empty(t, history)
	})
}

func TestService_History(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()
	jane := user.User{ID: "stu-1", Name: "Jane Mdr", Role: user.RoleStudent}
	john := user.User{ID: "stu-2", Name: "John Lol", Role: user.RoleStudent}

	for _, m := range []string{"first", "second", "third"} {
		if _, err := svc.Send(ctx, jane, m); err != nil {
			t.Fatalf("Send(%q) error = %v", m, err)
		}
	}
	if _, err := svc.Send(ctx, john, "unrelated"); err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	history, err := svc.History(ctx, jane)
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if assert.Len(t, history, 3) {
		assert.Equal(t, "first", history[0].UserMessage)
		assert.Equal(t, "third", history[2].UserMessage)
	}
}
