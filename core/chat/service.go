package chat

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/neuropeak/backend/core"
	"github.com/neuropeak/backend/core/user"
)

var (
	// errors
	ErrEmptyMessage    = errors.New("please provide a message")
	ErrExternalService = errors.New("text generation service failed")
)

type (
	// TextGenerator is the synchronous call/response contract with the
	// external text-generation service. Retries and timeouts, if desired,
	// belong to the caller of this package's consumers.
	TextGenerator interface {
		Generate(ctx context.Context, prompt string) (string, error)
	}

	Repository interface {
		CreateMessage(ctx context.Context, msg Message) (Message, error)
		QueryMessagesByUserID(ctx context.Context, userID string) ([]Message, error)
	}

	Service struct {
		repo      Repository
		generator TextGenerator
	}
)

func NewService(repo Repository, generator TextGenerator) *Service {
	return &Service{repo: repo, generator: generator}
}

// Send forwards the user's message to the text-generation service and
// persists the exchange. Generator failures surface as ErrExternalService.
func (svc *Service) Send(ctx context.Context, usr user.User, message string) (Message, error) {
	message = core.CleanString(message)
	if message == "" {
		return Message{}, core.NewValidationError(ErrEmptyMessage,
			core.FieldError{Field: "message", Error: ErrEmptyMessage.Error()})
	}

	reply, err := svc.generator.Generate(ctx, message)
	if err != nil {
		return Message{}, errors.Wrap(ErrExternalService, err.Error())
	}

	msg := Message{
		UserID:      usr.ID,
		UserMessage: message,
		BotReply:    reply,
		CreatedAt:   time.Now().UTC(),
	}
	return svc.repo.CreateMessage(ctx, msg)
}

// History returns the user's transcript in chronological order.
func (svc *Service) History(ctx context.Context, usr user.User) ([]Message, error) {
	return svc.repo.QueryMessagesByUserID(ctx, usr.ID)
}
