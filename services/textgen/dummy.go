package textgensvc

import (
	"context"

	"github.com/neuropeak/backend/core/chat"
)

// dummyService echoes a canned reply; it stands in for the real generator in
// development and tests.
type dummyService struct {
	Err error
}

var _ chat.TextGenerator = (*dummyService)(nil)

func NewDummyService() *dummyService { return &dummyService{} }

func (svc *dummyService) Generate(ctx context.Context, prompt string) (string, error) {
	if svc.Err != nil {
		return "", svc.Err
	}
	return "You said: " + prompt, nil
}
