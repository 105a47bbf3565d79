package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/neuropeak/backend/core/chat"
)

type chatApi struct {
	deps ServerDeps
}

func registerChatAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := chatApi{deps: deps}

	cg := g.Group("/chat", jwt)
	cg.POST("", api.send)
	cg.GET("", api.history)
}

func (api *chatApi) send(ctx echo.Context) error {
	var data ChatRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ChatRequest")
	}

	actor, err := getContextUser(ctx, api.deps.UserSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	msg, err := api.deps.ChatSvc.Send(ctx.Request().Context(), actor, data.Message)
	if err != nil {
		return errors.Wrap(err, "sending chat message")
	}
	return ctx.JSON(http.StatusOK, msg)
}

func (api *chatApi) history(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.deps.UserSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	msgs, err := api.deps.ChatSvc.History(ctx.Request().Context(), actor)
	if err != nil {
		return errors.Wrap(err, "querying chat history")
	}
	if msgs == nil {
		msgs = []chat.Message{}
	}
	return ctx.JSON(http.StatusOK, msgs)
}

type ChatRequest struct {
	Message string `json:"message"`
}
