package handler

import (
	"net/http"

	"github.com/123Jonas/aluguel-imoveis-backend/internal/service"
	"github.com/labstack/echo/v4"
)

type ConversationHandler struct {
	svc service.ConversationService
}

func NewConversationHandler(svc service.ConversationService) *ConversationHandler {
	return &ConversationHandler{svc: svc}
}

// List returns the caller's conversation summaries, most recent activity
// first. Missing listing titles are already degraded to placeholders by the
// aggregator; this never fails on a collaborator outage.
func (h *ConversationHandler) List(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	summaries, err := h.svc.ConversationsFor(c.Request().Context(), uid)
	if err != nil {
		status, code := errorStatus(err)
		return c.JSON(status, NewErrorResponse(code, "failed to fetch conversations"))
	}
	return c.JSON(http.StatusOK, summaries)
}
