package handler

import (
	"net/http"

	"github.com/123Jonas/aluguel-imoveis-backend/internal/model"
	"github.com/123Jonas/aluguel-imoveis-backend/internal/service"
	"github.com/labstack/echo/v4"
)

type MessageHandler struct {
	svc service.MessageService
}

func NewMessageHandler(svc service.MessageService) *MessageHandler {
	return &MessageHandler{svc: svc}
}

type SendMessageRequest struct {
	ListingID   uint64 `json:"listingId"`
	ReceiverUID string `json:"receiverUid"`
	Body        string `json:"body"`
}

// Send persists a message. The conversation key is derived server-side from
// the authenticated sender, the receiver and the listing; a client-supplied
// key is never accepted for writes.
func (h *MessageHandler) Send(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	var req SendMessageRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	msg, err := h.svc.Send(c.Request().Context(), uid, req.ReceiverUID, req.ListingID, req.Body)
	if err != nil {
		status, code := errorStatus(err)
		return c.JSON(status, NewErrorResponse(code, err.Error()))
	}
	return c.JSON(http.StatusCreated, msg)
}

func (h *MessageHandler) History(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	key := c.Param("key")
	msgs, err := h.svc.History(c.Request().Context(), key, uid)
	if err != nil {
		status, code := errorStatus(err)
		return c.JSON(status, NewErrorResponse(code, err.Error()))
	}
	if msgs == nil {
		msgs = []model.Message{}
	}
	return c.JSON(http.StatusOK, msgs)
}

func (h *MessageHandler) MarkRead(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	key := c.Param("key")
	updated, err := h.svc.MarkConversationRead(c.Request().Context(), key, uid)
	if err != nil {
		status, code := errorStatus(err)
		return c.JSON(status, NewErrorResponse(code, err.Error()))
	}
	return c.JSON(http.StatusOK, map[string]int64{"updated": updated})
}

func (h *MessageHandler) UnreadCount(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	count, err := h.svc.UnreadCount(c.Request().Context(), uid)
	if err != nil {
		status, code := errorStatus(err)
		return c.JSON(status, NewErrorResponse(code, err.Error()))
	}
	return c.JSON(http.StatusOK, map[string]int64{"count": count})
}
