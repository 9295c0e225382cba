package handler

import (
	"net/http"
	"strconv"

	"github.com/123Jonas/aluguel-imoveis-backend/internal/model"
	"github.com/123Jonas/aluguel-imoveis-backend/internal/service"
	"github.com/labstack/echo/v4"
)

type NotificationHandler struct {
	svc service.NotificationService
}

func NewNotificationHandler(svc service.NotificationService) *NotificationHandler {
	return &NotificationHandler{svc: svc}
}

type NotificationListResponse struct {
	Notifications []model.Notification `json:"notifications"`
	UnreadCount   int64                `json:"unreadCount"`
}

func (h *NotificationHandler) List(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	unreadOnly := c.QueryParam("unread") == "true"
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	list, cnt, err := h.svc.List(c.Request().Context(), uid, unreadOnly, limit)
	if err != nil {
		status, code := errorStatus(err)
		return c.JSON(status, NewErrorResponse(code, "failed to fetch notifications"))
	}
	if list == nil {
		list = []model.Notification{}
	}
	return c.JSON(http.StatusOK, NotificationListResponse{Notifications: list, UnreadCount: cnt})
}
