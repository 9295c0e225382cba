package handler

import (
	"log"
	"net/http"
	"strings"

	"github.com/123Jonas/aluguel-imoveis-backend/internal/hub"
	"github.com/123Jonas/aluguel-imoveis-backend/internal/identity"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

type WSHandler struct {
	verifier identity.Verifier
	hub      *hub.Hub
	upgrader websocket.Upgrader
}

func NewWSHandler(verifier identity.Verifier, h *hub.Hub, allowedOrigins []string) *WSHandler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		allowed[strings.ToLower(origin)] = true
	}
	return &WSHandler{
		verifier: verifier,
		hub:      h,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := strings.ToLower(r.Header.Get("Origin"))
				return origin == "" || allowed[origin]
			},
		},
	}
}

// Serve handles GET /ws. The credential is verified before the upgrade, so
// an unauthenticated connection never reaches a state where room operations
// are possible.
func (h *WSHandler) Serve(c echo.Context) error {
	token := bearerToken(c.Request())
	if token == "" {
		token = c.QueryParam("token")
	}
	if token == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing credential"))
	}
	uid, err := h.verifier.Verify(c.Request().Context(), token)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "invalid credential"))
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		log.Printf("websocket upgrade failed for %s: %v", uid, err)
		return nil
	}

	client := h.hub.NewClient(uid, conn)
	go client.WritePump()
	client.ReadPump(c.Request().Context())
	return nil
}

func bearerToken(r *http.Request) string {
	authz := r.Header.Get("Authorization")
	if strings.HasPrefix(authz, "Bearer ") {
		return strings.TrimPrefix(authz, "Bearer ")
	}
	return ""
}
