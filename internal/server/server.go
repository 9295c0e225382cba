package server

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/123Jonas/aluguel-imoveis-backend/internal/config"
	"github.com/123Jonas/aluguel-imoveis-backend/internal/handler"
	"github.com/123Jonas/aluguel-imoveis-backend/internal/hub"
	"github.com/123Jonas/aluguel-imoveis-backend/internal/identity"
	appmw "github.com/123Jonas/aluguel-imoveis-backend/internal/middleware"
	"github.com/123Jonas/aluguel-imoveis-backend/internal/repository"
	"github.com/123Jonas/aluguel-imoveis-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"gorm.io/gorm"
)

type Server struct {
	e           *echo.Echo
	msgRepo     repository.MessageRepository
	listingRepo repository.ListingRepository
	notifRepo   repository.NotificationRepository
	sha         string
	build       string
}

func New(db *gorm.DB, cfg *config.Config, sha, buildTime string) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.Logger())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		AllowOriginFunc:  allowOrigin(cfg.AllowedOrigins),
	}))

	idClient, err := identity.NewFirebaseClient(context.Background(), cfg.FirebaseProjectID)
	if err != nil {
		e.Logger.Fatalf("failed to init firebase auth: %v", err)
	}

	msgRepo := repository.NewMessageRepository(db)
	listingRepo := repository.NewListingRepository(db)
	notifRepo := repository.NewNotificationRepository(db)

	broadcastHub := hub.New()
	notifSvc := service.NewNotificationService(notifRepo, listingRepo)
	msgSvc := service.NewMessageService(msgRepo, listingRepo, idClient, broadcastHub, notifSvc)
	broadcastHub.SetAuthorizer(msgSvc)
	convSvc := service.NewConversationService(msgRepo, listingRepo, idClient)
	listingSvc := service.NewListingService(listingRepo)

	msgHandler := handler.NewMessageHandler(msgSvc)
	convHandler := handler.NewConversationHandler(convSvc)
	listingHandler := handler.NewListingHandler(listingSvc)
	notifHandler := handler.NewNotificationHandler(notifSvc)
	wsHandler := handler.NewWSHandler(idClient, broadcastHub, cfg.AllowedOrigins)

	authMw := appmw.NewAuthMiddleware(idClient)

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"ok":         "true",
			"git_sha":    sha,
			"build_time": buildTime,
		})
	})

	e.GET("/ws", wsHandler.Serve)

	api := e.Group("/api")
	api.POST("/messages", msgHandler.Send, authMw.RequireAuth)
	api.GET("/conversations", convHandler.List, authMw.RequireAuth)
	api.GET("/conversations/:key/messages", msgHandler.History, authMw.RequireAuth)
	api.POST("/conversations/:key/read", msgHandler.MarkRead, authMw.RequireAuth)
	api.GET("/me/unread-count", msgHandler.UnreadCount, authMw.RequireAuth)
	api.GET("/me/notifications", notifHandler.List, authMw.RequireAuth)
	api.GET("/listings/:id", listingHandler.Get)

	return &Server{
		e:           e,
		msgRepo:     msgRepo,
		listingRepo: listingRepo,
		notifRepo:   notifRepo,
		sha:         sha,
		build:       buildTime,
	}
}

func allowOrigin(allowed []string) func(string) (bool, error) {
	return func(origin string) (bool, error) {
		low := strings.ToLower(origin)
		if strings.HasPrefix(low, "http://localhost:") || strings.HasPrefix(low, "http://127.0.0.1:") ||
			strings.HasPrefix(low, "https://localhost:") || strings.HasPrefix(low, "https://127.0.0.1:") {
			return true, nil
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false, nil
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return false, nil
		}
		for _, a := range allowed {
			if strings.EqualFold(a, origin) {
				return true, nil
			}
		}
		return false, nil
	}
}

func (s *Server) Start(addr string) error {
	return s.e.Start(addr)
}

// SetDB injects the connection once it is up; the server can serve /healthz
// and refuse data requests with ErrDBNotReady until then.
func (s *Server) SetDB(db *gorm.DB) {
	s.msgRepo.SetDB(db)
	s.listingRepo.SetDB(db)
	s.notifRepo.SetDB(db)
}
