package api

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kekishida/ai-chat/internal/app"
	iauth "github.com/kekishida/ai-chat/internal/auth"
	"github.com/kekishida/ai-chat/internal/handlers"
	"github.com/kekishida/ai-chat/internal/middleware"
	"github.com/kekishida/ai-chat/internal/services"
)

// Services bundles the domain services the router depends on.
type Services struct {
	Users         *services.UserService
	Invites       *services.InviteService
	Conversations *services.ConversationService
	Chat          *services.ChatService
}

// NewRouter builds the Gin engine, wires middleware and registers all routes.
func NewRouter(cfg *app.Config, jwt *iauth.JWTService, sessions *iauth.SessionService, svc Services) (*gin.Engine, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must be provided")
	}
	if jwt == nil {
		return nil, fmt.Errorf("jwt service must be provided")
	}
	if sessions == nil {
		return nil, fmt.Errorf("session service must be provided")
	}
	if svc.Users == nil || svc.Invites == nil || svc.Conversations == nil || svc.Chat == nil {
		return nil, fmt.Errorf("all services must be provided")
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS())

	// Health endpoint (public)
	r.GET("/health", handlers.Health())

	if cfg.Monitoring.Prometheus.Enabled {
		endpoint := cfg.Monitoring.Prometheus.Endpoint
		if endpoint == "" {
			endpoint = "/metrics"
		}
		r.GET(endpoint, gin.WrapH(promhttp.Handler()))
	}

	authHandler := handlers.NewAuthHandler(svc.Users, svc.Invites, sessions)
	inviteHandler := handlers.NewInviteHandler(svc.Invites)
	conversationHandler := handlers.NewConversationHandler(svc.Conversations)
	chatHandler := handlers.NewChatHandler(svc.Chat)

	// Public auth routes
	auth := r.Group("/api/auth")
	{
		auth.POST("/signup", authHandler.Signup)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
		auth.POST("/validate-invite", inviteHandler.Validate)
	}

	// Protected routes
	api := r.Group("/api")
	api.Use(middleware.Auth(jwt))

	api.GET("/auth/me", authHandler.Me)
	api.POST("/auth/logout", authHandler.Logout)

	api.POST("/chat", chatHandler.Stream)

	conversations := api.Group("/conversations")
	{
		conversations.GET("", conversationHandler.List)
		conversations.GET("/:id", conversationHandler.Get)
		conversations.GET("/:id/messages", conversationHandler.Messages)
		conversations.DELETE("/:id", conversationHandler.Delete)
	}

	inviteCodes := api.Group("/invite-codes")
	{
		inviteCodes.POST("", inviteHandler.Create)
		inviteCodes.GET("", inviteHandler.List)
	}

	r.NoRoute(middleware.NotFoundHandler)

	return r, nil
}
