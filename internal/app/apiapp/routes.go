package apiapp

import (
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/amora-app/amora/backend/internal/config"
	authsvc "github.com/amora-app/amora/backend/internal/services/auth"
	chatsvc "github.com/amora-app/amora/backend/internal/services/chat"
	matchessvc "github.com/amora-app/amora/backend/internal/services/matches"
	mediasvc "github.com/amora-app/amora/backend/internal/services/media"
	profilesvc "github.com/amora-app/amora/backend/internal/services/profiles"
	swipesvc "github.com/amora-app/amora/backend/internal/services/swipes"
	"github.com/amora-app/amora/backend/internal/transport/http/handlers"
)

type Dependencies struct {
	AuthService    *authsvc.Service
	ProfileService *profilesvc.Service
	SwipeService   *swipesvc.Service
	MatchService   *matchessvc.Service
	ChatService    *chatsvc.Service
	MediaService   *mediasvc.Service
	Logger         *zap.Logger
	Config         config.Config
}

func RegisterRoutes(r chi.Router, deps Dependencies) {
	healthHandler := handlers.NewHealthHandler()
	authHandler := handlers.NewAuthHandler(deps.AuthService)
	profileHandler := handlers.NewProfileHandler(deps.ProfileService, deps.MediaService)
	mediaHandler := handlers.NewMediaHandler(deps.MediaService)
	swipeHandler := handlers.NewSwipeHandler(deps.SwipeService, deps.MediaService, deps.Config.Limits.CandidatePageSize)
	matchesHandler := handlers.NewMatchesHandler(deps.MatchService, deps.MediaService)
	chatHandler := handlers.NewChatHandler(deps.ChatService)
	chatWSHandler := handlers.NewChatWSHandler(deps.ChatService, deps.Logger)
	authMW := AuthMiddleware(deps.AuthService, deps.Logger)

	// The websocket route holds its connection open, so the request timeout
	// covers everything except it.
	timeoutMW := chimiddleware.Timeout(60 * time.Second)

	r.With(timeoutMW).Get("/healthz", healthHandler.Handle)

	r.Route("/v1/auth", func(r chi.Router) {
		r.Use(timeoutMW)
		r.Post("/login", authHandler.Login)
		r.Post("/refresh", authHandler.Refresh)
		r.With(authMW).Post("/logout", authHandler.Logout)
		r.With(authMW).Post("/logout_all", authHandler.LogoutAll)
	})

	r.Route("/v1", func(r chi.Router) {
		r.Use(authMW)

		r.Group(func(r chi.Router) {
			r.Use(timeoutMW)

			r.Get("/profile", profileHandler.Me)
			r.Put("/profile", profileHandler.Update)
			r.Post("/media/avatar", mediaHandler.AvatarUpload)

			r.Get("/candidates", swipeHandler.Candidates)
			r.Post("/swipes", swipeHandler.Decide)

			r.Get("/matches", matchesHandler.List)

			r.Get("/chat/{match_id}/messages", chatHandler.History)
			r.Post("/chat/{match_id}/messages", chatHandler.Send)
		})

		r.Get("/chat/{match_id}/ws", chatWSHandler.Subscribe)
	})
}
