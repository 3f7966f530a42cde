package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"zyncchat-api/config"
	"zyncchat-api/controllers"
	"zyncchat-api/metrics"
	"zyncchat-api/middleware"
	"zyncchat-api/services"
)

// Services is everything the route table needs to build its controllers.
type Services struct {
	Sessions *services.SessionService
	Auth     *services.AuthService
	Profile  *services.ProfileService
	Friends  *services.FriendService
	Chat     *services.ChatService
	AI       *services.AIService
	SEO      *services.SEOService
	Tutor    *services.TutorService
}

func SetupRoutes(r *gin.Engine, cfg *config.Config, svc Services, log *zap.Logger) {
	// Controllers
	authController := controllers.NewAuthController(svc.Auth, svc.Profile, !cfg.IsDevelopment(), log)
	userController := controllers.NewUserController(svc.Profile)
	friendController := controllers.NewFriendController(svc.Friends)
	chatController := controllers.NewChatController(svc.Chat)
	aiController := controllers.NewAIController(svc.AI, svc.SEO)
	voiceController := controllers.NewVoiceController(svc.AI, cfg.AI.MaxAudioBytes)
	socketController := controllers.NewVoiceSocketController(svc.AI, cfg.AllowedOrigins(), log)
	tutorController := controllers.NewTutorController(svc.Tutor)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true, "status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))
	r.GET("/socket", socketController.Serve)

	authRequired := middleware.AuthMiddleware(svc.Sessions)

	api := r.Group("/api")
	api.Use(
		middleware.RateLimit(cfg.Security.RateLimitPerMinute, cfg.Security.RateLimitBurst),
		middleware.ValidateJSON("/voice/stt"),
	)

	auth := api.Group("/auth")
	{
		auth.POST("/register", authController.Register)
		auth.POST("/login", authController.Login)
		auth.POST("/logout", authController.Logout)
		auth.POST("/forgot-password", authController.ForgotPassword)
		auth.POST("/reset-password/:token", authController.ResetPassword)

		auth.GET("/me", authRequired, authController.Me)
		auth.PUT("/onboard", authRequired, authController.Onboard)
	}

	users := api.Group("/users")
	users.Use(authRequired)
	{
		users.GET("/recommendations", userController.GetRecommendations)
		users.POST("/onboard", userController.SetLanguages)

		users.GET("/friends", friendController.GetFriends)
		users.POST("/send-friend-request/:id", friendController.SendFriendRequest)
		users.PUT("/send-friend-request/:id/accept", friendController.AcceptFriendRequest)
		users.PUT("/send-friend-request/:id/reject", friendController.RejectFriendRequest)
		users.GET("/friend-request", friendController.GetFriendRequests)
		users.GET("/outgoing-request", friendController.GetOutgoingRequests)
	}

	api.GET("/chat/token", authRequired, chatController.GetToken)

	ai := api.Group("/ai")
	{
		ai.POST("/chatbot", aiController.Chatbot)
		ai.POST("/translate", aiController.Translate)
	}
	api.POST("/text-to-image", aiController.TextToImage)
	api.POST("/seo-optimize", aiController.OptimizeSEO)

	voice := api.Group("/voice")
	{
		voice.GET("/health", aiController.VoiceHealth)
		voice.POST("/stt", voiceController.SpeechToText)
		voice.POST("/tts", voiceController.TextToSpeech)
	}

	tutor := api.Group("/tutor")
	tutor.Use(middleware.OptionalAuth(svc.Sessions))
	{
		tutor.POST("/ask", tutorController.Ask)
		tutor.GET("/conversations", tutorController.ListConversations)
		tutor.GET("/conversation/:conversationId", tutorController.GetConversation)
		tutor.DELETE("/conversation/:conversationId", tutorController.ClearConversation)
	}

	r.NoRoute(middleware.NotFound())
}
