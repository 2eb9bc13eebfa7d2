package router

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/macrolog/backend/internal/api"
	"github.com/macrolog/backend/internal/middleware"
	"github.com/macrolog/backend/internal/service"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Auth           *api.AuthHandler
	Meal           *api.MealHandler
	Goal           *api.GoalHandler
	Progress       *api.ProgressHandler
	Profile        *api.ProfileHandler
	Recommendation *api.RecommendationHandler
	Trial          *api.TrialHandler
	Payment        *api.PaymentHandler
}

// New assembles the gin engine with all routes and middleware.
func New(h *Handlers, authService *service.AuthService, redisClient *redis.Client) *gin.Engine {
	r := gin.Default()
	r.Use(middleware.CORS())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	apiGroup := r.Group("/api")
	{
		apiGroup.POST("/register", h.Auth.Register)
		apiGroup.POST("/login", h.Auth.Login)
		apiGroup.POST("/logout", h.Auth.Logout)
		apiGroup.POST("/admin-access", h.Auth.AdminAccess)
	}

	authed := r.Group("/api")
	authed.Use(middleware.AuthMiddleware(authService))
	{
		authed.GET("/user", h.Auth.CurrentUser)

		authed.GET("/meals", h.Meal.List)
		authed.POST("/meals", h.Meal.Create)
		authed.GET("/meals/:id", h.Meal.Get)
		authed.PATCH("/meals/:id", h.Meal.Update)
		authed.DELETE("/meals/:id", h.Meal.Delete)

		authed.GET("/nutrition-goals", h.Goal.List)
		authed.POST("/nutrition-goals", h.Goal.Create)
		authed.GET("/nutrition-goals/active", h.Goal.Active)
		authed.GET("/nutrition-goals/:id", h.Goal.Get)
		authed.PATCH("/nutrition-goals/:id", h.Goal.Update)
		authed.DELETE("/nutrition-goals/:id", h.Goal.Delete)

		authed.GET("/progress", h.Progress.List)
		authed.POST("/progress", h.Progress.Create)
		authed.GET("/progress/:id", h.Progress.Get)
		authed.PATCH("/progress/:id", h.Progress.Update)
		authed.DELETE("/progress/:id", h.Progress.Delete)
		authed.POST("/progress/:id/photo", h.Progress.UploadPhoto)

		authed.GET("/user-profile", h.Profile.Get)
		authed.POST("/user-profile", h.Profile.Create)
		authed.PATCH("/user-profile", h.Profile.Update)

		authed.GET("/trial-status", h.Trial.Status)
		authed.POST("/create-payment-intent", h.Payment.CreateIntent)
		authed.POST("/verify-payment", h.Payment.VerifyPayment)

		ai := authed.Group("")
		if redisClient != nil {
			ai.Use(middleware.NewAIRequestRateLimiter(redisClient).RateLimitMiddleware())
		}
		ai.GET("/recommendations/nutrition-goals", h.Recommendation.GoalRecommendations)
		ai.GET("/recommendations/meals", h.Recommendation.MealSuggestions)
		ai.POST("/ai-chat", h.Recommendation.Chat)
		ai.GET("/perplexity/meal-suggestions", h.Recommendation.PerplexityMealSuggestions)
		ai.POST("/perplexity/nutritional-advice", h.Recommendation.NutritionalAdvice)
	}

	return r
}
