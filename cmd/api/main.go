package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/macrolog/backend/config"
	"github.com/macrolog/backend/internal/api"
	"github.com/macrolog/backend/internal/database"
	"github.com/macrolog/backend/internal/router"
	"github.com/macrolog/backend/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using environment variables")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	db, err := database.New(cfg)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	redisClient, err := database.NewRedisClient(cfg)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}

	emailService := service.NewEmailService()
	authService := service.NewAuthService(db, cfg.JWTSecret, cfg.AdminAccessCode, cfg.TrialDays, emailService)
	mealService := service.NewMealService(db)
	goalService := service.NewGoalService(db)
	progressService := service.NewProgressService(db)
	profileService := service.NewProfileService(db)
	trialService := service.NewTrialService(redisClient)

	openAI, err := service.NewOpenAIClient()
	if err != nil {
		log.Fatalf("failed to configure OpenAI client: %v", err)
	}
	perplexity, err := service.NewPerplexityClient()
	if err != nil {
		log.Fatalf("failed to configure Perplexity client: %v", err)
	}
	recService := service.NewRecommendationService(openAI, perplexity, redisClient)

	paymentService, err := service.NewPaymentService()
	if err != nil {
		log.Fatalf("failed to configure payment service: %v", err)
	}

	s3cfg, err := config.NewS3Config(context.Background())
	if err != nil {
		log.Fatalf("failed to configure S3: %v", err)
	}
	photoService := service.NewPhotoService(s3cfg)

	handlers := &router.Handlers{
		Auth:           api.NewAuthHandler(authService),
		Meal:           api.NewMealHandler(mealService),
		Goal:           api.NewGoalHandler(goalService),
		Progress:       api.NewProgressHandler(progressService, photoService),
		Profile:        api.NewProfileHandler(profileService),
		Recommendation: api.NewRecommendationHandler(recService, authService, trialService, profileService, goalService, mealService),
		Trial:          api.NewTrialHandler(authService, trialService),
		Payment:        api.NewPaymentHandler(paymentService, trialService),
	}

	engine := router.New(handlers, authService, redisClient)

	srv := &http.Server{
		Addr:    cfg.ServerHost + ":" + cfg.ServerPort,
		Handler: engine,
	}

	go func() {
		log.Printf("listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}

	if err := redisClient.Close(); err != nil {
		log.Printf("failed to close redis client: %v", err)
	}
	log.Println("server stopped")
}
