package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/spf13/viper"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/cashtrack/backend/docs"
	"github.com/cashtrack/backend/internal/database"
	"github.com/cashtrack/backend/internal/mailer"
	mW "github.com/cashtrack/backend/internal/middleware"
	"github.com/cashtrack/backend/internal/services"
)

// @title CashTrack API
// @version 1.0
// @description Personal finance backend with OTP-based passwordless authentication
// @host localhost:8080
// @BasePath /api/v1
// @schemes http https

func main() {
	// Initialize config
	viper.SetConfigFile(".env") // explicitly point to .env file
	viper.AutomaticEnv()        // allow environment variables to override .env

	viper.BindEnv("database.host", "DATABASE_HOST")
	viper.BindEnv("database.port", "DATABASE_PORT")
	viper.BindEnv("database.user", "DATABASE_USER")
	viper.BindEnv("database.password", "DATABASE_PASSWORD")
	viper.BindEnv("database.name", "DATABASE_NAME")
	viper.BindEnv("database.ssl_mode", "DATABASE_SSL_MODE")

	viper.BindEnv("redis.host", "REDIS_HOST")
	viper.BindEnv("redis.port", "REDIS_PORT")
	viper.BindEnv("redis.password", "REDIS_PASSWORD")
	viper.BindEnv("redis.db", "REDIS_DB")

	viper.BindEnv("jwt.secret_key", "JWT_SECRET_KEY")
	viper.BindEnv("jwt.access_ttl", "JWT_ACCESS_TTL")
	viper.BindEnv("jwt.refresh_ttl", "JWT_REFRESH_TTL")

	viper.BindEnv("sendgrid.api_key", "SENDGRID_API_KEY")
	viper.BindEnv("sendgrid.from_email", "SENDGRID_FROM_EMAIL")

	viper.SetDefault("jwt.access_ttl", 30*time.Minute)
	viper.SetDefault("jwt.refresh_ttl", 7*24*time.Hour)

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Config file not found, using defaults: %v", err)
	}

	if viper.GetString("jwt.secret_key") == "" {
		log.Fatal("JWT_SECRET_KEY must be configured")
	}

	// Initialize Swagger docs
	docs.SwaggerInfo.Title = "CashTrack API"
	docs.SwaggerInfo.Description = "Personal finance backend with OTP-based passwordless authentication"
	docs.SwaggerInfo.Version = "1.0"
	docs.SwaggerInfo.Host = "localhost:8080"
	docs.SwaggerInfo.BasePath = "/api/v1"
	docs.SwaggerInfo.Schemes = []string{"http", "https"}

	// Initialize services
	db := database.InitDatabase()
	defer db.Close()

	if err := database.RunMigrations(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	redisClient := database.InitRedis()
	if redisClient != nil {
		defer redisClient.Close()
	}

	var otpMailer mailer.Mailer = mailer.LogMailer{}
	if apiKey := viper.GetString("sendgrid.api_key"); apiKey != "" {
		otpMailer = mailer.NewSendGridMailer(apiKey, viper.GetString("sendgrid.from_email"))
	} else {
		log.Println("SENDGRID_API_KEY not set, OTP mails will be logged only")
	}

	otpService := services.NewOTPService(db, redisClient, otpMailer)
	authService := services.NewAuthService(db, redisClient, otpService)
	expenseService := services.NewExpenseService(db)
	dashboardService := services.NewDashboardService(db)

	// Initialize auth middleware with Redis
	mW.InitAuthMiddleware(redisClient)

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(mW.SecurityHeaders)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
	})

	// Swagger documentation
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("http://localhost:8080/swagger/doc.json"),
	))

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		// Public endpoints (no auth required)
		r.Post("/register", authService.Register)
		r.Post("/verify-register", authService.VerifyRegister)
		r.Post("/login", authService.Login)
		r.Post("/verify-login", authService.VerifyLogin)
		r.Post("/logout", authService.Logout)

		// Protected endpoints (auth required)
		r.Group(func(r chi.Router) {
			r.Use(mW.AuthMiddleware)

			r.Get("/dashboard", dashboardService.GetDashboard)

			r.Get("/gastos", expenseService.ListGastos)
			r.Post("/gastos", expenseService.CreateGasto)
			r.Get("/gastos/{id}", expenseService.GetGasto)
			r.Put("/gastos/{id}", expenseService.UpdateGasto)
			r.Delete("/gastos/{id}", expenseService.DeleteGasto)

			r.Post("/presupuesto", expenseService.UpdatePresupuesto)
		})
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	// Start server
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on :%s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server stopped")
}
