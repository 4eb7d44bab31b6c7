package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/spf13/viper"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"valuta/internal/handlers"
	"valuta/internal/middleware"
	"valuta/internal/models"
	"valuta/internal/repositories"
	"valuta/internal/security"
	"valuta/internal/services"
	"valuta/pkg/rabbitmq"
)

func main() {
	// --- Configuration ---
	viper.SetDefault("APP_PORT", ":8080")
	viper.SetDefault("DATABASE_URL", "host=localhost user=valuta password=valuta dbname=valuta port=5432")
	viper.SetDefault("JWT_SECRET", "change-me")
	viper.SetDefault("JWT_EXPIRES_MINUTES", 30)
	viper.SetDefault("CURRENCY_API_KEY", "")
	viper.SetDefault("CURRENCY_URL_LIST", "https://api.apilayer.com/currency_data/list")
	viper.SetDefault("CURRENCY_URL_EXCHANGE", "https://api.apilayer.com/currency_data/convert?from={currency_1}&to={currency_2}&amount={amount}")
	viper.SetDefault("RABBITMQ_URL", "")
	viper.AutomaticEnv()

	appPort := viper.GetString("APP_PORT")

	// --- Database ---
	// TranslateError turns driver duplicate-key errors into
	// gorm.ErrDuplicatedKey, which the repository layer relies on.
	db, err := gorm.Open(postgres.Open(viper.GetString("DATABASE_URL")), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// --- RabbitMQ (optional) ---
	var publisher services.EventPublisher
	if rabbitMQURL := viper.GetString("RABBITMQ_URL"); rabbitMQURL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: rabbitMQURL})
		if err != nil {
			log.Fatalf("Failed to initialize RabbitMQ client: %v", err)
		}
		defer mqClient.Close()
		publisher = mqClient
	}

	// --- Credential primitives ---
	hasher := security.NewBcryptHasher()
	tokenTTL := time.Duration(viper.GetInt("JWT_EXPIRES_MINUTES")) * time.Minute
	tokens := security.NewTokenCodec(viper.GetString("JWT_SECRET"), tokenTTL)

	// --- Services ---
	uowFactory := repositories.NewGORMUnitOfWorkFactory(db)
	authService := services.NewAuthService(uowFactory, hasher, tokens, publisher)
	currencyService := services.NewCurrencyService(nil, services.CurrencyConfig{
		APIKey:      viper.GetString("CURRENCY_API_KEY"),
		ListURL:     viper.GetString("CURRENCY_URL_LIST"),
		ExchangeURL: viper.GetString("CURRENCY_URL_EXCHANGE"),
	})

	// --- Handlers ---
	authHandler := handlers.NewAuthHandler(authService)
	currencyHandler := handlers.NewCurrencyHandler(currencyService)

	// --- Fiber app ---
	app := fiber.New()
	app.Use(logger.New())

	// Authentication routes (public)
	authHandler.RegisterRoutes(app)

	// Currency routes (require a valid bearer token)
	protectedRoutes := app.Group("", middleware.AuthRequired(tokens))
	currencyHandler.RegisterRoutes(protectedRoutes)

	// --- Health Check Endpoint ---
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// --- Start HTTP Server ---
	log.Printf("Starting server on port %s", appPort)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(appPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}
	log.Println("Server gracefully stopped")
}
