package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	authrepo "github.com/yogesh1636/Bibliotheca/internal/auth/repository"
	authservice "github.com/yogesh1636/Bibliotheca/internal/auth/service"
	"github.com/yogesh1636/Bibliotheca/internal/auth/session"
	cartcache "github.com/yogesh1636/Bibliotheca/internal/cart/cache"
	cartpoller "github.com/yogesh1636/Bibliotheca/internal/cart/poller"
	cartrepo "github.com/yogesh1636/Bibliotheca/internal/cart/repository"
	cartservice "github.com/yogesh1636/Bibliotheca/internal/cart/service"
	catalogrepo "github.com/yogesh1636/Bibliotheca/internal/catalog/repository"
	"github.com/yogesh1636/Bibliotheca/internal/catalog/source"
	"github.com/yogesh1636/Bibliotheca/internal/catalog/store"
	h "github.com/yogesh1636/Bibliotheca/internal/http"
	"github.com/yogesh1636/Bibliotheca/internal/order/publisher"
	orderrepo "github.com/yogesh1636/Bibliotheca/internal/order/repository"
	orderservice "github.com/yogesh1636/Bibliotheca/internal/order/service"
)

type Config struct {
	HTTPPort string

	CatalogURL            string
	CatalogFile           string
	SQLitePath            string
	CatalogMigrationsPath string

	MongoURI  string
	MongoDB   string
	RedisAddr string

	KafkaBrokers string

	DBHost              string
	DBPort              int
	DBUser              string
	DBPassword          string
	DBName              string
	OrderMigrationsPath string
	AuthMigrationsPath  string

	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

func loadConfig() *Config {
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		log.Fatalf("Invalid DB_PORT: %v", err)
	}

	return &Config{
		HTTPPort: getEnv("HTTP_PORT", "8080"),

		CatalogURL:            getEnv("CATALOG_URL", ""),
		CatalogFile:           getEnv("CATALOG_FILE", "./data/catalog.json"),
		SQLitePath:            getEnv("SQLITE_PATH", "./data/books.db"),
		CatalogMigrationsPath: getEnv("CATALOG_MIGRATIONS_PATH", "./internal/catalog/repository/migrations"),

		MongoURI:  getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:   getEnv("MONGO_DB", "bookstore"),
		RedisAddr: getEnv("REDIS_ADDR", "localhost:6379"),

		KafkaBrokers: getEnv("KAFKA_BROKERS", "localhost:9092"),

		DBHost:              getEnv("DB_HOST", "localhost"),
		DBPort:              dbPort,
		DBUser:              getEnv("DB_USER", "postgres"),
		DBPassword:          getEnv("DB_PASSWORD", "postgres"),
		DBName:              getEnv("DB_NAME", "bookstore"),
		OrderMigrationsPath: getEnv("ORDER_MIGRATIONS_PATH", "./internal/order/repository/migrations"),
		AuthMigrationsPath:  getEnv("AUTH_MIGRATIONS_PATH", "./internal/auth/repository/migrations"),

		RequestTimeout:  30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	log.Println("bookstore starting...")

	cfg := loadConfig()
	ctx := context.Background()
	var wg sync.WaitGroup

	// Catalog: fetch once from the source, keep in memory, mirror into SQLite.
	var src source.Source
	if cfg.CatalogURL != "" {
		src = source.NewHTTPSource(cfg.CatalogURL, 10*time.Second)
	} else {
		src = source.NewFileSource(cfg.CatalogFile)
	}
	catalogStore := store.NewStore(src)

	bookRepo, err := catalogrepo.NewRepository(cfg.SQLitePath)
	if err != nil {
		log.Fatalf("Failed to open catalog database: %v", err)
	}
	defer bookRepo.Close()

	if err := bookRepo.RunMigrations(cfg.CatalogMigrationsPath); err != nil {
		log.Fatalf("Failed to run catalog migrations: %v", err)
	}

	books, err := catalogStore.Load(ctx)
	if err != nil {
		log.Printf("catalog source unavailable, serving previously seeded books: %v", err)
	} else if err := bookRepo.SeedBooks(ctx, books); err != nil {
		log.Fatalf("Failed to seed catalog: %v", err)
	}

	// Cart: MongoDB document plus a Redis read cache.
	mongoCtx, mongoCancel := context.WithTimeout(ctx, 15*time.Second)
	mongoDB, err := cartrepo.ConnectMongoDB(mongoCtx, cfg.MongoURI, cfg.MongoDB)
	mongoCancel()
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer mongoDB.Client().Disconnect(context.Background())

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer redisClient.Close()

	cartRepository := cartrepo.NewMongoRepository(mongoDB)
	cartCache := cartcache.NewRedisCache(redisClient)
	cart := cartservice.NewCartService(cartRepository, cartCache)

	// Orders: Postgres with a transactional outbox.
	orderCreds := &orderrepo.Credentials{
		Host:              cfg.DBHost,
		Port:              cfg.DBPort,
		User:              cfg.DBUser,
		Password:          cfg.DBPassword,
		DBName:            cfg.DBName,
		MigrationsDirPath: cfg.OrderMigrationsPath,
	}
	orderRepository, err := orderrepo.NewRepository(orderCreds)
	if err != nil {
		log.Fatalf("Failed to connect to orders database: %v", err)
	}
	defer orderRepository.Close()

	if err := orderRepository.RunMigrations(orderCreds); err != nil {
		log.Fatalf("Failed to run order migrations: %v", err)
	}

	orders := orderservice.NewOrderService(orderRepository, catalogStore, cart)

	// Auth: Postgres profiles, Redis sessions.
	authCreds := &authrepo.Credentials{
		Host:              cfg.DBHost,
		Port:              cfg.DBPort,
		User:              cfg.DBUser,
		Password:          cfg.DBPassword,
		DBName:            cfg.DBName,
		MigrationsDirPath: cfg.AuthMigrationsPath,
	}
	profileRepository, err := authrepo.NewRepository(authCreds)
	if err != nil {
		log.Fatalf("Failed to connect to auth database: %v", err)
	}
	defer profileRepository.Close()

	if err := profileRepository.RunMigrations(authCreds); err != nil {
		log.Fatalf("Failed to run auth migrations: %v", err)
	}

	auth := authservice.NewAuthService(profileRepository, session.NewRedisStore(redisClient), cart)

	// Outbox poller publishes committed order events to Kafka; the cart poller
	// consumes them and clears the cart if the in-process clear failed.
	workerCtx, workerCancel := context.WithCancel(ctx)

	outboxPoller := publisher.NewOutboxPoller(orderRepository, cfg.KafkaBrokers)
	wg.Add(1)
	go func() {
		defer wg.Done()
		outboxPoller.Run(workerCtx)
	}()

	clearPoller := cartpoller.NewPoller(cartRepository, cartCache, cfg.KafkaBrokers)
	wg.Add(1)
	go func() {
		defer wg.Done()
		clearPoller.Run(workerCtx)
	}()

	router := h.NewRouter(h.RouterDeps{
		Auth:           auth,
		Books:          h.NewBookHandler(catalogStore, bookRepo, cfg.RequestTimeout),
		Cart:           h.NewCartHandler(cart, cfg.RequestTimeout),
		Checkout:       h.NewCheckoutHandler(cart, orders, cfg.RequestTimeout),
		Orders:         h.NewOrdersHandler(orders, cfg.RequestTimeout),
		Account:        h.NewAuthHandler(auth, cfg.RequestTimeout),
		RequestTimeout: cfg.RequestTimeout,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      otelhttp.NewHandler(router, "bookstore"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Bookstore listening on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down bookstore...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server forced to shutdown: %v", err)
	}

	workerCancel()
	outboxPoller.Close()
	clearPoller.Close()
	wg.Wait()

	log.Println("bookstore stopped")
}
