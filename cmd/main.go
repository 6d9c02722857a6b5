package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/aryaawcksn/counter/config"
	"github.com/aryaawcksn/counter/internal/controller"
	"github.com/aryaawcksn/counter/internal/db"
	"github.com/aryaawcksn/counter/internal/domain"
	"github.com/aryaawcksn/counter/internal/geo"
	memrepo "github.com/aryaawcksn/counter/internal/repository/memory"
	mongorepo "github.com/aryaawcksn/counter/internal/repository/mongo"
	redisrepo "github.com/aryaawcksn/counter/internal/repository/redis"
	"github.com/aryaawcksn/counter/internal/service/stats"
	"github.com/aryaawcksn/counter/internal/service/visit"
	"github.com/aryaawcksn/counter/internal/usecase"
	ws "github.com/aryaawcksn/counter/internal/websocket"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// Singletons
var (
	cfgInstance *config.Config
	cfgOnce     sync.Once
	mongoClient *db.MongoClient
	mongoDB     *db.MongoDB
	mongoOnce   sync.Once
)

// App struct
type App struct {
	Router    *gin.Engine
	Config    *config.Config
	GeoLookup *geo.MaxMindLookup
}

func main() {
	app := NewApp()
	srv := &http.Server{
		Addr:    ":" + app.Config.Port,
		Handler: app.Router,
	}
	go func() {
		log.Printf("🚀 Server is running on port %s", app.Config.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("❌ Server error: %v", err)
		}
	}()

	// Graceful shutdown
	gracefulShutdown(srv, app)
}

func NewApp() *App {
	cfg := GetConfig()

	var (
		counters  domain.CounterRepository
		countries domain.CountryRepository
		cooldowns domain.CooldownRepository
	)

	switch cfg.Store {
	case "memory":
		counters = memrepo.NewCounterStore()
		countries = memrepo.NewCountryStore()
		cooldowns = memrepo.NewCooldownStore()
	default:
		_, mdb := GetMongo()
		counters = mongorepo.NewCounterRepository(mdb)
		countries = mongorepo.NewCountryRepository(mdb)
		cooldowns = mongorepo.NewCooldownRepository(mdb)
	}

	switch cfg.CooldownBackend {
	case "memory":
		cooldowns = memrepo.NewCooldownStore()
	case "redis":
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		cooldowns = redisrepo.NewCooldownRepository(client)
		log.Printf("✅ Cooldown guard using Redis at %s", cfg.RedisAddr)
	}

	var lookup *geo.MaxMindLookup
	if cfg.GeoIPDB != "" {
		l, err := geo.OpenMaxMind(cfg.GeoIPDB)
		if err != nil {
			log.Fatalf("❌ Failed to open GeoIP database: %v", err)
		}
		lookup = l
		log.Printf("✅ GeoIP database loaded from %s", cfg.GeoIPDB)
	} else {
		log.Println("⚠️ GEOIP_DB not set; country attribution falls back to the CDN header")
	}

	hub := ws.NewHub()
	go hub.Run()

	// A typed nil pointer must not reach the interface field.
	var lookupIface geo.Lookup
	if lookup != nil {
		lookupIface = lookup
	}
	resolver := geo.NewResolver(lookupIface)

	visitService := visit.NewService(counters, countries, cooldowns, resolver, hub, cfg.CooldownTTL)
	statsService := stats.NewService(counters, countries)

	router := gin.Default()

	// Register routes
	controller.RegisterRoutes(router, usecase.NewVisitUsecase(visitService, statsService), hub)

	return &App{
		Router:    router,
		Config:    cfg,
		GeoLookup: lookup,
	}
}

func GetConfig() *config.Config {
	cfgOnce.Do(func() {
		c, err := config.LoadConfig()
		if err != nil {
			log.Fatalf("❌ Failed to load configuration: %v", err)
		}
		cfgInstance = c
		log.Println("✅ Configuration loaded successfully")
	})
	return cfgInstance
}

// GetMongo singleton
func GetMongo() (*db.MongoClient, *db.MongoDB) {
	mongoOnce.Do(func() {
		cfg := GetConfig()
		client, database, err := db.InitMongo(cfg.MongoURI, cfg.MongoDBName)
		if err != nil {
			log.Fatalf("❌ Failed to initialize MongoDB: %v", err)
		}
		mongoClient = client
		mongoDB = database
		log.Println("✅ Connected to MongoDB successfully")
	})
	return mongoClient, mongoDB
}

func gracefulShutdown(srv *http.Server, app *App) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Shutdown HTTP server first
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("❌ Server forced to shutdown: %v", err)
	}
	log.Println("✅ HTTP server stopped")

	// Disconnect MongoDB
	if mongoClient != nil {
		if err := mongoClient.Disconnect(ctx); err != nil {
			log.Fatalf("❌ Error disconnecting MongoDB: %v", err)
		}
		log.Println("✅ MongoDB connection closed")
	}

	if app.GeoLookup != nil {
		if err := app.GeoLookup.Close(); err != nil {
			log.Printf("⚠️ Error closing GeoIP database: %v", err)
		}
	}
}
