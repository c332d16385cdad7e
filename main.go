package main

import (
	"context"
	"crypto/tls"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/MicahParks/keyfunc"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"taskdeck-api/api"
	"taskdeck-api/reminder"
	"taskdeck-api/store"
)

func main() {
	if dbg, err := strconv.ParseBool(os.Getenv("DEBUG")); err == nil && dbg {
		log.SetLevel(log.DebugLevel)
	}
	logger := log.New()
	logger.SetLevel(log.GetLevel())

	tasks := store.New()

	var redisClient *redis.Client
	if connStr := os.Getenv("REDIS_CONNECTION_STRING"); connStr != "" {
		redisClient = redis.NewClient(parseRedisOptions(connStr))
	}

	var storage api.Storage = tasks
	if redisClient != nil {
		cacheTTL := 30 * time.Second
		if v := os.Getenv("TASKS_CACHE_TTL"); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil || d <= 0 {
				log.Fatalf("invalid TASKS_CACHE_TTL: %v", err)
			}
			cacheTTL = d
		}
		storage = store.NewCache(tasks, redisClient, cacheTTL)
	}

	auth := buildAuth()

	e := echo.New()
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	e.Use(middleware.Gzip())

	api.Register(e, storage, auth, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sweeper := buildSweeper(tasks, redisClient, logger)
	sweeperDone := make(chan struct{})
	go func() {
		defer close(sweeperDone)
		sweeper.Run(ctx)
	}()

	listenAddr := ":8080"
	if val, ok := os.LookupEnv("PORT"); ok {
		listenAddr = ":" + val
	}
	if val, ok := os.LookupEnv("LISTEN_ADDR"); ok {
		listenAddr = val
	}

	go func() {
		if err := e.Start(listenAddr); err != nil {
			logger.Infof("http server stopped: %v", err)
		}
	}()

	<-ctx.Done()
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("http shutdown: %v", err)
	}
	<-sweeperDone
}

// parseRedisOptions accepts a redis:// URL or a comma-separated
// "host:port,password=...,ssl=true" connection string.
func parseRedisOptions(connStr string) *redis.Options {
	opts, err := redis.ParseURL(connStr)
	if err == nil {
		return opts
	}
	parts := strings.Split(connStr, ",")
	opts = &redis.Options{Addr: parts[0]}
	for _, p := range parts[1:] {
		kv := strings.SplitN(p, "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch strings.ToLower(kv[0]) {
		case "password":
			opts.Password = kv[1]
		case "ssl":
			if strings.ToLower(kv[1]) == "true" {
				opts.TLSConfig = &tls.Config{}
			}
		}
	}
	return opts
}

func buildAuth() *api.Auth {
	if os.Getenv("AUTH_TEST_MODE") == "1" || os.Getenv("LOCAL_AUTH_MODE") != "" {
		return api.NewAuth(nil, "", "")
	}
	jwtAudience := os.Getenv("AUTH_AUDIENCE")
	domain := os.Getenv("AUTH_DOMAIN")
	if jwtAudience == "" || domain == "" {
		log.Fatal("missing auth config")
	}
	jwksURL := fmt.Sprintf("https://%s/.well-known/jwks.json", domain)
	jwks, err := keyfunc.Get(jwksURL, keyfunc.Options{})
	if err != nil {
		log.Fatalf("jwks: %v", err)
	}
	return api.NewAuth(jwks, jwtAudience, "https://"+domain+"/")
}

func buildSweeper(tasks *store.Store, redisClient *redis.Client, logger *log.Logger) *reminder.Sweeper {
	interval := time.Minute
	if v := os.Getenv("REMINDER_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			log.Fatalf("invalid REMINDER_INTERVAL: %v", err)
		}
		interval = d
	}

	var deduper reminder.Deduper
	if redisClient != nil {
		ttl := 24 * time.Hour
		if v := os.Getenv("REMINDER_DEDUP_TTL"); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil || d <= 0 {
				log.Fatalf("invalid REMINDER_DEDUP_TTL: %v", err)
			}
			ttl = d
		}
		deduper = reminder.NewRedisDeduper(redisClient, ttl)
	}

	return reminder.New(tasks, reminder.LogNotifier{Logger: logger}, deduper, interval, logger)
}
