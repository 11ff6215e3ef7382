package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/time/rate"

	"github.com/qrmlabs/chatbot-api/internal/api"
	"github.com/qrmlabs/chatbot-api/internal/config"
	"github.com/qrmlabs/chatbot-api/internal/core"
	"github.com/qrmlabs/chatbot-api/internal/observability"
	"github.com/qrmlabs/chatbot-api/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// No logger yet; write straight to stderr and bail.
		os.Stderr.WriteString("config error: " + err.Error() + "\n")
		os.Exit(1)
	}

	log := observability.NewLogger(cfg.LogLevel, cfg.LogFormat, "chatbot-api")

	migrateFlag := flag.Bool("migrate", false, "Create the catalog and conversation schema, then exit")
	flag.Parse()

	dbStore, err := store.NewSQLiteStore(cfg.DatabasePath, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize database")
	}
	defer dbStore.Close()

	if *migrateFlag {
		if err := dbStore.Migrate(); err != nil {
			log.Fatal().Err(err).Msg("migration failed")
		}
		log.Info().Msg("schema migration complete")
		return
	}

	ctx := context.Background()
	llmService, err := core.NewLLMService(ctx, cfg.GeminiAPIKey, cfg.LLMModel, cfg.LLMTemperature, cfg.LLMMaxTokens, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize LLM client")
	}
	defer llmService.Close()

	searchService := core.NewSearchService(dbStore, cfg.DefaultTopics, log)
	shippingService := core.NewShippingService(dbStore, log)
	chatService := core.NewChatService(dbStore, searchService, shippingService, llmService, log)

	handler := api.NewAPIHandler(chatService, searchService, shippingService, dbStore, cfg.GeminiAPIKey != "", log)
	limiter := rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RateLimitPerMinute)), cfg.RateLimitPerMinute)
	router := api.NewRouter(handler, log, limiter, cfg.WidgetTokenSecret)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // LLM calls can take a while
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}
	log.Info().Msg("server exited gracefully")
}
