package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/zhouzirui/bubble/backend/internal/config"
	"github.com/zhouzirui/bubble/backend/internal/handler"
	chatModel "github.com/zhouzirui/bubble/backend/internal/model/chat"
	userModel "github.com/zhouzirui/bubble/backend/internal/model/user"
	aiService "github.com/zhouzirui/bubble/backend/internal/service/ai"
	"github.com/zhouzirui/bubble/backend/internal/service/asset"
	chatService "github.com/zhouzirui/bubble/backend/internal/service/chat"
	moodService "github.com/zhouzirui/bubble/backend/internal/service/mood"
	"github.com/zhouzirui/bubble/backend/internal/service/realtime"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	// Connect the document store.
	opts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		log.Fatalf("invalid REDIS_URL: %v", err)
	}
	rdb := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		cancel()
		log.Fatalf("failed to reach redis at %s: %v", cfg.Redis.URL, err)
	}
	cancel()

	messageStore := chatModel.NewRedisStore(rdb)
	userStore := userModel.NewRedisStore(rdb)

	// Generation upstream; absent credentials degrade every AI feature to
	// its fallback instead of disabling the server.
	var generation aiService.Client
	if cfg.AI.Enabled() {
		generation = aiService.NewOpenAIClient(cfg.AI.APIKey, cfg.AI.BaseURL, cfg.AI.Model)
		log.Printf("generation client initialized (model=%s)", cfg.AI.Model)
	} else {
		log.Println("warning: GEMINI_API_KEY not set, AI features run on fallbacks only")
	}

	aiSvc := aiService.NewService(generation, messageStore, aiService.Config{
		HistoryLimit: cfg.AI.HistoryLimit,
		Timeout:      cfg.AI.Timeout,
	})

	uploader, err := asset.NewDiskUploader(cfg.Upload.Dir, cfg.Upload.BaseURL)
	if err != nil {
		log.Fatalf("failed to initialize upload storage: %v", err)
	}

	hub := realtime.NewHub()
	moods := moodService.NewBroadcaster(aiSvc, hub)
	chatSvc := chatService.NewService(messageStore, userStore, uploader, hub, moods)

	router := handler.NewRouter(userStore, chatSvc, aiSvc, hub, cfg.Upload.Dir)

	startServer(ctx, cfg.Server, router)

	// Drain in-flight mood broadcasts before exiting.
	moods.Close()
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	srv := &http.Server{
		Addr:              serverCfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("Bubble backend listening on %s", serverCfg.Addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
