package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"daitician/internal/api"
	"daitician/internal/config"
	"daitician/internal/mealplan"
	"daitician/internal/platform/gemini"
	"daitician/internal/platform/openai"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, nil)))
	if err := run(); err != nil {
		slog.Error("main: exiting", "error", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	if err := config.LoadDotEnv(".env"); err != nil {
		return err
	}
	cfg, err := config.NewFromEnv()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	completer, closeFn, err := newCompleter(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeFn()

	requester := mealplan.NewRequester(completer, mealplan.WithModel(cfg.Model))
	handler := api.NewHandler(requester)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: setupRouter(handler, cfg.CORSOrigins),
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("main: listening", "port", cfg.Port, "provider", cfg.Provider, "model", cfg.Model)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
		slog.Info("main: shutting down")
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newCompleter(ctx context.Context, cfg *config.Config) (mealplan.Completer, func(), error) {
	switch cfg.Provider {
	case config.ProviderGemini:
		client, err := gemini.NewClient(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		return client, func() {
			if err := client.Close(); err != nil {
				slog.ErrorContext(ctx, "main: close gemini client", "error", err)
			}
		}, nil
	default:
		return openai.NewClient(cfg), func() {}, nil
	}
}

func setupRouter(handler *api.Handler, origins []string) *gin.Engine {
	r := gin.Default()
	r.SetHTMLTemplate(api.Templates())
	r.Use(api.RequestID())

	r.Use(cors.New(cors.Config{
		AllowOrigins:  origins,
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", api.RequestIDHeader},
		ExposeHeaders: []string{"Content-Length", "Content-Disposition", api.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}))

	r.GET("/", handler.Index)
	r.POST("/generate", handler.Generate)
	r.POST("/download", handler.Download)

	r.GET("/api/ingredients", handler.ListIngredients)
	r.POST("/api/meal-plans", handler.CreateMealPlan)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return r
}
