// transcriptd is a podcast transcript scraping service.
//
// Serves GET /transcript/{id} by driving a headless browser through the
// podcast app's login and transcript view, with a Redis-backed cache in
// front of the pipeline and the login session persisted across restarts.
package main

import (
	"log/slog"

	"github.com/anatolykoptev/go-kit/env"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"transcriptd/internal/scrape"
	"transcriptd/internal/server"
)

var version = "dev"

func main() {
	_ = godotenv.Load()

	cfg := scrape.Config{
		BaseURL:     env.Str("TARGET_BASE_URL", "https://listen.podhall.app"),
		LoginURL:    env.Str("TARGET_LOGIN_URL", "https://listen.podhall.app/login"),
		Username:    env.Str("SCRAPE_USERNAME", ""),
		Password:    env.Str("SCRAPE_PASSWORD", ""),
		SessionFile: env.Str("SESSION_FILE", "session.json"),
	}
	if cfg.Username == "" || cfg.Password == "" {
		slog.Warn("scrape credentials not configured, every login will fail")
	}

	cache := scrape.NewCache(env.Str("REDIS_URL", "redis://127.0.0.1:6379/0"))
	svc := scrape.NewService(cfg, cache)

	port := env.Str("PORT", "8080")
	slog.Info("starting transcriptd",
		slog.String("version", version),
		slog.String("port", port),
		slog.String("target", cfg.BaseURL),
	)

	engine := gin.Default()
	_ = engine.SetTrustedProxies(nil)
	server.RegisterRoutes(engine, svc)

	if err := engine.Run(":" + port); err != nil {
		slog.Error("server failed", slog.Any("error", err))
	}
}
