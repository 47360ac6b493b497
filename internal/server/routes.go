package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"transcriptd/internal/scrape"
)

// Fetcher is the transcript pipeline as the HTTP edge sees it.
type Fetcher interface {
	Fetch(ctx context.Context, id string) (scrape.Result, error)
}

// RegisterRoutes mounts all endpoints on the gin engine.
func RegisterRoutes(engine *gin.Engine, fetcher Fetcher) {
	engine.GET("/health", getHealth)
	engine.GET("/metrics", getMetrics)
	engine.GET("/transcript/:id", getTranscript(fetcher))
}

func getHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func getMetrics(c *gin.Context) {
	c.String(http.StatusOK, scrape.FormatMetrics())
}

func getTranscript(fetcher Fetcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")

		res, err := fetcher.Fetch(c.Request.Context(), id)
		switch {
		case err == nil:
			c.JSON(http.StatusOK, res)
		case errors.Is(err, scrape.ErrContentUnavailable):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "no transcript for episode " + id,
			})
		default:
			slog.Error("transcript fetch failed",
				slog.String("episode", id), slog.Any("error", err))
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "transcript fetch failed",
				"details": err.Error(),
			})
		}
	}
}
