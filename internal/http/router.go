package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appconfig "github.com/eigenplayer/playerd/internal/config"
	"github.com/eigenplayer/playerd/internal/core"
	"github.com/eigenplayer/playerd/internal/storage"
	"github.com/eigenplayer/playerd/internal/ws"
)

// NewRouter executes the newRouter function.
func NewRouter(holder *appconfig.Holder, c *core.Core, store *storage.Store, wsHandler *ws.Handler, logger *zap.Logger) *gin.Engine {
	router := gin.New()
	router.RedirectTrailingSlash = false
	router.RedirectFixedPath = false
	router.Use(gin.Recovery())
	router.Use(requestLogger(logger))

	router.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/client-ws", func(ctx *gin.Context) {
		wsHandler.Handle(ctx.Writer, ctx.Request)
	})

	api := router.Group("/api")

	api.GET("/config", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, holder.Get())
	})

	api.GET("/properties", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, c.Snapshot())
	})

	api.GET("/properties/:name", func(ctx *gin.Context) {
		value, ok := c.GetProperty(ctx.Param("name"))
		if !ok {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "unknown property"})
			return
		}
		ctx.JSON(http.StatusOK, gin.H{
			"name":  ctx.Param("name"),
			"value": value.Interface(),
		})
	})

	api.GET("/playlists", func(ctx *gin.Context) {
		names, err := store.Playlists()
		if err != nil {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		ctx.JSON(http.StatusOK, names)
	})

	api.GET("/playlists/:name", func(ctx *gin.Context) {
		tracks, err := store.PlaylistTracks(ctx.Param("name"))
		if err != nil {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		ctx.JSON(http.StatusOK, gin.H{
			"name":   ctx.Param("name"),
			"tracks": tracks,
		})
	})

	api.GET("/history", func(ctx *gin.Context) {
		limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "10"))
		history, err := store.PlayHistory(limit)
		if err != nil {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		ctx.JSON(http.StatusOK, history)
	})

	api.GET("/presets", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, appconfig.ScanPresets(holder.Get().PresetsDir))
	})

	api.POST("/commands/:name", func(ctx *gin.Context) {
		var body struct {
			Args []string `json:"args"`
		}
		if ctx.Request.ContentLength > 0 {
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
		}
		if err := c.ExecuteCommand(ctx.Param("name"), body.Args); err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return router
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		ctx.Next()
		latency := time.Since(start)
		if logger == nil {
			return
		}
		logger.Info("http request",
			zap.String("method", ctx.Request.Method),
			zap.String("path", ctx.Request.URL.Path),
			zap.String("query", ctx.Request.URL.RawQuery),
			zap.String("client_ip", ctx.ClientIP()),
			zap.Int("status", ctx.Writer.Status()),
			zap.Int("bytes", ctx.Writer.Size()),
			zap.Duration("latency", latency),
			zap.String("user_agent", ctx.Request.UserAgent()),
		)
	}
}
