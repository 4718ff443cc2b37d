package http

import (
	stdhttp "net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/chatterlink/relay/internal/config"
	"github.com/chatterlink/relay/internal/core"
)

// NewServer builds the HTTP server. The WebSocket endpoint is mounted on the
// root mux, not inside gin: the upgrade needs the raw ResponseWriter, and
// gin's buffered writer mangles the hijacked connection's frames. Gin serves
// the operational routes.
func NewServer(hub *core.Hub, cfg config.Config, logger *zerolog.Logger) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(requestLogger(logger), gin.Recovery())

	router.GET("/healthz", func(c *gin.Context) {
		c.String(stdhttp.StatusOK, "ok")
	})

	mux := stdhttp.NewServeMux()
	mux.Handle("/ws", NewWSHandler(hub, logger))
	mux.Handle("/", router)

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

// requestLogger logs requests that stay inside gin through zerolog.
func requestLogger(logger *zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Debug().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("http request")
	}
}
