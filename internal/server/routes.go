// Package server exposes the clustering engine over a JSON HTTP API.
package server

import (
	"time"

	"github.com/KaramelBytes/clusterflow-cli/internal/cluster"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// Options configures the handlers.
type Options struct {
	Sweep cluster.KMeansOptions
	Final cluster.KMeansOptions
	// DefaultKMin and DefaultKMax apply when a sweep request leaves the range unset.
	DefaultKMin int
	DefaultKMax int
}

// DefaultOptions mirrors the CLI defaults.
func DefaultOptions() Options {
	return Options{Sweep: cluster.SweepKMeans(), Final: cluster.FinalKMeans(), DefaultKMin: 2, DefaultKMax: 11}
}

// Handler serves the API. It holds configuration only; requests share no mutable state.
type Handler struct {
	selector *cluster.Selector
	runner   *cluster.Runner
	opt      Options
}

// SetupRouter builds the gin engine with every route registered.
func SetupRouter(opt Options) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	h := &Handler{
		selector: &cluster.Selector{KMeans: opt.Sweep},
		runner:   &cluster.Runner{KMeans: opt.Final},
		opt:      opt,
	}
	api := r.Group("/api/v1")
	{
		api.GET("/health", h.handleHealth)
		api.GET("/methods", h.handleMethods)
		api.POST("/sweep", h.handleSweep)
		api.POST("/cluster", h.handleCluster)
		api.POST("/compare", h.handleCompare)
		api.POST("/profile", h.handleProfile)
	}
	return r
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info().
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", c.Writer.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	}
}
