package bootstrap

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	httpapi "github.com/argentech/argentech-backend/internal/api/http"
	"github.com/argentech/argentech-backend/internal/api/http/middleware"
	"github.com/argentech/argentech-backend/internal/api/http/routes"
	"github.com/argentech/argentech-backend/internal/metrics"
	projectshttp "github.com/argentech/argentech-backend/internal/projects/http"
)

type RouterDeps struct {
	CORSOrigins   []string
	Health        *httpapi.HealthHandler
	Projects      *projectshttp.Handler
	SubmitLimiter *middleware.ClientRateLimiter
	Metrics       *metrics.Metrics
	Gatherer      prometheus.Gatherer
}

func BuildRouter(dep RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(dep.Metrics.Middleware())
	if len(dep.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:  dep.CORSOrigins,
			AllowMethods:  []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:  []string{"Content-Type", middleware.RequestIDHeader},
			ExposeHeaders: []string{middleware.RequestIDHeader},
			MaxAge:        12 * time.Hour,
		}))
	}

	if dep.Health != nil {
		dep.Health.RegisterRoutes(r)
	}
	if dep.Gatherer != nil {
		r.GET("/metrics", metrics.Handler(dep.Gatherer))
	}

	routes.RegisterV1(r, routes.V1Deps{
		Projects:      dep.Projects,
		SubmitLimiter: dep.SubmitLimiter,
	})

	return r
}
