package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/argentech/argentech-backend/internal/api/http/middleware"
	projectshttp "github.com/argentech/argentech-backend/internal/projects/http"
)

type V1Deps struct {
	Projects *projectshttp.Handler
	// SubmitLimiter throttles project submissions per client. Nil disables it.
	SubmitLimiter *middleware.ClientRateLimiter
}

func RegisterV1(r *gin.Engine, dep V1Deps) {
	api := r.Group("/api/v1")

	var submitMW []gin.HandlerFunc
	if dep.SubmitLimiter != nil {
		submitMW = append(submitMW, middleware.RateLimit(dep.SubmitLimiter))
	}

	projectsGroup := api.Group("/projects")
	dep.Projects.Register(projectsGroup, submitMW...)
	dep.Projects.RegisterVocabulary(api)
}
