package http

import "github.com/gin-gonic/gin"

// Register attaches directory routes to the given router group. Extra
// middleware applies to the submission route only.
func (h *Handler) Register(rg *gin.RouterGroup, submitMW ...gin.HandlerFunc) {
	rg.GET("", h.list)
	rg.POST("", append(submitMW, h.submit)...)
	rg.POST("/refresh", h.refresh)
}

// RegisterVocabulary exposes the province and industry lists.
func (h *Handler) RegisterVocabulary(rg *gin.RouterGroup) {
	rg.GET("/vocabulary", h.vocabulary)
}
