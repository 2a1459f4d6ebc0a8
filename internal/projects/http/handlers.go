package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/argentech/argentech-backend/internal/logging"
	"github.com/argentech/argentech-backend/internal/projects/domain"
)

func (h *Handler) list(c *gin.Context) {
	var in domain.CriteriaInput
	if err := c.ShouldBindQuery(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid query"})
		return
	}

	criteria := in.Criteria()
	if err := criteria.Validate(h.vocab); err != nil {
		writeValidation(c, err)
		return
	}

	items, version, err := h.directory.Apply(criteria)
	if err != nil {
		writeDirectoryError(c, err)
		return
	}

	c.JSON(http.StatusOK, listResp{OK: true, Version: version, Count: len(items), Projects: items})
}

func (h *Handler) submit(c *gin.Context) {
	var req submitReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	id, err := h.workflow.Submit(c.Request.Context(), req.Project, req.Founders)
	if err != nil {
		var pe *domain.PersistenceError
		switch {
		case domain.IsValidation(err):
			writeValidation(c, err)
		case errors.As(err, &pe):
			logging.Op(c.Request.Context(), "projects.submit").
				WithError(pe.Err).
				WithField("phase", pe.Phase).
				Error("submission failed")
			c.JSON(http.StatusInternalServerError, gin.H{
				"ok":    false,
				"error": "failed to submit project",
				"phase": pe.Phase,
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "failed to submit project"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"ok": true, "id": id})
}

func (h *Handler) refresh(c *gin.Context) {
	if h.invalidate != nil {
		if err := h.invalidate(c.Request.Context()); err != nil {
			logging.Op(c.Request.Context(), "projects.refresh").WithError(err).Warn("failed to invalidate directory cache")
		}
	}

	snap, err := h.directory.Refresh(c.Request.Context())
	if err != nil {
		writeDirectoryError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"ok":        true,
		"version":   snap.Version,
		"count":     len(snap.Projects),
		"loaded_at": snap.LoadedAt,
	})
}

func (h *Handler) vocabulary(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"ok":         true,
		"provinces":  h.vocab.Provinces(),
		"industries": h.vocab.Industries(),
	})
}

func writeValidation(c *gin.Context, err error) {
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": ve.Message, "field": ve.Field})
}

func writeDirectoryError(c *gin.Context, err error) {
	var fe *domain.FetchError
	switch {
	case errors.Is(err, domain.ErrNotLoaded):
		c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false, "error": "projects are loading"})
	case errors.As(err, &fe):
		c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false, "error": "failed to load projects"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "failed to load projects"})
	}
}
