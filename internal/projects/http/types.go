package http

import (
	"context"

	"github.com/argentech/argentech-backend/internal/projects/directory"
	"github.com/argentech/argentech-backend/internal/projects/domain"
	"github.com/argentech/argentech-backend/internal/projects/service"
)

// Handler bundles the dependencies for the directory HTTP endpoints.
type Handler struct {
	directory *directory.Store
	workflow  *service.Workflow
	vocab     *domain.Vocabulary
	// invalidate drops shared cached copies before a manual refresh.
	invalidate func(ctx context.Context) error
}

type Option func(*Handler)

// WithCacheInvalidator makes POST /refresh clear the shared directory cache
// so the reload reaches the database.
func WithCacheInvalidator(fn func(ctx context.Context) error) Option {
	return func(h *Handler) { h.invalidate = fn }
}

func New(dir *directory.Store, wf *service.Workflow, vocab *domain.Vocabulary, opts ...Option) *Handler {
	h := &Handler{directory: dir, workflow: wf, vocab: vocab}
	for _, o := range opts {
		o(h)
	}
	return h
}

type submitReq struct {
	Project  domain.ProjectDraft   `json:"project"`
	Founders []domain.FounderDraft `json:"founders"`
}

type listResp struct {
	OK       bool             `json:"ok"`
	Version  uint64           `json:"version"`
	Count    int              `json:"count"`
	Projects []domain.Project `json:"projects"`
}
