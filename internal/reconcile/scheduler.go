package reconcile

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/argentech/argentech-backend/internal/logging"
	"github.com/argentech/argentech-backend/internal/metrics"
	"github.com/argentech/argentech-backend/internal/projects/directory"
	"github.com/argentech/argentech-backend/internal/projects/domain"
)

// Refresher reloads the directory snapshot.
type Refresher interface {
	Refresh(ctx context.Context) (*directory.Snapshot, error)
}

// OrphanStore finds and removes projects left without founders.
type OrphanStore interface {
	ListOrphans(ctx context.Context, createdBefore time.Time) ([]domain.OrphanProject, error)
	DeleteOrphan(ctx context.Context, id domain.ProjectID) (bool, error)
}

// Options selects which jobs run. Schedules use cron syntax with an optional
// seconds field, or descriptors such as "@every 10m". An empty schedule
// disables that job.
type Options struct {
	RefreshSchedule   string
	ReconcileSchedule string
	Grace             time.Duration
	Delete            bool
	// InvalidateCache drops shared cached copies of the directory so a
	// refresh reads the database. Nil when no cache is configured.
	InvalidateCache func(ctx context.Context) error
}

type Scheduler struct {
	cron    *cron.Cron
	dir     Refresher
	orphans OrphanStore
	opt     Options
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewScheduler(dir Refresher, orphans OrphanStore, opt Options, m *metrics.Metrics) *Scheduler {
	parser := cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	return &Scheduler{
		cron:    cron.New(cron.WithParser(parser)),
		dir:     dir,
		orphans: orphans,
		opt:     opt,
		metrics: m,
		now:     time.Now,
	}
}

// Start registers the configured jobs and starts the cron runner.
func (s *Scheduler) Start() error {
	if s.opt.RefreshSchedule != "" && s.dir != nil {
		if _, err := s.cron.AddFunc(s.opt.RefreshSchedule, func() {
			s.RefreshDirectory(context.Background())
		}); err != nil {
			return fmt.Errorf("refresh schedule %q: %w", s.opt.RefreshSchedule, err)
		}
	}

	if s.opt.ReconcileSchedule != "" && s.orphans != nil {
		if _, err := s.cron.AddFunc(s.opt.ReconcileSchedule, func() {
			_, _, _ = s.ReconcileOrphans(context.Background())
		}); err != nil {
			return fmt.Errorf("reconcile schedule %q: %w", s.opt.ReconcileSchedule, err)
		}
	}

	logging.Logger.WithFields(logrus.Fields{
		"refresh":   s.opt.RefreshSchedule,
		"reconcile": s.opt.ReconcileSchedule,
		"jobs":      len(s.cron.Entries()),
	}).Info("cron scheduler started")
	s.cron.Start()
	return nil
}

// Stop halts the runner; the returned context is done once running jobs finish.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

func (s *Scheduler) RefreshDirectory(ctx context.Context) {
	log := logging.Op(ctx, "directory.scheduled_refresh")
	if s.opt.InvalidateCache != nil {
		if err := s.opt.InvalidateCache(ctx); err != nil {
			log.WithError(err).Warn("failed to invalidate directory cache")
		}
	}
	snap, err := s.dir.Refresh(ctx)
	if err != nil {
		log.WithError(err).Warn("scheduled refresh failed")
		return
	}
	log.WithField("version", snap.Version).Debug("scheduled refresh done")
}

// ReconcileOrphans lists founderless projects older than the grace period
// and, when deletion is enabled, removes them.
func (s *Scheduler) ReconcileOrphans(ctx context.Context) (found, deleted int, err error) {
	log := logging.Op(ctx, "projects.reconcile")

	cutoff := s.now().Add(-s.opt.Grace)
	orphans, err := s.orphans.ListOrphans(ctx, cutoff)
	if err != nil {
		log.WithError(err).Error("failed to list orphan projects")
		return 0, 0, err
	}
	s.metrics.SetOrphans(len(orphans))

	for _, o := range orphans {
		entry := log.WithFields(logrus.Fields{
			"project_id": o.ID,
			"name":       o.Name,
			"created_at": o.CreatedAt,
		})
		if !s.opt.Delete {
			entry.Warn("orphan project found")
			continue
		}

		ok, err := s.orphans.DeleteOrphan(ctx, o.ID)
		if err != nil {
			entry.WithError(err).Error("failed to delete orphan project")
			continue
		}
		if ok {
			deleted++
			entry.Info("orphan project deleted")
		}
	}

	if deleted > 0 {
		s.metrics.SetOrphans(len(orphans) - deleted)
		if s.dir != nil {
			s.RefreshDirectory(ctx)
		}
	}

	return len(orphans), deleted, nil
}
