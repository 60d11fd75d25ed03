package scheduler

import (
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"serpavi_estimator/config"
	"serpavi_estimator/storage"
)

// Triggerable allows workers to be triggered on a cron schedule.
type Triggerable interface {
	Trigger()
}

// Scheduler owns the cron entries for periodic maintenance: connectivity
// probes and retention cleanup of old runs.
type Scheduler struct {
	cfg   *config.SchedulerConfig
	store *storage.SQLiteStore
	cron  *cron.Cron

	connectivityWorker Triggerable
	artifactWorker     Triggerable
}

func New(cfg *config.SchedulerConfig, store *storage.SQLiteStore) *Scheduler {
	return &Scheduler{
		cfg:   cfg,
		store: store,
		cron:  cron.New(),
	}
}

// SetWorkers registers the workers the schedule triggers.
func (s *Scheduler) SetWorkers(connectivity, artifacts Triggerable) {
	s.connectivityWorker = connectivity
	s.artifactWorker = artifacts
}

func (s *Scheduler) Start() error {
	if s.connectivityWorker != nil {
		if _, err := s.cron.AddFunc(s.cfg.ProbeCron, s.connectivityWorker.Trigger); err != nil {
			return err
		}
	}

	if _, err := s.cron.AddFunc(s.cfg.CleanupCron, s.cleanup); err != nil {
		return err
	}

	s.cron.Start()
	log.Printf("Scheduler started (probe=%q cleanup=%q retention=%dd)",
		s.cfg.ProbeCron, s.cfg.CleanupCron, s.cfg.RetentionDays)
	return nil
}

func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *Scheduler) cleanup() {
	cutoff := time.Now().AddDate(0, 0, -s.cfg.RetentionDays)
	n, err := s.store.Prune(cutoff)
	if err != nil {
		log.Printf("Cleanup: prune failed: %v", err)
		return
	}
	log.Printf("Cleanup: pruned %d runs older than %s", n, cutoff.Format("2006-01-02"))

	if s.artifactWorker != nil {
		s.artifactWorker.Trigger()
	}
}
