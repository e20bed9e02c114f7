package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"football-analysis/config"
	"football-analysis/utils"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog"
)

// Scheduler runs the periodic jobs: the scoring sweep, the nightly stats reconciliation and
// publishing of scheduled posts.
type Scheduler struct {
	Matches *MatchService
	Stats   *StatsService
	Posts   *PostService

	sched gocron.Scheduler
	log   zerolog.Logger

	mu     sync.Mutex
	cursor time.Time
}

func NewScheduler(matches *MatchService, stats *StatsService, posts *PostService) *Scheduler {
	return &Scheduler{Matches: matches, Stats: stats, Posts: posts, log: utils.Component("scheduler")}
}

// Start registers the jobs and starts the scheduler. Jobs run with ctx until Shutdown.
func (s *Scheduler) Start(ctx context.Context, cfg config.JobsConfig) error {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("create scheduler: %w", err)
	}
	s.sched = sched

	jobs := []struct {
		name string
		def  gocron.JobDefinition
		fn   func(context.Context)
	}{
		{"scoring-sweep", gocron.DurationJob(cfg.ScoringSweepInterval), s.runScoringSweep},
		{"stats-reconcile", gocron.CronJob(cfg.StatsReconcileCron, false), s.runReconcile},
		{"post-publish", gocron.DurationJob(cfg.PostPublishInterval), s.runPublish},
	}
	for _, j := range jobs {
		run := j.fn
		_, err := sched.NewJob(j.def,
			gocron.NewTask(func() { run(ctx) }),
			gocron.WithName(j.name),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		)
		if err != nil {
			return fmt.Errorf("register %s job: %w", j.name, err)
		}
	}

	sched.Start()
	s.log.Info().Dur("sweep_every", cfg.ScoringSweepInterval).Str("reconcile_cron", cfg.StatsReconcileCron).
		Msg("scheduler started")
	return nil
}

func (s *Scheduler) Shutdown() error {
	if s.sched == nil {
		return nil
	}
	return s.sched.Shutdown()
}

// SweepOnce judges matches settled since the last sweep and advances the cursor.
func (s *Scheduler) SweepOnce(ctx context.Context) (SweepResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.Matches.JudgeSettledMatches(ctx, s.cursor)
	s.cursor = res.Cursor
	return res, err
}

func (s *Scheduler) runScoringSweep(ctx context.Context) {
	res, err := s.SweepOnce(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("scoring sweep failed")
		return
	}
	if res.Matches > 0 {
		s.log.Info().Int("matches", res.Matches).Int("changed", res.Changed).Time("cursor", res.Cursor).
			Msg("scoring sweep finished")
	}
}

func (s *Scheduler) runReconcile(ctx context.Context) {
	if _, err := s.Stats.ReconcileAll(ctx); err != nil {
		s.log.Error().Err(err).Msg("stats reconciliation failed")
	}
}

func (s *Scheduler) runPublish(ctx context.Context) {
	n, err := s.Posts.PublishDue(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("scheduled publish failed")
	}
	if n > 0 {
		s.log.Info().Int("published", n).Msg("scheduled posts published")
	}
}
