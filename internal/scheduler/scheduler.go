// Package scheduler runs the daily vacancy digest for every active user.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/spigell/hh-scout/internal/ai"
	"github.com/spigell/hh-scout/internal/metrics"
	"github.com/spigell/hh-scout/internal/pipeline"
	"github.com/spigell/hh-scout/internal/profile"
	"github.com/spigell/hh-scout/internal/scoring"
	"github.com/spigell/hh-scout/internal/store"
	"github.com/spigell/hh-scout/internal/utils"
)

const (
	DefaultSpec       = "0 9 * * *"
	DefaultTimezone   = "Europe/Moscow"
	DefaultDigestSize = 10
	DefaultUserPause  = 2 * time.Second
)

// UserLister is satisfied by *store.Users.
type UserLister interface {
	ListActive(ctx context.Context) ([]store.User, error)
}

// SentRecorder is satisfied by *store.SentRepository.
type SentRecorder interface {
	MarkSent(ctx context.Context, records ...store.SentVacancy) error
}

// Runner is satisfied by *pipeline.Pipeline.
type Runner interface {
	Run(ctx context.Context, p *profile.Profile, userID int64) (*pipeline.Result, error)
}

// Notifier delivers a digest to the user.
type Notifier interface {
	Notify(ctx context.Context, user store.User, vacancies []scoring.ScoredVacancy) error
}

type Config struct {
	Spec       string
	Location   *time.Location
	DigestSize int
	UserPause  time.Duration
	// RunOnStart triggers a digest right after Start.
	RunOnStart bool
}

type Deps struct {
	Users    UserLister
	Sent     SentRecorder
	Analyzer ai.ProfileAnalyzer
	// Pipelines builds a pipeline for the user, so per user filters can be attached.
	Pipelines func(userID int64) Runner
	Notifier  Notifier
	Logger    *zap.Logger
}

// Report summarizes a digest cycle.
type Report struct {
	Users     int
	Delivered int
	Empty     int
	Failed    int
}

type Scheduler struct {
	cfg  Config
	deps Deps
	cron *cron.Cron

	// running prevents overlapping cycles.
	running sync.Mutex
}

func New(cfg Config, deps Deps) (*Scheduler, error) {
	if deps.Users == nil || deps.Sent == nil || deps.Analyzer == nil || deps.Pipelines == nil || deps.Notifier == nil {
		return nil, errors.New("scheduler: users, sent store, analyzer, pipelines and notifier are required")
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	if cfg.Spec == "" {
		cfg.Spec = DefaultSpec
	}
	if cfg.Location == nil {
		loc, err := time.LoadLocation(DefaultTimezone)
		if err != nil {
			return nil, fmt.Errorf("load timezone %s: %w", DefaultTimezone, err)
		}
		cfg.Location = loc
	}
	if cfg.DigestSize <= 0 {
		cfg.DigestSize = DefaultDigestSize
	}
	if cfg.UserPause < 0 {
		cfg.UserPause = 0
	}

	c := cron.New(
		cron.WithLocation(cfg.Location),
		cron.WithLogger(cron.PrintfLogger(zap.NewStdLog(deps.Logger))),
	)

	return &Scheduler{cfg: cfg, deps: deps, cron: c}, nil
}

// Start registers the digest job and starts the cron loop.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.cfg.Spec, func() {
		if _, err := s.RunOnce(ctx); err != nil {
			s.deps.Logger.Error("digest cycle failed", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	s.cron.Start()
	s.deps.Logger.Info("scheduler started",
		zap.String("spec", s.cfg.Spec),
		zap.String("timezone", s.cfg.Location.String()),
	)

	if s.cfg.RunOnStart {
		go func() {
			if _, err := s.RunOnce(ctx); err != nil {
				s.deps.Logger.Error("digest cycle failed", zap.Error(err))
			}
		}()
	}

	return nil
}

// Stop stops the cron loop and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.deps.Logger.Info("scheduler stopped")
}

// RunOnce processes users one by one. A failed user is logged and skipped.
// A cycle that starts while another one is running is skipped.
func (s *Scheduler) RunOnce(ctx context.Context) (*Report, error) {
	if !s.running.TryLock() {
		s.deps.Logger.Warn("digest cycle is already running, skipping")
		return &Report{}, nil
	}
	defer s.running.Unlock()

	started := time.Now()
	defer func() {
		metrics.DigestDuration.Observe(time.Since(started).Seconds())
	}()

	users, err := s.deps.Users.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	report := &Report{Users: len(users)}
	s.deps.Logger.Info("digest cycle started", zap.Int("users", len(users)))

	for i, user := range users {
		if i > 0 {
			if err := utils.WaitFor(ctx, s.cfg.UserPause); err != nil {
				return report, err
			}
		}

		log := s.deps.Logger.With(zap.Int64("user_id", user.TelegramID))

		delivered, err := s.processUser(ctx, user, log)
		switch {
		case err != nil:
			if ctx.Err() != nil {
				return report, ctx.Err()
			}
			log.Error("digest failed for user", zap.Error(err))
			report.Failed++
			metrics.DigestUsersTotal.WithLabelValues("failed").Inc()
		case delivered == 0:
			report.Empty++
			metrics.DigestUsersTotal.WithLabelValues("empty").Inc()
		default:
			report.Delivered++
			metrics.DigestUsersTotal.WithLabelValues("delivered").Inc()
		}
	}

	s.deps.Logger.Info("digest cycle finished",
		zap.Int("delivered", report.Delivered),
		zap.Int("empty", report.Empty),
		zap.Int("failed", report.Failed),
		zap.Duration("took", time.Since(started)),
	)

	return report, nil
}

func (s *Scheduler) processUser(ctx context.Context, user store.User, log *zap.Logger) (int, error) {
	p, err := s.deps.Analyzer.Analyze(ctx, user.ResumeText)
	if err != nil {
		return 0, fmt.Errorf("analyze resume: %w", err)
	}

	res, err := s.deps.Pipelines(user.TelegramID).Run(ctx, p, user.TelegramID)
	if err != nil {
		return 0, err
	}

	digest := scoring.Top(res.Ranked, s.cfg.DigestSize)
	if len(digest) == 0 {
		log.Info("no new vacancies for user")
		return 0, nil
	}

	if err := s.deps.Notifier.Notify(ctx, user, digest); err != nil {
		return 0, fmt.Errorf("notify: %w", err)
	}

	records := make([]store.SentVacancy, 0, len(digest))
	for _, sv := range digest {
		records = append(records, store.SentVacancy{
			UserID:       user.TelegramID,
			VacancyID:    sv.Vacancy.ID,
			VacancyName:  sv.Vacancy.Name,
			EmployerName: sv.Vacancy.Employer.Name,
			Score:        sv.Score,
		})
	}

	if err := s.deps.Sent.MarkSent(ctx, records...); err != nil {
		// the digest is already delivered, so the user is not counted as failed
		log.Warn("failed to record sent vacancies", zap.Error(err))
	}

	return len(digest), nil
}
