// Package apply sends applications with cover letters to ranked vacancies.
package apply

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/spigell/hh-scout/internal/ai"
	"github.com/spigell/hh-scout/internal/headhunter"
	"github.com/spigell/hh-scout/internal/metrics"
	"github.com/spigell/hh-scout/internal/scoring"
	"github.com/spigell/hh-scout/internal/store"
	"github.com/spigell/hh-scout/internal/utils"
)

const (
	BuiltinMessage = "Hello! I would like to apply for this vacancy."

	DefaultInterval = time.Second
)

type Selection string

const (
	All   Selection = "all"
	Top5  Selection = "top5"
	Top10 Selection = "top10"
)

func ParseSelection(s string) (Selection, error) {
	switch sel := Selection(strings.ToLower(strings.TrimSpace(s))); sel {
	case All, Top5, Top10:
		return sel, nil
	case "":
		return All, nil
	default:
		return "", fmt.Errorf("unknown selection %q: use all, top5 or top10", s)
	}
}

// Limit returns how many vacancies the selection takes, 0 means all.
func (s Selection) Limit() int {
	switch s {
	case Top5:
		return 5
	case Top10:
		return 10
	default:
		return 0
	}
}

// Applier is satisfied by *headhunter.Client.
type Applier interface {
	ApplyWithMessage(ctx context.Context, resumeID, vacancyID, message string) error
}

// SentStore is satisfied by *store.SentRepository.
type SentStore interface {
	IsSent(ctx context.Context, userID int64, vacancyID string) (bool, error)
	MarkSent(ctx context.Context, records ...store.SentVacancy) error
}

type Config struct {
	ResumeID string `validate:"required"`
	// ResumeText is passed to the cover letter writer.
	ResumeText     string
	UserID         int64
	DefaultMessage string
	Interval       time.Duration `validate:"gte=0"`
}

type Deps struct {
	HH Applier `validate:"required"`
	// Letters and Sent are optional.
	Letters ai.CoverLetterWriter `validate:"-"`
	Sent    SentStore            `validate:"-"`
	Logger  *zap.Logger          `validate:"-"`
}

type Service struct {
	cfg  Config
	deps Deps
}

type Result struct {
	Succeeded []string
	Failed    []string
	Skipped   []string
	Errors    map[string]error
}

var validate = validator.New()

func New(cfg Config, deps Deps) (*Service, error) {
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("apply config: %w", err)
	}
	if err := validate.Struct(deps); err != nil {
		return nil, fmt.Errorf("apply dependencies: %w", err)
	}

	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	return &Service{cfg: cfg, deps: deps}, nil
}

// Apply sends applications to the selected vacancies in ranking order. A failed
// application does not stop the others. Only context cancellation is returned as error.
func (s *Service) Apply(ctx context.Context, ranked []scoring.ScoredVacancy, sel Selection) (*Result, error) {
	res := &Result{Errors: make(map[string]error)}
	selected := scoring.Top(ranked, sel.Limit())

	for i, sv := range selected {
		if i > 0 {
			if err := utils.WaitFor(ctx, s.cfg.Interval); err != nil {
				return res, err
			}
		}

		v := sv.Vacancy
		log := s.deps.Logger.With(zap.String("vacancy_id", v.ID), zap.String("vacancy_name", v.Name))

		if s.alreadySent(ctx, v.ID, log) {
			log.Info("skipping already applied vacancy")
			res.Skipped = append(res.Skipped, v.ID)
			metrics.ApplicationsTotal.WithLabelValues("skipped").Inc()
			continue
		}

		message := s.message(ctx, v, log)

		if err := s.deps.HH.ApplyWithMessage(ctx, s.cfg.ResumeID, v.ID, message); err != nil {
			if ctx.Err() != nil {
				return res, ctx.Err()
			}

			log.Warn("failed to apply", zap.Error(err), zap.Bool("forbidden", errors.Is(err, headhunter.ErrApplyForbidden)))
			res.Failed = append(res.Failed, v.ID)
			res.Errors[v.ID] = err
			metrics.ApplicationsTotal.WithLabelValues("failed").Inc()
			continue
		}

		log.Info("successfully applied to vacancy", zap.Float64("score", sv.Score))
		res.Succeeded = append(res.Succeeded, v.ID)
		metrics.ApplicationsTotal.WithLabelValues("succeeded").Inc()

		s.markSent(ctx, sv, log)
	}

	s.deps.Logger.Info("applications finished",
		zap.Int("succeeded", len(res.Succeeded)),
		zap.Int("failed", len(res.Failed)),
		zap.Int("skipped", len(res.Skipped)),
	)

	return res, nil
}

func (s *Service) alreadySent(ctx context.Context, vacancyID string, log *zap.Logger) bool {
	if s.deps.Sent == nil {
		return false
	}

	sent, err := s.deps.Sent.IsSent(ctx, s.cfg.UserID, vacancyID)
	if err != nil {
		log.Warn("failed to check sent vacancies", zap.Error(err))
		return false
	}

	return sent
}

func (s *Service) markSent(ctx context.Context, sv scoring.ScoredVacancy, log *zap.Logger) {
	if s.deps.Sent == nil {
		return
	}

	err := s.deps.Sent.MarkSent(ctx, store.SentVacancy{
		UserID:       s.cfg.UserID,
		VacancyID:    sv.Vacancy.ID,
		VacancyName:  sv.Vacancy.Name,
		EmployerName: sv.Vacancy.Employer.Name,
		Score:        sv.Score,
	})
	if err != nil {
		log.Warn("failed to record application", zap.Error(err))
	}
}

// message prefers a generated letter, then the configured message, then the built-in one.
func (s *Service) message(ctx context.Context, v *headhunter.Vacancy, log *zap.Logger) string {
	if s.deps.Letters != nil {
		letter, err := s.deps.Letters.Write(ctx, VacancyText(v), s.cfg.ResumeText)
		if err == nil && strings.TrimSpace(letter) != "" {
			return letter
		}
		log.Warn("cover letter is not generated", zap.Error(err))
	}

	if msg := strings.TrimSpace(s.cfg.DefaultMessage); msg != "" {
		return msg
	}

	log.Warn("falling back to default built-in message", zap.String("hint", "specify message in apply section"))
	return BuiltinMessage
}

// VacancyText renders the vacancy for a cover letter prompt.
func VacancyText(v *headhunter.Vacancy) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Position: %s\n", v.Name)
	if v.Employer.Name != "" {
		fmt.Fprintf(&b, "Company: %s\n", v.Employer.Name)
	}
	if skills := v.SkillNames(); len(skills) > 0 {
		fmt.Fprintf(&b, "Key skills: %s\n", strings.Join(skills, ", "))
	}

	description := v.Description
	if description == "" {
		description = strings.TrimSpace(v.Snippet.Requirement + "\n" + v.Snippet.Responsibility)
	}
	if description != "" {
		fmt.Fprintf(&b, "Description:\n%s\n", description)
	}

	return b.String()
}
