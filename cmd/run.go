package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/hh-scout/internal/ai/gemini"
	"github.com/spigell/hh-scout/internal/apply"
	"github.com/spigell/hh-scout/internal/filtering"
	"github.com/spigell/hh-scout/internal/headhunter"
	"github.com/spigell/hh-scout/internal/logger"
	"github.com/spigell/hh-scout/internal/pipeline"
	"github.com/spigell/hh-scout/internal/scoring"
	"github.com/spigell/hh-scout/internal/search"
	"github.com/spigell/hh-scout/internal/store"
)

const (
	PromptApplyAll            = "Apply to all vacancies"
	PromptApplyTop5           = "Apply to top 5"
	PromptApplyTop10          = "Apply to top 10"
	PromptNo                  = "No"
	PromptReportByEmployers   = "Report by employers"
	PromptVacanciesToFile     = "Dump vacancies to file"
	PromptAppendToExcludeFile = "Append all vacancies to exclude file"

	excludeReason = "excluded from the run prompt"
)

var errExit = errors.New("exit requested")

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Find vacancies for the resume, rank them and apply",
	Run: func(cmd *cobra.Command, _ []string) {
		run(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolP("do-not-exclude-applied", "f", false, "do not exclude vacancies if already applied")
	runCmd.Flags().BoolP("auto-approve", "y", false, "apply to the configured selection without asking")
	runCmd.Flags().StringP("exclude-file", "e", "", "special file with vacancies to exclude. Default is unset.")

	viper.BindPFlag("exclude-file", runCmd.Flags().Lookup("exclude-file"))
}

// session keeps what the prompt actions need.
type session struct {
	config  *Config
	logger  *zap.Logger
	applier *apply.Service
	ranked  []scoring.ScoredVacancy
}

// run is the main command for the cli.
func run(cmd *cobra.Command) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}
	defer logger.Sync()

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the hh-scout", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	if config.Apply.Resume == "" {
		logger.Fatal("resume title is required under apply.resume to apply to vacancies")
	}

	selection, err := apply.ParseSelection(config.Apply.Selection)
	if err != nil {
		logger.Fatal("parsing apply.selection", zap.Error(err))
	}

	hh, err := newHHClient(config, logger, true)
	if err != nil {
		logger.Fatal(
			"loading headhunter token",
			zap.Error(err),
			zap.String("hint", "set HH_TOKEN_FILE environment variable or the 'token-file' key in the configuration file"),
		)
	}

	resumes, err := hh.GetMineResumes(ctx)
	if err != nil {
		logger.Fatal("getting mine resumes", zap.Error(err))
	}

	logger.Info("getting mine resumes", zap.Int("count", resumes.Len()))

	selectedResume := resumes.FindByTitle(config.Apply.Resume)
	if selectedResume == nil {
		logger.Fatal("resume with given title not found",
			zap.Any("existed resumes titles", resumes.Titles()),
			zap.String("resume title", config.Apply.Resume),
		)
	}

	gen, err := newGenerator(ctx, config.AI, logger)
	if err != nil {
		logger.Warn("ai is disabled", zap.Error(err))
	}

	rdb := newRedis(ctx, config, logger)
	if rdb != nil {
		defer rdb.Close()
	}

	prof, resumeText, err := loadProfile(ctx, config, hh, selectedResume, newAnalyzer(config, gen, rdb, logger))
	if err != nil {
		logger.Fatal("building a profile", zap.Error(err))
	}

	var sent *store.SentRepository
	if config.Database != nil && config.Database.URL != "" {
		pool, err := store.NewPostgresPool(ctx, config.Database.URL)
		if err != nil {
			logger.Fatal("connecting to database", zap.Error(err))
		}
		defer pool.Close()
		sent = store.NewSentRepository(pool)
	}

	filters := prepareFilters(cmd, hh, config, sent, logger)
	p := pipeline.New(search.NewOrchestrator(hh, logger), filters, newRanker(config, logger), logger)

	res, err := p.Run(ctx, prof, config.Apply.UserID)
	if err != nil {
		logger.Fatal("searching vacancies", zap.Error(err))
	}

	if len(res.Ranked) == 0 {
		logger.Info("exiting", zap.String("reason", "no vacancies found"))
		return
	}

	deps := apply.Deps{HH: hh, Logger: logger}
	if sent != nil {
		deps.Sent = sent
	}
	if gen != nil && config.Apply.CoverLetters {
		deps.Letters = gemini.NewCoverLetterWriter(gen, logger, maxLogLength(config.AI))
	}

	applier, err := apply.New(apply.Config{
		ResumeID:       selectedResume.ID,
		ResumeText:     resumeText,
		UserID:         config.Apply.UserID,
		DefaultMessage: config.Apply.Message,
		Interval:       applyInterval(config),
	}, deps)
	if err != nil {
		logger.Fatal("preparing applications", zap.Error(err))
	}

	s := &session{config: config, logger: logger, applier: applier, ranked: res.Ranked}
	printRanked(logger, res.Ranked)

	autoApprove, _ := cmd.Flags().GetBool("auto-approve")
	if autoApprove {
		if err := s.apply(ctx, selection); err != nil {
			logger.Fatal("applying", zap.Error(err))
		}
		return
	}

	prompt := promptui.Select{
		Label: "Procced?",
		Items: promptItems(config),
	}

	for {
		_, action, err := prompt.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}

		logger.Info("current list of vacancies", zap.Int("count", len(s.ranked)))

		if err := s.handleAction(ctx, action); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}
	}
}

func promptItems(config *Config) []string {
	items := []string{
		PromptApplyAll, PromptApplyTop5, PromptApplyTop10, PromptNo,
		PromptReportByEmployers, PromptVacanciesToFile,
	}
	if config.ExcludeFile != "" {
		items = append(items, PromptAppendToExcludeFile)
	}
	return items
}

func (s *session) handleAction(ctx context.Context, action string) error {
	switch action {
	case PromptApplyAll:
		return s.apply(ctx, apply.All)
	case PromptApplyTop5:
		return s.apply(ctx, apply.Top5)
	case PromptApplyTop10:
		return s.apply(ctx, apply.Top10)
	case PromptNo:
		s.logger.Info("exiting", zap.String("reason", "got no from prompt"))
		return errExit
	case PromptReportByEmployers:
		pretty, _ := json.MarshalIndent(s.vacancies().ReportByEmployer(), "", "  ")
		s.logger.Info(string(pretty), zap.Int("vacancies count", len(s.ranked)))
		return nil
	case PromptVacanciesToFile:
		filename, err := s.vacancies().DumpToTmpFile()
		if err != nil {
			return fmt.Errorf("dump results to file: %w", err)
		}
		s.logger.Info("dumping result to file", zap.String("filename", filename))
		return nil
	case PromptAppendToExcludeFile:
		return s.appendToExcludeFile()
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

func (s *session) apply(ctx context.Context, selection apply.Selection) error {
	res, err := s.applier.Apply(ctx, s.ranked, selection)
	if err != nil {
		return err
	}

	for id, err := range res.Errors {
		s.logger.Warn("application failed", zap.String("vacancy_id", id), zap.Error(err))
	}

	s.logger.Info("applications sent",
		zap.Int("succeeded", len(res.Succeeded)),
		zap.Int("failed", len(res.Failed)),
		zap.Int("skipped", len(res.Skipped)),
	)

	return errExit
}

func (s *session) appendToExcludeFile() error {
	file := s.config.ExcludeFile

	excluded, err := headhunter.GetExcludedVacanciesFromFile(file)
	if err != nil {
		return err
	}

	excluded.Append(s.vacancies().ToExcluded(excludeReason))

	if err := excluded.ToFile(file); err != nil {
		return err
	}

	s.logger.Info("appended to exclude file", zap.String("filename", file), zap.Int("count", len(s.ranked)))
	return errExit
}

func (s *session) vacancies() *headhunter.Vacancies {
	items := make([]*headhunter.Vacancy, 0, len(s.ranked))
	for _, sv := range s.ranked {
		items = append(items, sv.Vacancy)
	}
	return &headhunter.Vacancies{Items: items}
}

func printRanked(logger *zap.Logger, ranked []scoring.ScoredVacancy) {
	for i, sv := range ranked {
		logger.Info(fmt.Sprintf("%d. %s", i+1, sv.Vacancy.Name),
			zap.String("vacancy_id", sv.Vacancy.ID),
			zap.String("employer", sv.Vacancy.Employer.Name),
			zap.Float64("score", sv.Score),
			zap.String("salary", sv.Vacancy.Salary.String()),
			zap.String("url", sv.Vacancy.AlternateURL),
		)
	}
}

func applyInterval(config *Config) time.Duration {
	if config.Apply.Interval > 0 {
		return config.Apply.Interval
	}
	return apply.DefaultInterval
}

func prepareFilters(cmd *cobra.Command, hh *headhunter.Client, config *Config, sent *store.SentRepository, logger *zap.Logger) *filtering.Filtering {
	steps := baseFilters(config, logger)
	steps = append(steps, prepareAppliedHistoryFilter(cmd, hh, logger))

	if sent != nil {
		steps = append(steps, filtering.NewSentHistory(
			filtering.SentHistoryConfig{UserID: config.Apply.UserID},
			&filtering.SentHistoryDeps{Store: sent, Logger: logger},
		))
	}

	return filtering.New(logger, steps...)
}

func prepareAppliedHistoryFilter(cmd *cobra.Command, client *headhunter.Client, logger *zap.Logger) filtering.Filter {
	ignore := false
	if cmd != nil {
		if v, err := cmd.Flags().GetBool("do-not-exclude-applied"); err == nil {
			ignore = v
		}
	}

	cfg := &filtering.AppliedHistoryConfig{Ignore: ignore}
	deps := &filtering.AppliedHistoryDeps{
		HH:     client,
		Logger: logger,
	}

	return filtering.NewAppliedHistory(cfg, deps)
}
