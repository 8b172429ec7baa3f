package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/hh-scout/internal/headhunter"
	"github.com/spigell/hh-scout/internal/logger"
	"github.com/spigell/hh-scout/internal/scoring"
)

var scoreCmd = &cobra.Command{
	Use:   "score <vacancy-id>...",
	Short: "Print component scores of vacancies for the configured profile",
	Args:  cobra.MinimumNArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		score(args)
	},
}

func init() {
	rootCmd.AddCommand(scoreCmd)
}

type scoreReport struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Employer  string            `json:"employer"`
	Breakdown scoring.Breakdown `json:"breakdown"`
	Error     string            `json:"error,omitempty"`
}

func score(ids []string) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}
	defer logger.Sync()

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	hh, err := newHHClient(config, logger, false)
	if err != nil {
		logger.Fatal("creating hh.ru client", zap.Error(err))
	}

	var resume *headhunter.Resume
	if config.Profile.File == "" && config.Profile.ResumeFile == "" && config.Apply.Resume != "" {
		resumes, err := hh.GetMineResumes(ctx)
		if err != nil {
			logger.Fatal("getting mine resumes", zap.Error(err))
		}
		resume = resumes.FindByTitle(config.Apply.Resume)
	}

	gen, err := newGenerator(ctx, config.AI, logger)
	if err != nil {
		logger.Warn("ai is disabled", zap.Error(err))
	}

	rdb := newRedis(ctx, config, logger)
	if rdb != nil {
		defer rdb.Close()
	}

	prof, _, err := loadProfile(ctx, config, hh, resume, newAnalyzer(config, gen, rdb, logger))
	if err != nil {
		logger.Fatal("building a profile", zap.Error(err))
	}

	pretty, _ := json.MarshalIndent(prof, "", "  ")
	logger.Info(fmt.Sprintf("profile: \n %s", pretty))

	scorer := scoring.NewScorer(logger)
	reports := make([]scoreReport, 0, len(ids))

	for _, id := range ids {
		v, err := hh.GetVacancy(ctx, id)
		if err != nil {
			logger.Warn("getting vacancy", zap.String("vacancy_id", id), zap.Error(err))
			reports = append(reports, scoreReport{ID: id, Error: err.Error()})
			continue
		}

		report := scoreReport{ID: v.ID, Name: v.Name, Employer: v.Employer.Name}
		report.Breakdown, err = scorer.Evaluate(v, prof)
		if err != nil {
			report.Error = err.Error()
		}
		reports = append(reports, report)
	}

	pretty, _ = json.MarshalIndent(reports, "", "  ")
	logger.Info(string(pretty), zap.Int("vacancies count", len(reports)))
}
