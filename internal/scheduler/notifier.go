package scheduler

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spigell/hh-scout/internal/scoring"
	"github.com/spigell/hh-scout/internal/store"
)

// LogNotifier writes the digest to the log.
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(_ context.Context, user store.User, vacancies []scoring.ScoredVacancy) error {
	lines := make([]string, 0, len(vacancies))
	for i, sv := range vacancies {
		lines = append(lines, FormatLine(i+1, sv))
	}

	n.logger.Info("vacancy digest",
		zap.Int64("user_id", user.TelegramID),
		zap.String("username", user.Username),
		zap.Strings("vacancies", lines),
	)

	return nil
}

// FormatLine renders a digest entry like "1. [82%] Go Developer / Acme / 200000-300000 RUR / https://hh.ru/vacancy/1".
func FormatLine(n int, sv scoring.ScoredVacancy) string {
	v := sv.Vacancy
	line := fmt.Sprintf("%d. [%.0f%%] %s / %s", n, sv.Score*100, v.Name, v.Employer.Name)

	if v.HasSalary() {
		line += " / " + v.Salary.String()
	}
	if v.AlternateURL != "" {
		line += " / " + v.AlternateURL
	}

	return line
}
