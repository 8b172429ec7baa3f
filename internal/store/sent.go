package store

import (
	"context"
	"fmt"
	"time"
)

type SentVacancy struct {
	UserID       int64
	VacancyID    string
	VacancyName  string
	EmployerName string
	Score        float64
	SentAt       time.Time
}

type SentRepository struct {
	db  querier
	now func() time.Time
}

func NewSentRepository(db querier) *SentRepository {
	return &SentRepository{db: db, now: time.Now}
}

// MarkSent records delivered vacancies. Already recorded pairs are left untouched.
func (r *SentRepository) MarkSent(ctx context.Context, records ...SentVacancy) error {
	for _, rec := range records {
		sentAt := rec.SentAt
		if sentAt.IsZero() {
			sentAt = r.now()
		}

		_, err := r.db.Exec(ctx,
			`INSERT INTO sent_vacancies (telegram_id, vacancy_id, vacancy_name, employer_name, score, sent_at)
			 VALUES ($1, $2, $3, $4, $5, $6)
			 ON CONFLICT (telegram_id, vacancy_id) DO NOTHING`,
			rec.UserID, rec.VacancyID, rec.VacancyName, rec.EmployerName, rec.Score, sentAt,
		)
		if err != nil {
			return fmt.Errorf("mark vacancy %s as sent: %w", rec.VacancyID, err)
		}
	}

	return nil
}

func (r *SentRepository) IsSent(ctx context.Context, userID int64, vacancyID string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM sent_vacancies WHERE telegram_id = $1 AND vacancy_id = $2)`,
		userID, vacancyID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check sent vacancy %s: %w", vacancyID, err)
	}

	return exists, nil
}

// SentSince returns ids of vacancies sent to the user after since.
func (r *SentRepository) SentSince(ctx context.Context, userID int64, since time.Time) ([]string, error) {
	rows, err := r.db.Query(ctx,
		`SELECT vacancy_id FROM sent_vacancies
		 WHERE telegram_id = $1 AND sent_at > $2
		 ORDER BY sent_at`,
		userID, since,
	)
	if err != nil {
		return nil, fmt.Errorf("query sent vacancies: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan sent vacancy: %w", err)
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}
