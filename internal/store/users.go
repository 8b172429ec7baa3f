package store

import (
	"context"
	"fmt"
)

type User struct {
	TelegramID int64
	Username   string
	ResumeText string
	HHResumeID string
}

type Users struct {
	db querier
}

func NewUsers(db querier) *Users {
	return &Users{db: db}
}

// ListActive returns active users that have a résumé.
func (u *Users) ListActive(ctx context.Context) ([]User, error) {
	rows, err := u.db.Query(ctx,
		`SELECT telegram_id, username, resume_text, hh_resume_id
		 FROM users
		 WHERE is_active AND resume_text <> ''
		 ORDER BY telegram_id`,
	)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var user User
		if err := rows.Scan(&user.TelegramID, &user.Username, &user.ResumeText, &user.HHResumeID); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, user)
	}

	return users, rows.Err()
}

// Upsert stores the user and its résumé.
func (u *Users) Upsert(ctx context.Context, user User) error {
	_, err := u.db.Exec(ctx,
		`INSERT INTO users (telegram_id, username, resume_text, hh_resume_id)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (telegram_id) DO UPDATE
		 SET username = EXCLUDED.username,
		     resume_text = EXCLUDED.resume_text,
		     hh_resume_id = EXCLUDED.hh_resume_id,
		     is_active = TRUE`,
		user.TelegramID, user.Username, user.ResumeText, user.HHResumeID,
	)
	if err != nil {
		return fmt.Errorf("upsert user %d: %w", user.TelegramID, err)
	}
	return nil
}
