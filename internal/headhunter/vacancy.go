package headhunter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"
)

// PublishedAtLayout is the timestamp layout hh.ru uses, e.g. 2024-01-15T10:30:00+0300.
const PublishedAtLayout = "2006-01-02T15:04:05-0700"

type Vacancies struct {
	Items []*Vacancy
}

type IDName struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

type Area struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
	URL  string `json:"url,omitempty"`
}

type Salary struct {
	From     *float64 `json:"from,omitempty"`
	To       *float64 `json:"to,omitempty"`
	Currency string   `json:"currency,omitempty"`
	Gross    bool     `json:"gross,omitempty"`
}

type Employer struct {
	ID           string `json:"id,omitempty"`
	Name         string `json:"name,omitempty"`
	URL          string `json:"url,omitempty"`
	AlternateURL string `json:"alternate_url,omitempty"`
	Trusted      bool   `json:"trusted,omitempty"`
}

type KeySkill struct {
	Name string `json:"name,omitempty"`
}

type Snippet struct {
	Requirement    string `json:"requirement,omitempty"`
	Responsibility string `json:"responsibility,omitempty"`
}

type Vacancy struct {
	ID           string     `json:"id,omitempty"`
	Name         string     `json:"name,omitempty"`
	Area         Area       `json:"area,omitempty"`
	HasTest      bool       `json:"has_test,omitempty"`
	Salary       *Salary    `json:"salary,omitempty"`
	Experience   IDName     `json:"experience,omitempty"`
	Schedule     IDName     `json:"schedule,omitempty"`
	Employment   IDName     `json:"employment,omitempty"`
	Employer     Employer   `json:"employer,omitempty"`
	Description  string     `json:"description,omitempty"`
	KeySkills    []KeySkill `json:"key_skills,omitempty"`
	Snippet      Snippet    `json:"snippet,omitempty"`
	Archived     bool       `json:"archived,omitempty"`
	CreatedAt    string     `json:"created_at,omitempty"`
	PublishedAt  string     `json:"published_at,omitempty"`
	AlternateURL string     `json:"alternate_url,omitempty"`
}

// HasSalary reports whether at least one salary bound is published.
func (va *Vacancy) HasSalary() bool {
	return va.Salary != nil && (va.Salary.From != nil || va.Salary.To != nil)
}

func (va *Vacancy) SkillNames() []string {
	names := make([]string, 0, len(va.KeySkills))
	for _, s := range va.KeySkills {
		names = append(names, s.Name)
	}
	return names
}

// Published parses PublishedAt. Both hh.ru layout and RFC 3339 are accepted.
func (va *Vacancy) Published() (time.Time, error) {
	if va.PublishedAt == "" {
		return time.Time{}, errors.New("published_at is empty")
	}

	if t, err := time.Parse(PublishedAtLayout, va.PublishedAt); err == nil {
		return t, nil
	}

	return time.Parse(time.RFC3339, va.PublishedAt)
}

func (s *Salary) String() string {
	if s == nil {
		return "not specified"
	}

	bound := func(v *float64) string {
		if v == nil {
			return "?"
		}
		return fmt.Sprintf("%.0f", *v)
	}

	return strings.TrimSpace(fmt.Sprintf("%s-%s %s", bound(s.From), bound(s.To), s.Currency))
}

// GetVacancy returns full vacancy including description and key skills.
func (c *Client) GetVacancy(ctx context.Context, id string) (*Vacancy, error) {
	if id == "" {
		return nil, errors.New("vacancy id is required")
	}

	var vacancy Vacancy
	if err := c.getJSON(ctx, fmt.Sprintf("%s%s/%s", c.APIURL, SearchPath, id), nil, &vacancy); err != nil {
		return nil, err
	}

	return &vacancy, nil
}

func (v *Vacancies) Len() int {
	return len(v.Items)
}

func (v *Vacancies) IDs() []string {
	ids := make([]string, 0, len(v.Items))
	for _, vacancy := range v.Items {
		ids = append(ids, vacancy.ID)
	}
	return ids
}

func (v *Vacancies) FindByID(id string) *Vacancy {
	for _, vacancy := range v.Items {
		if vacancy.ID == id {
			return vacancy
		}
	}
	return nil
}

// Drop removes every vacancy matching the predicate and returns removed ids.
// Order of the remaining vacancies is preserved.
func (v *Vacancies) Drop(match func(*Vacancy) bool) []string {
	var dropped []string
	kept := v.Items[:0]

	for _, vacancy := range v.Items {
		if match(vacancy) {
			dropped = append(dropped, vacancy.ID)
			continue
		}
		kept = append(kept, vacancy)
	}

	clear(v.Items[len(kept):])
	v.Items = kept

	return dropped
}

func (v *Vacancies) ExcludeWithTest() []string {
	return v.Drop(func(va *Vacancy) bool { return va.HasTest })
}

func (v *Vacancies) ExcludeIDs(ids []string) []string {
	return v.Drop(func(va *Vacancy) bool { return slices.Contains(ids, va.ID) })
}

func (v *Vacancies) ExcludeEmployers(ids []string) []string {
	return v.Drop(func(va *Vacancy) bool { return slices.Contains(ids, va.Employer.ID) })
}

// ReportByEmployer groups vacancies by employer for the interactive report.
func (v *Vacancies) ReportByEmployer() map[string][]map[string]string {
	report := make(map[string][]map[string]string)
	for _, vacancy := range v.Items {
		key := fmt.Sprintf("%s (%s)", vacancy.Employer.Name, vacancy.Employer.ID)
		report[key] = append(report[key], map[string]string{
			"name":                 vacancy.Name,
			"url":                  vacancy.AlternateURL,
			"area":                 vacancy.Area.Name,
			"salary":               vacancy.Salary.String(),
			"brief requirement":    vacancy.Snippet.Requirement,
			"brief responsibility": vacancy.Snippet.Responsibility,
		})
	}
	return report
}

func (v *Vacancies) DumpToTmpFile() (string, error) {
	file, err := os.CreateTemp("", "vacancies_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return file.Name(), nil
}
