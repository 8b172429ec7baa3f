package headhunter

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
)

const (
	apiNegotiationPath        = "/negotiations"
	allStatusesExceptArchived = "non_archived"
)

type Negotiations []*Negotiation

type Negotiation struct {
	ID        string   `json:"id"`
	CreatedAt string   `json:"created_at"`
	URL       string   `json:"url"`
	Vacancy   *Vacancy `json:"vacancy"`
}

func (c *Client) GetNegotiations(ctx context.Context) (Negotiations, error) {
	apiURLMineNegotiations := fmt.Sprintf("%s%s", c.APIURL, apiNegotiationPath)

	q := url.Values{}
	// We never need our archived negotiations
	q.Add("status", allStatusesExceptArchived)
	q.Add("per_page", perPage)

	items, err := c.GetItems(ctx, apiURLMineNegotiations, q)
	if err != nil {
		return nil, err
	}

	var negotiations Negotiations
	if err = decodeItems(items, &negotiations); err != nil {
		return nil, err
	}

	return negotiations, nil
}

func (n Negotiations) VacanciesIDs() []string {
	ids := make([]string, 0, len(n))

	for _, v := range n {
		if v.Vacancy == nil {
			continue
		}
		ids = append(ids, v.Vacancy.ID)
	}

	return ids
}

// ApplyWithMessage creates negotiation for the vacancy with given resume and cover letter.
// A 403 answer is reported as ErrApplyForbidden with the hh.ru reason.
func (c *Client) ApplyWithMessage(ctx context.Context, resumeID, vacancyID, message string) error {
	apiURLMineNegotiations := fmt.Sprintf("%s%s", c.APIURL, apiNegotiationPath)

	data := map[string]string{
		"resume_id":  resumeID,
		"vacancy_id": vacancyID,
		"message":    message,
	}

	err := c.postFormData(ctx, apiURLMineNegotiations, data)

	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusForbidden {
		return fmt.Errorf("%w: %s", ErrApplyForbidden, apiErr.Reason())
	}

	return err
}
