package headhunter

import (
	"context"
	"fmt"
	"net/url"
	"reflect"
	"slices"
	"strconv"
)

const (
	SearchPath = "/vacancies"

	MaxPeriod      = 30
	MaxPerPage     = 100
	DefaultPerPage = 50

	OrderByPublicationTime = "publication_time"
)

var (
	validOrders      = []string{"relevance", OrderByPublicationTime, "salary_desc", "salary_asc"}
	validExperiences = []string{"noExperience", "between1And3", "between3And6", "moreThan6"}
	validEmployments = []string{"full", "part", "project", "volunteer", "probation"}
)

// Query is a single /vacancies search request.
// Build it with NewQuery: the returned value owns its slices and is not changed afterwards.
type Query struct {
	// hhparam is custom tag for reflect. Please see buildParams.
	Text           string   `hhparam:"text"`
	Areas          []int    `hhparam:"area"`
	Experience     string   `hhparam:"experience"`
	Employment     []string `hhparam:"employment"`
	Salary         int      `hhparam:"salary"`
	OnlyWithSalary bool     `hhparam:"only_with_salary"`
	Period         int      `hhparam:"period"`
	PerPage        int      `hhparam:"per_page"`
	OrderBy        string   `hhparam:"order_by"`
	Page           int      `hhparam:"page"`
}

// NewQuery returns a cleaned copy of q: period and page size are clamped,
// unknown experience codes, employment types and orderings are dropped.
func NewQuery(q Query) Query {
	clean := Query{
		Text:           q.Text,
		Areas:          slices.Clone(q.Areas),
		Salary:         max(q.Salary, 0),
		OnlyWithSalary: q.OnlyWithSalary,
		Period:         min(max(q.Period, 0), MaxPeriod),
		PerPage:        q.PerPage,
		OrderBy:        q.OrderBy,
		Page:           max(q.Page, 0),
	}

	switch {
	case clean.PerPage <= 0:
		clean.PerPage = DefaultPerPage
	case clean.PerPage > MaxPerPage:
		clean.PerPage = MaxPerPage
	}

	if !slices.Contains(validOrders, clean.OrderBy) {
		clean.OrderBy = OrderByPublicationTime
	}

	if slices.Contains(validExperiences, q.Experience) {
		clean.Experience = q.Experience
	}

	for _, e := range q.Employment {
		if slices.Contains(validEmployments, e) && !slices.Contains(clean.Employment, e) {
			clean.Employment = append(clean.Employment, e)
		}
	}

	return clean
}

// Values renders the query to URL parameters.
func (q Query) Values() url.Values {
	return buildParams(&q)
}

type SearchResult struct {
	Items   []*Vacancy
	Found   int
	Pages   int
	Page    int
	PerPage int
}

// Search requests one page of vacancies.
func (c *Client) Search(ctx context.Context, q Query) (*SearchResult, error) {
	apiURLSearch := fmt.Sprintf("%s%s", c.APIURL, SearchPath)

	response, err := c.getItemPage(ctx, apiURLSearch, q.Values())
	if err != nil {
		return nil, err
	}

	var vacancies []*Vacancy
	if err := decodeItems(response.Items, &vacancies); err != nil {
		return nil, fmt.Errorf("decode vacancies: %w", err)
	}

	return &SearchResult{
		Items:   vacancies,
		Found:   response.Found,
		Pages:   response.Pages,
		Page:    response.Page,
		PerPage: response.PerPage,
	}, nil
}

func buildParams(params *Query) url.Values {
	q := url.Values{}
	value := reflect.ValueOf(params).Elem()

	for _, field := range reflect.VisibleFields(value.Type()) {
		key := field.Tag.Get("hhparam")
		if key == "" {
			continue
		}

		switch v := value.FieldByIndex(field.Index).Interface().(type) {
		case []int:
			for _, item := range v {
				q.Add(key, strconv.Itoa(item))
			}
		case []string:
			for _, item := range v {
				q.Add(key, item)
			}
		case bool:
			if v {
				q.Set(key, "true")
			}
		case int:
			if v != 0 {
				q.Set(key, strconv.Itoa(v))
			}
		case string:
			if v != "" {
				q.Set(key, v)
			}
		}
	}

	return q
}
