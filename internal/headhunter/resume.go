package headhunter

import (
	"context"
	"fmt"
	"strings"
)

type Resumes struct {
	Items []*Resume
}

type Resume struct {
	Title string `json:"title,omitempty"`
	ID    string `json:"id,omitempty"`
}

type ResumeDetails struct {
	ID    string
	Title string
	Raw   map[string]any
}

func (c *Client) GetMineResumes(ctx context.Context) (*Resumes, error) {
	apiURLMineResumes := fmt.Sprintf("%s/resumes/%s", c.APIURL, mineResumID)

	items, err := c.GetItems(ctx, apiURLMineResumes, nil)
	if err != nil {
		return nil, err
	}

	var resumes []*Resume
	if err = decodeItems(items, &resumes); err != nil {
		return nil, err
	}

	return &Resumes{
		Items: resumes,
	}, nil
}

func (r *Resumes) Len() int {
	return len(r.Items)
}

func (r *Resumes) Titles() []string {
	titles := make([]string, 0, len(r.Items))

	for _, v := range r.Items {
		titles = append(titles, v.Title)
	}

	return titles
}

func (r *Resumes) FindByTitle(title string) *Resume {
	for _, resume := range r.Items {
		if resume.Title == title {
			return resume
		}
	}

	return nil
}

func (c *Client) GetResumeDetails(ctx context.Context, id string) (*ResumeDetails, error) {
	if id == "" {
		return nil, fmt.Errorf("resume id is required")
	}

	u := fmt.Sprintf("%s/resumes/%s", c.APIURL, id)

	var raw map[string]any
	if err := c.getJSON(ctx, u, nil, &raw); err != nil {
		return nil, err
	}

	if raw == nil {
		raw = make(map[string]any)
	}

	return &ResumeDetails{
		ID:    valueAsString(raw["id"]),
		Title: valueAsString(raw["title"]),
		Raw:   raw,
	}, nil
}

// Text flattens the resume into plain text suitable for profile analysis and cover letters.
func (d *ResumeDetails) Text() string {
	var b strings.Builder

	line := func(s string) {
		s = strings.TrimSpace(s)
		if s != "" {
			b.WriteString(s)
			b.WriteByte('\n')
		}
	}

	line(d.Title)
	line(valueAsString(d.Raw["skills"]))

	if skills, ok := d.Raw["skill_set"].([]any); ok {
		names := make([]string, 0, len(skills))
		for _, s := range skills {
			names = append(names, valueAsString(s))
		}
		line("Skills: " + strings.Join(names, ", "))
	}

	if total, ok := d.Raw["total_experience"].(map[string]any); ok {
		if months, ok := total["months"].(float64); ok && months > 0 {
			line(fmt.Sprintf("Experience: %d years", int(months)/12))
		}
	}

	if experience, ok := d.Raw["experience"].([]any); ok {
		for _, item := range experience {
			job, ok := item.(map[string]any)
			if !ok {
				continue
			}
			line(fmt.Sprintf("%s, %s", valueAsString(job["position"]), valueAsString(job["company"])))
			line(valueAsString(job["description"]))
		}
	}

	return strings.TrimSpace(b.String())
}

func valueAsString(v any) string {
	if v == nil {
		return ""
	}

	switch typed := v.(type) {
	case string:
		return typed
	case fmt.Stringer:
		return typed.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}
