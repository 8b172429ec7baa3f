// Package search runs the progressive vacancy search for a profile.
package search

import (
	"fmt"
	"strings"

	"github.com/spigell/hh-scout/internal/headhunter"
	"github.com/spigell/hh-scout/internal/profile"
)

type Mode string

const (
	Strict  Mode = "strict"
	Relaxed Mode = "relaxed"
	Broad   Mode = "broad"
	Any     Mode = "any"
)

// Modes lists search modes from the most to the least specific.
var Modes = []Mode{Strict, Relaxed, Broad, Any}

const (
	defaultPeriod  = 1
	defaultPerPage = 100
	anyPerPage     = 50
)

var widerAreas = []int{
	profile.AreaMoscow,
	profile.AreaSaintPetersburg,
	profile.AreaEkaterinburg,
	profile.AreaNovosibirsk,
}

// Generator turns a profile into a search query for each mode.
type Generator struct{}

// Build returns a fresh query for the mode. Missing profile fields give
// an empty text or default areas, never an error.
func (Generator) Build(p *profile.Profile, mode Mode) headhunter.Query {
	if p == nil {
		p = &profile.Profile{}
	}

	areas := p.Areas
	if len(areas) == 0 {
		areas = profile.DefaultAreas()
	}

	q := headhunter.Query{
		Areas:   areas,
		Period:  defaultPeriod,
		PerPage: defaultPerPage,
		OrderBy: headhunter.OrderByPublicationTime,
	}

	switch mode {
	case Strict:
		q.Text = p.ExactPosition
		q.Experience = experienceCode(p)
		q.Employment = []string{"full"}
		q.OnlyWithSalary = true
		if p.HasSalary() {
			q.Salary = int(*p.SalaryFrom)
		}
	case Relaxed:
		q.Text = strings.TrimSpace(fmt.Sprintf("%s %s", p.ExactPosition, first(p.TopSkills)))
		q.Experience = experienceCode(p)
		q.Employment = []string{"full", "project"}
	case Broad:
		q.Text = broadText(p)
		q.Areas = widerAreas
	case Any:
		q.Text = anyText(p)
		q.Areas = widerAreas
		q.PerPage = anyPerPage
	}

	return headhunter.NewQuery(q)
}

func experienceCode(p *profile.Profile) string {
	if !p.ExperienceLevel.Valid() {
		return ""
	}
	return p.ExperienceCode()
}

func broadText(p *profile.Profile) string {
	if alt := first(p.AlternativePositions); alt != "" {
		return alt
	}

	words := strings.Fields(p.ExactPosition)
	if len(words) > 2 {
		words = words[:2]
	}

	return strings.Join(words, " ")
}

// anyText picks the longer of domain and field. Field wins a tie.
func anyText(p *profile.Profile) string {
	if len([]rune(p.Domain)) > len([]rune(p.Field)) {
		return p.Domain
	}
	return p.Field
}

func first(items []string) string {
	if len(items) == 0 {
		return ""
	}
	return items[0]
}
