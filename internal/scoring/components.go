package scoring

import (
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/spigell/hh-scout/internal/headhunter"
	"github.com/spigell/hh-scout/internal/profile"
)

const (
	neutralScore       = 0.5
	noRequirementScore = 0.7
	foreignAreaScore   = 0.3
)

// vacancyText is the lowercased searchable text of a vacancy without markup.
func vacancyText(v *headhunter.Vacancy) string {
	parts := []string{
		v.Name,
		v.Description,
		v.Snippet.Requirement,
		v.Snippet.Responsibility,
		strings.Join(v.SkillNames(), " "),
	}

	text := htmlTag.ReplaceAllString(strings.Join(parts, " "), " ")
	return strings.ToLower(text)
}

func skillVariants(skill string) []string {
	skill = strings.ToLower(strings.TrimSpace(skill))
	if skill == "" {
		return nil
	}

	for _, group := range skillSynonyms {
		if slices.Contains(group, skill) {
			return group
		}
	}

	return []string{skill}
}

func mentions(text, skill string) bool {
	for _, variant := range skillVariants(skill) {
		if wordPattern(variant).MatchString(text) {
			return true
		}
	}
	return false
}

func titleScore(v *headhunter.Vacancy, p *profile.Profile) float64 {
	title := strings.ToLower(v.Name)
	score := 0.0

	position := strings.ToLower(strings.TrimSpace(p.ExactPosition))
	if position != "" && strings.Contains(title, position) {
		score += 0.6
	}

	if len(p.TopSkills) > 0 {
		found := 0
		for _, skill := range p.TopSkills {
			skill = strings.ToLower(strings.TrimSpace(skill))
			if skill != "" && strings.Contains(title, skill) {
				found++
			}
		}
		score += 0.4 * float64(found) / float64(len(p.TopSkills))
	}

	return min(score, 1)
}

func skillsScore(text string, p *profile.Profile) float64 {
	if len(p.TopSkills) == 0 {
		return neutralScore
	}

	matched := 0
	for _, skill := range p.TopSkills {
		if mentions(text, skill) {
			matched++
		}
	}

	ratio := float64(matched) / float64(len(p.TopSkills))
	bonus := min(0.1*float64(matched), 0.3)

	return min(ratio+bonus, 1)
}

// requiredYears extracts the experience requirement. The second value is false
// when the vacancy states none.
func requiredYears(text string) (int, bool) {
	for _, re := range experiencePatterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if years, err := strconv.Atoi(m[1]); err == nil {
			return years, true
		}
	}

	for _, level := range levelKeywords {
		for _, kw := range level.keywords {
			if wordPattern(kw).MatchString(text) {
				return level.years, true
			}
		}
	}

	return 0, false
}

func experienceScore(text string, p *profile.Profile) float64 {
	required, ok := requiredYears(text)
	if !ok {
		return noRequirementScore
	}

	years := p.ExperienceYears
	if years >= required {
		if years <= required*2 {
			return 1
		}
		// Overqualified.
		return 0.8
	}

	return max(0, 1-float64(required-years)*0.2)
}

func salaryScore(v *headhunter.Vacancy, p *profile.Profile) float64 {
	if !v.HasSalary() || !p.HasSalary() {
		return neutralScore
	}

	expected := *p.SalaryFrom

	var from, to float64
	if v.Salary.From != nil {
		from = *v.Salary.From
	}
	to = from
	if v.Salary.To != nil {
		to = *v.Salary.To
	}

	switch {
	case from >= expected:
		return 1
	case to >= expected:
		return 0.8
	default:
		return max(0, 1-(expected-to)/expected)
	}
}

func locationScore(v *headhunter.Vacancy, p *profile.Profile) float64 {
	if strings.Contains(strings.ToLower(v.Schedule.ID), "remote") {
		return 1
	}

	if area, err := strconv.Atoi(v.Area.ID); err == nil && slices.Contains(p.Areas, area) {
		return 1
	}

	return foreignAreaScore
}

func freshnessScore(v *headhunter.Vacancy, now time.Time) float64 {
	published, err := v.Published()
	if err != nil {
		return neutralScore
	}

	hours := now.Sub(published).Hours()
	switch {
	case hours <= 6:
		return 1
	case hours <= 24:
		return 0.8
	case hours <= 72:
		return 0.6
	default:
		return 0.3
	}
}
