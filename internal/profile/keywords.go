package profile

import (
	"strings"

	"github.com/spigell/hh-scout/internal/utils"
)

const fallbackPosition = "Разработчик"

var skillKeywords = []struct {
	skill    string
	keywords []string
}{
	{skill: "Python", keywords: []string{"python", "питон"}},
	{skill: "JavaScript", keywords: []string{"javascript", "js"}},
	{skill: "Java", keywords: []string{"java"}},
	{skill: "React", keywords: []string{"react"}},
	{skill: "Django", keywords: []string{"django"}},
	{skill: "PostgreSQL", keywords: []string{"postgresql", "postgres"}},
	{skill: "Docker", keywords: []string{"docker"}},
	{skill: "Git", keywords: []string{"git"}},
}

// FromKeywords builds a coarse profile from known technology keywords.
// It is used when résumé analysis is not available or failed.
func FromKeywords(text string) *Profile {
	var skills []string
	for _, entry := range skillKeywords {
		for _, kw := range entry.keywords {
			if utils.WordRegexp(kw).MatchString(text) {
				skills = append(skills, entry.skill)
				break
			}
		}
	}

	field := "python"
	if len(skills) > 0 {
		field = strings.ToLower(skills[0])
	} else {
		skills = []string{"Python"}
	}

	p := &Profile{
		ExactPosition:        fallbackPosition,
		AlternativePositions: []string{"Программист", "Developer"},
		TopSkills:            skills,
		ExperienceYears:      2,
		ExperienceLevel:      Middle,
		Areas:                DefaultAreas(),
		Domain:               "backend",
		Field:                field,
	}
	p.Normalize()

	return p
}
