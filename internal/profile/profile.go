// Package profile describes the candidate a search is run for.
package profile

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Level string

const (
	Junior Level = "junior"
	Middle Level = "middle"
	Senior Level = "senior"
	Lead   Level = "lead"
)

// hh.ru region ids.
const (
	AreaMoscow          = 1
	AreaSaintPetersburg = 2
	AreaEkaterinburg    = 3
	AreaNovosibirsk     = 4
)

const MaxTopSkills = 5

var ErrInvalidProfile = errors.New("invalid profile")

var validate = validator.New(validator.WithRequiredStructEnabled())

type Profile struct {
	ExactPosition        string   `json:"exact_position" mapstructure:"exact_position" validate:"max=200"`
	AlternativePositions []string `json:"alternative_positions,omitempty" mapstructure:"alternative_positions" validate:"dive,required"`
	TopSkills            []string `json:"top_skills,omitempty" mapstructure:"top_skills" validate:"max=5,dive,required"`
	ExperienceYears      int      `json:"experience_years" mapstructure:"experience_years" validate:"gte=0,lte=70"`
	ExperienceLevel      Level    `json:"experience_level" mapstructure:"experience_level" validate:"oneof=junior middle senior lead"`
	SalaryFrom           *float64 `json:"salary_from,omitempty" mapstructure:"salary_from" validate:"omitempty,gt=0"`
	Areas                []int    `json:"areas" mapstructure:"areas" validate:"min=1,dive,gt=0"`
	Domain               string   `json:"domain,omitempty" mapstructure:"domain"`
	Field                string   `json:"field,omitempty" mapstructure:"field"`
}

func DefaultAreas() []int {
	return []int{AreaMoscow, AreaSaintPetersburg}
}

// New normalizes a copy of p and validates it.
func New(p Profile) (*Profile, error) {
	out := p
	out.AlternativePositions = slices.Clone(p.AlternativePositions)
	out.TopSkills = slices.Clone(p.TopSkills)
	out.Areas = slices.Clone(p.Areas)
	if p.SalaryFrom != nil {
		salary := *p.SalaryFrom
		out.SalaryFrom = &salary
	}

	out.Normalize()

	if err := out.Validate(); err != nil {
		return nil, err
	}

	return &out, nil
}

// Normalize trims fields, applies defaults and derives the level from years when needed.
func (p *Profile) Normalize() {
	p.ExactPosition = strings.TrimSpace(p.ExactPosition)
	p.Domain = strings.TrimSpace(p.Domain)
	p.Field = strings.TrimSpace(p.Field)
	p.AlternativePositions = compact(p.AlternativePositions)
	p.TopSkills = compact(p.TopSkills)

	if len(p.TopSkills) > MaxTopSkills {
		p.TopSkills = p.TopSkills[:MaxTopSkills]
	}

	p.ExperienceYears = max(p.ExperienceYears, 0)

	level := Level(strings.ToLower(strings.TrimSpace(string(p.ExperienceLevel))))
	if !level.Valid() {
		level = LevelFromYears(p.ExperienceYears)
	}
	p.ExperienceLevel = level

	if p.SalaryFrom != nil && !finitePositive(*p.SalaryFrom) {
		p.SalaryFrom = nil
	}

	areas := make([]int, 0, len(p.Areas))
	for _, a := range p.Areas {
		if a > 0 && !slices.Contains(areas, a) {
			areas = append(areas, a)
		}
	}
	if len(areas) == 0 {
		areas = DefaultAreas()
	}
	p.Areas = areas
}

func (p *Profile) Validate() error {
	if p == nil {
		return fmt.Errorf("%w: profile is nil", ErrInvalidProfile)
	}

	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidProfile, err)
	}

	return nil
}

// ExperienceCode maps the level to hh.ru experience filter value.
func (p *Profile) ExperienceCode() string {
	switch p.ExperienceLevel {
	case Junior:
		return "between1And3"
	case Lead:
		return "moreThan6"
	default:
		return "between3And6"
	}
}

func (p *Profile) HasSalary() bool {
	return p.SalaryFrom != nil && finitePositive(*p.SalaryFrom)
}

func finitePositive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}

func (l Level) Valid() bool {
	switch l {
	case Junior, Middle, Senior, Lead:
		return true
	}
	return false
}

func LevelFromYears(years int) Level {
	switch {
	case years <= 1:
		return Junior
	case years <= 3:
		return Middle
	case years <= 6:
		return Senior
	default:
		return Lead
	}
}

// Load reads a profile from yaml or json file.
func Load(path string) (*Profile, error) {
	v := viper.New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read profile %s: %w", path, err)
	}

	var p Profile
	if err := v.Unmarshal(&p); err != nil {
		return nil, fmt.Errorf("decode profile %s: %w", path, err)
	}

	return New(p)
}

func compact(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item != "" && !slices.Contains(out, item) {
			out = append(out, item)
		}
	}
	return out
}
