package scoring

import (
	"regexp"
	"sync"

	"github.com/spigell/hh-scout/internal/utils"
)

// experiencePatterns are tried in order, the first match gives required years.
var experiencePatterns = []*regexp.Regexp{
	regexp.MustCompile(`опыт[а-я\s]*(\d+)[+\-\s]*(?:год|лет)`),
	regexp.MustCompile(`(\d+)[+\-\s]*(?:год|лет)[а-я\s]*опыт`),
	regexp.MustCompile(`от\s*(\d+)\s*(?:год|лет)`),
	regexp.MustCompile(`минимум\s*(\d+)\s*(?:год|лет)`),
	regexp.MustCompile(`не менее\s*(\d+)\s*(?:год|лет)`),
	regexp.MustCompile(`(\d+)\+?\s*(?:years?|yrs?)[a-z\s]*experience`),
	regexp.MustCompile(`experience[a-z\s:]*(\d+)\+?\s*(?:years?|yrs?)`),
}

// levelKeywords are used when no explicit number of years is written.
// They are matched as whole words, so Russian forms are listed per case.
var levelKeywords = []struct {
	keywords []string
	years    int
}{
	{keywords: []string{"junior", "стажер", "стажера", "стажёр", "стажёра"}, years: 0},
	{keywords: []string{"middle", "средний", "среднего"}, years: 2},
	{keywords: []string{"senior", "старший", "старшего"}, years: 5},
	{keywords: []string{"lead", "ведущий", "ведущего"}, years: 7},
}

var skillSynonyms = [][]string{
	{"javascript", "js"},
	{"postgresql", "postgres"},
	{"kubernetes", "k8s"},
	{"golang", "go"},
}

var htmlTag = regexp.MustCompile(`<[^>]*>`)

var wordPatterns sync.Map

func wordPattern(word string) *regexp.Regexp {
	if re, ok := wordPatterns.Load(word); ok {
		return re.(*regexp.Regexp)
	}

	re, _ := wordPatterns.LoadOrStore(word, utils.WordRegexp(word))
	return re.(*regexp.Regexp)
}
