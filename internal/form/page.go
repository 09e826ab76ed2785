package form

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/godilite/survey-form/internal/survey"
)

const starPrefix = "star-"

// StarOption is one selectable star inside a rating group.
type StarOption struct {
	Value   int
	Checked bool
}

// Page exposes the rating groups of a submitted page. Group reports false
// when the page has no container for key.
type Page interface {
	Group(key string) ([]StarOption, bool)
}

// ParseStarValue maps an option token ("3" or "star-3") to its rating.
func ParseStarValue(token string) (int, bool) {
	token = strings.TrimPrefix(strings.TrimSpace(token), starPrefix)
	n, err := strconv.Atoi(token)
	if err != nil || n < survey.MinRating || n > survey.MaxRating {
		return 0, false
	}
	return n, true
}

func starOptions(isChecked func(value int) bool) []StarOption {
	options := make([]StarOption, 0, survey.MaxRating)
	for v := survey.MinRating; v <= survey.MaxRating; v++ {
		options = append(options, StarOption{Value: v, Checked: isChecked(v)})
	}
	return options
}

func knownGroup(key string) bool {
	for _, k := range survey.GroupKeys {
		if k == key {
			return true
		}
	}
	return false
}

// ValuesPage reads rating groups from a posted HTML form, where each group
// is a set of radio inputs named after the group key.
type ValuesPage struct {
	values url.Values
}

func NewValuesPage(values url.Values) ValuesPage {
	return ValuesPage{values: values}
}

func (p ValuesPage) Group(key string) ([]StarOption, bool) {
	if !knownGroup(key) {
		return nil, false
	}

	checked := make(map[int]bool)
	for _, token := range p.values[key] {
		if v, ok := ParseStarValue(token); ok {
			checked[v] = true
		}
	}
	return starOptions(func(v int) bool { return checked[v] }), true
}

// Selections is a page built from already-decided ratings, keyed by group.
// A missing key is a missing container; zero is an unanswered group.
type Selections map[string]int

func (s Selections) Group(key string) ([]StarOption, bool) {
	selected, ok := s[key]
	if !ok {
		return nil, false
	}
	return starOptions(func(v int) bool { return v == selected }), true
}
