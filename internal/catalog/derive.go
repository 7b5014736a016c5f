package catalog

import (
	"strings"

	"cinestream/internal/movieapi"
)

const (
	OtherCategory  = "Other"
	DefaultLatest  = 6
	DefaultPreview = 4
)

// Latest returns the movies flagged is_latest, in list order, capped at limit.
func Latest(movies []movieapi.Movie, limit int) []movieapi.Movie {
	if limit <= 0 {
		limit = DefaultLatest
	}
	out := make([]movieapi.Movie, 0, limit)
	for _, m := range movies {
		if !m.IsLatest {
			continue
		}
		out = append(out, m)
		if len(out) == limit {
			break
		}
	}
	return out
}

// Trailers returns the movies eligible for the hero rotation.
func Trailers(movies []movieapi.Movie) []movieapi.Movie {
	out := make([]movieapi.Movie, 0, len(movies))
	for _, m := range movies {
		if m.HasTrailer() {
			out = append(out, m)
		}
	}
	return out
}

type Group struct {
	Name   string
	Movies []movieapi.Movie
}

// CategoryKey is the grouping key of a movie; blank categories fall into Other.
func CategoryKey(m movieapi.Movie) string {
	if c := strings.TrimSpace(m.Category); c != "" {
		return c
	}
	return OtherCategory
}

// GroupByCategory partitions movies by category. Groups appear in the order
// their category is first seen, and movies keep list order within a group.
func GroupByCategory(movies []movieapi.Movie) []Group {
	index := make(map[string]int)
	var groups []Group
	for _, m := range movies {
		key := CategoryKey(m)
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, Group{Name: key})
		}
		groups[i].Movies = append(groups[i].Movies, m)
	}
	return groups
}

// Categories lists unique category keys in first-appearance order.
func Categories(movies []movieapi.Movie) []string {
	groups := GroupByCategory(movies)
	out := make([]string, len(groups))
	for i, g := range groups {
		out[i] = g.Name
	}
	return out
}

// Visible is the slice of a group a page shows.
func Visible(g Group, expanded bool, preview int) []movieapi.Movie {
	if preview <= 0 {
		preview = DefaultPreview
	}
	if expanded || len(g.Movies) <= preview {
		return g.Movies
	}
	return g.Movies[:preview]
}

// Collapsible reports whether the group needs a View All / View Less toggle.
func Collapsible(g Group, preview int) bool {
	if preview <= 0 {
		preview = DefaultPreview
	}
	return len(g.Movies) > preview
}

// DisplayName capitalises a category heading: "webseries" -> "Webseries".
func DisplayName(category string) string {
	category = strings.TrimSpace(category)
	if category == "" {
		return OtherCategory
	}
	r := []rune(strings.ToLower(category))
	return strings.ToUpper(string(r[0])) + string(r[1:])
}

// Expansion is the set of categories whose full list is shown. The zero value
// is ready to use.
type Expansion struct {
	set map[string]struct{}
}

func (e *Expansion) Toggle(category string) bool {
	if e.set == nil {
		e.set = make(map[string]struct{})
	}
	if _, ok := e.set[category]; ok {
		delete(e.set, category)
		return false
	}
	e.set[category] = struct{}{}
	return true
}

func (e *Expansion) Expanded(category string) bool {
	_, ok := e.set[category]
	return ok
}
