package post

import (
	"slices"
	"strings"
)

const (
	FieldTitle   = "title"
	FieldContent = "content"

	DirectionAsc  = "asc"
	DirectionDesc = "desc"
)

const (
	msgInvalidSortField = "Invalid sort field. Allowed: title, content."
	msgInvalidDirection = "Invalid direction. Allowed: asc, desc."
)

// ListOptions describes the view returned by a list read. A zero value means
// insertion order.
type ListOptions struct {
	SortField string
	Direction string
}

func (o ListOptions) Sorted() bool {
	return o.SortField != ""
}

// ParseListOptions validates raw query values. hasSort distinguishes an absent
// sort parameter from an empty one, which is rejected like any unknown field.
// direction is only checked when a sort is requested.
func ParseListOptions(sortField string, hasSort bool, direction string) (ListOptions, error) {
	if !hasSort {
		return ListOptions{}, nil
	}
	if sortField != FieldTitle && sortField != FieldContent {
		return ListOptions{}, &ValidationError{Message: msgInvalidSortField}
	}
	if direction == "" {
		direction = DirectionAsc
	}
	if direction != DirectionAsc && direction != DirectionDesc {
		return ListOptions{}, &ValidationError{Message: msgInvalidDirection}
	}
	return ListOptions{SortField: sortField, Direction: direction}, nil
}

// Sort orders posts in place by the lower-cased value of the requested field.
// Equal keys keep their relative order in both directions.
func Sort(posts []Post, opts ListOptions) {
	if !opts.Sorted() {
		return
	}
	key := func(p Post) string {
		if opts.SortField == FieldContent {
			return strings.ToLower(p.Content)
		}
		return strings.ToLower(p.Title)
	}
	slices.SortStableFunc(posts, func(a, b Post) int {
		c := strings.Compare(key(a), key(b))
		if opts.Direction == DirectionDesc {
			return -c
		}
		return c
	})
}

type SearchQuery struct {
	Title   string
	Content string
}

// NewSearchQuery trims and lower-cases both terms.
func NewSearchQuery(title, content string) SearchQuery {
	return SearchQuery{
		Title:   strings.ToLower(strings.TrimSpace(title)),
		Content: strings.ToLower(strings.TrimSpace(content)),
	}
}

func (q SearchQuery) Empty() bool {
	return q.Title == "" && q.Content == ""
}

func (q SearchQuery) Match(p Post) bool {
	if q.Title != "" && !strings.Contains(strings.ToLower(p.Title), q.Title) {
		return false
	}
	if q.Content != "" && !strings.Contains(strings.ToLower(p.Content), q.Content) {
		return false
	}
	return true
}

// Filter returns the posts matching q, preserving order.
func Filter(posts []Post, q SearchQuery) []Post {
	res := make([]Post, 0, len(posts))
	for _, p := range posts {
		if q.Match(p) {
			res = append(res, p)
		}
	}
	return res
}
