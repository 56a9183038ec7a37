package post

type Post struct {
	Id      int    `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Draft is the payload of a create request. Empty strings count as missing.
type Draft struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Patch is the payload of an update request. A nil field leaves the stored
// value untouched; a non-nil field replaces it, even with an empty string.
type Patch struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

func (d Draft) Validate() error {
	missing := make([]string, 0, 2)
	if d.Title == "" {
		missing = append(missing, FieldTitle)
	}
	if d.Content == "" {
		missing = append(missing, FieldContent)
	}
	if len(missing) > 0 {
		return &ValidationError{Message: "Missing required field(s)", MissingFields: missing}
	}
	return nil
}

func (d Draft) ToPost(id int) Post {
	return Post{
		Id:      id,
		Title:   d.Title,
		Content: d.Content,
	}
}

func (p *Post) Apply(patch Patch) {
	if patch.Title != nil {
		p.Title = *patch.Title
	}
	if patch.Content != nil {
		p.Content = *patch.Content
	}
}

func Seed() []Post {
	return []Post{
		{Id: 1, Title: "First post", Content: "This is the first post."},
		{Id: 2, Title: "Second post", Content: "This is the second post."},
	}
}
