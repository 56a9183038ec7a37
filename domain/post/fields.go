package post

import "encoding/json"

// Fields holds the top-level members of a request body. Keys match exactly,
// so "Title" is not "title". A body that is not a JSON object has no fields.
type Fields map[string]json.RawMessage

func ParseFields(body []byte) Fields {
	var f Fields
	if err := json.Unmarshal(body, &f); err != nil {
		return Fields{}
	}
	if f == nil {
		return Fields{}
	}
	return f
}

// String returns the member named key when it is a JSON string. Absent
// members, null and values of any other type report false.
func (f Fields) String(key string) (string, bool) {
	raw, ok := f[key]
	if !ok || len(raw) == 0 || raw[0] != '"' {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

// Draft reads a create payload. Each field is judged on its own: a field
// that is not a string ends up empty and Validate reports it as missing.
func (f Fields) Draft() Draft {
	title, _ := f.String(FieldTitle)
	content, _ := f.String(FieldContent)
	return Draft{Title: title, Content: content}
}

// Patch reads an update payload. Only string members replace a value.
func (f Fields) Patch() Patch {
	var patch Patch
	if title, ok := f.String(FieldTitle); ok {
		patch.Title = &title
	}
	if content, ok := f.String(FieldContent); ok {
		patch.Content = &content
	}
	return patch
}
