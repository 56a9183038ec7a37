package post

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDraftValidate(t *testing.T) {
	tests := []struct {
		name    string
		draft   Draft
		missing []string
	}{
		{name: "complete", draft: Draft{Title: "T", Content: "C"}},
		{name: "no title", draft: Draft{Content: "C"}, missing: []string{"title"}},
		{name: "no content", draft: Draft{Title: "T"}, missing: []string{"content"}},
		{name: "empty", draft: Draft{}, missing: []string{"title", "content"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.draft.Validate()
			if tt.missing == nil {
				assert.NoError(t, err)
				return
			}
			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, "Missing required field(s)", verr.Message)
			assert.Equal(t, tt.missing, verr.MissingFields)
		})
	}
}

func TestApplyPatch(t *testing.T) {
	title := "New title"
	empty := ""

	p := Post{Id: 1, Title: "Old", Content: "Body"}
	p.Apply(Patch{Title: &title})
	assert.Equal(t, Post{Id: 1, Title: "New title", Content: "Body"}, p)

	p.Apply(Patch{})
	assert.Equal(t, Post{Id: 1, Title: "New title", Content: "Body"}, p)

	p.Apply(Patch{Content: &empty})
	assert.Equal(t, "", p.Content)
}

func TestSeed(t *testing.T) {
	seed := Seed()
	require.Len(t, seed, 2)
	assert.Equal(t, 1, seed[0].Id)
	assert.Equal(t, 2, seed[1].Id)

	seed[0].Title = "changed"
	assert.Equal(t, "First post", Seed()[0].Title)
}
