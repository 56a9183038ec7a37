package storage

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/VanessaDre/masterblog-api/domain/post"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string {
	return &s
}

func TestAddPostAssignsNextId(t *testing.T) {
	ctx := context.Background()
	im := NewInMemoryStorage(post.Seed())

	p, err := im.AddPost(ctx, post.Draft{Title: "T", Content: "C"})
	require.NoError(t, err)
	assert.Equal(t, &post.Post{Id: 3, Title: "T", Content: "C"}, p)

	posts, err := im.GetPosts(ctx, post.ListOptions{})
	require.NoError(t, err)
	require.Len(t, posts, 3)
	assert.Equal(t, 3, posts[2].Id)
}

func TestAddPostEmptyCollectionStartsAtOne(t *testing.T) {
	im := NewInMemoryStorage(nil)
	p, err := im.AddPost(context.Background(), post.Draft{Title: "T", Content: "C"})
	require.NoError(t, err)
	assert.Equal(t, 1, p.Id)
}

func TestAddPostIdFollowsMaxNotLength(t *testing.T) {
	ctx := context.Background()
	im := NewInMemoryStorage([]post.Post{{Id: 9, Title: "a", Content: "b"}, {Id: 4, Title: "c", Content: "d"}})
	p, err := im.AddPost(ctx, post.Draft{Title: "T", Content: "C"})
	require.NoError(t, err)
	assert.Equal(t, 10, p.Id)
}

func TestAddPostRejectsMissingFields(t *testing.T) {
	ctx := context.Background()
	im := NewInMemoryStorage(post.Seed())

	_, err := im.AddPost(ctx, post.Draft{})
	var verr *post.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []string{"title", "content"}, verr.MissingFields)
	assert.Equal(t, 2, im.Len())
}

func TestModifyPostPartial(t *testing.T) {
	ctx := context.Background()
	im := NewInMemoryStorage(post.Seed())

	p, err := im.ModifyPost(ctx, 1, post.Patch{Title: strPtr("Renamed")})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", p.Title)
	assert.Equal(t, "This is the first post.", p.Content)

	p, err = im.ModifyPost(ctx, 1, post.Patch{})
	require.NoError(t, err)
	assert.Equal(t, &post.Post{Id: 1, Title: "Renamed", Content: "This is the first post."}, p)

	p, err = im.ModifyPost(ctx, 1, post.Patch{Content: strPtr("")})
	require.NoError(t, err)
	assert.Equal(t, "", p.Content)
}

func TestModifyPostNotFound(t *testing.T) {
	ctx := context.Background()
	im := NewInMemoryStorage(post.Seed())

	_, err := im.ModifyPost(ctx, 42, post.Patch{Title: strPtr("x")})
	assert.ErrorIs(t, err, ErrPostNotFound)
	assert.Equal(t, 2, im.Len())
}

func TestModifyPostReturnsCopy(t *testing.T) {
	ctx := context.Background()
	im := NewInMemoryStorage(post.Seed())

	p, err := im.ModifyPost(ctx, 2, post.Patch{})
	require.NoError(t, err)
	p.Title = "mutated by caller"

	stored, err := im.GetPostById(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "Second post", stored.Title)
}

func TestDeletePost(t *testing.T) {
	ctx := context.Background()
	im := NewInMemoryStorage(post.Seed())
	_, err := im.AddPost(ctx, post.Draft{Title: "T", Content: "C"})
	require.NoError(t, err)

	require.NoError(t, im.DeletePost(ctx, 2))
	posts, err := im.GetPosts(ctx, post.ListOptions{})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 3}, []int{posts[0].Id, posts[1].Id})

	_, err = im.GetPostById(ctx, 2)
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestDeletePostNotFound(t *testing.T) {
	ctx := context.Background()
	im := NewInMemoryStorage(post.Seed())

	err := im.DeletePost(ctx, 7)
	assert.ErrorIs(t, err, ErrPostNotFound)
	posts, _ := im.GetPosts(ctx, post.ListOptions{})
	assert.Equal(t, post.Seed(), posts)
}

func TestGetPostsSortDoesNotPersist(t *testing.T) {
	ctx := context.Background()
	im := NewInMemoryStorage(post.Seed())
	_, err := im.AddPost(ctx, post.Draft{Title: "Alpha", Content: "C"})
	require.NoError(t, err)

	sorted, err := im.GetPosts(ctx, post.ListOptions{SortField: post.FieldTitle, Direction: post.DirectionAsc})
	require.NoError(t, err)
	assert.Equal(t, "Alpha", sorted[0].Title)

	plain, err := im.GetPosts(ctx, post.ListOptions{})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, []int{plain[0].Id, plain[1].Id, plain[2].Id})
}

func TestSearchPosts(t *testing.T) {
	ctx := context.Background()
	im := NewInMemoryStorage(post.Seed())

	res, err := im.SearchPosts(ctx, post.NewSearchQuery("first", ""))
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, 1, res[0].Id)

	res, err = im.SearchPosts(ctx, post.NewSearchQuery("", ""))
	require.NoError(t, err)
	assert.Len(t, res, 2)

	res, err = im.SearchPosts(ctx, post.NewSearchQuery("nothing", ""))
	require.NoError(t, err)
	assert.NotNil(t, res)
	assert.Empty(t, res)
}

func TestConcurrentAddsKeepIdsUnique(t *testing.T) {
	ctx := context.Background()
	im := NewInMemoryStorage(post.Seed())

	const n = 64
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = im.AddPost(ctx, post.Draft{Title: "T", Content: "C"})
			_, _ = im.SearchPosts(ctx, post.NewSearchQuery("t", ""))
		}()
	}
	wg.Wait()

	posts, err := im.GetPosts(ctx, post.ListOptions{})
	require.NoError(t, err)
	require.Len(t, posts, n+2)
	seen := make(map[int]bool)
	for _, p := range posts {
		assert.False(t, seen[p.Id], "duplicate id %d", p.Id)
		seen[p.Id] = true
	}
}
