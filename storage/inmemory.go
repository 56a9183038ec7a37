package storage

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/VanessaDre/masterblog-api/domain/post"
	"github.com/VanessaDre/masterblog-api/utils"
)

// InMemoryStorage keeps posts in insertion order. Writers hold the lock for the
// whole read-modify-write; readers copy a snapshot and sort or filter it after
// releasing the lock.
type InMemoryStorage struct {
	mu    sync.RWMutex
	posts []post.Post
}

func NewInMemoryStorage(seed []post.Post) *InMemoryStorage {
	return &InMemoryStorage{posts: slices.Clone(seed)}
}

func (im *InMemoryStorage) snapshot() []post.Post {
	im.mu.RLock()
	defer im.mu.RUnlock()
	res := make([]post.Post, len(im.posts))
	copy(res, im.posts)
	return res
}

func (im *InMemoryStorage) indexOf(postId int) int {
	return slices.IndexFunc(im.posts, func(p post.Post) bool {
		return p.Id == postId
	})
}

func (im *InMemoryStorage) GetPosts(_ context.Context, opts post.ListOptions) ([]post.Post, error) {
	posts := im.snapshot()
	post.Sort(posts, opts)
	return posts, nil
}

func (im *InMemoryStorage) GetPostById(_ context.Context, postId int) (*post.Post, error) {
	im.mu.RLock()
	defer im.mu.RUnlock()
	idx := im.indexOf(postId)
	if idx < 0 {
		return nil, fmt.Errorf("%w: id %d", ErrPostNotFound, postId)
	}
	p := im.posts[idx]
	return &p, nil
}

func (im *InMemoryStorage) AddPost(_ context.Context, draft post.Draft) (*post.Post, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}
	im.mu.Lock()
	defer im.mu.Unlock()
	p := draft.ToPost(utils.NextPostId(im.posts))
	im.posts = append(im.posts, p)
	return &p, nil
}

func (im *InMemoryStorage) ModifyPost(_ context.Context, postId int, patch post.Patch) (*post.Post, error) {
	im.mu.Lock()
	defer im.mu.Unlock()
	idx := im.indexOf(postId)
	if idx < 0 {
		return nil, fmt.Errorf("%w: id %d", ErrPostNotFound, postId)
	}
	im.posts[idx].Apply(patch)
	p := im.posts[idx]
	return &p, nil
}

func (im *InMemoryStorage) DeletePost(_ context.Context, postId int) error {
	im.mu.Lock()
	defer im.mu.Unlock()
	idx := im.indexOf(postId)
	if idx < 0 {
		return fmt.Errorf("%w: id %d", ErrPostNotFound, postId)
	}
	im.posts = slices.Delete(im.posts, idx, idx+1)
	return nil
}

func (im *InMemoryStorage) SearchPosts(_ context.Context, q post.SearchQuery) ([]post.Post, error) {
	posts := im.snapshot()
	if q.Empty() {
		return posts, nil
	}
	return post.Filter(posts, q), nil
}

func (im *InMemoryStorage) Len() int {
	im.mu.RLock()
	defer im.mu.RUnlock()
	return len(im.posts)
}
