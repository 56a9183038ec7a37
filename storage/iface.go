package storage

import (
	"context"

	"github.com/VanessaDre/masterblog-api/domain/post"
)

type Storage interface {
	GetPosts(ctx context.Context, opts post.ListOptions) ([]post.Post, error)
	GetPostById(ctx context.Context, postId int) (*post.Post, error)
	AddPost(ctx context.Context, draft post.Draft) (*post.Post, error)
	ModifyPost(ctx context.Context, postId int, patch post.Patch) (*post.Post, error)
	DeletePost(ctx context.Context, postId int) error
	SearchPosts(ctx context.Context, q post.SearchQuery) ([]post.Post, error)
}
