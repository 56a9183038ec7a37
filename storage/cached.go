package storage

import (
	"context"
	_ "embed"
	"encoding/json"
	"log/slog"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/VanessaDre/masterblog-api/domain/post"
	"github.com/go-redis/redis/v8"
)

//go:embed script.lua
var scr string

var invalidateScript = redis.NewScript(scr)

// CachedStorage is a read-through Redis cache in front of another Storage.
// Every key embeds the generation stored at Prefix+"gen"; a successful write
// bumps the generation and drops the old entries, so a view read before the
// write can never be served after it. While a bump is owed the cache is
// bypassed.
type CachedStorage struct {
	Client          *redis.Client
	InternalStorage Storage
	Prefix          string
	TTL             time.Duration
	Logger          *slog.Logger

	stale atomic.Bool
}

func NewCachedStorage(client *redis.Client, internal Storage, prefix string, ttl time.Duration, logger *slog.Logger) *CachedStorage {
	if logger == nil {
		logger = slog.Default()
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &CachedStorage{
		Client:          client,
		InternalStorage: internal,
		Prefix:          prefix,
		TTL:             ttl,
		Logger:          logger,
	}
}

func (cs *CachedStorage) genKey() string {
	return cs.Prefix + "gen"
}

func (cs *CachedStorage) generation(ctx context.Context) (string, error) {
	gen, err := cs.Client.Get(ctx, cs.genKey()).Result()
	if err == redis.Nil {
		return "0", nil
	}
	return gen, err
}

func (cs *CachedStorage) postIdKey(gen string, postId int) string {
	return cs.Prefix + "view:" + gen + ":pid:" + strconv.Itoa(postId)
}

func (cs *CachedStorage) listKey(gen string, opts post.ListOptions) string {
	return cs.Prefix + "view:" + gen + ":list:" + opts.SortField + ":" + opts.Direction
}

func (cs *CachedStorage) searchKey(gen string, q post.SearchQuery) string {
	return cs.Prefix + "view:" + gen + ":search:" + strconv.Quote(q.Title) + ":" + strconv.Quote(q.Content)
}

func (cs *CachedStorage) load(ctx context.Context, key string, dst any) error {
	r, err := cs.Client.Get(ctx, key).Result()
	if err == redis.Nil {
		return ErrCacheMiss
	}
	if err != nil {
		cs.Logger.Debug("cache read failed", "key", key, "error", err)
		return ErrCacheMiss
	}
	if err := json.Unmarshal([]byte(r), dst); err != nil {
		cs.Logger.Debug("cache entry corrupt", "key", key, "error", err)
		return ErrCacheMiss
	}
	return nil
}

func (cs *CachedStorage) store(ctx context.Context, key string, v any) {
	res, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := cs.Client.Set(ctx, key, res, cs.TTL).Err(); err != nil {
		cs.Logger.Debug("cache write failed", "key", key, "error", err)
	}
}

// readThrough serves key from the cache or fills it from fetch. When the
// generation cannot be read, or a failed bump has not been retried yet, the
// cache is bypassed.
func readThrough[T any](ctx context.Context, cs *CachedStorage, key func(gen string) string, fetch func() (T, error)) (T, error) {
	if cs.stale.Load() && !cs.invalidate(ctx) {
		return fetch()
	}
	gen, err := cs.generation(ctx)
	if err != nil {
		cs.Logger.Debug("cache unavailable", "error", err)
		return fetch()
	}
	var cached T
	if cs.load(ctx, key(gen), &cached) == nil {
		return cached, nil
	}
	res, err := fetch()
	if err != nil {
		return res, err
	}
	cs.store(ctx, key(gen), res)
	return res, nil
}

// invalidate bumps the generation. On failure the cache is marked stale and
// reads keep retrying the bump; it reports whether the bump went through.
func (cs *CachedStorage) invalidate(ctx context.Context) bool {
	if err := cs.Client.Incr(ctx, cs.genKey()).Err(); err != nil {
		if !cs.stale.Swap(true) {
			cs.Logger.Warn("cache generation bump failed, bypassing cache", "error", err)
		}
		return false
	}
	if cs.stale.Swap(false) {
		cs.Logger.Info("cache generation bumped, cache back in use")
	}
	if err := invalidateScript.Run(ctx, cs.Client, []string{cs.Prefix + "view:*"}).Err(); err != nil && err != redis.Nil {
		cs.Logger.Debug("cache cleanup failed", "error", err)
	}
	return true
}

func (cs *CachedStorage) GetPosts(ctx context.Context, opts post.ListOptions) ([]post.Post, error) {
	return readThrough(ctx, cs,
		func(gen string) string { return cs.listKey(gen, opts) },
		func() ([]post.Post, error) { return cs.InternalStorage.GetPosts(ctx, opts) })
}

func (cs *CachedStorage) GetPostById(ctx context.Context, postId int) (*post.Post, error) {
	return readThrough(ctx, cs,
		func(gen string) string { return cs.postIdKey(gen, postId) },
		func() (*post.Post, error) { return cs.InternalStorage.GetPostById(ctx, postId) })
}

func (cs *CachedStorage) SearchPosts(ctx context.Context, q post.SearchQuery) ([]post.Post, error) {
	return readThrough(ctx, cs,
		func(gen string) string { return cs.searchKey(gen, q) },
		func() ([]post.Post, error) { return cs.InternalStorage.SearchPosts(ctx, q) })
}

func (cs *CachedStorage) AddPost(ctx context.Context, draft post.Draft) (*post.Post, error) {
	p, err := cs.InternalStorage.AddPost(ctx, draft)
	if err != nil {
		return nil, err
	}
	cs.invalidate(ctx)
	return p, nil
}

func (cs *CachedStorage) ModifyPost(ctx context.Context, postId int, patch post.Patch) (*post.Post, error) {
	p, err := cs.InternalStorage.ModifyPost(ctx, postId, patch)
	if err != nil {
		return nil, err
	}
	cs.invalidate(ctx)
	return p, nil
}

func (cs *CachedStorage) DeletePost(ctx context.Context, postId int) error {
	if err := cs.InternalStorage.DeletePost(ctx, postId); err != nil {
		return err
	}
	cs.invalidate(ctx)
	return nil
}
