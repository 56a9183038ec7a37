package storage

import "errors"

var ErrPostNotFound = errors.New("post not found")
var ErrCacheMiss = errors.New("cache miss")
