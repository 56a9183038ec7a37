package utils

import (
	"testing"

	"github.com/VanessaDre/masterblog-api/domain/post"
	"github.com/stretchr/testify/assert"
)

func TestNextPostId(t *testing.T) {
	assert.Equal(t, 1, NextPostId(nil))
	assert.Equal(t, 3, NextPostId(post.Seed()))
	assert.Equal(t, 8, NextPostId([]post.Post{{Id: 7}, {Id: 2}, {Id: 5}}))
}
