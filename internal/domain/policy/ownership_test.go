package policy

import (
	"testing"

	"blog_api/internal/domain/model"

	"github.com/stretchr/testify/assert"
)

func TestCanMutate(t *testing.T) {
	alice := &model.User{ID: 1}
	bob := &model.User{ID: 2}
	post := &model.Post{ID: 10, AuthorID: 1}

	assert.True(t, CanMutate(alice, post))
	assert.False(t, CanMutate(bob, post))
	assert.False(t, CanMutate(nil, post))
	assert.False(t, CanMutate(alice, nil))
}

func TestCanMutate_ComparesValues(t *testing.T) {
	// Large ids that would not be interned anywhere still compare equal.
	id := int64(1) << 40
	owner := &model.User{ID: id}
	post := &model.Post{AuthorID: int64(1)<<40 + 0}

	assert.True(t, CanMutate(owner, post))
}
