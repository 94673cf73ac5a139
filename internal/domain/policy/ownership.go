// Package policy holds access rules checked by mutation paths.
package policy

import "blog_api/internal/domain/model"

// CanMutate reports whether identity owns post. Ids are compared by value;
// there are no roles and no admin override.
func CanMutate(identity *model.User, post *model.Post) bool {
	if identity == nil || post == nil {
		return false
	}
	return post.AuthorID == identity.ID
}
