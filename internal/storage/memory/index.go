package memory

import (
	"github.com/yndnr/gymdesk-go/internal/core/domain"
	"github.com/yndnr/gymdesk-go/pkg/cmap"
)

// UserIndex maps a username to the set of token hashes it holds.
//
// Set mutations run inside cmap.Compute, so adding to a set and dropping
// an empty set cannot interleave.
type UserIndex struct {
	index *cmap.Map[map[string]struct{}]
}

// NewUserIndex creates a new user index.
func NewUserIndex() *UserIndex {
	return &UserIndex{
		index: cmap.New[map[string]struct{}](),
	}
}

// Reserve records tokenHash under username unless username already holds
// max sessions (max <= 0 means no limit). The count check and the insert
// run under the same shard lock.
func (i *UserIndex) Reserve(username, tokenHash string, max int) error {
	var err error
	i.index.Compute(username, func(set map[string]struct{}, exists bool) (map[string]struct{}, bool) {
		if !exists {
			set = make(map[string]struct{}, 1)
		}
		if _, dup := set[tokenHash]; dup {
			err = domain.ErrSessionConflict
			return set, true
		}
		if max > 0 && len(set) >= max {
			err = domain.ErrSessionQuotaExceeded
			return set, len(set) > 0
		}
		set[tokenHash] = struct{}{}
		return set, true
	})
	return err
}

// Remove drops tokenHash from username's set, deleting the set when it
// becomes empty.
func (i *UserIndex) Remove(username, tokenHash string) {
	i.index.Compute(username, func(set map[string]struct{}, exists bool) (map[string]struct{}, bool) {
		if !exists {
			return nil, false
		}
		delete(set, tokenHash)
		return set, len(set) > 0
	})
}

// Get returns a copy of the token hashes held by username.
func (i *UserIndex) Get(username string) []string {
	var out []string
	i.index.Inspect(username, func(set map[string]struct{}, exists bool) {
		if !exists {
			return
		}
		out = make([]string, 0, len(set))
		for h := range set {
			out = append(out, h)
		}
	})
	return out
}

// Count returns the number of sessions held by username.
func (i *UserIndex) Count(username string) int {
	n := 0
	i.index.Inspect(username, func(set map[string]struct{}, _ bool) {
		n = len(set)
	})
	return n
}

// Users returns the number of usernames with at least one session.
func (i *UserIndex) Users() int {
	return i.index.Count()
}
