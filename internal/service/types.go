package service

import "friendnet/internal/model"

// UserSnippet is the compact user view embedded in suggestions, feed
// reasons and request listings.
type UserSnippet struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Avatar   string `json:"avatar,omitempty"`
	Headline string `json:"headline,omitempty"`
	City     string `json:"city,omitempty"`
}

func newUserSnippet(u *model.User) UserSnippet {
	return UserSnippet{
		ID:       u.ID,
		Name:     u.Name,
		Email:    u.Email,
		Avatar:   u.Avatar,
		Headline: u.Headline,
		City:     u.City,
	}
}

// snippetsByID builds a lookup of user snippets for a batch of users.
func snippetsByID(users []*model.User) map[uint]UserSnippet {
	out := make(map[uint]UserSnippet, len(users))
	for _, u := range users {
		out[u.ID] = newUserSnippet(u)
	}
	return out
}

// idSet builds a membership set from a slice of IDs.
func idSet(ids []uint) map[uint]struct{} {
	set := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
