package models

import "slices"

// Group represents a set of people who share expenses.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string `json:"id"`

	// Name is the display name of the group (e.g., "Roommates", "Ski Trip").
	Name string `json:"name"`

	// Members is the ordered list of member names. Names are unique within a group;
	// the order is insertion order and only matters for display.
	Members []string `json:"members"`

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64 `json:"created_at"`
}

// HasMember reports whether name is a member of the group.
func (g *Group) HasMember(name string) bool {
	return slices.Contains(g.Members, name)
}
