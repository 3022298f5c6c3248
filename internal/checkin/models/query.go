package models

import "strings"

// Query identifies a participant by any of record id, name or phone.
// Populated fields are combined disjunctively.
type Query struct {
	ID    string
	Name  string
	Phone string
}

// NewQuery trims all fields so whitespace-only input counts as absent.
func NewQuery(id, name, phone string) Query {
	return Query{
		ID:    strings.TrimSpace(id),
		Name:  strings.TrimSpace(name),
		Phone: strings.TrimSpace(phone),
	}
}

// IsEmpty reports whether no identifying field is set.
func (q Query) IsEmpty() bool {
	return strings.TrimSpace(q.ID) == "" &&
		strings.TrimSpace(q.Name) == "" &&
		strings.TrimSpace(q.Phone) == ""
}
