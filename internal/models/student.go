package models

// Student represents a learner known to the platform. Read-only from this
// service's perspective; the upstream owns the roster.
type Student struct {
	ID     string   `db:"id" json:"id"`
	Name   string   `db:"name" json:"name"`
	Email  string   `db:"email" json:"email"`
	Phones []string `db:"-" json:"phones,omitempty"`
	Active bool     `db:"active" json:"active"`
}
